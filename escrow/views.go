package escrow

import "math/big"

// BuyerView is the buyer-side read projection of an order. It surfaces the
// penalty bookkeeping the buyer benefits from and omits the seller's payout.
type BuyerView struct {
	ID               uint64
	Seller           string
	OrderAmount      *big.Int
	Quantity         uint64
	Status           OrderStatus
	CreatedAt        int64
	DeliveryDeadline int64
	EscrowBalance    *big.Int
	PenaltyTotal     *big.Int
	RefundBalance    *big.Int
}

// SellerView is the seller-side read projection of an order. It surfaces the
// final payout amount and omits the buyer's refund bookkeeping.
type SellerView struct {
	ID               uint64
	Buyer            string
	OrderAmount      *big.Int
	Quantity         uint64
	Status           OrderStatus
	CreatedAt        int64
	DeliveryDeadline int64
	EscrowBalance    *big.Int
	FinalAmount      *big.Int
}

func newBuyerView(o *Order) *BuyerView {
	return &BuyerView{
		ID:               o.ID,
		Seller:           o.Seller,
		OrderAmount:      cloneBigInt(o.OrderAmount),
		Quantity:         o.Quantity,
		Status:           o.Status,
		CreatedAt:        o.CreatedAt,
		DeliveryDeadline: o.DeliveryDeadline,
		EscrowBalance:    cloneBigInt(o.EscrowBalance),
		PenaltyTotal:     cloneBigInt(o.BuyerPenaltyTotal),
		RefundBalance:    cloneBigInt(o.BuyerRefund),
	}
}

func newSellerView(o *Order) *SellerView {
	return &SellerView{
		ID:               o.ID,
		Buyer:            o.Buyer,
		OrderAmount:      cloneBigInt(o.OrderAmount),
		Quantity:         o.Quantity,
		Status:           o.Status,
		CreatedAt:        o.CreatedAt,
		DeliveryDeadline: o.DeliveryDeadline,
		EscrowBalance:    cloneBigInt(o.EscrowBalance),
		FinalAmount:      cloneBigInt(o.SellerFinalAmount),
	}
}
