package escrow

import (
	"math/big"
	"strings"
)

// CreateOrder allocates the next order identifier and persists a new order in
// the pending state with the caller as buyer. No funds move at creation; the
// escrow balance is funded only after the seller has confirmed.
func (e *Engine) CreateOrder(caller, seller string, orderAmount *big.Int, quantity uint64) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, errNilState
	}
	buyer := strings.TrimSpace(caller)
	payee := strings.TrimSpace(seller)
	if buyer == "" || payee == "" || buyer == payee {
		return 0, ErrInvalidSeller
	}
	if orderAmount == nil || orderAmount.Sign() <= 0 {
		return 0, ErrNonPositiveAmount
	}
	if quantity == 0 {
		return 0, ErrNonPositiveQuantity
	}
	id, err := e.state.NextOrderID()
	if err != nil {
		return 0, err
	}
	order := &Order{
		ID:                id,
		Buyer:             buyer,
		Seller:            payee,
		OrderAmount:       cloneBigInt(orderAmount),
		Quantity:          quantity,
		EscrowBalance:     big.NewInt(0),
		Status:            OrderPending,
		CreatedAt:         e.now(),
		BuyerPenaltyTotal: big.NewInt(0),
		BuyerRefund:       big.NewInt(0),
		SellerFinalAmount: big.NewInt(0),
	}
	if err := e.storeOrder(order); err != nil {
		return 0, err
	}
	e.emit(NewOrderCreatedEvent(order))
	return id, nil
}

// GetBuyerDetails returns the buyer-side projection of the order. Only the
// order's buyer may read it.
func (e *Engine) GetBuyerDetails(id uint64, caller string) (*BuyerView, error) {
	order, err := e.loadOrder(id)
	if err != nil {
		return nil, err
	}
	if err := requireCaller(caller, order.Buyer, ErrNotBuyerView); err != nil {
		return nil, err
	}
	return newBuyerView(order), nil
}

// GetSellerDetails returns the seller-side projection of the order. Only the
// order's seller may read it.
func (e *Engine) GetSellerDetails(id uint64, caller string) (*SellerView, error) {
	order, err := e.loadOrder(id)
	if err != nil {
		return nil, err
	}
	if err := requireCaller(caller, order.Seller, ErrNotSellerView); err != nil {
		return nil, err
	}
	return newSellerView(order), nil
}
