package escrow

import (
	"fmt"
	"math/big"
	"strings"
)

const (
	// PenaltyRatePercent is charged against the original order amount for
	// each full penalty interval elapsed past the delivery deadline.
	PenaltyRatePercent = 2
	// PenaltyIntervalSeconds is one full 24-hour penalty bucket.
	PenaltyIntervalSeconds int64 = 86_400
	// CancellationFeePercent of the held balance goes to the seller when the
	// buyer cancels a funded order.
	CancellationFeePercent = 5
	// MaxDeliveryDays bounds the delivery window a seller can commit to, so
	// the deadline arithmetic stays well inside the int64 range.
	MaxDeliveryDays = 3650
)

// OrderStatus represents the lifecycle states of an escrowed order.
type OrderStatus uint8

const (
	OrderPending OrderStatus = iota
	OrderSellerConfirmed
	OrderBuyerFunded
	OrderDelivered
	OrderReleased
	OrderCancelled
)

// Valid reports whether the status value is within the supported range.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderSellerConfirmed, OrderBuyerFunded, OrderDelivered, OrderReleased, OrderCancelled:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transition is defined from the status.
func (s OrderStatus) Terminal() bool {
	return s == OrderReleased || s == OrderCancelled
}

func (s OrderStatus) String() string {
	switch s {
	case OrderPending:
		return "pending"
	case OrderSellerConfirmed:
		return "seller_confirmed"
	case OrderBuyerFunded:
		return "buyer_funded"
	case OrderDelivered:
		return "delivered"
	case OrderReleased:
		return "released"
	case OrderCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// Order captures one two-party trade held in custody. Buyer, Seller,
// OrderAmount, Quantity and ID are immutable after creation; the remaining
// fields mutate only through state machine transitions.
type Order struct {
	ID          uint64
	Buyer       string
	Seller      string
	OrderAmount *big.Int
	Quantity    uint64

	EscrowBalance    *big.Int
	Status           OrderStatus
	CreatedAt        int64
	DeliveryDeadline int64

	// PenaltyIntervals counts the 24-hour buckets already charged, so the
	// keeper accrual path never double-charges an interval.
	PenaltyIntervals  uint64
	BuyerPenaltyTotal *big.Int
	BuyerRefund       *big.Int
	SellerFinalAmount *big.Int
}

// Clone returns a deep copy of the order so callers can safely mutate the copy
// without affecting the stored instance.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.OrderAmount = cloneBigInt(o.OrderAmount)
	clone.EscrowBalance = cloneBigInt(o.EscrowBalance)
	clone.BuyerPenaltyTotal = cloneBigInt(o.BuyerPenaltyTotal)
	clone.BuyerRefund = cloneBigInt(o.BuyerRefund)
	clone.SellerFinalAmount = cloneBigInt(o.SellerFinalAmount)
	return &clone
}

func cloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}

// SanitizeOrder validates and normalises the supplied order, returning a clone
// with trimmed identities and non-nil money fields. The function does not
// mutate the original value.
func SanitizeOrder(o *Order) (*Order, error) {
	if o == nil {
		return nil, fmt.Errorf("nil order")
	}
	clone := o.Clone()
	clone.Buyer = strings.TrimSpace(clone.Buyer)
	clone.Seller = strings.TrimSpace(clone.Seller)
	if clone.Buyer == "" || clone.Seller == "" {
		return nil, fmt.Errorf("order parties must not be empty")
	}
	if clone.Buyer == clone.Seller {
		return nil, fmt.Errorf("order parties must be distinct")
	}
	if clone.OrderAmount.Sign() <= 0 {
		return nil, fmt.Errorf("order amount must be positive")
	}
	if clone.EscrowBalance.Sign() < 0 {
		return nil, fmt.Errorf("escrow balance must be non-negative")
	}
	if clone.BuyerPenaltyTotal.Sign() < 0 || clone.BuyerRefund.Sign() < 0 || clone.SellerFinalAmount.Sign() < 0 {
		return nil, fmt.Errorf("order bookkeeping must be non-negative")
	}
	if clone.BuyerPenaltyTotal.Cmp(clone.OrderAmount) > 0 {
		return nil, fmt.Errorf("penalty total exceeds order amount")
	}
	if !clone.Status.Valid() {
		return nil, fmt.Errorf("invalid order status: %d", clone.Status)
	}
	return clone, nil
}
