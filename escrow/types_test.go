package escrow

import (
	"math/big"
	"testing"
)

func validOrder() *Order {
	return &Order{
		ID:                1,
		Buyer:             " buyer-1 ",
		Seller:            "seller-1",
		OrderAmount:       big.NewInt(100),
		Quantity:          2,
		EscrowBalance:     big.NewInt(100),
		Status:            OrderBuyerFunded,
		CreatedAt:         1_700_000_000,
		DeliveryDeadline:  1_700_432_000,
		BuyerPenaltyTotal: big.NewInt(0),
		BuyerRefund:       big.NewInt(0),
		SellerFinalAmount: big.NewInt(0),
	}
}

func TestSanitizeOrderTrimsAndClones(t *testing.T) {
	original := validOrder()
	sanitized, err := SanitizeOrder(original)
	if err != nil {
		t.Fatalf("SanitizeOrder: %v", err)
	}
	if sanitized.Buyer != "buyer-1" {
		t.Fatalf("expected trimmed buyer, got %q", sanitized.Buyer)
	}
	if sanitized.OrderAmount == original.OrderAmount {
		t.Fatalf("sanitize must clone amount pointer")
	}
	sanitized.EscrowBalance.SetInt64(0)
	if original.EscrowBalance.Sign() == 0 {
		t.Fatalf("mutating sanitized copy leaked into original")
	}
}

func TestSanitizeOrderRejectsInvalid(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Order)
	}{
		{"nil amount sign", func(o *Order) { o.OrderAmount = big.NewInt(0) }},
		{"same parties", func(o *Order) { o.Seller = o.Buyer }},
		{"empty buyer", func(o *Order) { o.Buyer = "  " }},
		{"negative balance", func(o *Order) { o.EscrowBalance = big.NewInt(-1) }},
		{"penalty above amount", func(o *Order) { o.BuyerPenaltyTotal = big.NewInt(101) }},
		{"bad status", func(o *Order) { o.Status = OrderStatus(99) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			order := validOrder()
			tc.mutate(order)
			if _, err := SanitizeOrder(order); err == nil {
				t.Fatalf("expected sanitize failure")
			}
		})
	}
}

func TestOrderStatusProperties(t *testing.T) {
	if !OrderReleased.Terminal() || !OrderCancelled.Terminal() {
		t.Fatalf("released and cancelled must be terminal")
	}
	if OrderDelivered.Terminal() {
		t.Fatalf("delivered still awaits receipt confirmation")
	}
	if OrderStatus(99).Valid() {
		t.Fatalf("out-of-range status must be invalid")
	}
	if OrderPending.String() != "pending" || OrderReleased.String() != "released" {
		t.Fatalf("unexpected status strings")
	}
}

func TestCloneDeepCopiesMoneyFields(t *testing.T) {
	original := validOrder()
	clone := original.Clone()
	clone.EscrowBalance.SetInt64(1)
	clone.BuyerRefund.SetInt64(7)
	if original.EscrowBalance.Cmp(big.NewInt(100)) != 0 || original.BuyerRefund.Sign() != 0 {
		t.Fatalf("clone mutation leaked into original")
	}
}
