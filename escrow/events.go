package escrow

import (
	"math/big"
	"strconv"

	"escrowd/events"
)

const (
	EventTypeOrderCreated     = "escrow.order.created"
	EventTypeSellerConfirmed  = "escrow.order.confirmed"
	EventTypeBuyerFunded      = "escrow.order.funded"
	EventTypeOrderDelivered   = "escrow.order.delivered"
	EventTypeReceiptConfirmed = "escrow.order.receipt_confirmed"
	EventTypeFundsReleased    = "escrow.order.released"
	EventTypePenaltyAccrued   = "escrow.order.penalty_accrued"
	EventTypeOrderCancelled   = "escrow.order.cancelled"
)

// NewOrderCreatedEvent returns the canonical payload for a newly created
// order.
func NewOrderCreatedEvent(o *Order) *events.Event {
	evt := newOrderEvent(EventTypeOrderCreated, o)
	evt.Attributes["buyer"] = o.Buyer
	evt.Attributes["seller"] = o.Seller
	evt.Attributes["orderAmount"] = o.OrderAmount.String()
	evt.Attributes["quantity"] = strconv.FormatUint(o.Quantity, 10)
	return evt
}

// NewSellerConfirmedEvent returns the payload emitted when the seller commits
// to the delivery window.
func NewSellerConfirmedEvent(o *Order, deliveryDays uint64) *events.Event {
	evt := newOrderEvent(EventTypeSellerConfirmed, o)
	evt.Attributes["deliveryDays"] = strconv.FormatUint(deliveryDays, 10)
	evt.Attributes["deliveryDeadline"] = strconv.FormatInt(o.DeliveryDeadline, 10)
	return evt
}

// NewBuyerFundedEvent returns the payload emitted when the buyer deposits the
// agreed price into custody.
func NewBuyerFundedEvent(o *Order) *events.Event {
	evt := newOrderEvent(EventTypeBuyerFunded, o)
	evt.Attributes["amount"] = o.EscrowBalance.String()
	return evt
}

// NewOrderDeliveredEvent returns the payload emitted when the seller marks the
// order as delivered.
func NewOrderDeliveredEvent(o *Order) *events.Event {
	return newOrderEvent(EventTypeOrderDelivered, o)
}

// NewReceiptConfirmedEvent returns the payload emitted when the buyer confirms
// receipt.
func NewReceiptConfirmedEvent(o *Order) *events.Event {
	return newOrderEvent(EventTypeReceiptConfirmed, o)
}

// NewFundsReleasedEvent returns the payload emitted when custody is settled in
// favour of the seller.
func NewFundsReleasedEvent(o *Order, amountToSeller, penaltyDeducted *big.Int) *events.Event {
	evt := newOrderEvent(EventTypeFundsReleased, o)
	evt.Attributes["amountToSeller"] = amountToSeller.String()
	evt.Attributes["penaltyDeducted"] = penaltyDeducted.String()
	return evt
}

// NewPenaltyAccruedEvent returns the payload emitted by the keeper accrual
// path when late intervals are charged ahead of settlement.
func NewPenaltyAccruedEvent(o *Order, penalty *big.Int) *events.Event {
	evt := newOrderEvent(EventTypePenaltyAccrued, o)
	evt.Attributes["penaltyAmount"] = penalty.String()
	evt.Attributes["intervalsCharged"] = strconv.FormatUint(o.PenaltyIntervals, 10)
	return evt
}

// NewOrderCancelledEvent returns the payload emitted when the buyer cancels
// the order, including the fee/refund split of any held balance.
func NewOrderCancelledEvent(o *Order, refund, fee *big.Int) *events.Event {
	evt := newOrderEvent(EventTypeOrderCancelled, o)
	evt.Attributes["refundAmount"] = refund.String()
	evt.Attributes["feeAmount"] = fee.String()
	return evt
}

func newOrderEvent(eventType string, o *Order) *events.Event {
	attrs := make(map[string]string)
	if o != nil {
		attrs["orderId"] = strconv.FormatUint(o.ID, 10)
		attrs["status"] = o.Status.String()
	}
	return &events.Event{Type: eventType, Attributes: attrs}
}
