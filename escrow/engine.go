package escrow

import (
	"errors"
	"math/big"
	"time"

	"escrowd/events"
)

var (
	errNilState      = errors.New("escrow engine: state not configured")
	errNilSettlement = errors.New("escrow engine: settlement not configured")
)

type engineState interface {
	OrderPut(*Order) error
	OrderGet(id uint64) (*Order, bool)
	NextOrderID() (uint64, error)
}

// Payment is one outbound transfer instruction handed to the settlement rail.
type Payment struct {
	Recipient string
	Amount    *big.Int
}

// Settlement performs outbound value transfers to order parties once custody
// bookkeeping is settled. A call carrying multiple payments is atomic: either
// every payment is accepted or none is. Implementations may run arbitrary
// external code; the engine therefore commits its own state before invoking a
// transfer and rolls the whole action back if the call fails.
type Settlement interface {
	Transfer(payments ...Payment) error
}

// Engine owns the canonical per-order state: it validates and applies
// lifecycle transitions, charges deadline penalties and authorises fund
// movements. All money amounts are cloned before mutation.
type Engine struct {
	state      engineState
	settlement Settlement
	emitter    events.Emitter
	nowFn      func() int64
}

// NewEngine creates an escrow engine with a no-op emitter. Callers can
// override the emitter via SetEmitter.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetSettlement configures the outbound transfer capability.
func (e *Engine) SetSettlement(s Settlement) { e.settlement = s }

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source used by the engine. Primarily intended
// for tests to provide deterministic timestamps.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

func (e *Engine) emit(evt *events.Event) {
	if e == nil || e.emitter == nil || evt == nil {
		return
	}
	e.emitter.Emit(evt)
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func (e *Engine) loadOrder(id uint64) (*Order, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	order, ok := e.state.OrderGet(id)
	if !ok {
		return nil, ErrOrderNotFound
	}
	return SanitizeOrder(order)
}

func (e *Engine) storeOrder(order *Order) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	return e.state.OrderPut(order)
}

// ConfirmOrder records the seller's commitment to the trade and fixes the
// delivery deadline at now + deliveryDays full days. The deadline is set
// exactly once; every later penalty evaluation reads it unchanged.
func (e *Engine) ConfirmOrder(id uint64, caller string, deliveryDays uint64) error {
	order, err := e.loadOrder(id)
	if err != nil {
		return err
	}
	if err := requireCaller(caller, order.Seller, ErrNotSellerConfirm); err != nil {
		return err
	}
	if order.Status != OrderPending {
		return ErrNotPending
	}
	if deliveryDays == 0 {
		return ErrNonPositiveDays
	}
	if deliveryDays > MaxDeliveryDays {
		return ErrDeliveryWindowLong
	}
	order.DeliveryDeadline = e.now() + int64(deliveryDays)*PenaltyIntervalSeconds
	order.Status = OrderSellerConfirmed
	if err := e.storeOrder(order); err != nil {
		return err
	}
	e.emit(NewSellerConfirmedEvent(order, deliveryDays))
	return nil
}

// FundOrder moves the agreed price into custody. The deposit must match the
// order amount exactly: no partial funding, no over-funding.
func (e *Engine) FundOrder(id uint64, caller string, value *big.Int) error {
	order, err := e.loadOrder(id)
	if err != nil {
		return err
	}
	if err := requireCaller(caller, order.Buyer, ErrNotBuyerFund); err != nil {
		return err
	}
	if order.Status != OrderSellerConfirmed {
		return ErrNotSellerConfirmed
	}
	if err := e.deposit(order, value); err != nil {
		return err
	}
	order.Status = OrderBuyerFunded
	if err := e.storeOrder(order); err != nil {
		return err
	}
	e.emit(NewBuyerFundedEvent(order))
	return nil
}

// DeliverOrder marks the goods as delivered by the seller. From here the order
// can no longer be cancelled; the buyer's receipt confirmation is the only way
// forward.
func (e *Engine) DeliverOrder(id uint64, caller string) error {
	order, err := e.loadOrder(id)
	if err != nil {
		return err
	}
	if err := requireCaller(caller, order.Seller, ErrNotSellerDeliver); err != nil {
		return err
	}
	if order.Status != OrderBuyerFunded || order.EscrowBalance.Sign() <= 0 {
		return ErrNotFunded
	}
	order.Status = OrderDelivered
	if err := e.storeOrder(order); err != nil {
		return err
	}
	e.emit(NewOrderDeliveredEvent(order))
	return nil
}

// ConfirmReceipt settles the order in favour of the seller. Any intervals
// elapsed past the delivery deadline and not yet charged are charged here,
// then the remaining balance is released to the seller. The outbound transfer
// is the last effect; a failed transfer rolls the entire action back. Returns
// the penalty this call charged.
func (e *Engine) ConfirmReceipt(id uint64, caller string) (*big.Int, error) {
	order, err := e.loadOrder(id)
	if err != nil {
		return nil, err
	}
	if err := requireCaller(caller, order.Buyer, ErrNotBuyerReceipt); err != nil {
		return nil, err
	}
	if order.Status != OrderDelivered {
		return nil, ErrNotDelivered
	}
	snapshot := order.Clone()
	penalty := e.chargePenalty(order, e.now())
	payout := cloneBigInt(order.EscrowBalance)
	order.Status = OrderReleased
	if err := e.releaseToSeller(order, payout, snapshot); err != nil {
		return nil, err
	}
	e.emit(NewReceiptConfirmedEvent(order))
	e.emit(NewFundsReleasedEvent(order, payout, penalty))
	return penalty, nil
}

// AccruePenalty is the permissionless keeper path: it charges any penalty
// intervals elapsed so far without settling the order. Intervals already
// charged are skipped, so repeated calls never double-charge. A call before
// the first full interval is a no-op.
func (e *Engine) AccruePenalty(id uint64) (*big.Int, error) {
	order, err := e.loadOrder(id)
	if err != nil {
		return nil, err
	}
	if order.Status != OrderDelivered {
		return nil, ErrNotDelivered
	}
	penalty := e.chargePenalty(order, e.now())
	if penalty.Sign() == 0 {
		return big.NewInt(0), nil
	}
	if err := e.storeOrder(order); err != nil {
		return nil, err
	}
	e.emit(NewPenaltyAccruedEvent(order, penalty))
	return penalty, nil
}

// CancelOrder aborts the trade at the buyer's request. Allowed only before
// delivery. Held funds are split once: the cancellation fee to the seller, the
// remainder back to the buyer.
func (e *Engine) CancelOrder(id uint64, caller string) error {
	order, err := e.loadOrder(id)
	if err != nil {
		return err
	}
	if err := requireCaller(caller, order.Buyer, ErrNotBuyerCancel); err != nil {
		return err
	}
	switch order.Status {
	case OrderPending, OrderSellerConfirmed, OrderBuyerFunded:
	default:
		return ErrCancelNotAllowed
	}
	snapshot := order.Clone()
	order.Status = OrderCancelled
	refund, fee, err := e.splitOnCancellation(order, CancellationFeePercent, snapshot)
	if err != nil {
		return err
	}
	e.emit(NewOrderCancelledEvent(order, refund, fee))
	return nil
}

// chargePenalty applies the decay owed for intervals elapsed at now and not
// yet charged: the amount moves from the escrow balance into the buyer's
// refund balance. Mutates order in place; callers persist.
func (e *Engine) chargePenalty(order *Order, now int64) *big.Int {
	total := ElapsedIntervals(order.DeliveryDeadline, now)
	if total <= order.PenaltyIntervals {
		return big.NewInt(0)
	}
	penalty := AccruablePenalty(order.OrderAmount, total, order.PenaltyIntervals, order.EscrowBalance)
	order.PenaltyIntervals = total
	if penalty.Sign() > 0 {
		order.EscrowBalance.Sub(order.EscrowBalance, penalty)
		order.BuyerPenaltyTotal.Add(order.BuyerPenaltyTotal, penalty)
		order.BuyerRefund.Add(order.BuyerRefund, penalty)
	}
	return penalty
}
