package escrow

import "math/big"

// The fund ledger enforces the conservation law: every unit deposited for an
// order ends up in exactly one of the escrow balance, the buyer refund
// balance, or an outbound payout. Transitions that move value commit their
// state first and transfer last; a failed transfer restores the pre-action
// snapshot so the whole action aborts as one unit.

// deposit records the exact-amount funding of an order. Partial and
// over-funding are rejected.
func (e *Engine) deposit(order *Order, amount *big.Int) error {
	if amount == nil || amount.Cmp(order.OrderAmount) != 0 {
		return ErrExactAmountRequired
	}
	order.EscrowBalance = cloneBigInt(amount)
	return nil
}

// releaseToSeller decrements the held balance, records the seller's final
// amount, persists the settled order and then performs the outbound transfer.
// The snapshot is written back if the transfer fails.
func (e *Engine) releaseToSeller(order *Order, amount *big.Int, snapshot *Order) error {
	if e.settlement == nil {
		return errNilSettlement
	}
	if amount.Cmp(order.EscrowBalance) > 0 {
		return ErrNotFunded
	}
	order.EscrowBalance.Sub(order.EscrowBalance, amount)
	order.SellerFinalAmount = cloneBigInt(amount)
	if err := e.storeOrder(order); err != nil {
		return err
	}
	if amount.Sign() > 0 {
		if err := e.settlement.Transfer(Payment{Recipient: order.Seller, Amount: amount}); err != nil {
			return e.rollback(snapshot, err)
		}
	}
	return nil
}

// splitOnCancellation divides the held balance between the seller (fee) and
// the buyer (refund), computed from a single snapshot of the balance. A zero
// balance cancels without any transfer. The balance is zeroed and the order
// persisted first; fee and refund then go out as one atomic settlement call,
// so a failure leaves neither payment behind.
func (e *Engine) splitOnCancellation(order *Order, feeRate int64, snapshot *Order) (refund, fee *big.Int, err error) {
	held := cloneBigInt(order.EscrowBalance)
	fee = new(big.Int).Mul(held, big.NewInt(feeRate))
	fee.Div(fee, big.NewInt(100))
	refund = new(big.Int).Sub(held, fee)
	order.EscrowBalance = big.NewInt(0)
	if err := e.storeOrder(order); err != nil {
		return nil, nil, err
	}
	payments := make([]Payment, 0, 2)
	if fee.Sign() > 0 {
		payments = append(payments, Payment{Recipient: order.Seller, Amount: fee})
	}
	if refund.Sign() > 0 {
		payments = append(payments, Payment{Recipient: order.Buyer, Amount: refund})
	}
	if len(payments) == 0 {
		return refund, fee, nil
	}
	if e.settlement == nil {
		return nil, nil, e.rollback(snapshot, errNilSettlement)
	}
	if err := e.settlement.Transfer(payments...); err != nil {
		return nil, nil, e.rollback(snapshot, err)
	}
	return refund, fee, nil
}

// rollback restores the pre-action order snapshot after a failed outbound
// transfer and surfaces the transfer error.
func (e *Engine) rollback(snapshot *Order, cause error) error {
	if snapshot != nil {
		if putErr := e.storeOrder(snapshot); putErr != nil {
			return putErr
		}
	}
	return cause
}
