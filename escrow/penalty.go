package escrow

import "math/big"

// ElapsedIntervals returns the number of full 24-hour penalty buckets between
// the delivery deadline and now. An unset deadline never accrues intervals.
func ElapsedIntervals(deadline, now int64) uint64 {
	if deadline <= 0 || now <= deadline {
		return 0
	}
	return uint64((now - deadline) / PenaltyIntervalSeconds)
}

// rawPenalty is the uncapped decay for the given interval count: 2% of the
// original order amount per full elapsed day.
func rawPenalty(orderAmount *big.Int, intervals uint64) *big.Int {
	if orderAmount == nil || orderAmount.Sign() <= 0 || intervals == 0 {
		return big.NewInt(0)
	}
	penalty := new(big.Int).Mul(orderAmount, big.NewInt(PenaltyRatePercent))
	penalty.Mul(penalty, new(big.Int).SetUint64(intervals))
	penalty.Div(penalty, big.NewInt(100))
	return penalty
}

// LatePenalty computes the deadline-based value decay for a single evaluation:
// 2% of orderAmount per full elapsed interval, capped by the balance actually
// held and by the order amount itself. Pure and deterministic; re-evaluating
// with the same now yields the same result.
func LatePenalty(orderAmount *big.Int, deadline, now int64, escrowBalance *big.Int) *big.Int {
	return AccruablePenalty(orderAmount, ElapsedIntervals(deadline, now), 0, escrowBalance)
}

// AccruablePenalty returns the additional penalty owed for intervals that have
// elapsed but have not been charged yet. Charged intervals are never counted
// again, which makes keeper-triggered accrual idempotent per interval.
func AccruablePenalty(orderAmount *big.Int, totalIntervals, chargedIntervals uint64, escrowBalance *big.Int) *big.Int {
	if totalIntervals <= chargedIntervals {
		return big.NewInt(0)
	}
	owed := rawPenalty(orderAmount, totalIntervals)
	owed.Sub(owed, rawPenalty(orderAmount, chargedIntervals))
	if orderAmount != nil && owed.Cmp(orderAmount) > 0 {
		owed.Set(orderAmount)
	}
	balance := cloneBigInt(escrowBalance)
	if balance.Sign() < 0 {
		balance.SetInt64(0)
	}
	if owed.Cmp(balance) > 0 {
		owed.Set(balance)
	}
	return owed
}
