package escrow

// ErrorCode classifies a rejected action. Every failure is synchronous and
// atomic: the order and the ledger are untouched when one of these is
// returned.
type ErrorCode uint8

const (
	CodeInvalidArgument ErrorCode = iota + 1
	CodeUnauthorized
	CodeInvalidState
	CodeAmountMismatch
)

// Error pairs the failure taxonomy code with the exact reason string exposed
// to callers. The strings are part of the external contract; callers match on
// them verbatim.
type Error struct {
	Code   ErrorCode
	Reason string
}

func (e *Error) Error() string { return e.Reason }

var (
	ErrInvalidSeller       = &Error{CodeInvalidArgument, "Invalid seller address"}
	ErrNonPositiveAmount   = &Error{CodeInvalidArgument, "Order amount must be greater than zero"}
	ErrNonPositiveQuantity = &Error{CodeInvalidArgument, "Quantity must be greater than zero"}
	ErrNonPositiveDays     = &Error{CodeInvalidArgument, "Delivery days must be greater than zero"}
	ErrDeliveryWindowLong  = &Error{CodeInvalidArgument, "Delivery days exceed the maximum window"}
	ErrOrderNotFound       = &Error{CodeInvalidArgument, "Order not found"}

	ErrNotSellerConfirm = &Error{CodeUnauthorized, "Only the seller can confirm the order"}
	ErrNotBuyerFund     = &Error{CodeUnauthorized, "Only the buyer can fund the order"}
	ErrNotSellerDeliver = &Error{CodeUnauthorized, "Only the seller can confirm delivery"}
	ErrNotBuyerReceipt  = &Error{CodeUnauthorized, "Only the buyer can confirm receipt"}
	ErrNotBuyerCancel   = &Error{CodeUnauthorized, "Only the buyer can cancel the order"}
	ErrNotBuyerView     = &Error{CodeUnauthorized, "Only the buyer can view buyer details"}
	ErrNotSellerView    = &Error{CodeUnauthorized, "Only the seller can view seller details"}

	ErrNotPending         = &Error{CodeInvalidState, "Order must be in pending state"}
	ErrNotSellerConfirmed = &Error{CodeInvalidState, "Order must be confirmed by the seller first"}
	ErrNotFunded          = &Error{CodeInvalidState, "Order must be funded by the buyer"}
	ErrNotDelivered       = &Error{CodeInvalidState, "Seller must confirm delivery first"}
	ErrCancelNotAllowed   = &Error{CodeInvalidState, "Order cannot be canceled at this stage"}

	ErrExactAmountRequired = &Error{CodeAmountMismatch, "Buyer must transfer the exact order amount"}
)

// requireCaller is the role guard: the acting identity must match the role
// the attempted transition names.
func requireCaller(got, want string, failure *Error) error {
	if got != want {
		return failure
	}
	return nil
}
