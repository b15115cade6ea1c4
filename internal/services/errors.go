package services

import "errors"

// Business rejections. None of them leaves a trace in the stores.
var (
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrBalanceLimitExceeded = errors.New("maximum balance exceeded")
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidKind          = errors.New("invalid transaction kind")
)

// IsRejection reports whether err is a business rejection rather than a
// store failure.
func IsRejection(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrBalanceLimitExceeded) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrInvalidKind)
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, ErrBalanceLimitExceeded):
		return "limit_exceeded"
	case errors.Is(err, ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, ErrUserNotFound):
		return "user_not_found"
	default:
		return "error"
	}
}
