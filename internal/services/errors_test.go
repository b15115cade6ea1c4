package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResultLabel(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{ErrInvalidAmount, "invalid_amount"},
		{ErrBalanceLimitExceeded, "limit_exceeded"},
		{fmt.Errorf("charge: %w", ErrInsufficientBalance), "insufficient_balance"},
		{ErrUserNotFound, "user_not_found"},
		{errors.New("disk unavailable"), "error"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, resultLabel(tt.err))
		})
	}
}
