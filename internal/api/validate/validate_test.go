package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelpers(t *testing.T) {
	tests := []struct {
		name    string
		got     *ErrField
		wantMsg string
	}{
		{"min ok", MinInt("amount", 1, 1), ""},
		{"min fail", MinInt("amount", 0, 1), "must be >= 1"},
		{"max ok", MaxInt("amount", 10000, 10000), ""},
		{"max fail", MaxInt("amount", 10001, 10000), "must be <= 10000"},
		{"multiple ok", MultipleOf("amount", 300, 100), ""},
		{"multiple fail", MultipleOf("amount", 150, 100), "must be a multiple of 100"},
		{"zero step ignored", MultipleOf("amount", 150, 0), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.wantMsg == "" {
				assert.Nil(t, tt.got)
				return
			}
			require.NotNil(t, tt.got)
			assert.Equal(t, "amount", tt.got.Field)
			assert.Equal(t, tt.wantMsg, tt.got.Msg)
		})
	}
}

func TestCollect(t *testing.T) {
	assert.Nil(t, Collect(nil, nil))

	errs := Collect(MinInt("id", -1, 0), nil, MultipleOf("amount", 5, 100))
	require.Len(t, errs, 2)
	assert.Equal(t, "id: must be >= 0; amount: must be a multiple of 100", errs.Error())
}
