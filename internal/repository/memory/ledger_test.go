package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/point-ledger/internal/models"
	repo "github.com/baharkarakas/point-ledger/internal/repository"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func TestBalances_SelectByID_missing(t *testing.T) {
	l := NewLedger(fixedClock)

	_, err := l.Balances().SelectByID(context.Background(), 1)
	require.ErrorIs(t, err, repo.ErrNotFound)
}

func TestBalances_InsertOrUpdate(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(fixedClock)

	b, err := l.Balances().InsertOrUpdate(ctx, 1, 500)
	require.NoError(t, err)
	assert.Equal(t, models.Balance{UserID: 1, Amount: 500, UpdatedAt: fixedNow}, b)

	b, err = l.Balances().InsertOrUpdate(ctx, 1, 300)
	require.NoError(t, err)
	assert.Equal(t, int64(300), b.Amount)

	got, err := l.Balances().SelectByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, b, got)
}

func TestHistories_insertionOrderPerUser(t *testing.T) {
	ctx := context.Background()
	h := NewLedger(fixedClock).Histories()

	_, err := h.Insert(ctx, 1, 100, models.KindCharge, fixedNow)
	require.NoError(t, err)
	_, err = h.Insert(ctx, 2, 700, models.KindCharge, fixedNow)
	require.NoError(t, err)
	_, err = h.Insert(ctx, 1, 50, models.KindUse, fixedNow)
	require.NoError(t, err)

	got, err := h.SelectAllByUserID(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, models.KindCharge, got[0].Kind)
	assert.Equal(t, int64(3), got[1].ID)
	assert.Equal(t, models.KindUse, got[1].Kind)

	none, err := h.SelectAllByUserID(ctx, 42)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestHistories_concurrentInsertsGetUniqueIDs(t *testing.T) {
	ctx := context.Background()
	h := NewLedger(fixedClock).Histories()

	const n = 200
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			_, _ = h.Insert(ctx, int64(i%4), 1, models.KindCharge, fixedNow)
		}(i)
	}
	wg.Wait()

	seen := make(map[int64]struct{})
	for u := int64(0); u < 4; u++ {
		entries, err := h.SelectAllByUserID(ctx, u)
		require.NoError(t, err)
		assert.Len(t, entries, n/4)
		for i, e := range entries {
			seen[e.ID] = struct{}{}
			if i > 0 {
				assert.Greater(t, e.ID, entries[i-1].ID)
			}
		}
	}
	assert.Len(t, seen, n)
}

func TestLedger_WithTx(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(fixedClock)

	err := l.WithTx(ctx, func(b repo.Balances, h repo.Histories) error {
		if _, err := b.InsertOrUpdate(ctx, 1, 700); err != nil {
			return err
		}
		_, err := h.Insert(ctx, 1, 700, models.KindCharge, fixedNow)
		return err
	})
	require.NoError(t, err)

	got, err := l.Balances().SelectByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(700), got.Amount)
	entries, err := l.Histories().SelectAllByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	called := false
	err = l.WithTx(cctx, func(repo.Balances, repo.Histories) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestLedger_WithTx_errorDiscardsWrites(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name        string
		seed        int64 // -1: no stored record
		wantMissing bool
		wantAmount  int64
		wantHistory int
	}{
		{name: "new user", seed: -1, wantMissing: true},
		{name: "existing user", seed: 300, wantAmount: 300, wantHistory: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			l := NewLedger(fixedClock)
			if tt.seed >= 0 {
				require.NoError(t, l.WithTx(ctx, func(b repo.Balances, h repo.Histories) error {
					if _, err := b.InsertOrUpdate(ctx, 1, tt.seed); err != nil {
						return err
					}
					_, err := h.Insert(ctx, 1, tt.seed, models.KindCharge, fixedNow)
					return err
				}))
			}

			err := l.WithTx(ctx, func(b repo.Balances, h repo.Histories) error {
				if _, err := b.InsertOrUpdate(ctx, 1, 700); err != nil {
					return err
				}
				if _, err := b.InsertOrUpdate(ctx, 1, 900); err != nil {
					return err
				}
				if _, err := h.Insert(ctx, 1, 700, models.KindCharge, fixedNow); err != nil {
					return err
				}
				// the write is visible inside the unit of work
				cur, err := b.SelectByID(ctx, 1)
				require.NoError(t, err)
				assert.Equal(t, int64(900), cur.Amount)
				return boom
			})
			require.ErrorIs(t, err, boom)

			got, err := l.Balances().SelectByID(ctx, 1)
			if tt.wantMissing {
				assert.ErrorIs(t, err, repo.ErrNotFound)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantAmount, got.Amount)
			}
			entries, err := l.Histories().SelectAllByUserID(ctx, 1)
			require.NoError(t, err)
			assert.Len(t, entries, tt.wantHistory)
		})
	}
}

func TestLedger_WithTx_panicDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(fixedClock)

	assert.Panics(t, func() {
		_ = l.WithTx(ctx, func(b repo.Balances, h repo.Histories) error {
			_, _ = b.InsertOrUpdate(ctx, 2, 100)
			_, _ = h.Insert(ctx, 2, 100, models.KindCharge, fixedNow)
			panic("crashed mid write")
		})
	})

	_, err := l.Balances().SelectByID(ctx, 2)
	assert.ErrorIs(t, err, repo.ErrNotFound)
	entries, err := l.Histories().SelectAllByUserID(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLedger_WithTx_rollbackLeavesOtherUsersAlone(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(fixedClock)
	h := l.Histories()

	err := l.WithTx(ctx, func(b repo.Balances, th repo.Histories) error {
		if _, err := th.Insert(ctx, 1, 100, models.KindCharge, fixedNow); err != nil {
			return err
		}
		// another user's entry lands while this unit of work is open
		_, err := h.Insert(ctx, 2, 50, models.KindCharge, fixedNow)
		require.NoError(t, err)
		return errors.New("abort")
	})
	require.Error(t, err)

	one, err := h.SelectAllByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, one)
	two, err := h.SelectAllByUserID(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, two, 1)
}

func TestAuditLogs_Create(t *testing.T) {
	a := NewAuditLogs(fixedClock)

	require.NoError(t, a.Create(context.Background(), models.AuditLog{UserID: 3, Action: "charged"}))

	rows := a.List()
	require.Len(t, rows, 1)
	assert.NotEmpty(t, rows[0].ID)
	assert.Equal(t, fixedNow, rows[0].CreatedAt)
	assert.Equal(t, "charged", rows[0].Action)
}
