package subscription

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mlyaho/ai-mem-generator/internal/models"
	"github.com/mlyaho/ai-mem-generator/internal/platform/db/dbtest"
	"github.com/mlyaho/ai-mem-generator/pkg/types"
)

type stubCounter struct {
	used  int64
	err   error
	since time.Time
}

func (c *stubCounter) CountTransactionsSince(_ context.Context, _ string, txType types.CreditTransactionType, since time.Time) (int64, error) {
	if txType != types.CreditTransactionTypeGeneration {
		return 0, errors.New("unexpected transaction type")
	}
	c.since = since
	return c.used, c.err
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestService(t *testing.T) (*Service, *gorm.DB, *clock, *stubCounter) {
	t.Helper()
	gdb := dbtest.New(t)
	counter := &stubCounter{}
	s := NewService(gdb, zap.NewNop().Sugar(), counter)
	c := &clock{t: time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)}
	s.now = c.now
	return s, gdb, c, counter
}

func countLogs(t *testing.T, gdb *gorm.DB, userID string, reason types.SubscriptionChangeReason) int64 {
	t.Helper()
	var n int64
	require.NoError(t, gdb.Model(&models.SubscriptionLog{}).Where("user_id = ? AND reason = ?", userID, reason).Count(&n).Error)
	return n
}

func TestGetSubscriptionDefaultsToFree(t *testing.T) {
	s, gdb, _, _ := newTestService(t)

	sub, err := s.GetSubscription(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, types.PlanFree, sub.Plan)
	assert.Equal(t, types.SubscriptionStatusActive, sub.Status)
	assert.Nil(t, sub.CurrentPeriodEnd)

	again, err := s.GetSubscription(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, sub.ID, again.ID)
	assert.Equal(t, int64(1), countLogs(t, gdb, "u1", types.SubscriptionChangeReasonCreate))
}

func TestCreateSubscription(t *testing.T) {
	s, gdb, c, _ := newTestService(t)

	sub, err := s.CreateSubscription(context.Background(), CreateOptions{UserID: "u1", Plan: types.PlanPremium})
	require.NoError(t, err)
	assert.Equal(t, types.PlanPremium, sub.Plan)
	assert.Equal(t, types.SubscriptionStatusActive, sub.Status)
	require.NotNil(t, sub.CurrentPeriodEnd)
	assert.True(t, sub.CurrentPeriodEnd.Equal(c.t.AddDate(0, 0, 30)))

	trial, err := s.CreateSubscription(context.Background(), CreateOptions{UserID: "u2", Plan: types.PlanPro, TrialDays: 7})
	require.NoError(t, err)
	assert.Equal(t, types.SubscriptionStatusTrialing, trial.Status)
	assert.True(t, trial.CurrentPeriodEnd.Equal(c.t.AddDate(0, 0, 7)))

	_, err = s.CreateSubscription(context.Background(), CreateOptions{UserID: "u3", Plan: "platinum"})
	require.ErrorIs(t, err, ErrUnknownPlan)

	assert.Equal(t, int64(1), countLogs(t, gdb, "u1", types.SubscriptionChangeReasonCreate))
}

func TestCreateSubscriptionResetsCancellation(t *testing.T) {
	s, _, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.CreateSubscription(ctx, CreateOptions{UserID: "u1", Plan: types.PlanPremium})
	require.NoError(t, err)
	cancelled, err := s.CancelSubscription(ctx, "u1", false)
	require.NoError(t, err)
	require.True(t, cancelled.CancelAtPeriodEnd)

	sub, err := s.CreateSubscription(ctx, CreateOptions{UserID: "u1", Plan: types.PlanPro})
	require.NoError(t, err)
	assert.Equal(t, types.PlanPro, sub.Plan)
	assert.False(t, sub.CancelAtPeriodEnd)
	assert.Nil(t, sub.CancelledAt)
}

func TestGetSubscriptionExpiresLapsedPlan(t *testing.T) {
	s, gdb, c, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.CreateSubscription(ctx, CreateOptions{UserID: "u1", Plan: types.PlanPremium})
	require.NoError(t, err)

	c.t = c.t.AddDate(0, 0, 31)
	sub, err := s.GetSubscription(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, types.PlanFree, sub.Plan)
	assert.Equal(t, types.SubscriptionStatusExpired, sub.Status)
	assert.Nil(t, sub.CurrentPeriodEnd)

	again, err := s.GetSubscription(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, types.PlanFree, again.Plan)
	assert.Equal(t, types.SubscriptionStatusExpired, again.Status)
	assert.Nil(t, again.CurrentPeriodEnd)
	assert.Equal(t, int64(1), countLogs(t, gdb, "u1", types.SubscriptionChangeReasonExpire))

	var entry models.SubscriptionLog
	require.NoError(t, gdb.Where("user_id = ? AND reason = ?", "u1", types.SubscriptionChangeReasonExpire).First(&entry).Error)
	require.NotNil(t, entry.Before.Data())
	require.NotNil(t, entry.After.Data())
	assert.NotNil(t, entry.Before.Data().CurrentPeriodEnd)
	assert.Nil(t, entry.After.Data().CurrentPeriodEnd)
	assert.Equal(t, types.PlanFree, entry.After.Data().Plan)
}

func TestTrialIsNotExpiredByRead(t *testing.T) {
	s, _, c, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.CreateSubscription(ctx, CreateOptions{UserID: "u1", Plan: types.PlanPro, TrialDays: 3})
	require.NoError(t, err)
	c.t = c.t.AddDate(0, 0, 4)

	sub, err := s.GetSubscription(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, types.SubscriptionStatusTrialing, sub.Status)

	ok, err := s.HasActiveSubscription(ctx, "u1", "")
	require.NoError(t, err)
	assert.False(t, ok, "a trial past its end grants nothing")
}

func TestUpdateSubscription(t *testing.T) {
	s, _, c, _ := newTestService(t)
	ctx := context.Background()
	_, err := s.CreateSubscription(ctx, CreateOptions{UserID: "u1", Plan: types.PlanPremium})
	require.NoError(t, err)

	c.t = c.t.AddDate(0, 0, 10)
	pro := types.PlanPro
	sub, err := s.UpdateSubscription(ctx, "u1", UpdateOptions{Plan: &pro})
	require.NoError(t, err)
	assert.Equal(t, types.PlanPro, sub.Plan)
	assert.True(t, sub.CurrentPeriodEnd.Equal(c.t.AddDate(0, 0, 30)))

	yes := true
	sub, err = s.UpdateSubscription(ctx, "u1", UpdateOptions{CancelAtPeriodEnd: &yes})
	require.NoError(t, err)
	assert.True(t, sub.CancelAtPeriodEnd)
	require.NotNil(t, sub.CancelledAt)

	bad := types.Plan("gold")
	_, err = s.UpdateSubscription(ctx, "u1", UpdateOptions{Plan: &bad})
	require.ErrorIs(t, err, ErrUnknownPlan)
	badStatus := types.SubscriptionStatus("paused")
	_, err = s.UpdateSubscription(ctx, "u1", UpdateOptions{Status: &badStatus})
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestCancelSubscription(t *testing.T) {
	cases := []struct {
		name      string
		immediate bool
	}{
		{"at period end", false},
		{"immediately", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, gdb, c, _ := newTestService(t)
			ctx := context.Background()
			created, err := s.CreateSubscription(ctx, CreateOptions{UserID: "u1", Plan: types.PlanPremium})
			require.NoError(t, err)

			sub, err := s.CancelSubscription(ctx, "u1", tc.immediate)
			require.NoError(t, err)
			require.NotNil(t, sub.CancelledAt)
			assert.True(t, sub.CancelledAt.Equal(c.t))
			if tc.immediate {
				assert.Equal(t, types.SubscriptionStatusCancelled, sub.Status)
				assert.False(t, sub.CancelAtPeriodEnd)
				assert.True(t, sub.CurrentPeriodEnd.Equal(c.t))
			} else {
				assert.Equal(t, types.SubscriptionStatusActive, sub.Status)
				assert.True(t, sub.CancelAtPeriodEnd)
				assert.True(t, sub.CurrentPeriodEnd.Equal(*created.CurrentPeriodEnd))
			}
			assert.Equal(t, int64(1), countLogs(t, gdb, "u1", types.SubscriptionChangeReasonCancel))
		})
	}
}

func TestCancelFreeSubscription(t *testing.T) {
	s, _, _, _ := newTestService(t)
	_, err := s.CancelSubscription(context.Background(), "u1", true)
	require.ErrorIs(t, err, ErrNoActiveSubscription)
	_, err = s.RenewSubscription(context.Background(), "u1")
	require.ErrorIs(t, err, ErrNoActiveSubscription)
}

func TestRenewSubscription(t *testing.T) {
	s, _, c, _ := newTestService(t)
	ctx := context.Background()
	_, err := s.CreateSubscription(ctx, CreateOptions{UserID: "u1", Plan: types.PlanPro})
	require.NoError(t, err)
	_, err = s.CancelSubscription(ctx, "u1", true)
	require.NoError(t, err)

	c.t = c.t.Add(time.Hour)
	sub, err := s.RenewSubscription(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, types.SubscriptionStatusActive, sub.Status)
	assert.Equal(t, types.PlanPro, sub.Plan)
	assert.True(t, sub.CurrentPeriodEnd.Equal(c.t.AddDate(0, 0, 30)))
	assert.False(t, sub.CancelAtPeriodEnd)
	assert.Nil(t, sub.CancelledAt)
}

func TestHasActiveSubscription(t *testing.T) {
	s, _, _, _ := newTestService(t)
	ctx := context.Background()
	_, err := s.CreateSubscription(ctx, CreateOptions{UserID: "premium", Plan: types.PlanPremium})
	require.NoError(t, err)

	cases := []struct {
		user string
		plan types.Plan
		want bool
	}{
		{"premium", "", true},
		{"premium", types.PlanFree, true},
		{"premium", types.PlanPremium, true},
		{"premium", types.PlanPro, false},
		{"nobody", "", true},
		{"nobody", types.PlanPremium, false},
	}
	for _, tc := range cases {
		got, err := s.HasActiveSubscription(ctx, tc.user, tc.plan)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "%s >= %q", tc.user, tc.plan)
	}

	_, err = s.CancelSubscription(ctx, "premium", true)
	require.NoError(t, err)
	got, err := s.HasActiveSubscription(ctx, "premium", "")
	require.NoError(t, err)
	assert.False(t, got)
}

func TestCheckGenerationLimit(t *testing.T) {
	s, _, c, counter := newTestService(t)
	ctx := context.Background()

	counter.used = 2
	lim, err := s.CheckGenerationLimit(ctx, "free")
	require.NoError(t, err)
	assert.True(t, lim.Allowed)
	assert.Equal(t, int64(1), lim.Remaining)
	assert.Equal(t, time.Date(2026, 5, 11, 0, 0, 0, 0, time.UTC), lim.ResetAt)
	assert.Equal(t, time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC), counter.since)

	counter.used = 5
	lim, err = s.CheckGenerationLimit(ctx, "free")
	require.NoError(t, err)
	assert.False(t, lim.Allowed)
	assert.Equal(t, int64(0), lim.Remaining)

	_, err = s.CreateSubscription(ctx, CreateOptions{UserID: "pro", Plan: types.PlanPro})
	require.NoError(t, err)
	lim, err = s.CheckGenerationLimit(ctx, "pro")
	require.NoError(t, err)
	assert.True(t, lim.Allowed)
	assert.Equal(t, Unlimited, lim.Remaining)

	_, err = s.CreateSubscription(ctx, CreateOptions{UserID: "premium", Plan: types.PlanPremium})
	require.NoError(t, err)
	counter.used = 49
	lim, err = s.CheckGenerationLimit(ctx, "premium")
	require.NoError(t, err)
	assert.Equal(t, int64(1), lim.Remaining)

	c.t = c.t.AddDate(0, 0, 1)
	counter.err = errors.New("db down")
	_, err = s.CheckGenerationLimit(ctx, "premium")
	require.Error(t, err)
}

func TestWithTxParticipatesInOuterTransaction(t *testing.T) {
	s, gdb, _, _ := newTestService(t)
	boom := errors.New("boom")

	err := gdb.Transaction(func(tx *gorm.DB) error {
		if _, err := s.WithTx(tx).CreateSubscription(context.Background(), CreateOptions{UserID: "u1", Plan: types.PlanPro}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	sub, err := s.GetSubscription(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, types.PlanFree, sub.Plan)
}

func TestPlanTables(t *testing.T) {
	assert.Equal(t, int64(3), GetPlanLimits(types.PlanFree).AIGenerationsPerDay)
	assert.True(t, GetPlanLimits(types.PlanFree).Watermark)
	assert.Equal(t, Unlimited, GetPlanLimits(types.PlanPremium).SavedMemes)
	assert.Equal(t, 2048, GetPlanLimits(types.PlanPro).MaxResolution)
	assert.Equal(t, "vip", GetPlanLimits(types.PlanPro).Priority)
	assert.Equal(t, GetPlanLimits(types.PlanFree), GetPlanLimits("unknown"))

	assert.Equal(t, int64(0), GetPlanPrice(types.PlanFree))
	assert.Equal(t, int64(299), GetPlanPrice(types.PlanPremium))
	assert.Equal(t, int64(599), GetPlanPrice(types.PlanPro))
}
