package notification_log

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/mlyaho/ai-mem-generator/internal/models"
	"github.com/mlyaho/ai-mem-generator/internal/platform/db/dbtest"
)

func TestSaveAndList(t *testing.T) {
	s := New(dbtest.New(t), zap.NewNop().Sugar())
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	entries := []*models.PaymentNotificationLog{
		{Provider: "mock", ProviderPaymentID: "p1", Status: models.PaymentNotificationLogStatusReceived, Data: datatypes.JSON(`{"n":1}`), CreatedAt: base},
		{Provider: "mock", ProviderPaymentID: "p1", Status: models.PaymentNotificationLogStatusHandled, Data: datatypes.JSON(`{"n":1}`), CreatedAt: base.Add(time.Second)},
		{Provider: "stripe", ProviderPaymentID: "p1", Status: models.PaymentNotificationLogStatusReceived, Data: datatypes.JSON(`{}`), CreatedAt: base},
	}
	for _, e := range entries {
		s.Save(ctx, e)
	}
	s.Save(ctx, nil)
	s.Wait()

	got, err := s.ListByPayment(ctx, "mock", "p1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, models.PaymentNotificationLogStatusReceived, got[0].Status)
	assert.Equal(t, models.PaymentNotificationLogStatusHandled, got[1].Status)
	assert.NotEmpty(t, got[0].ID)
	assert.JSONEq(t, `{"n":1}`, string(got[0].Data))

	none, err := s.ListByPayment(ctx, "mock", "p2")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSaveAssignsDistinctIDs(t *testing.T) {
	s := New(dbtest.New(t), zap.NewNop().Sugar())
	entry := &models.PaymentNotificationLog{Provider: "mock", ProviderPaymentID: "p1", Status: models.PaymentNotificationLogStatusReceived, Data: datatypes.JSON(`{}`)}
	s.Save(context.Background(), entry)
	entry.ID = ""
	s.Save(context.Background(), entry)
	s.Wait()

	got, err := s.ListByPayment(context.Background(), "mock", "p1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.NotEqual(t, got[0].ID, got[1].ID)
}
