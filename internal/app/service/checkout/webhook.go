package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/mlyaho/ai-mem-generator/internal/app/service/credit"
	"github.com/mlyaho/ai-mem-generator/internal/app/service/subscription"
	"github.com/mlyaho/ai-mem-generator/internal/models"
	"github.com/mlyaho/ai-mem-generator/internal/platform/payment"
	"github.com/mlyaho/ai-mem-generator/pkg/logctx"
	"github.com/mlyaho/ai-mem-generator/pkg/types"
)

// Outcome reports what a provider status did to the local payment.
type Outcome string

const (
	// OutcomeApplied means the status transition happened (and grants ran for succeeded).
	OutcomeApplied Outcome = "applied"
	// OutcomeDuplicate means the payment was already past the reported status.
	OutcomeDuplicate Outcome = "duplicate"
	// OutcomeIgnored covers pending statuses and events that carry no payment.
	OutcomeIgnored Outcome = "ignored"
	// OutcomeUnknownPayment means no local payment matches the notification.
	OutcomeUnknownPayment Outcome = "unknown_payment"
)

type WebhookResult struct {
	Provider          types.PaymentProvider `json:"provider"`
	ProviderPaymentID string                `json:"providerPaymentId,omitempty"`
	PaymentID         string                `json:"paymentId,omitempty"`
	Status            types.PaymentStatus   `json:"status,omitempty"`
	Outcome           Outcome               `json:"outcome"`
}

// predecessors lists the local statuses each target status may be reached from.
var predecessors = map[types.PaymentStatus][]types.PaymentStatus{
	types.PaymentStatusSucceeded: {types.PaymentStatusPending, types.PaymentStatusFailed},
	types.PaymentStatusFailed:    {types.PaymentStatusPending},
	types.PaymentStatusRefunded:  {types.PaymentStatusSucceeded},
}

// HandleWebhook verifies and applies one provider notification. An empty providerName is
// resolved from the body. Signature failures return before anything is stored; unknown
// payments are acknowledged without error so the provider stops retrying.
func (s *Service) HandleWebhook(ctx context.Context, providerName string, body []byte, signature string) (result *WebhookResult, resErr error) {
	name := types.PaymentProvider(strings.ToLower(strings.TrimSpace(providerName)))
	if name == "" {
		name = payment.DetectProvider(body)
	}
	provider, err := s.factory.GetProvider(name)
	if err != nil {
		return nil, err
	}
	log := logctx.FromCtx(ctx, s.log).With("provider", name)

	wh, err := provider.HandleWebhook(ctx, body, signature)
	if err != nil && !errors.Is(err, payment.ErrPaymentNotFound) {
		s.biz.Webhook(string(name), "rejected")
		log.Warnw("webhook_rejected", "err", err)
		return nil, err
	}

	result = &WebhookResult{Provider: name}
	if wh != nil {
		result.ProviderPaymentID = wh.PaymentID
		result.Status = wh.Status
	}
	data := rawJSON(body)
	s.notifications.Save(ctx, &models.PaymentNotificationLog{
		Provider:          string(name),
		TraceID:           logctx.TraceID(ctx),
		ProviderPaymentID: result.ProviderPaymentID,
		NotificationTime:  s.now(),
		Data:              data,
		Status:            models.PaymentNotificationLogStatusReceived,
		CreatedAt:         s.now(),
		UpdatedAt:         s.now(),
	})
	var userID string
	defer func() {
		resMap := map[string]any{"result": result}
		status := models.PaymentNotificationLogStatusHandled
		outcome := "handled"
		if resErr != nil {
			resMap["error"] = resErr.Error()
			status = models.PaymentNotificationLogStatusHandleFailed
			outcome = "failed"
		} else if result != nil {
			outcome = string(result.Outcome)
		}
		resBytes, _ := json.Marshal(resMap)
		resJSON := datatypes.JSON(resBytes)
		s.notifications.Save(ctx, &models.PaymentNotificationLog{
			Provider:          string(name),
			UserID:            lo.EmptyableToPtr(userID),
			TraceID:           logctx.TraceID(ctx),
			ProviderPaymentID: lo.FromPtr(result).ProviderPaymentID,
			NotificationTime:  s.now(),
			Data:              data,
			Result:            &resJSON,
			Status:            status,
			CreatedAt:         s.now(),
			UpdatedAt:         s.now(),
		})
		s.biz.Webhook(string(name), outcome)
	}()

	if err != nil || wh.PaymentID == "" {
		result.Outcome = lo.Ternary(err != nil, OutcomeUnknownPayment, OutcomeIgnored)
		log.Infow("webhook_acknowledged", "outcome", result.Outcome, "event", lo.FromPtr(wh).Event)
		return result, nil
	}

	var pay models.Payment
	err = s.db.WithContext(ctx).Where("provider = ? AND provider_payment_id = ?", name, wh.PaymentID).First(&pay).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		result.Outcome = OutcomeUnknownPayment
		log.Warnw("webhook_unknown_payment", "provider_payment_id", wh.PaymentID)
		return result, nil
	}
	if err != nil {
		return result, fmt.Errorf("failed to load payment: %w", err)
	}
	userID = pay.UserID
	result.PaymentID = pay.ID

	outcome, err := s.applyStatus(ctx, &pay, wh.Status)
	if err != nil {
		log.Errorw("webhook_handle_failed", "payment_id", pay.ID, "status", wh.Status, "err", err)
		s.tracker.Capture(ctx, err, map[string]string{"provider": string(name), "op": "webhook", "payment_id": pay.ID})
		return result, err
	}
	result.Outcome = outcome
	log.Infow("webhook_handled", "payment_id", pay.ID, "status", wh.Status, "outcome", outcome)
	return result, nil
}

type SyncResult struct {
	Payment *models.Payment     `json:"payment"`
	Remote  types.PaymentStatus `json:"remoteStatus"`
	Outcome Outcome             `json:"outcome"`
}

// SyncPayment polls the provider for a local payment and applies the reported status the same
// way a webhook would.
func (s *Service) SyncPayment(ctx context.Context, paymentID string) (*SyncResult, error) {
	pay, err := s.getPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	provider, err := s.factory.GetProvider(pay.Provider)
	if err != nil {
		return nil, err
	}
	callCtx, cancel := payment.WithTimeout(ctx, s.cfg.Payment.RequestTimeout)
	defer cancel()
	intent, err := provider.GetPaymentStatus(callCtx, pay.ProviderPaymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment status from %s: %w", pay.Provider, err)
	}

	outcome, err := s.applyStatus(ctx, pay, intent.Status)
	if err != nil {
		s.tracker.Capture(ctx, err, map[string]string{"provider": string(pay.Provider), "op": "sync", "payment_id": pay.ID})
		return nil, err
	}
	if pay, err = s.getPayment(ctx, paymentID); err != nil {
		return nil, err
	}
	logctx.FromCtx(ctx, s.log).Infow("payment_synced",
		"payment_id", pay.ID, "remote_status", intent.Status, "status", pay.Status, "outcome", outcome)
	return &SyncResult{Payment: pay, Remote: intent.Status, Outcome: outcome}, nil
}

// applyStatus moves pay to status with a conditional update, so a status is applied at most
// once however often it is delivered. Grants for a succeeded payment run in the same transaction.
func (s *Service) applyStatus(ctx context.Context, pay *models.Payment, status types.PaymentStatus) (Outcome, error) {
	if status == types.PaymentStatusCancelled {
		status = types.PaymentStatusFailed
	}
	allowed, ok := predecessors[status]
	if !ok {
		return OutcomeIgnored, nil
	}

	outcome := OutcomeDuplicate
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Payment{}).
			Where("id = ? AND status IN ?", pay.ID, allowed).
			Updates(map[string]any{"status": status, "updated_at": s.now()})
		if res.Error != nil {
			return fmt.Errorf("failed to update payment status: %w", res.Error)
		}
		if res.RowsAffected != 1 {
			return nil
		}
		outcome = OutcomeApplied
		if status != types.PaymentStatusSucceeded {
			return nil
		}
		return s.grant(ctx, tx, pay)
	})
	if err != nil {
		return "", err
	}
	if outcome == OutcomeApplied {
		pay.Status = status
	}
	return outcome, nil
}

// grant delivers what a succeeded payment bought.
func (s *Service) grant(ctx context.Context, tx *gorm.DB, pay *models.Payment) error {
	meta, err := pay.GetMetadata()
	if err != nil {
		return err
	}
	switch meta.Type {
	case types.PaymentTypeCredits:
		credits, err := strconv.ParseInt(meta.Credits, 10, 64)
		if err != nil || credits <= 0 {
			return fmt.Errorf("%w: credits %q", ErrInvalidMetadata, meta.Credits)
		}
		if _, err := s.ledger.WithTx(tx).AddCredits(ctx, credit.AddCreditsOptions{
			UserID:      pay.UserID,
			Amount:      credits,
			Type:        types.CreditTransactionTypePurchase,
			Description: fmt.Sprintf("Credit purchase (payment %s)", pay.ID),
		}); err != nil {
			return err
		}
	case types.PaymentTypeSubscription:
		if _, err := s.subs.WithTx(tx).CreateSubscription(ctx, subscription.CreateOptions{
			UserID: pay.UserID,
			Plan:   meta.Plan,
		}); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: type %q", ErrInvalidMetadata, meta.Type)
	}

	if meta.PromoCode != "" {
		if err := tx.Model(&models.PromoCode{}).
			Where("code = ?", meta.PromoCode).
			Updates(map[string]any{
				"used_count": gorm.Expr("used_count + 1"),
				"updated_at": s.now(),
			}).Error; err != nil {
			return fmt.Errorf("failed to record promo code use: %w", err)
		}
	}
	return nil
}

func (s *Service) getPayment(ctx context.Context, id string) (*models.Payment, error) {
	var pay models.Payment
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&pay).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrPaymentNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	return &pay, nil
}

// rawJSON keeps a webhook body storable in a JSON column even when it is not JSON.
func rawJSON(body []byte) datatypes.JSON {
	if json.Valid(body) {
		return datatypes.JSON(body)
	}
	b, _ := json.Marshal(string(body))
	return datatypes.JSON(b)
}
