package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mlyaho/ai-mem-generator/internal/models"
	"github.com/mlyaho/ai-mem-generator/internal/platform/payment"
	"github.com/mlyaho/ai-mem-generator/pkg/logctx"
	"github.com/mlyaho/ai-mem-generator/pkg/tool"
	"github.com/mlyaho/ai-mem-generator/pkg/types"
)

type RefundResult struct {
	Payment *models.Payment `json:"payment"`
	// Refunded reports whether the provider already confirmed the refund.
	Refunded bool `json:"refunded"`
}

// RefundPayment asks the provider to refund a succeeded payment. Amount zero refunds it fully.
// The local status moves to refunded once the provider reports it, which for synchronous
// providers happens before this returns.
func (s *Service) RefundPayment(ctx context.Context, paymentID string, amount int64, description string) (*RefundResult, error) {
	pay, err := s.getPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if pay.Status != types.PaymentStatusSucceeded {
		return nil, fmt.Errorf("%w: payment is %s", payment.ErrRefundNotAllowed, pay.Status)
	}
	if amount < 0 || amount > pay.Amount {
		return nil, fmt.Errorf("%w: refund amount %d outside 0..%d", ErrInvalidRequest, amount, pay.Amount)
	}
	provider, err := s.factory.GetProvider(pay.Provider)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := payment.WithTimeout(ctx, s.cfg.Payment.RequestTimeout)
	defer cancel()
	if err := provider.Refund(callCtx, &payment.RefundOptions{
		PaymentID:   pay.ProviderPaymentID,
		Amount:      amount,
		Description: description,
	}); err != nil {
		s.tracker.Capture(ctx, err, map[string]string{"provider": string(pay.Provider), "op": "refund", "payment_id": pay.ID})
		return nil, fmt.Errorf("failed to refund payment at %s: %w", pay.Provider, err)
	}
	logctx.FromCtx(ctx, s.log).Infow("payment_refund_requested", "payment_id", pay.ID, "provider", pay.Provider, "amount", amount)

	synced, err := s.SyncPayment(ctx, pay.ID)
	if err != nil {
		// the refund went through; the webhook will settle the local status
		logctx.FromCtx(ctx, s.log).Warnw("payment_refund_sync_failed", "payment_id", pay.ID, "err", err)
		return &RefundResult{Payment: pay}, nil
	}
	return &RefundResult{Payment: synced.Payment, Refunded: synced.Payment.Status == types.PaymentStatusRefunded}, nil
}

// PaymentNotifications returns the provider notifications recorded for a local payment, oldest first.
func (s *Service) PaymentNotifications(ctx context.Context, paymentID string) ([]*models.PaymentNotificationLog, error) {
	pay, err := s.getPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	logs, err := s.notifications.ListByPayment(ctx, string(pay.Provider), pay.ProviderPaymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment notifications: %w", err)
	}
	return logs, nil
}

// sortablePaymentColumns also bounds the columns admin filters may reference.
var sortablePaymentColumns = []string{"id", "user_id", "amount", "currency", "status", "provider", "provider_payment_id", "created_at", "updated_at"}

type ScanPaymentsRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type ScanPaymentsResponse struct {
	Items []*models.Payment `json:"items"`
	Total int64             `json:"total"`
}

// ScanPayments implements paginated admin listing with filters.
func (s *Service) ScanPayments(ctx context.Context, req *ScanPaymentsRequest) (*ScanPaymentsResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	if req.Size <= 0 {
		req.Size = 10
	}
	if req.Size > 100 {
		req.Size = 100
	}
	if req.From < 0 {
		req.From = 0
	}

	tx := s.db.WithContext(ctx).Model(&models.Payment{})
	if len(req.Filters) > 0 {
		tx = tx.Where(clause.Where{Exprs: []clause.Expression{types.CommonFilters{Filters: req.Filters, Allowed: sortablePaymentColumns}}})
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count payments: %w", err)
	}

	q := tx.Limit(req.Size)
	if req.From > 0 {
		q = q.Offset(req.From)
	}
	sortBy := lo.Ternary(lo.Contains(sortablePaymentColumns, req.SortBy), req.SortBy, "created_at")
	q = q.Order(clause.OrderBy{Columns: []clause.OrderByColumn{
		{Column: clause.Column{Name: sortBy}, Desc: req.SortOrder != "asc"},
		{Column: clause.Column{Name: "id"}, Desc: req.SortOrder != "asc"},
	}})

	var rows []*models.Payment
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return &ScanPaymentsResponse{Items: rows, Total: total}, nil
}

type CreatePromoCodeRequest struct {
	Code string `json:"code" validate:"required,alphanum,max=64" example:"LAUNCH20"`
	// Value is the discount percentage.
	Value     int64      `json:"value" validate:"required,gt=0,lte=100" example:"20"`
	MaxUses   int64      `json:"maxUses" validate:"required,gt=0" example:"100"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

func (s *Service) CreatePromoCode(ctx context.Context, req *CreatePromoCodeRequest) (*models.PromoCode, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: empty request", ErrInvalidRequest)
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	now := s.now()
	promo := &models.PromoCode{
		ID:        tool.GenerateUUIDV7(),
		Code:      strings.ToUpper(req.Code),
		Type:      types.PromoCodeTypeDiscount,
		Value:     req.Value,
		IsActive:  true,
		MaxUses:   req.MaxUses,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.ExpiresAt != nil {
		promo.ExpiresAt = lo.ToPtr(req.ExpiresAt.UTC())
	}

	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoNothing: true,
	}).Create(promo)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to create promo code: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: %s", ErrPromoCodeExists, promo.Code)
	}
	logctx.FromCtx(ctx, s.log).Infow("promo_code_created", "code", promo.Code, "value", promo.Value, "max_uses", promo.MaxUses)
	return promo, nil
}

// DeactivatePromoCode stops a code from applying to new payments.
func (s *Service) DeactivatePromoCode(ctx context.Context, code string) error {
	res := s.db.WithContext(ctx).Model(&models.PromoCode{}).
		Where("code = ?", strings.ToUpper(code)).
		Updates(map[string]any{"is_active": false, "updated_at": s.now()})
	if res.Error != nil {
		return fmt.Errorf("failed to deactivate promo code: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: promo code %s", gorm.ErrRecordNotFound, code)
	}
	return nil
}

// IsNotFound reports errors that should surface as 404.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPaymentNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}
