package checkout

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mlyaho/ai-mem-generator/internal/app/service/credit"
	"github.com/mlyaho/ai-mem-generator/internal/app/service/notification_log"
	"github.com/mlyaho/ai-mem-generator/internal/app/service/subscription"
	"github.com/mlyaho/ai-mem-generator/internal/models"
	"github.com/mlyaho/ai-mem-generator/internal/platform/payment"
	"github.com/mlyaho/ai-mem-generator/pkg/config"
	"github.com/mlyaho/ai-mem-generator/pkg/errtrack"
	"github.com/mlyaho/ai-mem-generator/pkg/logctx"
	"github.com/mlyaho/ai-mem-generator/pkg/metrics"
	"github.com/mlyaho/ai-mem-generator/pkg/tool"
	"github.com/mlyaho/ai-mem-generator/pkg/types"
)

var (
	ErrInvalidRequest    = errors.New("invalid payment request")
	ErrUnknownCreditPack = errors.New("unknown credit pack")
	ErrPromoExpired      = errors.New("promo code expired")
	ErrPromoExhausted    = errors.New("promo code usage limit reached")
	ErrPromoCodeExists   = errors.New("promo code already exists")
	ErrPaymentNotFound   = errors.New("payment not found")
	ErrInvalidMetadata   = errors.New("invalid payment metadata")
)

const defaultCurrency = "RUB"

// Service turns purchase requests into provider payments and reconciles provider
// notifications into credit grants and subscription changes.
type Service struct {
	db            *gorm.DB
	log           *zap.SugaredLogger
	cfg           *config.Config
	factory       *payment.Factory
	ledger        *credit.Service
	subs          *subscription.Service
	notifications *notification_log.Service
	biz           *metrics.Business
	tracker       *errtrack.Tracker
	validate      *validator.Validate
	now           func() time.Time
}

// Deps are the collaborators of Service; fx fills them by type.
type Deps struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.SugaredLogger
	Config        *config.Config
	Factory       *payment.Factory
	Ledger        *credit.Service
	Subscriptions *subscription.Service
	Notifications *notification_log.Service
	Business      *metrics.Business `optional:"true"`
	Tracker       *errtrack.Tracker `optional:"true"`
}

func NewService(d Deps) *Service {
	return &Service{
		db:            d.DB,
		log:           d.Log,
		cfg:           d.Config,
		factory:       d.Factory,
		ledger:        d.Ledger,
		subs:          d.Subscriptions,
		notifications: d.Notifications,
		biz:           d.Business,
		tracker:       d.Tracker,
		validate:      validator.New(),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

type CreatePaymentRequest struct {
	Type types.PaymentType `json:"type" validate:"required,oneof=credits subscription" example:"credits"`
	// Amount is the credit pack size for credit purchases.
	Amount    int64                 `json:"amount,omitempty" validate:"required_if=Type credits,gte=0" example:"50"`
	Plan      types.Plan            `json:"plan,omitempty" validate:"required_if=Type subscription,omitempty,oneof=premium pro" example:"premium"`
	Provider  types.PaymentProvider `json:"provider,omitempty" validate:"omitempty,oneof=yookassa stripe mock" example:"mock"`
	PromoCode string                `json:"promoCode,omitempty" validate:"omitempty,max=64"`
}

type CreatePaymentResponse struct {
	// ID is the local payment id, PaymentID the provider's.
	ID               string         `json:"id"`
	PaymentID        string         `json:"paymentId"`
	ConfirmationURL  string         `json:"confirmationUrl,omitempty"`
	ConfirmationData map[string]any `json:"confirmationData,omitempty"`
	Amount           int64          `json:"amount"`
	Currency         string         `json:"currency"`
}

// CreatePayment prices the request, applies a promo code, opens the payment at the provider and
// records it locally as pending. Nothing is stored when the provider call fails.
func (s *Service) CreatePayment(ctx context.Context, userID string, req *CreatePaymentRequest) (*CreatePaymentResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: empty request", ErrInvalidRequest)
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	log := logctx.FromCtx(ctx, s.log)

	amount, description, meta, err := s.price(req)
	if err != nil {
		return nil, err
	}
	if req.PromoCode != "" {
		amount, err = s.applyPromo(ctx, req.PromoCode, amount, meta)
		if err != nil {
			return nil, err
		}
	}

	provider, err := s.factory.GetProvider(req.Provider)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	currency := s.currency()

	callCtx, cancel := payment.WithTimeout(ctx, s.cfg.Payment.RequestTimeout)
	defer cancel()
	res, err := provider.CreatePayment(callCtx, &payment.CreatePaymentOptions{
		Amount:      amount,
		Currency:    currency,
		Description: description,
		UserID:      userID,
		Metadata:    meta.Map(),
		ReturnURL:   s.cfg.Payment.ReturnURL,
	})
	if err != nil {
		log.Errorw("provider_create_payment_failed", "provider", provider.Name(), "amount", amount, "err", err)
		s.tracker.Capture(ctx, err, map[string]string{"provider": string(provider.Name()), "op": "create_payment"})
		return nil, fmt.Errorf("failed to create payment at %s: %w", provider.Name(), err)
	}

	now := s.now()
	row := &models.Payment{
		ID:                tool.GenerateUUIDV7(),
		UserID:            userID,
		Amount:            amount,
		Currency:          currency,
		Status:            types.PaymentStatusPending,
		Provider:          provider.Name(),
		ProviderPaymentID: res.PaymentID,
		Description:       description,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := row.SetMetadata(meta); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		// the provider holds a payment we have no record of; the webhook for it will be acknowledged as unknown
		log.Errorw("payment_record_failed", "provider", provider.Name(), "provider_payment_id", res.PaymentID, "err", err)
		s.tracker.Capture(ctx, err, map[string]string{"provider": string(provider.Name()), "op": "record_payment"})
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}

	s.biz.PaymentCreated(string(provider.Name()), string(meta.Type))
	log.Infow("payment_created",
		"payment_id", row.ID, "provider", provider.Name(), "provider_payment_id", res.PaymentID,
		"type", meta.Type, "amount", amount, "promo_code", meta.PromoCode)
	return &CreatePaymentResponse{
		ID:               row.ID,
		PaymentID:        res.PaymentID,
		ConfirmationURL:  res.ConfirmationURL,
		ConfirmationData: res.ConfirmationData,
		Amount:           amount,
		Currency:         currency,
	}, nil
}

func (s *Service) price(req *CreatePaymentRequest) (int64, string, *models.PaymentMetadata, error) {
	switch req.Type {
	case types.PaymentTypeCredits:
		price, ok := credit.GetCreditPackPrice(req.Amount)
		if !ok {
			return 0, "", nil, fmt.Errorf("%w: %d", ErrUnknownCreditPack, req.Amount)
		}
		return price * 100,
			fmt.Sprintf("Purchase of %d credits", req.Amount),
			&models.PaymentMetadata{Type: types.PaymentTypeCredits, Credits: strconv.FormatInt(req.Amount, 10)},
			nil
	case types.PaymentTypeSubscription:
		return subscription.GetPlanPrice(req.Plan) * 100,
			fmt.Sprintf("Subscription %s for 30 days", req.Plan),
			&models.PaymentMetadata{Type: types.PaymentTypeSubscription, Plan: req.Plan},
			nil
	}
	return 0, "", nil, fmt.Errorf("%w: unsupported type %q", ErrInvalidRequest, req.Type)
}

// applyPromo discounts amount by an active discount code. Unknown and inactive codes are ignored.
func (s *Service) applyPromo(ctx context.Context, code string, amount int64, meta *models.PaymentMetadata) (int64, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	var promo models.PromoCode
	err := s.db.WithContext(ctx).Where("code = ?", code).First(&promo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		logctx.FromCtx(ctx, s.log).Infow("promo_code_ignored", "code", code, "reason", "not_found")
		return amount, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load promo code: %w", err)
	}
	if !promo.IsActive {
		logctx.FromCtx(ctx, s.log).Infow("promo_code_ignored", "code", code, "reason", "inactive")
		return amount, nil
	}
	if promo.ExpiredAt(s.now()) {
		return 0, ErrPromoExpired
	}
	if promo.Exhausted() {
		return 0, ErrPromoExhausted
	}
	if promo.Type != types.PromoCodeTypeDiscount {
		return amount, nil
	}

	discount := min(max(promo.Value, 0), 100)
	meta.PromoCode = code
	meta.Discount = strconv.FormatInt(discount, 10)
	return discountedAmount(amount, discount), nil
}

// discountedAmount rounds half up, matching Math.round on non-negative amounts.
func discountedAmount(amount, percent int64) int64 {
	return (amount*(100-percent) + 50) / 100
}

func (s *Service) currency() string {
	if c := strings.TrimSpace(s.cfg.Payment.Currency); c != "" {
		return strings.ToUpper(c)
	}
	return defaultCurrency
}
