package credit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mlyaho/ai-mem-generator/internal/models"
	"github.com/mlyaho/ai-mem-generator/pkg/logctx"
	"github.com/mlyaho/ai-mem-generator/pkg/metrics"
	"github.com/mlyaho/ai-mem-generator/pkg/tool"
	"github.com/mlyaho/ai-mem-generator/pkg/types"
)

var (
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrInsufficientCredits    = errors.New("insufficient credits")
	ErrInvalidTransactionType = errors.New("invalid credit transaction type")
	ErrSelfReferral           = errors.New("referrer and referee must differ")
	ErrMissingUser            = errors.New("user id required")
	ErrCapReached             = errors.New("transaction cap reached")
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 100

	ReferrerBonus = 50
	RefereeBonus  = 5
)

// Service is the credit ledger. Every balance change appends a CreditTransaction in the same
// DB transaction, so balance always equals the sum of the user's transaction amounts.
type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
	biz *metrics.Business
	now func() time.Time
}

func NewService(db *gorm.DB, log *zap.SugaredLogger, biz *metrics.Business) *Service {
	return &Service{
		db:  db,
		log: log,
		biz: biz,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithTx returns a copy of the ledger bound to tx. Operations on the copy run as nested
// transactions (savepoints) of tx.
func (s *Service) WithTx(tx *gorm.DB) *Service {
	cp := *s
	cp.db = tx
	return &cp
}

type AddCreditsOptions struct {
	UserID      string
	Amount      int64
	Type        types.CreditTransactionType
	Description string
}

type SpendCreditsOptions struct {
	UserID      string
	Amount      int64
	Type        types.CreditTransactionType
	Description string
	// Cap, when positive, limits the user's Type transactions created at or after CapSince.
	// It is counted under the balance row lock.
	Cap      int64
	CapSince time.Time
}

// GetBalance returns the user's balance, creating an empty one on first access.
func (s *Service) GetBalance(ctx context.Context, userID string) (*models.CreditBalance, error) {
	if err := s.ensureBalance(s.db.WithContext(ctx), userID); err != nil {
		return nil, err
	}
	var bal models.CreditBalance
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&bal).Error; err != nil {
		return nil, fmt.Errorf("failed to get credit balance: %w", err)
	}
	return &bal, nil
}

func (s *Service) AddCredits(ctx context.Context, opts AddCreditsOptions) (*models.CreditBalance, error) {
	if opts.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if !opts.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTransactionType, opts.Type)
	}

	var bal models.CreditBalance
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.lockBalance(tx, opts.UserID, &bal); err != nil {
			return err
		}
		if err := tx.Model(&models.CreditBalance{}).
			Where("user_id = ?", opts.UserID).
			Updates(map[string]any{
				"balance":    gorm.Expr("balance + ?", opts.Amount),
				"lifetime":   gorm.Expr("lifetime + ?", opts.Amount),
				"updated_at": s.now(),
			}).Error; err != nil {
			return fmt.Errorf("failed to credit balance: %w", err)
		}
		bal.Balance += opts.Amount
		bal.Lifetime += opts.Amount
		return s.appendTransaction(tx, opts.UserID, opts.Amount, opts.Type, opts.Description, bal.Balance)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add credits: %w", err)
	}

	s.biz.Credits(string(opts.Type), opts.Amount)
	logctx.FromCtx(ctx, s.log).Infow("credits_added",
		"user_id", opts.UserID, "amount", opts.Amount, "type", opts.Type, "balance", bal.Balance)
	return &bal, nil
}

func (s *Service) SpendCredits(ctx context.Context, opts SpendCreditsOptions) (*models.CreditBalance, error) {
	if opts.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if !opts.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTransactionType, opts.Type)
	}

	var bal models.CreditBalance
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.lockBalance(tx, opts.UserID, &bal); err != nil {
			return err
		}
		if bal.Balance < opts.Amount {
			return ErrInsufficientCredits
		}
		if opts.Cap > 0 {
			n, err := countSince(tx, opts.UserID, opts.Type, opts.CapSince)
			if err != nil {
				return err
			}
			if n >= opts.Cap {
				return ErrCapReached
			}
		}
		// The guard on balance keeps the row non-negative even where the store ignores FOR UPDATE.
		res := tx.Model(&models.CreditBalance{}).
			Where("user_id = ? AND balance >= ?", opts.UserID, opts.Amount).
			Updates(map[string]any{
				"balance":    gorm.Expr("balance - ?", opts.Amount),
				"updated_at": s.now(),
			})
		if res.Error != nil {
			return fmt.Errorf("failed to debit balance: %w", res.Error)
		}
		if res.RowsAffected != 1 {
			return ErrInsufficientCredits
		}
		if err := tx.Where("user_id = ?", opts.UserID).First(&bal).Error; err != nil {
			return fmt.Errorf("failed to reload credit balance: %w", err)
		}
		return s.appendTransaction(tx, opts.UserID, -opts.Amount, opts.Type, opts.Description, bal.Balance)
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientCredits) || errors.Is(err, ErrCapReached) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to spend credits: %w", err)
	}

	s.biz.Credits(string(opts.Type), -opts.Amount)
	logctx.FromCtx(ctx, s.log).Infow("credits_spent",
		"user_id", opts.UserID, "amount", opts.Amount, "type", opts.Type, "balance", bal.Balance)
	return &bal, nil
}

// RefundCredits returns credits to the user. transactionID, when set, is recorded in the description.
func (s *Service) RefundCredits(ctx context.Context, userID string, amount int64, description, transactionID string) (*models.CreditBalance, error) {
	if transactionID != "" {
		description = fmt.Sprintf("refund for transaction %s: %s", transactionID, description)
	}
	return s.AddCredits(ctx, AddCreditsOptions{
		UserID:      userID,
		Amount:      amount,
		Type:        types.CreditTransactionTypeRefund,
		Description: description,
	})
}

func (s *Service) HasEnoughCredits(ctx context.Context, userID string, amount int64) (bool, error) {
	var bal models.CreditBalance
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&bal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return amount <= 0, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get credit balance: %w", err)
	}
	return bal.Balance >= amount, nil
}

// GetTransactionHistory pages the user's ledger, newest first. limit defaults to 50 and is capped at 100.
func (s *Service) GetTransactionHistory(ctx context.Context, userID string, limit, offset int) ([]*models.CreditTransaction, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}
	var txs []*models.CreditTransaction
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").Order("id desc").
		Limit(limit).Offset(offset).
		Find(&txs).Error; err != nil {
		return nil, fmt.Errorf("failed to get transaction history: %w", err)
	}
	return txs, nil
}

func (s *Service) CountTransactions(ctx context.Context, userID string) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.CreditTransaction{}).
		Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return n, nil
}

// CountTransactionsSince counts the user's ledger entries of txType created at or after since.
func (s *Service) CountTransactionsSince(ctx context.Context, userID string, txType types.CreditTransactionType, since time.Time) (int64, error) {
	return countSince(s.db.WithContext(ctx), userID, txType, since)
}

func countSince(db *gorm.DB, userID string, txType types.CreditTransactionType, since time.Time) (int64, error) {
	var n int64
	if err := db.Model(&models.CreditTransaction{}).
		Where("user_id = ? AND type = ? AND created_at >= ?", userID, txType, since.UTC()).
		Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count %s transactions: %w", txType, err)
	}
	return n, nil
}

// AwardReferralBonus credits both sides of a referral atomically.
func (s *Service) AwardReferralBonus(ctx context.Context, referrerID, refereeID string) error {
	if referrerID == "" || refereeID == "" {
		return fmt.Errorf("%w: referrer and referee", ErrMissingUser)
	}
	if referrerID == refereeID {
		return ErrSelfReferral
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ledger := s.WithTx(tx)
		if _, err := ledger.AddCredits(ctx, AddCreditsOptions{
			UserID:      referrerID,
			Amount:      ReferrerBonus,
			Type:        types.CreditTransactionTypeReferral,
			Description: "Bonus for an invited friend",
		}); err != nil {
			return err
		}
		_, err := ledger.AddCredits(ctx, AddCreditsOptions{
			UserID:      refereeID,
			Amount:      RefereeBonus,
			Type:        types.CreditTransactionTypeBonus,
			Description: "Welcome bonus",
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to award referral bonus: %w", err)
	}
	return nil
}

func (s *Service) ensureBalance(tx *gorm.DB, userID string) error {
	now := s.now()
	row := &models.CreditBalance{
		ID:        tool.GenerateUUIDV7(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(row).Error; err != nil {
		return fmt.Errorf("failed to ensure credit balance: %w", err)
	}
	return nil
}

func (s *Service) lockBalance(tx *gorm.DB, userID string, out *models.CreditBalance) error {
	if err := s.ensureBalance(tx, userID); err != nil {
		return err
	}
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(out).Error; err != nil {
		return fmt.Errorf("failed to lock credit balance: %w", err)
	}
	return nil
}

func (s *Service) appendTransaction(tx *gorm.DB, userID string, amount int64, txType types.CreditTransactionType, description string, balanceAfter int64) error {
	row := &models.CreditTransaction{
		ID:           tool.GenerateUUIDV7(),
		UserID:       userID,
		Amount:       amount,
		Type:         txType,
		Description:  description,
		BalanceAfter: balanceAfter,
		CreatedAt:    s.now(),
	}
	if err := tx.Create(row).Error; err != nil {
		return fmt.Errorf("failed to record credit transaction: %w", err)
	}
	return nil
}
