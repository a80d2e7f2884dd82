package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mlyaho/ai-mem-generator/pkg/types"
)

// Payment mirrors one provider-side payment intent. Rows are created pending once the
// provider accepted the intent and move to a terminal status only via reconciliation.
type Payment struct {
	ID                string                `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID            string                `gorm:"column:user_id;type:varchar(64);not null;index" json:"userId"`
	Amount            int64                 `gorm:"column:amount;type:bigint;not null" json:"amount"`
	Currency          string                `gorm:"column:currency;type:varchar(8);not null" json:"currency"`
	Status            types.PaymentStatus   `gorm:"column:status;type:varchar(32);not null;index" json:"status"`
	Provider          types.PaymentProvider `gorm:"column:provider;type:varchar(32);not null;uniqueIndex:uniq_payment_provider_id,priority:1" json:"provider"`
	ProviderPaymentID string                `gorm:"column:provider_payment_id;type:varchar(128);not null;uniqueIndex:uniq_payment_provider_id,priority:2" json:"providerPaymentId"`
	Description       string                `gorm:"column:description;type:varchar(512)" json:"description"`
	// Metadata is the serialized PaymentMetadata.
	Metadata  string    `gorm:"column:metadata;type:text" json:"metadata"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Payment) TableName() string {
	return "payment"
}

// PaymentMetadata is the intent carried by a payment. All values are strings on the wire:
// {"type":"credits","credits":"50"} or {"type":"subscription","plan":"pro","promoCode":"X","discount":"10"}.
type PaymentMetadata struct {
	Type      types.PaymentType `json:"type"`
	Credits   string            `json:"credits,omitempty"`
	Plan      types.Plan        `json:"plan,omitempty"`
	PromoCode string            `json:"promoCode,omitempty"`
	Discount  string            `json:"discount,omitempty"`
}

// Map flattens the metadata for providers, which only accept string maps.
func (m *PaymentMetadata) Map() map[string]string {
	out := map[string]string{"type": string(m.Type)}
	if m.Credits != "" {
		out["credits"] = m.Credits
	}
	if m.Plan != "" {
		out["plan"] = string(m.Plan)
	}
	if m.PromoCode != "" {
		out["promoCode"] = m.PromoCode
	}
	if m.Discount != "" {
		out["discount"] = m.Discount
	}
	return out
}

func (p *Payment) SetMetadata(m *PaymentMetadata) error {
	b, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal payment metadata: %w", err)
	}
	p.Metadata = string(b)
	return nil
}

func (p *Payment) GetMetadata() (*PaymentMetadata, error) {
	var m PaymentMetadata
	if p.Metadata == "" {
		return &m, nil
	}
	if err := json.Unmarshal([]byte(p.Metadata), &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payment metadata: %w", err)
	}
	return &m, nil
}
