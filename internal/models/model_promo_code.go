package models

import (
	"time"

	"github.com/mlyaho/ai-mem-generator/pkg/types"
)

type PromoCode struct {
	ID   string              `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Code string              `gorm:"column:code;type:varchar(64);not null;uniqueIndex" json:"code"`
	Type types.PromoCodeType `gorm:"column:type;type:varchar(32);not null" json:"type"`
	// Value is a percentage for discount codes.
	Value     int64      `gorm:"column:value;type:bigint;not null" json:"value"`
	IsActive  bool       `gorm:"column:is_active;not null;default:true" json:"isActive"`
	ExpiresAt *time.Time `gorm:"column:expires_at;default:null" json:"expiresAt"`
	MaxUses   int64      `gorm:"column:max_uses;type:bigint;not null" json:"maxUses"`
	UsedCount int64      `gorm:"column:used_count;type:bigint;not null;default:0" json:"usedCount"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (PromoCode) TableName() string {
	return "promo_code"
}

func (p *PromoCode) ExpiredAt(now time.Time) bool {
	return p.ExpiresAt != nil && now.After(*p.ExpiresAt)
}

func (p *PromoCode) Exhausted() bool {
	return p.UsedCount >= p.MaxUses
}
