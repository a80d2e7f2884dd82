package models

import (
	"time"

	"gorm.io/datatypes"
)

type PaymentNotificationLogStatus string

const (
	PaymentNotificationLogStatusReceived     PaymentNotificationLogStatus = "received"
	PaymentNotificationLogStatusHandled      PaymentNotificationLogStatus = "handled"
	PaymentNotificationLogStatusHandleFailed PaymentNotificationLogStatus = "handle_failed"
)

// PaymentNotificationLog audits each webhook delivery: one row when it arrives and one
// with the outcome.
type PaymentNotificationLog struct {
	ID                string                       `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Provider          string                       `gorm:"column:provider;type:varchar(32);not null" json:"provider"`
	UserID            *string                      `gorm:"column:user_id;type:varchar(64)" json:"userId"`
	TraceID           string                       `gorm:"column:trace_id;type:varchar(128)" json:"traceId"`
	ProviderPaymentID string                       `gorm:"column:provider_payment_id;type:varchar(128);index" json:"providerPaymentId"`
	NotificationTime  time.Time                    `gorm:"column:notification_time" json:"notificationTime"`
	Data              datatypes.JSON               `gorm:"column:data;type:jsonb" json:"data"`
	Result            *datatypes.JSON              `gorm:"column:result;type:jsonb" json:"result"`
	Status            PaymentNotificationLogStatus `gorm:"column:status;type:varchar(64);not null" json:"status"`
	CreatedAt         time.Time                    `json:"createdAt"`
	UpdatedAt         time.Time                    `json:"updatedAt"`
}

func (PaymentNotificationLog) TableName() string { return "payment_notification_log" }
