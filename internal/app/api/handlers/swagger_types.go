package handlers

import (
	"github.com/mlyaho/ai-mem-generator/internal/app/service/checkout"
	"github.com/mlyaho/ai-mem-generator/internal/app/service/credit"
	"github.com/mlyaho/ai-mem-generator/internal/app/service/monetization"
	"github.com/mlyaho/ai-mem-generator/internal/app/service/statistics"
	"github.com/mlyaho/ai-mem-generator/internal/models"
	"github.com/mlyaho/ai-mem-generator/pkg/response"
)

// Envelope types below exist for the swagger docs only; handlers write response.APIResponse.

// RespOK is a generic envelope for endpoints returning no specific data.
type RespOK struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
}

type RespBalance struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    BalanceResponse          `json:"data"`
}

type RespCreatePayment struct {
	Code    response.APIResponseCode       `json:"code"`
	Message string                         `json:"message"`
	Data    checkout.CreatePaymentResponse `json:"data"`
}

type RespSubscription struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    GetSubscriptionResponse  `json:"data"`
}

type RespCancelSubscription struct {
	Code    response.APIResponseCode   `json:"code"`
	Message string                     `json:"message"`
	Data    CancelSubscriptionResponse `json:"data"`
}

type RespSubscriptionModel struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    models.Subscription      `json:"data"`
}

type RespCreditPacks struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []credit.CreditPack      `json:"data"`
}

type RespCost struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    CostResponse             `json:"data"`
}

type RespTransactions struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    ListTransactionsResponse `json:"data"`
}

type RespCharge struct {
	Code    response.APIResponseCode  `json:"code"`
	Message string                    `json:"message"`
	Data    monetization.ChargeResult `json:"data"`
}

type RespActions struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []monetization.Limit     `json:"data"`
}

type RespActionCheck struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    ActionCheckResponse      `json:"data"`
}

// RespDenial is returned with 401, 402, 403 and 429.
type RespDenial struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    monetization.Denial      `json:"data"`
}

type RespWebhook struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    WebhookAck               `json:"data"`
}

type RespListPayments struct {
	Code    response.APIResponseCode      `json:"code"`
	Message string                        `json:"message"`
	Data    checkout.ScanPaymentsResponse `json:"data"`
}

type RespSync struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    checkout.SyncResult      `json:"data"`
}

type RespRefund struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    checkout.RefundResult    `json:"data"`
}

type RespProviderHealth struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    ProviderHealthResponse   `json:"data"`
}

type RespStatistics struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    statistics.Response      `json:"data"`
}

type RespCreditBalance struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    models.CreditBalance     `json:"data"`
}

type RespPromoCode struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    models.PromoCode         `json:"data"`
}

type RespNotifications struct {
	Code    response.APIResponseCode         `json:"code"`
	Message string                           `json:"message"`
	Data    []models.PaymentNotificationLog `json:"data"`
}

type RespHealth struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    HealthResponse           `json:"data"`
}
