package types

type PaymentProvider string

const (
	PaymentProviderYooKassa PaymentProvider = "yookassa"
	PaymentProviderStripe   PaymentProvider = "stripe"
	PaymentProviderMock     PaymentProvider = "mock"
)

var PaymentProviders = []PaymentProvider{
	PaymentProviderYooKassa,
	PaymentProviderStripe,
	PaymentProviderMock,
}

func (p PaymentProvider) Valid() bool {
	switch p {
	case PaymentProviderYooKassa, PaymentProviderStripe, PaymentProviderMock:
		return true
	}
	return false
}

// PaymentStatus is the canonical status vocabulary shared by all providers.
// Local payment rows only ever hold pending, succeeded, failed or refunded.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

type PaymentType string

const (
	PaymentTypeCredits      PaymentType = "credits"
	PaymentTypeSubscription PaymentType = "subscription"
)

type PromoCodeType string

const (
	PromoCodeTypeDiscount PromoCodeType = "discount"
)
