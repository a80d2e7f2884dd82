package types

type CreditTransactionType string

const (
	CreditTransactionTypePurchase   CreditTransactionType = "purchase"
	CreditTransactionTypeGeneration CreditTransactionType = "generation"
	CreditTransactionTypeReferral   CreditTransactionType = "referral"
	CreditTransactionTypeBonus      CreditTransactionType = "bonus"
	CreditTransactionTypeRefund     CreditTransactionType = "refund"
)

func (t CreditTransactionType) Valid() bool {
	switch t {
	case CreditTransactionTypePurchase, CreditTransactionTypeGeneration, CreditTransactionTypeReferral,
		CreditTransactionTypeBonus, CreditTransactionTypeRefund:
		return true
	}
	return false
}
