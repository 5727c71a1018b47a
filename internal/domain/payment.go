package domain

import "time"

// PaymentMethod is the payment channel. Display only; settlement math does
// not distinguish between channels.
type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCard         PaymentMethod = "card"
	MethodOther        PaymentMethod = "other"
)

// MethodFromID maps the upstream payment_method_id to a PaymentMethod.
func MethodFromID(id int) PaymentMethod {
	switch id {
	case 2:
		return MethodCash
	case 3:
		return MethodBankTransfer
	case 4:
		return MethodCard
	default:
		return MethodOther
	}
}

// Payment is one recorded payment against an order. Payments are recorded
// independently and may arrive in any order.
type Payment struct {
	ID              int64     `json:"id"`
	OrderID         int64     `json:"order_id"`
	Amount          Amount    `json:"amount"`
	PaymentMethodID int       `json:"payment_method_id"`
	PaymentDate     time.Time `json:"payment_date"`
}

// Method returns the display channel for the payment.
func (p Payment) Method() PaymentMethod {
	return MethodFromID(p.PaymentMethodID)
}
