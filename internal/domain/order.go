package domain

import "time"

// OrderStatus is the lifecycle stage of an order. It is owned by the
// upstream commerce system and passed through as-is: amounts and status are
// independently sourced and may disagree (e.g. a settled order with a
// nonzero balance during a data lag).
type OrderStatus string

const (
	StatusAwaitingPayment OrderStatus = "AWAITING_PAYMENT"
	StatusProcessing      OrderStatus = "PROCESSING"
	StatusPartiallyPaid   OrderStatus = "PARTIALLY_PAID"
	StatusSettled         OrderStatus = "SETTLED"
	StatusUnknown         OrderStatus = "UNKNOWN"
)

// StatusFromID maps the upstream status_id to an OrderStatus. Unmapped ids
// yield StatusUnknown, never an error.
func StatusFromID(id int) OrderStatus {
	switch id {
	case 1:
		return StatusAwaitingPayment
	case 2:
		return StatusProcessing
	case 3:
		return StatusPartiallyPaid
	case 4:
		return StatusSettled
	default:
		return StatusUnknown
	}
}

// Order carries the declared monetary fields of one order.
//
// FinalTotal is the authoritative post-discount total. It is stored, not
// derived: upstream applies its own rounding, so it is not required to equal
// TotalPrice * (1 - Discount/100) exactly.
type Order struct {
	ID         int64     `json:"id"`
	FinalTotal Amount    `json:"final_total"`
	Discount   Amount    `json:"discount"`
	TotalPrice Amount    `json:"total_price"`
	Tax        Amount    `json:"tax"`
	StatusID   int       `json:"status_id"`
	CreatedAt  time.Time `json:"created_at"`
}
