package models

import "time"

// PaymentStatus classifies what the payment provider reports for a session
type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentPaid    PaymentStatus = "paid"
	PaymentUnknown PaymentStatus = "unknown"
)

// Metadata keys stored on the provider-side checkout session. The provider's
// metadata store is the system of record; there is no local session database.
const (
	MetadataKeyReason    = "reason"
	MetadataKeyPersona   = "persona"
	MetadataKeyGenerated = "generated"
)

// Session binds an Intent to a payment outcome. It is reconstructed on every
// read from the provider's checkout session and its embedded metadata.
type Session struct {
	ID            string        `json:"id"`
	Intent        Intent        `json:"intent"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	Processed     bool          `json:"processed"`
	CreatedAt     time.Time     `json:"created_at"`
}
