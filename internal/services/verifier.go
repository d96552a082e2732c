package services

import "github.com/IncDrops/breakup/internal/models"

// Verdict is the payment classification of a session
type Verdict int

const (
	VerdictUnpaid Verdict = iota
	VerdictPaid
)

// PaymentVerifier classifies a session's payment state. Pure function, no
// side effects.
type PaymentVerifier struct{}

// Classify returns Paid only when the provider reports full settlement
func (PaymentVerifier) Classify(sess *models.Session) Verdict {
	if sess.PaymentStatus == models.PaymentPaid {
		return VerdictPaid
	}
	return VerdictUnpaid
}
