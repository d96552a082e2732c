package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/IncDrops/breakup/internal/models"
)

func TestClassify(t *testing.T) {
	var v PaymentVerifier

	assert.Equal(t, VerdictPaid, v.Classify(&models.Session{PaymentStatus: models.PaymentPaid}))
	assert.Equal(t, VerdictUnpaid, v.Classify(&models.Session{PaymentStatus: models.PaymentUnpaid}))
	assert.Equal(t, VerdictUnpaid, v.Classify(&models.Session{PaymentStatus: models.PaymentUnknown}))
}
