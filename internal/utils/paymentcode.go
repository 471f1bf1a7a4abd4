package utils

import "crypto/rand"

// paymentCodeAlphabet deliberately excludes uppercase so codes survive
// bank statement normalization.
const paymentCodeAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// PaymentCodeLength is the fixed length of user transfer codes.
const PaymentCodeLength = 8

// NewPaymentCode returns a random lowercase alphanumeric transfer code.
// Uniqueness is not guaranteed here; callers retry against the unique
// column when a collision occurs.
func NewPaymentCode() (string, error) {
	buf := make([]byte, PaymentCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = paymentCodeAlphabet[int(b)%len(paymentCodeAlphabet)]
	}
	return string(buf), nil
}
