package utils

import (
	"strings"
	"testing"
)

func TestNewPaymentCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code, err := NewPaymentCode()
		if err != nil {
			t.Fatalf("new payment code: %v", err)
		}
		if len(code) != PaymentCodeLength {
			t.Fatalf("len(%q) = %d, want %d", code, len(code), PaymentCodeLength)
		}
		for _, r := range code {
			if !strings.ContainsRune(paymentCodeAlphabet, r) {
				t.Fatalf("code %q contains %q outside the alphabet", code, r)
			}
		}
		seen[code] = true
	}
	// 100 draws from a 36^8 space colliding down to a handful would
	// mean the generator is broken.
	if len(seen) < 90 {
		t.Errorf("only %d distinct codes out of 100", len(seen))
	}
}
