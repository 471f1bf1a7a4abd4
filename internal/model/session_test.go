package model

import "testing"

func TestSessionStatusTerminal(t *testing.T) {
	terminal := map[SessionStatus]bool{
		SessionPending:   false,
		SessionActive:    false,
		SessionCompleted: true,
		SessionCancelled: true,
		SessionExpired:   true,
	}
	for status, want := range terminal {
		if got := status.Terminal(); got != want {
			t.Errorf("%s.Terminal() = %v, want %v", status, got, want)
		}
	}
}

func TestValidSessionStatus(t *testing.T) {
	for _, s := range []SessionStatus{SessionPending, SessionActive, SessionCompleted, SessionCancelled, SessionExpired} {
		if !ValidSessionStatus(s) {
			t.Errorf("ValidSessionStatus(%s) = false", s)
		}
	}
	for _, s := range []SessionStatus{"", "pending", "DONE"} {
		if ValidSessionStatus(s) {
			t.Errorf("ValidSessionStatus(%q) = true", s)
		}
	}
}
