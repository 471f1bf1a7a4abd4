package utils

import "testing"

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-pass", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "s3cret-pass" {
		t.Fatal("hash equals plaintext")
	}
	if !VerifyPassword(hash, "s3cret-pass") {
		t.Error("correct password rejected")
	}
	if VerifyPassword(hash, "wrong-pass") {
		t.Error("wrong password accepted")
	}
}
