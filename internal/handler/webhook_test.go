package handler

import "testing"

func TestExtractTransferIdentity(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		content    string
		wantCode   string
		wantLegacy string
	}{
		{
			name:     "ptb code in code field",
			code:     "PTB4f9k2x7q",
			wantCode: "4f9k2x7q",
		},
		{
			name:     "ptb code case insensitive",
			code:     "ptbA1B2C3D4",
			wantCode: "a1b2c3d4",
		},
		{
			name:     "bare code in code field",
			code:     "4f9k2x7q",
			wantCode: "4f9k2x7q",
		},
		{
			name:     "code field wins over content",
			code:     "PTB4f9k2x7q",
			content:  "nap tien PTBzzzzzzzz",
			wantCode: "4f9k2x7q",
		},
		{
			name:     "ptb code embedded in content",
			content:  "thanh toan PTBa1b2c3d4 cam on",
			wantCode: "a1b2c3d4",
		},
		{
			name:     "bare code in content",
			content:  "nap tien a1b2c3d4",
			wantCode: "a1b2c3d4",
		},
		{
			name:     "six char bare code accepted",
			content:  "nap a1b2c3 xong",
			wantCode: "a1b2c3",
		},
		{
			name:       "legacy uuid in content",
			content:    "topup 123E4567-E89B-12D3-A456-426614174000 thanks",
			wantLegacy: "123e4567-e89b-12d3-a456-426614174000",
		},
		{
			name:     "ptb wins over legacy uuid",
			content:  "PTB4f9k2x7q 123e4567-e89b-12d3-a456-426614174000",
			wantCode: "4f9k2x7q",
		},
		{
			name: "no identity",
			code: "",
			// every word is outside the 6-8 char window
			content: "cam on quy khach nhieu",
		},
		{
			name:     "code field with surrounding whitespace",
			code:     "  PTB4f9k2x7q  ",
			wantCode: "4f9k2x7q",
		},
		{
			name:    "code field with punctuation is not a bare code",
			code:    "REF:12345",
			content: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotCode, gotLegacy := extractTransferIdentity(tt.code, tt.content)
			if gotCode != tt.wantCode {
				t.Errorf("paymentCode = %q, want %q", gotCode, tt.wantCode)
			}
			if gotLegacy != tt.wantLegacy {
				t.Errorf("legacyUserID = %q, want %q", gotLegacy, tt.wantLegacy)
			}
		})
	}
}
