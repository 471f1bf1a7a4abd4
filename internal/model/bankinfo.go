package model

import "time"

// BankInfo represents a row in the `bank_info` table.  The table
// behaves as a single logical record: the "current" bank info is the
// most recently created row, and the admin create endpoint updates
// that row in place when one already exists.
//
// Fields:
//  ID                – UUID primary key.
//  BankCode          – short bank identifier (e.g. VCB).
//  BankName          – full bank name.
//  AccountNumber     – receiving account number.
//  AccountHolderName – name on the account.
//  Branch            – branch name (nullable).
//  QRCodeURL         – pre-rendered transfer QR image (nullable).
//  CreatedAt         – timestamp of creation.
//  UpdatedAt         – timestamp of last update.
type BankInfo struct {
	ID                string    `json:"id"`
	BankCode          string    `json:"bankCode"`
	BankName          string    `json:"bankName"`
	AccountNumber     string    `json:"accountNumber"`
	AccountHolderName string    `json:"accountHolderName"`
	Branch            *string   `json:"branch,omitempty"`
	QRCodeURL         *string   `json:"qrCodeUrl,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}
