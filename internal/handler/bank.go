package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/minhvt/photobooth-backend/internal/model"
	"github.com/minhvt/photobooth-backend/internal/repository"
)

// BankHandler serves the receiving-account details users transfer to
// when topping up points.
type BankHandler struct {
	Bank *repository.BankInfoRepo
}

func NewBankHandler(b *repository.BankInfoRepo) *BankHandler {
	return &BankHandler{Bank: b}
}

// Current returns the bank account currently in use.
func (h *BankHandler) Current(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Bank.Current(ctx)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

type bankReq struct {
	BankCode          string  `json:"bankCode"`
	BankName          string  `json:"bankName"`
	AccountNumber     string  `json:"accountNumber"`
	AccountHolderName string  `json:"accountHolderName"`
	Branch            *string `json:"branch"`
	QRCodeURL         *string `json:"qrCodeUrl"`
}

func (r *bankReq) validate() string {
	if r.BankCode == "" || r.BankName == "" || r.AccountNumber == "" || r.AccountHolderName == "" {
		return "bankCode/bankName/accountNumber/accountHolderName required"
	}
	return ""
}

// CreateOrUpdate upserts the current bank info (admin).
func (h *BankHandler) CreateOrUpdate(c echo.Context) error {
	var req bankReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Bank.CreateOrUpdate(ctx, &model.BankInfo{
		BankCode:          req.BankCode,
		BankName:          req.BankName,
		AccountNumber:     req.AccountNumber,
		AccountHolderName: req.AccountHolderName,
		Branch:            req.Branch,
		QRCodeURL:         req.QRCodeURL,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// Update overwrites a specific bank info row (admin).
func (h *BankHandler) Update(c echo.Context) error {
	var req bankReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Bank.Update(ctx, &model.BankInfo{
		ID:                c.Param("id"),
		BankCode:          req.BankCode,
		BankName:          req.BankName,
		AccountNumber:     req.AccountNumber,
		AccountHolderName: req.AccountHolderName,
		Branch:            req.Branch,
		QRCodeURL:         req.QRCodeURL,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// Delete removes a bank info row (admin).
func (h *BankHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Bank.Delete(ctx, c.Param("id")); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
