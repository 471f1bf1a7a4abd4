package handler

import (
	"context"
	"errors"
	"math"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/minhvt/photobooth-backend/internal/model"
	"github.com/minhvt/photobooth-backend/internal/repository"
	"github.com/minhvt/photobooth-backend/internal/service"
)

// WebhookHandler receives bank-transfer notifications from the SePay
// gateway and credits points to the matching user.  Delivery is
// at-least-once on the gateway side, but a user is only matched by
// payment code, so replays credit again; the gateway deduplicates by
// its own transaction id before calling us.
type WebhookHandler struct {
	Users  *repository.UserRepo
	Points *service.PointsLedger
}

func NewWebhookHandler(u *repository.UserRepo, p *service.PointsLedger) *WebhookHandler {
	return &WebhookHandler{Users: u, Points: p}
}

// sepayWebhookReq mirrors the SePay notification payload.  Fields we
// do not use are still bound so malformed payloads fail early.
type sepayWebhookReq struct {
	ID              int64   `json:"id"`
	Gateway         string  `json:"gateway"`
	TransactionDate string  `json:"transactionDate"`
	AccountNumber   string  `json:"accountNumber"`
	Code            string  `json:"code"`
	Content         string  `json:"content"`
	TransferType    string  `json:"transferType"`
	TransferAmount  float64 `json:"transferAmount"`
	ReferenceCode   string  `json:"referenceCode"`
}

// Transfer codes: the PTB-prefixed form is what our QR codes embed;
// bare codes cover users typing the code by hand; the UUID form is a
// legacy format from before payment codes existed.
var (
	ptbCodeRe  = regexp.MustCompile(`(?i)PTB([a-z0-9]{8})`)
	bareCodeRe = regexp.MustCompile(`(?i)\b([a-z0-9]{6,8})\b`)
	uuidRe     = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)
)

// extractTransferIdentity pulls a payment code or a legacy user id out
// of the webhook's code and content fields.  The dedicated code field
// wins over free-text content, and the PTB form wins over a bare code.
func extractTransferIdentity(code, content string) (paymentCode, legacyUserID string) {
	code = strings.TrimSpace(code)
	if m := ptbCodeRe.FindStringSubmatch(code); m != nil {
		return strings.ToLower(m[1]), ""
	}
	if code != "" && bareCodeRe.FindString(code) == code {
		return strings.ToLower(code), ""
	}
	if m := ptbCodeRe.FindStringSubmatch(content); m != nil {
		return strings.ToLower(m[1]), ""
	}
	// A UUID's leading 8-hex segment would also satisfy the bare-code
	// pattern, so the UUID check has to run first.
	if m := uuidRe.FindString(content); m != "" {
		return "", strings.ToLower(m)
	}
	if m := bareCodeRe.FindString(content); m != "" {
		return strings.ToLower(m), ""
	}
	return "", ""
}

// Sepay handles POST /webhooks/sepay.  Outgoing transfers are
// acknowledged and ignored; incoming ones credit the matched user
// with the whole-point floor of the transfer amount.
func (h *WebhookHandler) Sepay(c echo.Context) error {
	var req sepayWebhookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if !strings.EqualFold(req.TransferType, "in") {
		return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "ignored"})
	}

	paymentCode, legacyUserID := extractTransferIdentity(req.Code, req.Content)
	if paymentCode == "" && legacyUserID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no payment code in transfer"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var u model.User
	var err error
	if paymentCode != "" {
		u, err = h.Users.GetByPaymentCode(ctx, paymentCode)
	} else {
		u, err = h.Users.GetByID(ctx, legacyUserID)
	}
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found for transfer"})
		}
		return fail(c, err)
	}

	amount := int64(math.Floor(req.TransferAmount))
	if amount <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "transfer amount must be positive"})
	}
	if err := h.Points.Credit(ctx, u.ID, amount); err != nil {
		return fail(c, err)
	}

	c.Logger().Infof("sepay: credited %d points to user %s (tx %d)", amount, u.ID, req.ID)
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"userId":  u.ID,
		"points":  amount,
	})
}
