package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"ndara/internal/apperr"
	"ndara/internal/services"
	"ndara/internal/utils/crypto"
	"ndara/internal/utils/logger"

	"github.com/labstack/echo/v4"
)

const (
	SignatureHeader = "X-Moneroo-Signature"
	maxWebhookBody  = 1 << 20
)

// monerooPayload is the part of a Moneroo notification the platform reads
type monerooPayload struct {
	Event string `json:"event"`
	Data  struct {
		ID           string  `json:"id"`
		Status       string  `json:"status"`
		Amount       float64 `json:"amount"`
		CurrencyCode string  `json:"currency_code"`
		Metadata     struct {
			UserID   string `json:"userId"`
			CourseID string `json:"courseId"`
		} `json:"metadata"`
		Customer *struct {
			Email     string `json:"email"`
			FirstName string `json:"first_name"`
			LastName  string `json:"last_name"`
		} `json:"customer"`
	} `json:"data"`
}

func (p monerooPayload) event() services.PaymentEvent {
	ev := services.PaymentEvent{
		TransactionID: p.Data.ID,
		Status:        p.Data.Status,
		UserID:        p.Data.Metadata.UserID,
		CourseID:      p.Data.Metadata.CourseID,
		Amount:        p.Data.Amount,
		Currency:      p.Data.CurrencyCode,
	}
	if c := p.Data.Customer; c != nil {
		ev.CustomerEmail = c.Email
		ev.CustomerName = strings.TrimSpace(c.FirstName + " " + c.LastName)
	}
	return ev
}

type WebhookHandler struct {
	activator PaymentActivator
	security  SecurityRecorder
	secret    string
	log       *logger.Logger
}

// NewWebhookHandler verifies the X-Moneroo-Signature header when secret is
// set. Rejected signatures are reported to security when it is not nil.
func NewWebhookHandler(activator PaymentActivator, security SecurityRecorder, secret string) *WebhookHandler {
	return &WebhookHandler{
		activator: activator,
		security:  security,
		secret:    secret,
		log:       logger.New("webhook_handler"),
	}
}

// Moneroo handles payment notifications
// @Summary Moneroo payment webhook
// @Description Activates the enrollment paid for by a successful payment. Replays are acknowledged without new writes.
// @Accept json
// @Produce json
// @Param X-Moneroo-Signature header string false "hex HMAC-SHA256 of the body"
// @Success 200 {object} map[string]interface{} "received, activated"
// @Failure 400 {object} map[string]string "Missing metadata"
// @Failure 401 {object} map[string]string "Bad signature"
// @Failure 500 {object} map[string]string "Processing failed"
// @Router /webhooks/moneroo [post]
func (h *WebhookHandler) Moneroo(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "corps de requête illisible"})
	}

	if h.secret != "" && !crypto.VerifyWebhookSignature(body, h.secret, c.Request().Header.Get(SignatureHeader)) {
		h.log.Warn("Rejected webhook with a bad signature from %s", c.RealIP())
		h.reportBadSignature(c)
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "signature invalide"})
	}

	var payload monerooPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "JSON invalide"})
	}

	res, err := h.activator.Activate(c.Request().Context(), payload.event())
	if err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) && ae.Kind == apperr.KindValidation {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": describeFields(ae.Fields)})
		}
		_ = h.log.Error("Webhook %s failed", err, payload.Data.ID)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error":   "Erreur lors du traitement du paiement",
			"details": apperr.Render(err),
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"received":  true,
		"activated": res.Activated,
	})
}

func (h *WebhookHandler) reportBadSignature(c echo.Context) {
	if h.security == nil {
		return
	}
	details := fmt.Sprintf("Signature Moneroo invalide depuis %s", c.RealIP())
	if err := h.security.RecordSecurityEvent(c.Request().Context(), "webhook.signature_invalid", "moneroo", details); err != nil {
		h.log.Warn("Could not record security event: %v", err)
	}
}

// describeFields renders field errors as one stable, readable line
func describeFields(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s : %s", k, fields[k]))
	}
	return strings.Join(parts, "; ")
}
