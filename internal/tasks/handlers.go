package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"strings"

	"ndara/internal/models"
	"ndara/internal/utils/logger"

	"github.com/hibiken/asynq"
)

// BlobDeleter removes uploaded assets
type BlobDeleter interface {
	DeleteFile(ctx context.Context, key string) error
}

// Limiter caps how many jobs one identifier may run per window
type Limiter interface {
	Allow(ctx context.Context, identifier string) (bool, error)
}

// AlertSource lists the security alerts still waiting for an administrator
type AlertSource interface {
	OpenAlerts(ctx context.Context) ([]models.SecurityLogEntry, error)
}

// HandlerDeps wires a TaskHandler. Any dependency may be nil; the matching
// task then fails without retry.
type HandlerDeps struct {
	Blobs    BlobDeleter
	Mailer   Mailer
	Limiter  Limiter
	Alerts   AlertSource
	SiteName string
}

// TaskHandler processes queued tasks
type TaskHandler struct {
	deps   HandlerDeps
	logger *logger.Logger
}

func NewTaskHandler(deps HandlerDeps) *TaskHandler {
	if deps.SiteName == "" {
		deps.SiteName = "Ndara Afrique"
	}
	return &TaskHandler{
		deps:   deps,
		logger: logger.New("task_handler"),
	}
}

func decode(t *asynq.Task, v any) error {
	if err := json.Unmarshal(t.Payload(), v); err != nil {
		return fmt.Errorf("invalid %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}
	return nil
}

func (h *TaskHandler) HandleBlobDelete(ctx context.Context, t *asynq.Task) error {
	var p BlobDeletePayload
	if err := decode(t, &p); err != nil {
		return err
	}
	if p.Key == "" {
		return fmt.Errorf("blob key is empty: %w", asynq.SkipRetry)
	}
	if h.deps.Blobs == nil {
		return fmt.Errorf("blob storage is not configured: %w", asynq.SkipRetry)
	}
	if err := h.deps.Blobs.DeleteFile(ctx, p.Key); err != nil {
		return fmt.Errorf("delete %s: %w", p.Key, err)
	}
	h.logger.Success("deleted asset %s", p.Key)
	return nil
}

func (h *TaskHandler) HandleEnrollmentEmail(ctx context.Context, t *asynq.Task) error {
	var p EnrollmentEmailPayload
	if err := decode(t, &p); err != nil {
		return err
	}
	if p.Email == "" {
		return fmt.Errorf("no recipient for transaction %s: %w", p.TransactionID, asynq.SkipRetry)
	}
	if err := h.allow(ctx, p.Email); err != nil {
		return err
	}

	name := p.Name
	if name == "" {
		name = "cher apprenant"
	}
	amount := fmt.Sprintf("%g %s", p.Amount, p.Currency)
	msg := Message{
		ToEmail: p.Email,
		ToName:  p.Name,
		Subject: fmt.Sprintf("[%s] Inscription confirmée : %s", h.deps.SiteName, p.CourseTitle),
		Text: fmt.Sprintf("Bonjour %s,\n\nVotre paiement de %s (transaction %s) a bien été reçu. "+
			"Vous avez désormais accès au cours « %s ».\n\nBon apprentissage !\n",
			name, strings.TrimSpace(amount), p.TransactionID, p.CourseTitle),
		HTML: fmt.Sprintf("<p>Bonjour %s,</p><p>Votre paiement de %s (transaction %s) a bien été reçu. "+
			"Vous avez désormais accès au cours <strong>%s</strong>.</p><p>Bon apprentissage !</p>",
			html.EscapeString(name), html.EscapeString(strings.TrimSpace(amount)),
			html.EscapeString(p.TransactionID), html.EscapeString(p.CourseTitle)),
	}
	if err := h.send(ctx, msg); err != nil {
		return err
	}
	h.logger.Success("confirmation sent for transaction %s", p.TransactionID)
	return nil
}

func (h *TaskHandler) HandleAlertDigest(ctx context.Context, t *asynq.Task) error {
	var p AlertDigestPayload
	if err := decode(t, &p); err != nil {
		return err
	}
	if p.Recipient == "" {
		return fmt.Errorf("digest recipient is empty: %w", asynq.SkipRetry)
	}
	if h.deps.Alerts == nil {
		return fmt.Errorf("alert source is not configured: %w", asynq.SkipRetry)
	}
	alerts, err := h.deps.Alerts.OpenAlerts(ctx)
	if err != nil {
		return fmt.Errorf("list open alerts: %w", err)
	}
	if len(alerts) == 0 {
		h.logger.Info("no open security alerts")
		return nil
	}

	var text, body strings.Builder
	for _, a := range alerts {
		fmt.Fprintf(&text, "- %s %s (%s) %s\n", a.Timestamp.Format("2006-01-02 15:04"), a.EventType, a.TargetID, a.Details)
		fmt.Fprintf(&body, "<li><code>%s</code> %s (%s) %s</li>",
			a.Timestamp.Format("2006-01-02 15:04"), html.EscapeString(a.EventType),
			html.EscapeString(a.TargetID), html.EscapeString(a.Details))
	}
	msg := Message{
		ToEmail: p.Recipient,
		Subject: fmt.Sprintf("[%s] %d alerte(s) de sécurité ouverte(s)", h.deps.SiteName, len(alerts)),
		Text:    text.String(),
		HTML:    "<ul>" + body.String() + "</ul>",
	}
	if err := h.send(ctx, msg); err != nil {
		return err
	}
	h.logger.Info("digest of %d alerts sent to %s", len(alerts), p.Recipient)
	return nil
}

func (h *TaskHandler) allow(ctx context.Context, recipient string) error {
	if h.deps.Limiter == nil {
		return nil
	}
	ok, err := h.deps.Limiter.Allow(ctx, strings.ToLower(recipient))
	if err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	if !ok {
		// retried with backoff once the window has moved on
		return fmt.Errorf("too many emails for %s", recipient)
	}
	return nil
}

func (h *TaskHandler) send(ctx context.Context, msg Message) error {
	if h.deps.Mailer == nil {
		return fmt.Errorf("%w: %w", ErrMailDisabled, asynq.SkipRetry)
	}
	if err := h.deps.Mailer.Send(ctx, msg); err != nil {
		if errors.Is(err, ErrMailDisabled) {
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}
		return err
	}
	return nil
}
