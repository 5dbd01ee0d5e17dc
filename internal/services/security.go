package services

import (
	"context"
	"fmt"

	"ndara/internal/apperr"
	"ndara/internal/events"
	"ndara/internal/models"
	"ndara/internal/mutation"
	"ndara/internal/permissions"
	"ndara/internal/store"
)

// ResolveSecurityAlert closes an open alert
func (s *Service) ResolveSecurityAlert(ctx context.Context, actor Actor, alertID string) Result {
	const action = "security.alert.resolve"

	if err := permissions.Check(actor.Principal, models.PermManageSecurity); err != nil {
		return fail(action, err)
	}
	alert, doc, err := getAs[models.SecurityLogEntry](ctx, s.store, models.SecurityLogPath(alertID), "alerte")
	if err != nil {
		return fail(action, err)
	}
	if alert.Status == models.AlertStatusResolved {
		return fail(action, apperr.Validation(map[string]string{"status": "cette alerte est déjà résolue"}))
	}

	plan := mutation.New().
		Update(models.SecurityLogPath(alertID), map[string]any{
			"status":     models.AlertStatusResolved,
			"resolvedBy": actor.UserID,
			"resolvedAt": store.ServerTimestamp,
		}, store.IfVersion(doc.Version)).
		Audit(s.audit(actor, action, "security_alert", alertID,
			fmt.Sprintf("Alerte %s (%s sur %s) résolue par %s", alertID, alert.EventType, alert.TargetID, actor.UserID)))
	if err := plan.Commit(ctx, s.store); err != nil {
		return fail(action, err)
	}

	s.bus.Emit(events.AlertResolved, alertID)
	return ok(alertID)
}

// RecordSecurityEvent appends an open alert. It is written by the system,
// not on behalf of an administrator, so it carries no audit entry.
func (s *Service) RecordSecurityEvent(ctx context.Context, eventType, targetID, details string) error {
	id := models.NewID()
	data, err := store.Encode(models.SecurityLogEntry{
		ID:        id,
		EventType: eventType,
		TargetID:  targetID,
		Details:   details,
		Status:    models.AlertStatusOpen,
	})
	if err != nil {
		return apperr.Internal(err)
	}
	data["timestamp"] = store.ServerTimestamp
	return mutation.Classify(s.store.Batch().Create(models.SecurityLogPath(id), data).Commit(ctx))
}

// OpenAlerts lists unresolved alerts, newest first
func (s *Service) OpenAlerts(ctx context.Context) ([]models.SecurityLogEntry, error) {
	return listAs[models.SecurityLogEntry](ctx, s.store, store.Query{
		Collection: models.CollSecurityLogs,
		OrderBy:    "timestamp",
		Desc:       true,
	}.Where("status", string(models.AlertStatusOpen)))
}

// AuditLog returns the most recent audit entries
func (s *Service) AuditLog(ctx context.Context, actor Actor, limit int) ([]models.AuditLogEntry, error) {
	if err := permissions.Check(actor.Principal, models.PermReadLogs); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return listAs[models.AuditLogEntry](ctx, s.store, store.Query{
		Collection: models.CollAuditLogs,
		OrderBy:    "timestamp",
		Desc:       true,
		Limit:      limit,
	})
}
