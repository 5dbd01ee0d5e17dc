package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ndara/internal/events"
	"ndara/internal/models"
	"ndara/internal/mutation"
	"ndara/internal/permissions"
	"ndara/internal/store"
	"ndara/internal/validator"
)

func (s *Service) UpdateSettings(ctx context.Context, actor Actor, in validator.SettingsInput) Result {
	const action = "settings.update"

	if err := permissions.Check(actor.Principal, models.PermManageSettings); err != nil {
		return fail(action, err)
	}
	if err := s.validate.Validate(in); err != nil {
		return fail(action, err)
	}

	var current models.Settings
	doc, err := s.store.Get(ctx, models.SettingsPath())
	switch {
	case err == nil:
		if err := doc.DataTo(&current); err != nil {
			return fail(action, err)
		}
	case !errors.Is(err, store.ErrNotFound):
		return fail(action, mutation.Classify(err))
	}

	next := models.Settings{
		SiteName:           in.SiteName,
		SupportEmail:       in.SupportEmail,
		MaintenanceMode:    in.MaintenanceMode,
		PlatformCommission: in.PlatformCommission,
		AllowRegistrations: in.AllowRegistrations,
	}
	data, err := store.Encode(next)
	if err != nil {
		return fail(action, err)
	}
	data["updatedAt"] = store.ServerTimestamp
	data["updatedBy"] = actor.UserID

	plan := mutation.New().
		Set(models.SettingsPath(), data, store.Merge()).
		Audit(s.audit(actor, action, "settings", models.GlobalSettingsID,
			fmt.Sprintf("Paramètres modifiés par %s : %s", actor.UserID, diffSettings(current, next))))
	if err := plan.Commit(ctx, s.store); err != nil {
		return fail(action, err)
	}

	s.bus.Emit(events.SettingsUpdated, next)
	return ok(models.GlobalSettingsID)
}

func (s *Service) GetSettings(ctx context.Context) (*models.Settings, error) {
	settings, _, err := getAs[models.Settings](ctx, s.store, models.SettingsPath(), "paramètres")
	return settings, err
}

func diffSettings(a, b models.Settings) string {
	var parts []string
	add := func(name string, from, to any) {
		if from != to {
			parts = append(parts, fmt.Sprintf("%s %v -> %v", name, from, to))
		}
	}
	add("siteName", a.SiteName, b.SiteName)
	add("supportEmail", a.SupportEmail, b.SupportEmail)
	add("maintenanceMode", a.MaintenanceMode, b.MaintenanceMode)
	add("platformCommission", a.PlatformCommission, b.PlatformCommission)
	add("allowRegistrations", a.AllowRegistrations, b.AllowRegistrations)
	if len(parts) == 0 {
		return "aucun changement"
	}
	return strings.Join(parts, ", ")
}
