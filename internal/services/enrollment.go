package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ndara/internal/apperr"
	"ndara/internal/events"
	"ndara/internal/models"
	"ndara/internal/mutation"
	"ndara/internal/store"
	"ndara/internal/tasks"
)

// SystemActor is recorded as the author of mutations triggered by a
// payment provider rather than a signed-in administrator.
const SystemActor = "system:moneroo"

// PaymentEvent is the part of a payment webhook the activator acts on.
type PaymentEvent struct {
	TransactionID string
	Status        string
	UserID        string
	CourseID      string
	Amount        float64
	Currency      string
	// CustomerEmail and CustomerName are optional; the user profile is
	// used when they are missing.
	CustomerEmail string
	CustomerName  string
}

// Activation is the outcome of one webhook delivery.
type Activation struct {
	Activated    bool   `json:"activated"`
	Replayed     bool   `json:"-"`
	EnrollmentID string `json:"-"`
}

// EnrollmentActivator turns a successful payment into an active enrollment.
// Every write derives its id from the transaction id, so replaying the same
// event converges on the same documents.
type EnrollmentActivator struct {
	svc     *Service
	success map[string]bool
}

func NewEnrollmentActivator(svc *Service, successStatuses []string) *EnrollmentActivator {
	success := make(map[string]bool, len(successStatuses))
	for _, st := range successStatuses {
		success[strings.ToLower(st)] = true
	}
	return &EnrollmentActivator{svc: svc, success: success}
}

func (a *EnrollmentActivator) Activate(ctx context.Context, ev PaymentEvent) (Activation, error) {
	if !a.success[strings.ToLower(ev.Status)] {
		log.Info("Payment %s ignored with status %q", ev.TransactionID, ev.Status)
		return Activation{}, nil
	}

	fields := map[string]string{}
	if ev.UserID == "" {
		fields["metadata.userId"] = "l'identifiant de l'utilisateur est requis"
	}
	if ev.CourseID == "" {
		fields["metadata.courseId"] = "l'identifiant du cours est requis"
	}
	if ev.TransactionID == "" {
		fields["id"] = "l'identifiant de la transaction est requis"
	}
	if len(fields) > 0 {
		return Activation{}, apperr.Validation(fields)
	}

	st := a.svc.store
	course, _, err := getAs[models.Course](ctx, st, models.CoursePath(ev.CourseID), "cours")
	if apperr.Is(err, apperr.KindNotFound) {
		return Activation{}, apperr.Validation(map[string]string{"metadata.courseId": "ce cours n'existe pas"})
	}
	if err != nil {
		return Activation{}, err
	}

	enrollmentID := models.EnrollmentID(ev.UserID, ev.CourseID)
	path := models.EnrollmentPath(ev.UserID, ev.CourseID)
	existing, _, err := getAs[models.Enrollment](ctx, st, path, "inscription")
	switch {
	case err == nil && existing.TransactionID == ev.TransactionID:
		log.Info("Payment %s already activated enrollment %s", ev.TransactionID, enrollmentID)
		a.enqueueEmail(ctx, ev, course)
		return Activation{Activated: true, Replayed: true, EnrollmentID: enrollmentID}, nil
	case err != nil && !apperr.Is(err, apperr.KindNotFound):
		return Activation{}, err
	}

	currency := ev.Currency
	if currency == "" {
		currency = course.Currency
	}
	data := map[string]any{
		"id":                enrollmentID,
		"studentId":         ev.UserID,
		"courseId":          ev.CourseID,
		"instructorId":      course.InstructorID,
		"status":            models.EnrollmentStatusActive,
		"priceAtEnrollment": ev.Amount,
		"currency":          currency,
		"transactionId":     ev.TransactionID,
		"lastAccessedAt":    store.ServerTimestamp,
	}
	// A second purchase of the same course keeps the learner's progress.
	if existing == nil {
		data["progress"] = 0
		data["enrolledAt"] = store.ServerTimestamp
	}

	plan := mutation.New().
		Set(path, data, store.Merge()).
		Notify(models.Notification{
			ID:     models.DeterministicID("notification", ev.TransactionID),
			UserID: ev.UserID,
			Text:   fmt.Sprintf("Votre inscription au cours « %s » est confirmée.", course.Title),
			Link:   "/courses/" + ev.CourseID,
		}).
		Activity(models.Activity{
			ID:       models.DeterministicID("activity", ev.TransactionID),
			UserID:   ev.UserID,
			Type:     "enrollment",
			Title:    course.Title,
			CourseID: ev.CourseID,
		}).
		Audit(mutation.Audit{
			ID:         models.DeterministicID("audit", ev.TransactionID),
			ActorID:    SystemActor,
			EventType:  "enrollment.activate",
			TargetID:   enrollmentID,
			TargetType: "enrollment",
			Details: fmt.Sprintf("Paiement %s de %g %s : inscription de %s au cours %q",
				ev.TransactionID, ev.Amount, currency, ev.UserID, course.Title),
		})
	if err := plan.Commit(ctx, st); err != nil {
		// The audit entry is a create keyed on the transaction: a concurrent
		// delivery of the same event got there first.
		if errors.Is(err, store.ErrAlreadyExists) {
			log.Info("Payment %s activated concurrently", ev.TransactionID)
			return Activation{Activated: true, Replayed: true, EnrollmentID: enrollmentID}, nil
		}
		return Activation{}, err
	}

	log.Success("Enrollment %s activated by payment %s", enrollmentID, ev.TransactionID)
	a.svc.bus.Emit(events.EnrollmentActivated, models.Enrollment{
		ID:                enrollmentID,
		StudentID:         ev.UserID,
		CourseID:          ev.CourseID,
		InstructorID:      course.InstructorID,
		Status:            models.EnrollmentStatusActive,
		PriceAtEnrollment: ev.Amount,
		Currency:          currency,
		TransactionID:     ev.TransactionID,
	})
	a.enqueueEmail(ctx, ev, course)
	return Activation{Activated: true, EnrollmentID: enrollmentID}, nil
}

// enqueueEmail hands the confirmation email to the queue. The task id is the
// transaction id, so replays never send it twice.
func (a *EnrollmentActivator) enqueueEmail(ctx context.Context, ev PaymentEvent, course *models.Course) {
	if a.svc.queue == nil {
		return
	}
	email, name := ev.CustomerEmail, ev.CustomerName
	if email == "" {
		user, _, err := getAs[models.User](ctx, a.svc.store, models.UserPath(ev.UserID), "utilisateur")
		if err != nil {
			log.Warn("No email address for user %s: %v", ev.UserID, err)
			return
		}
		email = user.Email
		if name == "" {
			name = user.DisplayName
		}
	}
	if email == "" {
		log.Warn("No email address for user %s", ev.UserID)
		return
	}
	err := a.svc.queue.EnqueueEnrollmentEmail(ctx, tasks.EnrollmentEmailPayload{
		TransactionID: ev.TransactionID,
		UserID:        ev.UserID,
		CourseID:      ev.CourseID,
		CourseTitle:   course.Title,
		Email:         email,
		Name:          name,
		Amount:        ev.Amount,
		Currency:      ev.Currency,
	})
	if err != nil {
		log.Warn("Could not queue confirmation email for payment %s: %v", ev.TransactionID, err)
	}
}
