package tasks

import "time"

// Task Types
const (
	TypeBlobDelete          = "storage:blob_delete"
	TypeEnrollmentEmail     = "mail:enrollment_confirmation"
	TypeSecurityAlertDigest = "security:alert_digest"
)

// Task Queues
const (
	QueueCritical = "critical" // For time-sensitive tasks like email sending
	QueueDefault  = "default"  // For regular tasks
	QueueLow      = "low"      // For background tasks like cleanup
)

// Task Timeouts
const (
	TimeoutShort  = 1 * time.Minute
	TimeoutMedium = 5 * time.Minute
)

// Task Retry Settings
const (
	RetryMax     = 10
	RetryDefault = 5
	RetryMin     = 1
)

// Retention keeps completed task ids around so a replayed enqueue with the
// same id is rejected as a duplicate.
const Retention = 7 * 24 * time.Hour

type BlobDeletePayload struct {
	Key string `json:"key"`
}

type EnrollmentEmailPayload struct {
	TransactionID string  `json:"transactionId"`
	UserID        string  `json:"userId"`
	CourseID      string  `json:"courseId"`
	CourseTitle   string  `json:"courseTitle"`
	Email         string  `json:"email"`
	Name          string  `json:"name,omitempty"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency,omitempty"`
}

type AlertDigestPayload struct {
	Recipient string `json:"recipient"`
}
