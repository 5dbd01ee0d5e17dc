package models

import (
	"time"

	"github.com/google/uuid"
)

// Base contains common fields for all documents
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// NewID returns a random document id
func NewID() string {
	return uuid.New().String()
}

// DeterministicID derives a stable id from parts, so replays write the same document
func DeterministicID(parts ...string) string {
	name := ""
	for i, p := range parts {
		if i > 0 {
			name += "|"
		}
		name += p
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

// Course status constants
type CourseStatus string

const (
	CourseStatusDraft         CourseStatus = "Draft"
	CourseStatusPendingReview CourseStatus = "PendingReview"
	CourseStatusPublished     CourseStatus = "Published"
)

type LectureType string

const (
	LectureTypeVideo LectureType = "video"
	LectureTypeText  LectureType = "text"
	LectureTypePDF   LectureType = "pdf"
)

type ResourceType string

const (
	ResourceTypeLink  ResourceType = "link"
	ResourceTypeFile  ResourceType = "file"
	ResourceTypeVideo ResourceType = "video"
)

type AlertStatus string

const (
	AlertStatusOpen     AlertStatus = "open"
	AlertStatusResolved AlertStatus = "resolved"
)

type EnrollmentStatus string

const (
	EnrollmentStatusActive    EnrollmentStatus = "active"
	EnrollmentStatusCompleted EnrollmentStatus = "completed"
)

type SubmissionStatus string

const (
	SubmissionStatusSubmitted SubmissionStatus = "submitted"
	SubmissionStatusGraded    SubmissionStatus = "graded"
)
