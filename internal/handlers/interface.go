package handlers

import (
	"context"
	"time"

	"ndara/internal/services"
)

// AssetStorage stores uploaded lecture files
type AssetStorage interface {
	UploadFile(ctx context.Context, file []byte, key string, contentType string) (string, error)
	DeleteFile(ctx context.Context, key string) error
}

// AssetSigner is implemented by storages serving private files through
// time-limited URLs
type AssetSigner interface {
	GetSignedURL(ctx context.Context, key string, duration time.Duration) (string, error)
}

// LectureAssets attaches stored files to lectures
type LectureAssets interface {
	CheckLectureAsset(ctx context.Context, actor services.Actor, courseID, sectionID, lectureID, contentType string) services.Result
	SetLectureAsset(ctx context.Context, actor services.Actor, courseID, sectionID, lectureID, contentType, key, url string) services.Result
}

// PaymentActivator turns payment notifications into enrollments
type PaymentActivator interface {
	Activate(ctx context.Context, ev services.PaymentEvent) (services.Activation, error)
}

// SecurityRecorder opens security alerts for suspicious requests
type SecurityRecorder interface {
	RecordSecurityEvent(ctx context.Context, eventType, targetID, details string) error
}

var (
	_ AssetStorage     = (*services.S3Service)(nil)
	_ AssetSigner      = (*services.S3Service)(nil)
	_ LectureAssets    = (*services.Service)(nil)
	_ PaymentActivator = (*services.EnrollmentActivator)(nil)
	_ SecurityRecorder = (*services.Service)(nil)
)
