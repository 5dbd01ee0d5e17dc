package models

import "time"

type Role struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Permissions map[Permission]bool `json:"permissions"`
	UpdatedAt   time.Time           `json:"updatedAt,omitempty"`
}

// Has reports whether the exact key is granted
func (r *Role) Has(p Permission) bool {
	return r != nil && r.Permissions[p]
}

// User is the profile kept next to the identity provider account
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
}

type Course struct {
	Base
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Category     string       `json:"category"`
	Price        float64      `json:"price"`
	Currency     string       `json:"currency"`
	ImageURL     string       `json:"imageUrl,omitempty"`
	Status       CourseStatus `json:"status"`
	InstructorID string       `json:"instructorId"`
	ReviewNote   string       `json:"reviewNote,omitempty"`
}

type Section struct {
	Base
	Title    string `json:"title"`
	Order    int    `json:"order"`
	CourseID string `json:"courseId"`
}

type Lecture struct {
	Base
	Title       string      `json:"title"`
	Type        LectureType `json:"type"`
	Order       int         `json:"order"`
	SectionID   string      `json:"sectionId"`
	CourseID    string      `json:"courseId"`
	Duration    int         `json:"duration,omitempty"`
	VideoURL    string      `json:"videoUrl,omitempty"`
	TextContent string      `json:"textContent,omitempty"`
	PDFURL      string      `json:"pdfUrl,omitempty"`
	// AssetKey is the blob storage key of an uploaded video or pdf
	AssetKey string `json:"assetKey,omitempty"`
}

type Quiz struct {
	Base
	Title       string `json:"title"`
	Description string `json:"description"`
	SectionID   string `json:"sectionId"`
	CourseID    string `json:"courseId"`
}

type QuestionOption struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

type Question struct {
	Base
	Text    string           `json:"text"`
	Options []QuestionOption `json:"options"`
	Order   int              `json:"order"`
	QuizID  string           `json:"quizId"`
}

type Assignment struct {
	Base
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	MaxScore    int        `json:"maxScore"`
	SectionID   string     `json:"sectionId"`
	CourseID    string     `json:"courseId"`
}

type Submission struct {
	Base
	StudentID string           `json:"studentId"`
	Content   string           `json:"content"`
	Status    SubmissionStatus `json:"status"`
	Grade     *float64         `json:"grade,omitempty"`
	Feedback  string           `json:"feedback,omitempty"`
	GradedBy  string           `json:"gradedBy,omitempty"`
}

type Resource struct {
	Base
	Title    string       `json:"title"`
	Type     ResourceType `json:"type"`
	URL      string       `json:"url"`
	CourseID string       `json:"courseId"`
}

type Enrollment struct {
	ID                string           `json:"id"`
	StudentID         string           `json:"studentId"`
	CourseID          string           `json:"courseId"`
	InstructorID      string           `json:"instructorId"`
	Status            EnrollmentStatus `json:"status"`
	Progress          int              `json:"progress"`
	PriceAtEnrollment float64          `json:"priceAtEnrollment"`
	Currency          string           `json:"currency,omitempty"`
	TransactionID     string           `json:"transactionId"`
	EnrolledAt        time.Time        `json:"enrolledAt"`
	LastAccessedAt    time.Time        `json:"lastAccessedAt"`
}

type AuditTarget struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// AuditLogEntry is append-only
type AuditLogEntry struct {
	ID        string      `json:"id"`
	AdminID   string      `json:"adminId"`
	EventType string      `json:"eventType"`
	Target    AuditTarget `json:"target"`
	Details   string      `json:"details"`
	IPAddress string      `json:"ipAddress,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type SecurityLogEntry struct {
	ID         string      `json:"id"`
	EventType  string      `json:"eventType"`
	TargetID   string      `json:"targetId"`
	Details    string      `json:"details,omitempty"`
	Status     AlertStatus `json:"status"`
	ResolvedBy string      `json:"resolvedBy,omitempty"`
	ResolvedAt *time.Time  `json:"resolvedAt,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
}

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Text      string    `json:"text"`
	Link      string    `json:"link,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

type Activity struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	CourseID  string    `json:"courseId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type Settings struct {
	SiteName           string  `json:"siteName"`
	SupportEmail       string  `json:"supportEmail"`
	MaintenanceMode    bool    `json:"maintenanceMode"`
	PlatformCommission float64 `json:"platformCommission"`
	AllowRegistrations bool    `json:"allowRegistrations"`
}
