package validator

import (
	"time"

	"ndara/internal/models"
)

// Request validation structs based on models

type CourseInput struct {
	Title       string  `json:"title" validate:"required,min=5,max=150"`
	Description string  `json:"description" validate:"required,min=20"`
	Category    string  `json:"category" validate:"required"`
	Price       float64 `json:"price" validate:"gte=0"`
	Currency    string  `json:"currency" validate:"omitempty,len=3,uppercase"`
	ImageURL    string  `json:"imageUrl" validate:"omitempty,url"`
}

type SectionInput struct {
	Title string `json:"title" validate:"required,min=3,max=120"`
}

type LectureInput struct {
	Title       string             `json:"title" validate:"required,min=3,max=150"`
	Type        models.LectureType `json:"type" validate:"required,lecture_type"`
	Duration    int                `json:"duration" validate:"gte=0"`
	VideoURL    string             `json:"videoUrl" validate:"required_if=Type video,omitempty,url"`
	TextContent string             `json:"textContent" validate:"required_if=Type text"`
	PDFURL      string             `json:"pdfUrl" validate:"required_if=Type pdf,omitempty,url"`
}

type QuizInput struct {
	Title       string `json:"title" validate:"required,min=3"`
	Description string `json:"description" validate:"max=1000"`
}

type OptionInput struct {
	Text      string `json:"text" validate:"required"`
	IsCorrect bool   `json:"isCorrect"`
}

// QuestionInput also carries a struct-level rule: one option must be correct
type QuestionInput struct {
	Text    string        `json:"text" validate:"required,min=5"`
	Options []OptionInput `json:"options" validate:"required,min=2,dive"`
}

type AssignmentInput struct {
	Title       string     `json:"title" validate:"required,min=3"`
	Description string     `json:"description" validate:"required,min=10"`
	DueDate     *time.Time `json:"dueDate"`
	MaxScore    int        `json:"maxScore" validate:"required,min=1,max=1000"`
}

type ResourceInput struct {
	Title string              `json:"title" validate:"required,min=3"`
	Type  models.ResourceType `json:"type" validate:"required,resource_type"`
	URL   string              `json:"url" validate:"required,url"`
}

type RolePermissionPatch struct {
	Permissions map[models.Permission]bool `json:"permissions" validate:"required,min=1,dive,keys,permission_key,endkeys"`
}

type SettingsInput struct {
	SiteName           string  `json:"siteName" validate:"required,min=2"`
	SupportEmail       string  `json:"supportEmail" validate:"required,email"`
	MaintenanceMode    bool    `json:"maintenanceMode"`
	PlatformCommission float64 `json:"platformCommission" validate:"gte=0,lte=100"`
	AllowRegistrations bool    `json:"allowRegistrations"`
}

type OrderItem struct {
	ID    string `json:"id" validate:"required"`
	Order int    `json:"order" validate:"gte=0"`
}

type ReorderInput struct {
	Items []OrderItem `json:"items" validate:"required,min=1,dive"`
}

type GradeInput struct {
	Grade    *float64 `json:"grade" validate:"required,gte=0"`
	Feedback string   `json:"feedback" validate:"max=5000"`
}

type ModerationInput struct {
	Decision string `json:"decision" validate:"required,oneof=approve reject"`
	Note     string `json:"note" validate:"required_if=Decision reject,max=2000"`
}

type SubmissionInput struct {
	Content string `json:"content" validate:"required,min=1"`
}
