package model

import (
	"time"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

type Submission struct {
	SubmissionID int64 `gorm:"primaryKey;autoIncrement" json:"submission_id"`
	ProjectID    int64 `gorm:"not null;index" json:"project_id"`

	Description   string `gorm:"type:text" json:"description"`
	PlayableURL   string `gorm:"type:text" json:"playable_url"`
	RepoURL       string `gorm:"type:text" json:"repo_url"`
	ScreenshotURL string `gorm:"type:text" json:"screenshot_url"`

	ApprovalStatus string `gorm:"type:text;not null;default:'pending';check:approval_status IN ('pending','approved','rejected');index" json:"approval_status"`

	ApprovedHours      *float64 `json:"approved_hours"`
	HoursJustification *string  `gorm:"type:text" json:"hours_justification"`

	// Set together, only by the review orchestrator, whenever the approval
	// status transitions. ReviewedBy stores the reviewer's numeric user id
	// encoded as a string.
	ReviewedBy *string    `gorm:"type:text" json:"reviewed_by"`
	ReviewedAt *time.Time `json:"reviewed_at"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Submission <-> Project
	Project *Project `gorm:"foreignKey:ProjectID;references:ProjectID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"project,omitempty"`
}

func (Submission) TableName() string { return "submissions" }

// TerminalStatus reports whether s carries a final review verdict.
func TerminalStatus(status string) bool {
	return status == StatusApproved || status == StatusRejected
}
