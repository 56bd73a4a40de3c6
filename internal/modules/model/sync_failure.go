package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	SyncKindAirtableCreate = "airtable_create"
	SyncKindAirtableUpdate = "airtable_update"
	SyncKindEmail          = "email"
	SyncKindSlack          = "slack"
)

// SyncFailure journals absorbed downstream failures (Airtable mirror writes,
// notification sends) so a backfill job can repair drift later. The primary
// review transaction never depends on rows landing here.
type SyncFailure struct {
	ID   uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Kind string    `gorm:"type:text;not null;index" json:"kind"`

	ProjectID    *int64 `gorm:"index" json:"project_id"`
	SubmissionID *int64 `gorm:"index" json:"submission_id"`

	ErrorMsg string `gorm:"type:text;not null" json:"error_msg"`

	Resolved  bool       `gorm:"not null;default:false;index" json:"resolved"`
	RetriedAt *time.Time `json:"retried_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (SyncFailure) TableName() string { return "sync_failures" }
