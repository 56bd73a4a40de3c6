package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

const RequestTypeProjectUpdate = "project_update"

type EditRequest struct {
	RequestID int64 `gorm:"primaryKey;autoIncrement" json:"request_id"`
	ProjectID int64 `gorm:"not null;index" json:"project_id"`
	UserID    int64 `gorm:"not null;index" json:"user_id"`

	RequestType string `gorm:"type:text;not null;default:'project_update'" json:"request_type"`

	// Partial project patch requested by the participant; absent fields are
	// left untouched on approval.
	RequestedData ProjectPatch `gorm:"type:jsonb;not null;serializer:json" json:"requested_data"`

	Status string `gorm:"type:text;not null;default:'pending';check:status IN ('pending','approved','rejected');index" json:"status"`

	ReviewedBy *int64     `gorm:"index" json:"reviewed_by"`
	ReviewedAt *time.Time `json:"reviewed_at"`
	// Required on reject.
	Reason *string `gorm:"type:text" json:"reason"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Project  *Project `gorm:"foreignKey:ProjectID;references:ProjectID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"project,omitempty"`
	User     *User    `gorm:"foreignKey:UserID;references:UserID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"requester,omitempty"`
	Reviewer *User    `gorm:"foreignKey:ReviewedBy;references:UserID" json:"reviewer,omitempty"`
}

func (EditRequest) TableName() string { return "edit_requests" }

// ProjectPatch is the participant-requested partial update carried by an edit
// request. Field presence is signalled by non-nil pointers, never inferred
// from zero values.
type ProjectPatch struct {
	ProjectTitle         *string   `json:"project_title,omitempty"`
	Description          *string   `json:"description,omitempty"`
	PlayableURL          *string   `json:"playable_url,omitempty"`
	RepoURL              *string   `json:"repo_url,omitempty"`
	ScreenshotURL        *string   `json:"screenshot_url,omitempty"`
	AirtableRecID        *string   `json:"airtable_rec_id,omitempty"`
	NowHackatimeProjects *[]string `json:"now_hackatime_projects,omitempty"`
}

// Scan implements the sql.Scanner interface for ProjectPatch.
func (p *ProjectPatch) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value")
	}
	return json.Unmarshal(bytes, p)
}

// Value implements the driver.Valuer interface for ProjectPatch.
func (p ProjectPatch) Value() (driver.Value, error) {
	return json.Marshal(p)
}
