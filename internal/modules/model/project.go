package model

import (
	"time"

	"gorm.io/datatypes"
)

type Project struct {
	ProjectID int64 `gorm:"primaryKey;autoIncrement" json:"project_id"`
	UserID    int64 `gorm:"not null;index" json:"user_id"`

	ProjectTitle string `gorm:"type:text;not null" json:"project_title"`
	ProjectType  string `gorm:"type:text" json:"project_type"`
	Description  string `gorm:"type:text" json:"description"`

	PlayableURL   string `gorm:"type:text" json:"playable_url"`
	RepoURL       string `gorm:"type:text" json:"repo_url"`
	ScreenshotURL string `gorm:"type:text" json:"screenshot_url"`

	// Hackatime project names the participant claims belong to this project.
	NowHackatimeProjects datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"now_hackatime_projects"`
	// Last reconciled hour total. Zero is a valid, persisted outcome.
	NowHackatimeHours float64 `gorm:"not null;default:0" json:"now_hackatime_hours"`

	ApprovedHours      *float64 `json:"approved_hours"`
	HoursJustification *string  `gorm:"type:text" json:"hours_justification"`

	// Airtable row for this project; presence distinguishes first sync
	// (create) from resync (update).
	AirtableRecID *string `gorm:"column:airtable_rec_id;type:text" json:"airtable_rec_id"`

	IsLocked bool `gorm:"not null;default:false" json:"is_locked"`
	IsFraud  bool `gorm:"not null;default:false" json:"is_fraud"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Project <-> User
	User *User `gorm:"foreignKey:UserID;references:UserID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"user,omitempty"`

	// Project <-> Submission (resubmission history)
	Submissions []Submission `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (Project) TableName() string { return "projects" }
