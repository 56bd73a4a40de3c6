package model

import (
	"time"
)

type User struct {
	UserID    int64     `gorm:"primaryKey;autoIncrement" json:"user_id"`
	FirstName string    `gorm:"type:text;not null" json:"first_name"`
	LastName  string    `gorm:"type:text;not null" json:"last_name"`
	Email     string    `gorm:"type:text;not null;uniqueIndex" json:"email"`
	Birthday  time.Time `gorm:"not null" json:"birthday"`

	AddressLine1 string `gorm:"type:text" json:"address_line1"`
	AddressLine2 string `gorm:"type:text" json:"address_line2"`
	City         string `gorm:"type:text" json:"city"`
	State        string `gorm:"type:text" json:"state"`
	Country      string `gorm:"type:text" json:"country"`
	ZipCode      string `gorm:"type:text" json:"zip_code"`

	// Hackatime user id, linked via the auth flow. Unique when present;
	// Postgres allows any number of NULLs under the unique index.
	HackatimeAccount *string `gorm:"type:text;uniqueIndex" json:"hackatime_account"`

	// Airtable participant record, shared across all of the user's projects.
	AirtableRecID *string `gorm:"column:airtable_rec_id;type:text" json:"airtable_rec_id"`

	IsSuspected bool `gorm:"not null;default:false" json:"is_suspected"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// User <-> Project
	Projects []Project `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (User) TableName() string { return "users" }
