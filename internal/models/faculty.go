package models

import (
	"database/sql/driver"
	"time"

	"github.com/lib/pq"
)

// SocialLinks holds optional public profiles of a faculty member.
type SocialLinks struct {
	LinkedIn string `json:"linkedin,omitempty" validate:"omitempty,url"`
	Twitter  string `json:"twitter,omitempty" validate:"omitempty,url"`
	Website  string `json:"website,omitempty" validate:"omitempty,url"`
	Scholar  string `json:"scholar,omitempty" validate:"omitempty,url"`
}

// Scan implements sql.Scanner.
func (s *SocialLinks) Scan(src interface{}) error { return scanJSON(src, s) }

// Value implements driver.Valuer.
func (s SocialLinks) Value() (driver.Value, error) { return jsonValue(s) }

// Faculty is an entry of the faculty directory.
type Faculty struct {
	ID          string         `db:"id" json:"id"`
	Name        string         `db:"name" json:"name"`
	Department  string         `db:"department" json:"department"`
	Position    string         `db:"position" json:"position"`
	Email       string         `db:"email" json:"email"`
	Phone       string         `db:"phone" json:"phone"`
	OfficeHours string         `db:"office_hours" json:"officeHours"`
	Office      string         `db:"office" json:"office"`
	Education   string         `db:"education" json:"education"`
	Expertise   pq.StringArray `db:"expertise" json:"expertise"`
	Social      SocialLinks    `db:"social" json:"social"`
	ImageURL    string         `db:"image_url" json:"imageUrl"`
	Available   bool           `db:"available" json:"available"`
	CreatedAt   time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updatedAt"`
}

// FacultyFilter defines filter criteria for the directory.
type FacultyFilter struct {
	ListOptions
	Department string
	Available  *bool
}
