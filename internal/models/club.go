package models

import "time"

// ClubRole is a member's position in a club.
type ClubRole string

const (
	ClubRolePresident ClubRole = "president"
	ClubRoleOfficer   ClubRole = "officer"
	ClubRoleMember    ClubRole = "member"
)

// Club is a student organisation.
type Club struct {
	ID          string       `db:"id" json:"id"`
	Name        string       `db:"name" json:"name"`
	Description string       `db:"description" json:"description"`
	Category    string       `db:"category" json:"category"`
	Logo        string       `db:"logo" json:"logo"`
	MemberCount int          `db:"member_count" json:"memberCount"`
	Members     []ClubMember `db:"-" json:"members,omitempty"`
	CreatedAt   time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updatedAt"`
}

// ClubMember is keyed by email within a club.
type ClubMember struct {
	ClubID   string    `db:"club_id" json:"clubId"`
	Email    string    `db:"email" json:"email"`
	Role     ClubRole  `db:"role" json:"role"`
	JoinedAt time.Time `db:"joined_at" json:"joinedAt"`
}

// ClubFilter defines filter criteria for listing clubs.
type ClubFilter struct {
	ListOptions
	Category string
}
