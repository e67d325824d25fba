package models

import "time"

// ItemType distinguishes lost reports from found reports.
type ItemType string

const (
	ItemTypeLost  ItemType = "lost"
	ItemTypeFound ItemType = "found"
)

// ItemStatus is the handling state of a report.
type ItemStatus string

const (
	ItemStatusPending    ItemStatus = "pending"
	ItemStatusInProgress ItemStatus = "in-progress"
	ItemStatusResolved   ItemStatus = "resolved"
)

// LostFoundItem is a lost-and-found report.
type LostFoundItem struct {
	ID            string     `db:"id" json:"id"`
	ItemName      string     `db:"item_name" json:"itemName"`
	ItemType      ItemType   `db:"item_type" json:"itemType"`
	Category      string     `db:"category" json:"category"`
	Location      string     `db:"location" json:"location"`
	Date          time.Time  `db:"item_date" json:"date"`
	ReporterName  string     `db:"reporter_name" json:"reporterName"`
	ContactNumber string     `db:"contact_number" json:"contactNumber"`
	Description   string     `db:"description" json:"description"`
	Status        ItemStatus `db:"status" json:"status"`
	ImageURL      string     `db:"image_url" json:"imageUrl"`
	ReportedBy    *string    `db:"reported_by" json:"reportedBy,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updatedAt"`
}

// LostFoundFilter defines filter criteria for listing reports.
type LostFoundFilter struct {
	ListOptions
	ItemType ItemType
	Status   ItemStatus
	Category string
}
