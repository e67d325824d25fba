package models

import "time"

// MenuItem is something the cafeteria sells.
type MenuItem struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Category    string    `db:"category" json:"category"`
	Price       float64   `db:"price" json:"price"`
	ImageURL    string    `db:"image_url" json:"imageUrl"`
	Available   bool      `db:"available" json:"available"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// MenuFilter defines filter criteria for the menu.
type MenuFilter struct {
	ListOptions
	Category  string
	Available *bool
}
