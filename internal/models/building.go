package models

import "time"

// Building is a campus map marker.
type Building struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Code        string    `db:"code" json:"code"`
	Description string    `db:"description" json:"description"`
	Latitude    float64   `db:"latitude" json:"latitude"`
	Longitude   float64   `db:"longitude" json:"longitude"`
	Category    string    `db:"category" json:"category"`
	Floors      int       `db:"floors" json:"floors"`
	ImageURL    string    `db:"image_url" json:"imageUrl"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// NearbyBuilding annotates a building with its distance from the caller.
type NearbyBuilding struct {
	Building
	DistanceMeters float64 `json:"distanceMeters"`
	Detected       bool    `json:"detected"`
}

// BuildingFilter defines filter criteria for listing buildings.
type BuildingFilter struct {
	ListOptions
	Category string
}
