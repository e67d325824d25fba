package models

import (
	"time"

	"github.com/lib/pq"
)

// BusSchedule is one campus shuttle departure.
type BusSchedule struct {
	ID            string         `db:"id" json:"id"`
	RouteName     string         `db:"route_name" json:"routeName"`
	RouteNumber   string         `db:"route_number" json:"routeNumber"`
	Origin        string         `db:"origin" json:"origin"`
	Destination   string         `db:"destination" json:"destination"`
	DepartureTime string         `db:"departure_time" json:"departureTime"`
	ArrivalTime   string         `db:"arrival_time" json:"arrivalTime"`
	Stops         pq.StringArray `db:"stops" json:"stops"`
	Days          pq.StringArray `db:"days" json:"days"`
	DriverName    string         `db:"driver_name" json:"driverName"`
	DriverContact string         `db:"driver_contact" json:"driverContact"`
	Active        bool           `db:"active" json:"active"`
	CreatedAt     time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updatedAt"`
}

// BusFilter defines filter criteria for listing schedules.
type BusFilter struct {
	ListOptions
	Route  string
	Day    string
	Active *bool
}
