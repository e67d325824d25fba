package models

import "time"

// DashboardSummary aggregates portal-wide counters for the admin dashboard.
type DashboardSummary struct {
	Users            int                `json:"users"`
	Classes          int                `json:"classes"`
	Faculty          int                `json:"faculty"`
	UpcomingEvents   int                `json:"upcomingEvents"`
	Clubs            int                `json:"clubs"`
	MenuItems        int                `json:"menuItems"`
	BusRoutes        int                `json:"busRoutes"`
	LostFoundByState map[string]int     `json:"lostFoundByStatus"`
	OrdersByStatus   map[string]int     `json:"ordersByStatus"`
	Revenue          float64            `json:"revenue"`
	OnlineUsers      int                `json:"onlineUsers"`
	GeneratedAt      time.Time          `json:"generatedAt"`
	Extra            map[string]float64 `json:"extra,omitempty"`
}
