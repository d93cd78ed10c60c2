package models

import "time"

// Activity is one entry of the recent-activity feed.
type Activity struct {
	UserEmail string    `json:"userEmail"`
	Question  string    `json:"question"`
	CreatedAt time.Time `json:"createdAt"`
}

// Stats summarises the store contents.
type Stats struct {
	TotalUsers     int64      `json:"totalUsers"`
	TotalQuestions int64      `json:"totalQuestions"`
	RecentActivity []Activity `json:"recentActivity"`
}
