package domain

import "time"

type WeekStatus string

const (
	WeekStatusDraft     WeekStatus = "draft"
	WeekStatusPublished WeekStatus = "published"
)

type Week struct {
	ID         string     `json:"id"`
	WeekNumber int        `json:"weekNumber"`
	Year       int        `json:"year"`
	Status     WeekStatus `json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	Version    int32      `json:"-"`
}

func (w *Week) IsDraft() bool {
	return w.Status == WeekStatusDraft
}

type Shift struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Date      string    `json:"date"`      // YYYY-MM-DD
	StartTime string    `json:"startTime"` // HH:MM
	EndTime   string    `json:"endTime"`   // HH:MM
	Week      Week      `json:"week"`
	CreatedAt time.Time `json:"createdAt"`
	Version   int32     `json:"-"`
}
