package domain

const MailTypeWeekPublished = "week_published"

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type WeekPublishedMailData struct {
	FullName    string `json:"fullName"`
	WeekNumber  int    `json:"weekNumber"`
	Year        int    `json:"year"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	PublishedAt string `json:"publishedAt"`
	ShiftCount  int    `json:"shiftCount"`
}
