// Package calendar 提供以 ISO-8601 周为单位的日期计算
package calendar

import (
	"fmt"
	"time"
)

const (
	DateLayout          = "2006-01-02"
	TimeLayout          = "15:04"
	PublishedDateLayout = "02 Jan 2006, 15:04"
)

// CalculateWeekAndYear 返回 date 所在的 ISO 周序号和 ISO 年份
func CalculateWeekAndYear(date time.Time) (week int, year int) {
	year, week = date.ISOWeek()
	return week, year
}

// GetWeekRange 返回 date 所在周的周一和周日，格式为 YYYY-MM-DD
func GetWeekRange(date time.Time) (string, string) {
	monday := startOfWeek(date)
	return monday.Format(DateLayout), monday.AddDate(0, 0, 6).Format(DateLayout)
}

// WeekStart 返回 ISO 年份 year 的第 week 周的周一（UTC 零点）
func WeekStart(week, year int) (time.Time, error) {
	if week < 1 || week > WeeksInYear(year) {
		return time.Time{}, fmt.Errorf("week %d is out of range for year %d", week, year)
	}

	// 1 月 4 日总是落在 ISO 年份的第一周
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	return startOfWeek(jan4).AddDate(0, 0, (week-1)*7), nil
}

// WeeksInYear 返回 ISO 年份中的周数（52 或 53）
func WeeksInYear(year int) int {
	// 12 月 28 日总是落在 ISO 年份的最后一周
	_, week := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return week
}

func FormatPublishedDate(t time.Time) string {
	return t.UTC().Format(PublishedDateLayout)
}

func startOfWeek(date time.Time) time.Time {
	d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(d.Weekday()) + 6) % 7 // 周一为 0
	return d.AddDate(0, 0, -offset)
}
