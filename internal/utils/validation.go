package utils

import (
	"fmt"
	"time"

	"github.com/sysu-ecnc-dev/shift-board/internal/calendar"
	"github.com/sysu-ecnc-dev/shift-board/internal/domain"
)

// ValidateShiftTime 检查班次的日期和时间格式，并要求结束时间晚于开始时间
func ValidateShiftTime(shift *domain.Shift) error {
	if _, err := time.Parse(calendar.DateLayout, shift.Date); err != nil {
		return fmt.Errorf("invalid date %q", shift.Date)
	}

	startTime, err := time.Parse(calendar.TimeLayout, shift.StartTime)
	if err != nil {
		return fmt.Errorf("invalid start time %q", shift.StartTime)
	}
	endTime, err := time.Parse(calendar.TimeLayout, shift.EndTime)
	if err != nil {
		return fmt.Errorf("invalid end time %q", shift.EndTime)
	}

	if !endTime.After(startTime) {
		return fmt.Errorf("end time must be after start time")
	}

	return nil
}
