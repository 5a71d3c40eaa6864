// Package seed 向开发数据库写入测试数据
package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/sysu-ecnc-dev/shift-board/internal/domain"
	"github.com/sysu-ecnc-dev/shift-board/internal/utils"
)

type UserCreator interface {
	CreateUser(user *domain.User) error
}

type ShiftCreator interface {
	CreateShift(shift *domain.Shift) error
}

// Users 插入 n 个随机员工，返回成功插入的数量
func Users(r UserCreator, n int, password, emailDomain string) int {
	cnt := 0
	for range n {
		user, err := utils.GenerateRandomUser(password, emailDomain)
		if err != nil {
			slog.Error("无法生成随机用户", "error", err)
			continue
		}

		// 用户名可能重复，失败的跳过即可
		if err := r.CreateUser(user); err != nil {
			slog.Error("无法插入用户", "username", user.Username, "error", err)
			continue
		}
		cnt++
	}

	return cnt
}

// Shifts 在 day 所在的周插入 n 个随机班次
func Shifts(r ShiftCreator, n int, day time.Time) int {
	cnt := 0
	for range n {
		shift := utils.GenerateRandomShift(day)
		if err := r.CreateShift(shift); err != nil {
			slog.Error("无法插入班次", "date", shift.Date, "error", err)
			continue
		}
		cnt++
	}

	return cnt
}

var requiredHeaders = []string{"班次", "日期", "时段"}

// ImportShifts 从 CSV 导入班次。时段一列形如 "09：00-10：00"，全角和半角冒号都可以
func ImportShifts(r ShiftCreator, reader io.Reader) (int, error) {
	cr := csv.NewReader(reader)

	headers, err := cr.Read()
	if err != nil {
		return 0, fmt.Errorf("读取表头失败: %w", err)
	}

	index := make(map[string]int, len(headers))
	for i, header := range headers {
		index[strings.TrimSpace(header)] = i
	}
	for _, header := range requiredHeaders {
		if _, ok := index[header]; !ok {
			return 0, fmt.Errorf("没有找到 %s 列", header)
		}
	}

	cnt := 0
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return cnt, err
		}

		shift, err := parseShiftRow(row, index)
		if err != nil {
			slog.Error("无法解析班次", "line", line, "error", err)
			continue
		}
		if err := utils.ValidateShiftTime(shift); err != nil {
			slog.Error("班次不合法", "line", line, "error", err)
			continue
		}

		if err := r.CreateShift(shift); err != nil {
			slog.Error("无法插入班次", "line", line, "error", err)
			continue
		}
		cnt++
	}

	return cnt, nil
}

func parseShiftRow(row []string, index map[string]int) (*domain.Shift, error) {
	start, end, ok := strings.Cut(strings.ReplaceAll(row[index["时段"]], "：", ":"), "-")
	if !ok {
		return nil, fmt.Errorf("时段格式错误: %q", row[index["时段"]])
	}

	return &domain.Shift{
		Name:      strings.TrimSpace(row[index["班次"]]),
		Date:      strings.TrimSpace(row[index["日期"]]),
		StartTime: strings.TrimSpace(start),
		EndTime:   strings.TrimSpace(end),
	}, nil
}
