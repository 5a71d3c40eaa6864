package shiftpage

import (
	"slices"
	"strings"

	"github.com/sysu-ecnc-dev/shift-board/internal/domain"
)

const DefaultPerPage = 10

var PerPageOptions = []int{10, 15, 20, 25, 30}

type Column string

const (
	ColumnName      Column = "name"
	ColumnDate      Column = "date"
	ColumnStartTime Column = "startTime"
	ColumnEndTime   Column = "endTime"
	ColumnActions   Column = "actions"
)

type ColumnSpec struct {
	Key      Column
	Name     string
	Sortable bool
}

var Columns = []ColumnSpec{
	{Key: ColumnName, Name: "Name", Sortable: true},
	{Key: ColumnDate, Name: "Date", Sortable: true},
	{Key: ColumnStartTime, Name: "Start Time", Sortable: true},
	{Key: ColumnEndTime, Name: "End Time", Sortable: true},
	{Key: ColumnActions, Name: "Actions"},
}

func isSortable(col Column) bool {
	for _, c := range Columns {
		if c.Key == col {
			return c.Sortable
		}
	}
	return false
}

func isPerPageOption(n int) bool {
	return slices.Contains(PerPageOptions, n)
}

// SetSort 按列排序，不可排序的列会被忽略
func (p *Page) SetSort(col Column, desc bool) {
	if !isSortable(col) {
		return
	}

	p.SortColumn = col
	p.SortDesc = desc
	p.CurrentPage = 1
}

func (p *Page) SetPage(n int) {
	p.CurrentPage = n
	p.clampPage()
}

func (p *Page) SetPerPage(n int) {
	if !isPerPageOption(n) {
		return
	}
	p.PerPage = n
	p.CurrentPage = 1
}

func (p *Page) PageCount() int {
	if len(p.Rows) == 0 {
		return 1
	}
	return (len(p.Rows) + p.PerPage - 1) / p.PerPage
}

// PageRows 返回排序后当前页的行，不会改变 Rows 本身的顺序
func (p *Page) PageRows() []domain.Shift {
	rows := slices.Clone(p.Rows)
	if p.SortColumn != "" {
		slices.SortStableFunc(rows, func(a, b domain.Shift) int {
			c := strings.Compare(sortKey(a, p.SortColumn), sortKey(b, p.SortColumn))
			if p.SortDesc {
				return -c
			}
			return c
		})
	}

	start := (p.CurrentPage - 1) * p.PerPage
	if start >= len(rows) {
		return []domain.Shift{}
	}
	end := min(start+p.PerPage, len(rows))
	return rows[start:end]
}

func (p *Page) clampPage() {
	if p.PerPage <= 0 {
		p.PerPage = DefaultPerPage
	}
	if p.CurrentPage < 1 {
		p.CurrentPage = 1
	}
	if last := p.PageCount(); p.CurrentPage > last {
		p.CurrentPage = last
	}
}

// 日期和时间都是定长格式，直接按字符串比较即可
func sortKey(s domain.Shift, col Column) string {
	switch col {
	case ColumnName:
		return strings.ToLower(s.Name)
	case ColumnDate:
		return s.Date
	case ColumnStartTime:
		return s.StartTime
	case ColumnEndTime:
		return s.EndTime
	default:
		return ""
	}
}
