// Package shiftpage 实现周班次管理页面的状态和交互逻辑：
// 加载当前周的班次、删除班次、发布当前周，以及表格的分页和排序。
// 页面本身不关心如何渲染，web 包负责把 View 渲染成 HTML。
package shiftpage

import (
	"context"
	"errors"
	"time"

	"github.com/sysu-ecnc-dev/shift-board/internal/calendar"
	"github.com/sysu-ecnc-dev/shift-board/internal/domain"
	"github.com/sysu-ecnc-dev/shift-board/internal/shiftapi"
)

var errNoSelection = errors.New("ID is null")

// Service 是页面依赖的 API，*shiftapi.Client 实现了它
type Service interface {
	GetShifts(ctx context.Context, week, year int) (*shiftapi.ShiftsResult, error)
	DeleteShiftByID(ctx context.Context, id string) error
	PublishWeek(ctx context.Context, weekID string) error
}

// State 是页面的全部本地状态，可以被序列化后跨请求保存
type State struct {
	Rows    []domain.Shift `json:"rows"`
	Loading bool           `json:"loading"`
	ErrMsg  string         `json:"errMsg"`

	SelectedID        *string `json:"selectedId"`
	ShowDeleteConfirm bool    `json:"showDeleteConfirm"`
	DeleteLoading     bool    `json:"deleteLoading"`
	Publishing        bool    `json:"publishing"`

	CurrentWeek   int          `json:"currentWeek"`
	CurrentYear   int          `json:"currentYear"`
	StartDate     string       `json:"startDate"`
	EndDate       string       `json:"endDate"`
	WeekData      *domain.Week `json:"weekData"`
	Published     bool         `json:"published"`
	PublishedDate string       `json:"publishedDate"`

	CurrentPage int    `json:"currentPage"`
	PerPage     int    `json:"perPage"`
	SortColumn  Column `json:"sortColumn"`
	SortDesc    bool   `json:"sortDesc"`
}

type Page struct {
	svc Service
	err error
	State
}

func New(svc Service) *Page {
	return &Page{
		svc: svc,
		State: State{
			Rows:        []domain.Shift{},
			CurrentPage: 1,
			PerPage:     DefaultPerPage,
		},
	}
}

// Restore 用之前保存的状态重建页面
func Restore(svc Service, state State) *Page {
	p := &Page{svc: svc, State: state}
	if p.Rows == nil {
		p.Rows = []domain.Shift{}
	}
	if !isPerPageOption(p.PerPage) {
		p.PerPage = DefaultPerPage
	}
	p.clampPage()
	return p
}

// Mount 计算 now 所在的周并加载该周的班次
func (p *Page) Mount(ctx context.Context, now time.Time) {
	week, year := calendar.CalculateWeekAndYear(now)
	firstDay, lastDay := calendar.GetWeekRange(now)

	p.CurrentWeek = week
	p.CurrentYear = year
	p.StartDate = firstDay
	p.EndDate = lastDay

	p.Load(ctx)
}

// Load 重新拉取当前周的班次。失败时保留原来的行数据并显示错误
func (p *Page) Load(ctx context.Context) {
	p.Loading = true
	p.clearError()
	defer func() {
		p.Loading = false
	}()

	if err := p.fetch(ctx); err != nil {
		p.fail(err)
	}
}

func (p *Page) fetch(ctx context.Context) error {
	if p.CurrentWeek == 0 || p.CurrentYear == 0 {
		return nil
	}

	result, err := p.svc.GetShifts(ctx, p.CurrentWeek, p.CurrentYear)
	if err != nil {
		return err
	}

	// 行数据和周状态总是一起更新
	p.WeekData = nil
	p.Published = false
	p.PublishedDate = ""
	if len(result.Results) > 0 {
		week := result.Results[0].Week
		p.WeekData = &week
		if week.Status == domain.WeekStatusPublished {
			p.Published = true
			p.PublishedDate = calendar.FormatPublishedDate(week.UpdatedAt)
		}
	}
	p.Rows = result.Results
	p.clampPage()

	return nil
}

// OpenDelete 打开删除确认框。不存在或者不可编辑的行会被忽略
func (p *Page) OpenDelete(id string) {
	row := p.findRow(id)
	if row == nil || p.Actions(*row).Disabled {
		return
	}

	p.SelectedID = &id
	p.ShowDeleteConfirm = true
}

func (p *Page) CloseDelete() {
	p.SelectedID = nil
	p.ShowDeleteConfirm = false
}

// ConfirmDelete 删除选中的班次，成功后只在本地移除对应的行，不重新拉取
func (p *Page) ConfirmDelete(ctx context.Context) {
	p.DeleteLoading = true
	p.clearError()
	defer func() {
		p.DeleteLoading = false
		p.CloseDelete()
	}()

	if p.SelectedID == nil {
		p.fail(errNoSelection)
		return
	}

	id := *p.SelectedID
	if err := p.svc.DeleteShiftByID(ctx, id); err != nil {
		p.fail(err)
		return
	}

	for i := range p.Rows {
		if p.Rows[i].ID == id {
			p.Rows = append(p.Rows[:i:i], p.Rows[i+1:]...)
			break
		}
	}
	p.clampPage()
}

// Publish 发布当前周，然后重新拉取班次以刷新状态和发布时间
func (p *Page) Publish(ctx context.Context) {
	if p.SubmitDisabled() {
		return
	}

	p.Publishing = true
	p.clearError()
	defer func() {
		p.Publishing = false
	}()

	if p.WeekData != nil {
		if err := p.svc.PublishWeek(ctx, p.WeekData.ID); err != nil {
			p.fail(err)
			return
		}
		p.Published = true
	}

	if err := p.fetch(ctx); err != nil {
		p.fail(err)
	}
}

// Err 返回本次请求中最近一次失败的原因，ErrMsg 只保存展示给用户的文本
func (p *Page) Err() error {
	return p.err
}

func (p *Page) fail(err error) {
	p.err = err
	p.ErrMsg = shiftapi.ErrorMessage(err)
}

func (p *Page) clearError() {
	p.err = nil
	p.ErrMsg = ""
}

// SubmitDisabled 没有班次或者已经发布时不允许提交
func (p *Page) SubmitDisabled() bool {
	return len(p.Rows) == 0 || p.Published || p.Publishing
}

func (p *Page) findRow(id string) *domain.Shift {
	for i := range p.Rows {
		if p.Rows[i].ID == id {
			return &p.Rows[i]
		}
	}
	return nil
}
