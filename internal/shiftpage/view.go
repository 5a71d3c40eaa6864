package shiftpage

import (
	"github.com/sysu-ecnc-dev/shift-board/internal/domain"
)

const (
	DeleteDialogTitle       = "Delete Confirmation"
	DeleteDialogDescription = "Do you want to delete this data ?"
)

type RowView struct {
	domain.Shift
	Actions ActionButton
}

type HeaderView struct {
	ColumnSpec
	Active   bool
	Desc     bool
	NextDesc bool // 再次点击该列时的排序方向
}

type DeleteDialogView struct {
	Open        bool
	Title       string
	Description string
	SelectedID  string
}

// View 是渲染页面所需的全部数据
type View struct {
	DateRange      string
	Published      bool
	PublishedLabel string
	SubmitDisabled bool
	Error          string
	Loading        bool

	Headers []HeaderView
	Rows    []RowView

	CurrentPage    int
	PageCount      int
	HasPrev        bool
	HasNext        bool
	PrevPage       int
	NextPage       int
	PerPage        int
	PerPageOptions []int
	TotalRows      int

	AddURL       string
	DeleteDialog DeleteDialogView
}

func (p *Page) View() View {
	v := View{
		DateRange:      p.StartDate + " - " + p.EndDate,
		Published:      p.Published,
		SubmitDisabled: p.SubmitDisabled(),
		Error:          p.ErrMsg,
		Loading:        p.Loading,

		CurrentPage:    p.CurrentPage,
		PageCount:      p.PageCount(),
		HasPrev:        p.CurrentPage > 1,
		HasNext:        p.CurrentPage < p.PageCount(),
		PrevPage:       max(1, p.CurrentPage-1),
		NextPage:       min(p.PageCount(), p.CurrentPage+1),
		PerPage:        p.PerPage,
		PerPageOptions: PerPageOptions,
		TotalRows:      len(p.Rows),

		AddURL: AddURL,
		DeleteDialog: DeleteDialogView{
			Open:        p.ShowDeleteConfirm,
			Title:       DeleteDialogTitle,
			Description: DeleteDialogDescription,
		},
	}

	if p.Published {
		v.PublishedLabel = "Published at " + p.PublishedDate
	}
	if p.SelectedID != nil {
		v.DeleteDialog.SelectedID = *p.SelectedID
	}

	for _, col := range Columns {
		active := col.Key == p.SortColumn
		v.Headers = append(v.Headers, HeaderView{
			ColumnSpec: col,
			Active:     active,
			Desc:       active && p.SortDesc,
			NextDesc:   active && !p.SortDesc,
		})
	}

	rows := p.PageRows()
	v.Rows = make([]RowView, 0, len(rows))
	for _, row := range rows {
		v.Rows = append(v.Rows, RowView{Shift: row, Actions: p.Actions(row)})
	}

	return v
}
