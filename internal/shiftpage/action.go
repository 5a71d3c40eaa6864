package shiftpage

import (
	"net/url"

	"github.com/sysu-ecnc-dev/shift-board/internal/domain"
)

const AddURL = "/shift/add"

// ActionButton 是每一行的编辑链接和删除按钮
type ActionButton struct {
	ID       string
	EditURL  string
	Disabled bool
}

// Actions 只有草稿状态的周的班次允许编辑和删除
func (p *Page) Actions(row domain.Shift) ActionButton {
	return ActionButton{
		ID:       row.ID,
		EditURL:  EditURL(row.ID),
		Disabled: row.Week.Status != domain.WeekStatusDraft,
	}
}

func EditURL(id string) string {
	return "/shift/" + url.PathEscape(id) + "/edit"
}
