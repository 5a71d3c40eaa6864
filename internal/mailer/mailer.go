// Package mailer 把队列中的邮件信息渲染成可以发送的邮件
package mailer

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"path/filepath"

	"github.com/sysu-ecnc-dev/shift-board/internal/domain"
	"github.com/wneessen/go-mail"
)

var ErrUnsupportedType = errors.New("unsupported mail type")

type mailKind struct {
	template string
	subject  func(data any) string
	decode   func(raw json.RawMessage) (any, error)
}

var kinds = map[string]mailKind{
	domain.MailTypeWeekPublished: {
		template: "week_published_email.html",
		subject: func(data any) string {
			d := data.(*domain.WeekPublishedMailData)
			return fmt.Sprintf("Shift Board - Week %d/%d published", d.WeekNumber, d.Year)
		},
		decode: func(raw json.RawMessage) (any, error) {
			data := &domain.WeekPublishedMailData{}
			if err := json.Unmarshal(raw, data); err != nil {
				return nil, err
			}
			return data, nil
		},
	},
}

type Composer struct {
	from      string
	templates map[string]*template.Template
}

// NewComposer 启动时一次性解析所有邮件模板
func NewComposer(from, templateDir string) (*Composer, error) {
	c := &Composer{
		from:      from,
		templates: make(map[string]*template.Template, len(kinds)),
	}

	for typ, kind := range kinds {
		tmpl, err := template.ParseFiles(filepath.Join(templateDir, kind.template))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", kind.template, err)
		}
		c.templates[typ] = tmpl
	}

	return c, nil
}

type queuedMessage struct {
	Type string          `json:"type"`
	To   string          `json:"to"`
	Data json.RawMessage `json:"data"`
}

// Compose 解析消息体并构建邮件，返回的错误都说明这条消息无法被处理
func (c *Composer) Compose(body []byte) (*mail.Msg, error) {
	var queued queuedMessage
	if err := json.Unmarshal(body, &queued); err != nil {
		return nil, err
	}

	kind, ok := kinds[queued.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, queued.Type)
	}

	data, err := kind.decode(queued.Data)
	if err != nil {
		return nil, err
	}

	msg := mail.NewMsg()
	if err := msg.From(c.from); err != nil {
		return nil, err
	}
	if err := msg.To(queued.To); err != nil {
		return nil, err
	}
	msg.Subject(kind.subject(data))
	if err := msg.SetBodyHTMLTemplate(c.templates[queued.Type], data); err != nil {
		return nil, err
	}

	return msg, nil
}
