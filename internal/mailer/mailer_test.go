package mailer

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-board/internal/domain"
)

func newComposer(t *testing.T) *Composer {
	t.Helper()

	dir := t.TempDir()
	tmpl := `<p>Hi {{.FullName}}, week {{.WeekNumber}} has {{.ShiftCount}} shifts.</p>`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "week_published_email.html"), []byte(tmpl), 0o644))

	c, err := NewComposer("noreply@example.com", dir)
	require.NoError(t, err)
	return c
}

func TestComposeWeekPublished(t *testing.T) {
	c := newComposer(t)

	body, err := json.Marshal(domain.MailMessage{
		Type: domain.MailTypeWeekPublished,
		To:   "staff@example.com",
		Data: domain.WeekPublishedMailData{FullName: "Alice", WeekNumber: 3, Year: 2024, ShiftCount: 5},
	})
	require.NoError(t, err)

	msg, err := c.Compose(body)
	require.NoError(t, err)

	recipients, err := msg.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"staff@example.com"}, recipients)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Shift Board - Week 3/2024 published")
	assert.Contains(t, buf.String(), "Hi Alice")
}

func TestComposeRejectsBadMessages(t *testing.T) {
	c := newComposer(t)

	_, err := c.Compose([]byte("not json"))
	assert.Error(t, err)

	_, err = c.Compose([]byte(`{"type":"create_user","to":"a@example.com","data":{}}`))
	assert.True(t, errors.Is(err, ErrUnsupportedType))

	_, err = c.Compose([]byte(`{"type":"week_published","to":"not an address","data":{}}`))
	assert.Error(t, err)
}

func TestNewComposerMissingTemplate(t *testing.T) {
	_, err := NewComposer("noreply@example.com", t.TempDir())
	assert.Error(t, err)
}
