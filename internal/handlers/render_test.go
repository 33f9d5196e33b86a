package handlers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	tele "gopkg.in/telebot.v4"

	"github.com/iwebix/webixbot/internal/wizard"
)

// editStub overrides only the edit call; everything else panics via the nil
// embedded interface, which is fine for these tests.
type editStub struct {
	tele.Context
	err error
}

func (s *editStub) EditOrSend(what interface{}, opts ...interface{}) error {
	return s.err
}

func TestSafeEdit_SwallowsNotModified(t *testing.T) {
	c := &editStub{err: errors.New("telegram: message is not modified (400)")}
	assert.NoError(t, safeEdit(c, "text", nil), "an identical re-render is a success")
}

func TestSafeEdit_PropagatesOtherErrors(t *testing.T) {
	boom := errors.New("telegram: message to edit not found (400)")
	c := &editStub{err: boom}
	assert.ErrorIs(t, safeEdit(c, "text", nil), boom)

	assert.NoError(t, safeEdit(&editStub{}, "text", nil))
}

func TestMarkupOf(t *testing.T) {
	markup := markupOf(wizard.Render{Rows: [][]wizard.Button{
		{{Label: "Pick", Action: "act", Data: "id"}},
		{{Label: "Link", URL: "https://example.com"}},
	}})

	assert.Equal(t, "act", markup.InlineKeyboard[0][0].Unique)
	assert.Equal(t, "id", markup.InlineKeyboard[0][0].Data)
	assert.Equal(t, "https://example.com", markup.InlineKeyboard[1][0].URL)
}
