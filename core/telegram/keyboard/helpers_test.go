package keyboard

import "testing"

func TestInlineButtonsRows(t *testing.T) {
	markup := InlineButtonsRows(
		[]InlineBtn{{Text: "Pick", Unique: "pick", Data: "x"}},
		[]InlineBtn{{Text: "Site", URL: "https://example.com"}},
	)

	if len(markup.InlineKeyboard) != 2 {
		t.Fatalf("rows = %d, want 2", len(markup.InlineKeyboard))
	}

	data := markup.InlineKeyboard[0][0]
	if data.Unique != "pick" || data.Data != "x" {
		t.Errorf("data button = %+v", data)
	}
	if data.URL != "" {
		t.Errorf("data button must not carry a URL, got %q", data.URL)
	}

	link := markup.InlineKeyboard[1][0]
	if link.URL != "https://example.com" {
		t.Errorf("url button URL = %q", link.URL)
	}
	if link.Unique != "" {
		t.Errorf("url button must not carry a callback unique, got %q", link.Unique)
	}
}

func TestInlineButtonsNPerRow(t *testing.T) {
	buttons := []InlineBtn{
		{Text: "a", Unique: "a"},
		{Text: "b", Unique: "b"},
		{Text: "c", Unique: "c"},
	}
	markup := InlineButtonsNPerRow(buttons, 2)
	if len(markup.InlineKeyboard) != 2 {
		t.Fatalf("rows = %d, want 2", len(markup.InlineKeyboard))
	}
	if len(markup.InlineKeyboard[0]) != 2 || len(markup.InlineKeyboard[1]) != 1 {
		t.Errorf("row sizes = %d,%d", len(markup.InlineKeyboard[0]), len(markup.InlineKeyboard[1]))
	}
}
