// Package playlist turns playlist items and the current selection into the
// toggleable entries shown on the details page.
package playlist

import (
	"fmt"
	"strconv"
	"strings"

	"mediadownloader/web/internal/domain"
	"mediadownloader/web/internal/selection"
)

type Entry struct {
	Number   int
	Label    string
	Title    string
	URL      string
	Selected bool
	// Next is the selection that results from clicking this entry.
	Next selection.Selection
}

// Build renders every item in order. Entries are keyed by playlist number,
// not by position.
func Build(items []domain.PlaylistItem, current selection.Selection, rule selection.Rule) []Entry {
	entries := make([]Entry, 0, len(items))
	for index, item := range items {
		entries = append(entries, Entry{
			Number:   item.Number,
			Label:    Label(index, item.Text),
			Title:    item.Text,
			URL:      item.URL,
			Selected: current.Contains(item.Number),
			Next:     current.ToggleBy(rule, item.Number),
		})
	}
	return entries
}

// Label prefixes the entry text with its 1-based position unless the text is
// already exactly that position.
func Label(index int, text string) string {
	prefix := strconv.Itoa(index + 1)
	trimmed := strings.TrimSpace(text)
	if prefix == trimmed {
		return trimmed
	}
	return fmt.Sprintf("%s (%s)", prefix, trimmed)
}

type Summary struct {
	Count       int
	Text        string
	ButtonLabel string
	Disabled    bool
}

func Summarize(current selection.Selection) Summary {
	count := current.Count()
	if count == 0 {
		return Summary{ButtonLabel: "Select Episodes", Disabled: true}
	}
	suffix := ""
	if count > 1 {
		suffix = "s"
	}
	return Summary{
		Count:       count,
		Text:        fmt.Sprintf("%d episode%s selected", count, suffix),
		ButtonLabel: fmt.Sprintf("Download %d Episode%s", count, suffix),
	}
}
