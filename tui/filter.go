package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/quailyard/ctxmenu"
)

// filterState is the keyboard filter over the focused menu's rows.
type filterState struct {
	input  textinput.Model
	active bool
}

func newFilterState(styles *Styles) filterState {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "filter"
	ti.PromptStyle = *styles.FilterPrompt
	ti.TextStyle = *styles.Filter
	ti.PlaceholderStyle = *styles.FilterPlaceholder
	ti.CharLimit = 64
	return filterState{input: ti}
}

func (f *filterState) start() {
	f.active = true
	f.input.SetValue("")
	f.input.Focus()
}

func (f *filterState) stop() {
	f.active = false
	f.input.Blur()
	f.input.SetValue("")
}

func (f *filterState) query() string {
	return strings.TrimSpace(f.input.Value())
}

// filterRows narrows selectable rows by fuzzy label match, falling back to a
// case-insensitive substring scan when the fuzzy pass matches nothing.
func filterRows(rows []*ctxmenu.Node, query string) []*ctxmenu.Node {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return rows
	}
	labels := make([]string, len(rows))
	for i, row := range rows {
		labels[i] = row.Text
	}
	ranks := fuzzy.RankFindNormalizedFold(trimmed, labels)
	if len(ranks) > 0 {
		matches := make(map[int]struct{}, len(ranks))
		for _, rank := range ranks {
			matches[rank.OriginalIndex] = struct{}{}
		}
		filtered := make([]*ctxmenu.Node, 0, len(matches))
		for idx, row := range rows {
			if _, ok := matches[idx]; ok {
				filtered = append(filtered, row)
			}
		}
		if len(filtered) > 0 {
			return filtered
		}
	}
	lower := strings.ToLower(trimmed)
	filtered := make([]*ctxmenu.Node, 0, len(rows))
	for _, row := range rows {
		if strings.Contains(strings.ToLower(row.Text), lower) {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

// bestMatchIndex picks the row a query most plausibly refers to: exact fold,
// then label prefix, then substring, then the closest fuzzy rank.
func bestMatchIndex(rows []*ctxmenu.Node, query string) int {
	trimmed := strings.TrimSpace(query)
	if len(rows) == 0 {
		return -1
	}
	if trimmed == "" {
		return 0
	}
	lower := strings.ToLower(trimmed)
	for i, row := range rows {
		if strings.EqualFold(row.Text, trimmed) {
			return i
		}
	}
	for i, row := range rows {
		if strings.HasPrefix(strings.ToLower(row.Text), lower) {
			return i
		}
	}
	for i, row := range rows {
		if strings.Contains(strings.ToLower(row.Text), lower) {
			return i
		}
	}
	labels := make([]string, len(rows))
	for i, row := range rows {
		labels[i] = row.Text
	}
	ranks := fuzzy.RankFindNormalizedFold(trimmed, labels)
	if len(ranks) == 0 {
		return 0
	}
	best := ranks[0]
	for _, rank := range ranks[1:] {
		if rank.Distance < best.Distance {
			best = rank
			continue
		}
		if rank.Distance == best.Distance && rank.OriginalIndex < best.OriginalIndex {
			best = rank
		}
	}
	if best.OriginalIndex < 0 || best.OriginalIndex >= len(rows) {
		return 0
	}
	return best.OriginalIndex
}
