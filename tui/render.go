package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/truncate"

	"github.com/quailyard/ctxmenu"
)

// CellMetrics returns menu measurement in terminal cells: one row per item,
// one column per rune.
func CellMetrics() ctxmenu.Metrics {
	return ctxmenu.Metrics{
		ItemHeight:      1,
		HeaderHeight:    1,
		SeparatorHeight: 1,
		CharWidth:       1,
		PaddingX:        2,
		AffordanceWidth: 2,
		MinWidth:        12,
	}
}

// CellMeasurer measures labels in display cells, wide runes included.
func CellMeasurer(label string) float64 {
	return float64(ansi.StringWidth(label))
}

// overlay paints each menu surface over the background view at its box.
func overlay(background string, menus []*ctxmenu.Node, cls ctxmenu.ClassNames, styles *Styles, selected *ctxmenu.Node) string {
	if len(menus) == 0 {
		return background
	}
	lines := strings.Split(background, "\n")
	for _, menu := range menus {
		x := int(menu.Box.X)
		y := int(menu.Box.Y)
		for i, row := range renderMenu(menu, cls, styles, selected) {
			idx := y + i
			if idx < 0 || idx >= len(lines) {
				continue
			}
			lines[idx] = spliceLine(lines[idx], row, x, int(menu.Box.W))
		}
	}
	return strings.Join(lines, "\n")
}

// renderMenu produces one styled row per child node.
func renderMenu(menu *ctxmenu.Node, cls ctxmenu.ClassNames, styles *Styles, selected *ctxmenu.Node) []string {
	w := int(menu.Box.W)
	rows := make([]string, 0, len(menu.Children))
	for _, child := range menu.Children {
		rows = append(rows, renderRow(child, cls, styles, w, child == selected))
	}
	return rows
}

func renderRow(node *ctxmenu.Node, cls ctxmenu.ClassNames, styles *Styles, w int, selected bool) string {
	switch {
	case node.HasClass(cls.Separator) && node.Text == "":
		return styles.Separator.Render(strings.Repeat("─", max(w, 0)))
	case node.HasClass(cls.Separator):
		return styles.SubHeader.Render(padCell(" "+node.Text, w))
	case node.HasClass(cls.Header):
		return styles.Header.Render(padCell(" "+node.Text, w))
	}

	label := " " + node.Text
	if node.HasClass(cls.Sublist) {
		pad := w - ansi.StringWidth(label) - 2
		if pad < 1 {
			pad = 1
		}
		label += strings.Repeat(" ", pad) + styles.Affordance.Render("▸") + " "
	}
	label = padCell(label, w)
	switch {
	case node.HasClass(cls.Disabled):
		return styles.DisabledItem.Render(label)
	case selected:
		return styles.SelectedItem.Render(label)
	default:
		return styles.Menu.Inherit(*styles.Item).Render(label)
	}
}

// padCell clips or pads a string to exactly w display cells.
func padCell(s string, w int) string {
	if w <= 0 {
		return ""
	}
	s = truncate.StringWithTail(s, uint(w), "…")
	if gap := w - ansi.StringWidth(s); gap > 0 {
		s += strings.Repeat(" ", gap)
	}
	return s
}

// spliceLine replaces w cells of line starting at x with seg, preserving the
// surrounding content and its styling.
func spliceLine(line, seg string, x, w int) string {
	lineW := ansi.StringWidth(line)
	if lineW < x {
		line += strings.Repeat(" ", x-lineW)
	}
	left := ansi.Truncate(line, x, "")
	right := ""
	if lineW > x+w {
		right = ansi.TruncateLeft(line, x+w, "")
	}
	return left + seg + right
}
