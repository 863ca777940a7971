// Package tui hosts contextual menus in a Bubble Tea program: it translates
// terminal input into document events, overlays the visible menus on the
// host view and adds keyboard navigation with a fuzzy row filter.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/quailyard/ctxmenu"
	"github.com/quailyard/ctxmenu/doctree"
)

// doubleClickWindow is how close two left presses on the same cell must be
// to count as a double click.
const doubleClickWindow = 400 * time.Millisecond

// Background paints the document beneath the menu overlay.
type Background interface {
	View(width, height int) string
}

// Model is a Bubble Tea model hosting a menu manager over a background view.
type Model struct {
	mgr    *ctxmenu.Manager
	bg     Background
	styles *Styles

	width  int
	height int

	filter   filterState
	selected int

	hovered   *doctree.Element
	lastClick time.Time
	clickX    int
	clickY    int
}

// NewModel wires a manager into a terminal host: cell-based metrics and
// measurement replace the pixel defaults.
func NewModel(mgr *ctxmenu.Manager, bg Background) Model {
	styles := DefaultStyles()
	metrics := CellMetrics()
	mgr.SetMeasurer(CellMeasurer)
	mgr.UpdateOptions(ctxmenu.OptionsPatch{Metrics: &metrics})
	return Model{
		mgr:      mgr,
		bg:       bg,
		styles:   styles,
		filter:   newFilterState(styles),
		selected: -1,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.mgr.Document().Resize(float64(msg.Width), float64(msg.Height))
		return m, nil
	case tea.MouseMsg:
		return m.updateMouse(msg), nil
	case tea.KeyMsg:
		return m.updateKey(msg)
	}
	return m, nil
}

func (m Model) updateMouse(msg tea.MouseMsg) Model {
	doc := m.mgr.Document()
	x, y := float64(msg.X), float64(msg.Y)
	switch {
	case msg.Action == tea.MouseActionMotion:
		m = m.trackHover(x, y)
		doc.DispatchPointer("mousemove", x, y)
	case msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown:
		doc.DispatchPointer("scroll", x, y)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		now := time.Now()
		if now.Sub(m.lastClick) <= doubleClickWindow && msg.X == m.clickX && msg.Y == m.clickY {
			m.lastClick = time.Time{}
			doc.DispatchPointer("dblclick", x, y)
		} else {
			m.lastClick = now
			m.clickX, m.clickY = msg.X, msg.Y
			doc.DispatchPointer("click", x, y)
		}
		m.selected = -1
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonRight:
		doc.DispatchPointer("contextmenu", x, y)
		m.selected = -1
	}
	return m
}

// trackHover synthesizes mouseover/mouseout pairs from motion, since
// terminals only report movement.
func (m Model) trackHover(x, y float64) Model {
	el := m.mgr.Document().ElementAt(x, y)
	if el == m.hovered {
		return m
	}
	if m.hovered != nil {
		m.hovered.Dispatch(&doctree.Event{Type: "mouseout", X: x, Y: y})
	}
	if el != nil {
		el.Dispatch(&doctree.Event{Type: "mouseover", X: x, Y: y})
	}
	m.hovered = el
	return m
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.filter.active {
		return m.updateFilterKey(msg)
	}
	switch msg.String() {
	case "esc":
		m.mgr.Document().DispatchKey("Escape")
		m.selected = -1
	case "/":
		if m.mgr.IsOpen() {
			m.filter.start()
			m.selected = -1
			return m, nil
		}
	case "up":
		m = m.moveSelection(-1)
	case "down":
		m = m.moveSelection(1)
	case "enter":
		m = m.activateSelected()
	}
	return m, nil
}

func (m Model) updateFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filter.stop()
		m.selected = -1
		return m, nil
	case tea.KeyEnter:
		rows := m.selectableRows()
		if idx := bestMatchIndex(rows, m.filter.query()); idx >= 0 {
			m.filter.stop()
			m = m.activateRow(rows[idx])
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.filter.input, cmd = m.filter.input.Update(msg)
	m.selected = bestMatchIndex(m.selectableRows(), m.filter.query())
	return m, cmd
}

// focusedMenu is the innermost visible surface, the one keyboard input acts
// on.
func (m Model) focusedMenu() *ctxmenu.Node {
	menus := m.mgr.VisibleMenus()
	if len(menus) == 0 {
		return nil
	}
	return menus[len(menus)-1]
}

// selectableRows lists the focused menu's activatable rows, the filter
// query applied.
func (m Model) selectableRows() []*ctxmenu.Node {
	menu := m.focusedMenu()
	if menu == nil {
		return nil
	}
	cls := m.mgr.Options().Classes
	var rows []*ctxmenu.Node
	for _, child := range menu.Children {
		if !child.HasClass(cls.Item) || child.HasClass(cls.Disabled) {
			continue
		}
		rows = append(rows, child)
	}
	if m.filter.active {
		rows = filterRows(rows, m.filter.query())
	}
	return rows
}

func (m Model) moveSelection(delta int) Model {
	rows := m.selectableRows()
	if len(rows) == 0 {
		m.selected = -1
		return m
	}
	idx := m.selected + delta
	if idx < 0 {
		idx = len(rows) - 1
	}
	if idx >= len(rows) {
		idx = 0
	}
	m.selected = idx
	// Sweep the pointer over the row so hover behaviour, submenu cascade
	// included, follows the keyboard.
	cx, cy := rowCenter(rows[idx])
	m.mgr.Document().DispatchPointer("mousemove", cx, cy)
	return m
}

func (m Model) activateSelected() Model {
	rows := m.selectableRows()
	if m.selected < 0 || m.selected >= len(rows) {
		return m
	}
	return m.activateRow(rows[m.selected])
}

func (m Model) activateRow(row *ctxmenu.Node) Model {
	cx, cy := rowCenter(row)
	m.mgr.Document().DispatchPointer("click", cx, cy)
	m.selected = -1
	return m
}

func rowCenter(row *ctxmenu.Node) (float64, float64) {
	return row.Box.X + row.Box.W/2, row.Box.Y + row.Box.H/2
}

func (m Model) View() string {
	view := m.bg.View(m.width, m.height)
	menus := m.mgr.VisibleMenus()
	var selected *ctxmenu.Node
	if rows := m.selectableRows(); m.selected >= 0 && m.selected < len(rows) {
		selected = rows[m.selected]
	}
	view = overlay(view, menus, m.mgr.Options().Classes, m.styles, selected)
	if m.filter.active {
		view += "\n" + m.filter.input.View()
	}
	return view
}
