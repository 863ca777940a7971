// Package app bootstraps the demo: a small document tree with typed
// regions, a menu manager bound over it and the Bubble Tea host.
package app

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/quailyard/ctxmenu"
	"github.com/quailyard/ctxmenu/doctree"
	"github.com/quailyard/ctxmenu/internal/logging"
	"github.com/quailyard/ctxmenu/tui"
)

// Config describes user-provided application options.
type Config struct {
	Width        int
	Height       int
	Trigger      string
	TouchCapable bool
}

// Run bootstraps and executes the Bubble Tea program.
func Run(cfg Config) error {
	width, height := cfg.Width, cfg.Height
	if width <= 0 {
		width = 100
	}
	if height <= 0 {
		height = 30
	}

	doc := buildDocument(float64(width), float64(height))
	mgr := ctxmenu.New(doc)
	defer mgr.Close()

	mgr.SetLogger(logging.Sink())
	mgr.EnableLogging(true)

	trigger := ctxmenu.Gesture(cfg.Trigger)
	mgr.UpdateOptions(ctxmenu.OptionsPatch{
		Trigger:      &trigger,
		TouchCapable: &cfg.TouchCapable,
	})

	canvas := newCanvas(doc)
	if err := registerMenus(mgr, canvas); err != nil {
		return fmt.Errorf("register menus: %w", err)
	}

	model := tui.NewModel(mgr, canvas)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseAllMotion())
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

// buildDocument lays out a toy workspace: a sidebar of files and folders
// next to an editor pane.
func buildDocument(width, height float64) *doctree.Document {
	doc := doctree.NewDocument(width, height)
	root := doc.Root()

	sidebar := doctree.NewElement("pane").SetID("sidebar")
	sidebar.AddClass("sidebar")
	sidebar.SetBounds(doctree.Rect{X: 0, Y: 0, W: 28, H: height})
	root.Append(sidebar)

	rows := []struct {
		id    string
		class string
		label string
	}{
		{"docs", "folder", "docs/"},
		{"readme", "file", "README.md"},
		{"main", "file", "main.go"},
		{"assets", "folder", "assets/"},
		{"logo", "file", "logo.svg"},
	}
	for i, row := range rows {
		el := doctree.NewElement("row").SetID(row.id)
		el.AddClass(row.class)
		el.SetAttr("label", row.label)
		el.SetBounds(doctree.Rect{X: 1, Y: float64(2 + i), W: 26, H: 1})
		sidebar.Append(el)
	}

	editor := doctree.NewElement("pane").SetID("editor")
	editor.AddClass("editor")
	editor.SetAttr("label", "editor")
	editor.SetBounds(doctree.Rect{X: 28, Y: 0, W: width - 28, H: height})
	root.Append(editor)

	return doc
}

// registerMenus wires one menu per region type plus a declarative one.
func registerMenus(mgr *ctxmenu.Manager, canvas *canvas) error {
	note := func(format string, args ...any) ctxmenu.ActionFunc {
		return func(ctx ctxmenu.ActionContext) error {
			canvas.setStatus(fmt.Sprintf(format, append(args, ctx.Target.ID())...))
			return nil
		}
	}

	if err := mgr.RegisterAction("open", note("opened %s")); err != nil {
		return err
	}
	if err := mgr.RegisterAction("rename", note("renamed %s")); err != nil {
		return err
	}
	if err := mgr.RegisterAction("delete", note("deleted %s")); err != nil {
		return err
	}

	open := mustCommand("Open", ctxmenu.NamedAction("open"))
	rename := mustCommand("Rename", ctxmenu.NamedAction("rename"))
	rename.TargetTypes = []string{"file"}
	del := mustCommand("Delete", ctxmenu.NamedAction("delete"))
	share := mustSublist("Share",
		mustCommand("Copy link", ctxmenu.DirectAction(func(ctx ctxmenu.ActionContext) error {
			canvas.setStatus("link copied for " + ctx.Target.ID())
			return nil
		})),
		mustCommand("Email", ctxmenu.DirectAction(func(ctx ctxmenu.ActionContext) error {
			canvas.setStatus("emailed " + ctx.Target.ID())
			return nil
		})),
	)
	if err := mgr.AddMenuConfiguration(&ctxmenu.MenuConfiguration{
		ID:     "workspace",
		Header: "{type}",
		Commands: []*ctxmenu.Command{
			open, rename, ctxmenu.NewSeparator(""), share, del,
		},
	}); err != nil {
		return err
	}
	mgr.BindMenuToElements(".file", "workspace", "file")
	mgr.BindMenuToElements(".folder", "workspace", "folder")

	return mgr.CreateAndBindMenu(ctxmenu.MenuDefinition{
		MenuID:     "editor",
		Selector:   "#editor",
		TargetType: "editor",
		Header:     "editor",
		Structure: []ctxmenu.CommandSpec{
			{Label: "Cut", Action: func(ctx ctxmenu.ActionContext) error {
				canvas.setStatus("cut")
				return nil
			}},
			{Label: "Copy", Action: func(ctx ctxmenu.ActionContext) error {
				canvas.setStatus("copy")
				return nil
			}},
			{Label: "Paste", Action: func(ctx ctxmenu.ActionContext) error {
				canvas.setStatus("paste")
				return nil
			}},
		},
	})
}

func mustCommand(label string, action ctxmenu.ActionRef) *ctxmenu.Command {
	cmd, err := ctxmenu.NewCommand(label, action)
	if err != nil {
		panic(err)
	}
	return cmd
}

func mustSublist(label string, children ...*ctxmenu.Command) *ctxmenu.Command {
	cmd, err := ctxmenu.NewSublist(label, children...)
	if err != nil {
		panic(err)
	}
	return cmd
}

// canvas paints the document as plain text and carries the status line.
type canvas struct {
	doc *doctree.Document

	mu     sync.Mutex
	status string
}

func newCanvas(doc *doctree.Document) *canvas {
	return &canvas{doc: doc, status: "right-click a file, folder or the editor"}
}

func (c *canvas) setStatus(s string) {
	c.mu.Lock()
	c.status = s
	c.mu.Unlock()
}

// View renders the workspace into a rune grid: pane outlines, row labels and
// the status line.
func (c *canvas) View(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	grid := make([][]rune, height)
	for y := range grid {
		grid[y] = []rune(strings.Repeat(" ", width))
	}
	var paint func(el *doctree.Element)
	paint = func(el *doctree.Element) {
		if label, ok := el.Attr("label"); ok {
			b := el.Bounds()
			putText(grid, int(b.X), int(b.Y), label)
		}
		for _, child := range el.Children() {
			paint(child)
		}
	}
	paint(c.doc.Root())

	c.mu.Lock()
	status := c.status
	c.mu.Unlock()
	putText(grid, 0, height-1, status)

	lines := make([]string, height)
	for y := range grid {
		lines[y] = string(grid[y])
	}
	return strings.Join(lines, "\n")
}

func putText(grid [][]rune, x, y int, text string) {
	if y < 0 || y >= len(grid) {
		return
	}
	for i, r := range []rune(text) {
		if x+i < 0 || x+i >= len(grid[y]) {
			continue
		}
		grid[y][x+i] = r
	}
}
