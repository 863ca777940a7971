package ctxmenu

import (
	"errors"
	"testing"

	"github.com/quailyard/ctxmenu/doctree"
)

func fileMenu(t *testing.T, m *Manager) *MenuConfiguration {
	t.Helper()
	cfg := &MenuConfiguration{
		ID:     "files",
		Header: "{type}",
		Commands: []*Command{
			mustCommand(t, "Open", NamedAction("open")),
			mustCommand(t, "Delete", NamedAction("delete")),
		},
	}
	if err := m.AddMenuConfiguration(cfg); err != nil {
		t.Fatalf("add configuration: %v", err)
	}
	return cfg
}

func TestContextMenuGestureOpens(t *testing.T) {
	m, doc := newTestManager(t)
	fileMenu(t, m)
	el := addTarget(doc, "row", "r", rect(0, 0, 40, 2))
	m.BindMenuToElements(el, "files", "file")

	doc.DispatchPointer("contextmenu", 5, 1)
	if !m.IsOpen() {
		t.Fatalf("menu did not open on contextmenu")
	}
	menus := m.VisibleMenus()
	if len(menus) != 1 {
		t.Fatalf("visible menus = %d, want 1", len(menus))
	}
	header := menus[0].Children[0]
	if !header.HasClass(DefaultClassNames().Header) || header.Text != "file" {
		t.Fatalf("header node = %+v, want resolved type", header)
	}
}

func TestMismatchedGestureIgnored(t *testing.T) {
	m, doc := newTestManager(t)
	fileMenu(t, m)
	el := addTarget(doc, "row", "r", rect(0, 0, 40, 2))
	m.BindMenuToElements(el, "files", "file")

	doc.DispatchPointer("click", 5, 1)
	doc.DispatchPointer("dblclick", 5, 1)
	if m.IsOpen() {
		t.Fatalf("menu opened on a non-trigger gesture")
	}
}

func TestNearestBoundAncestorWins(t *testing.T) {
	m, doc := newTestManager(t)
	fileMenu(t, m)
	pane := addTarget(doc, "pane", "pane", rect(0, 0, 40, 20))
	inner := doctree.NewElement("row").SetID("inner").SetBounds(rect(5, 5, 10, 2))
	pane.Append(inner)
	m.BindMenuToElements(pane, "files", "folder")

	doc.DispatchPointer("contextmenu", 6, 6)
	if !m.IsOpen() {
		t.Fatalf("menu did not open through unbound descendant")
	}
	m.mu.Lock()
	target := m.engine.active.target
	targetType := m.engine.active.targetType
	m.mu.Unlock()
	if target != pane {
		t.Fatalf("resolved target = %v, want the bound ancestor", target)
	}
	if targetType != "folder" {
		t.Fatalf("target type = %q, want folder", targetType)
	}
}

func TestUnregisteredMenuIDSurfacesRoutingError(t *testing.T) {
	m, doc := newTestManager(t)
	var got error
	m.SetErrorHandler(func(err error) { got = err })
	el := addTarget(doc, "row", "r", rect(0, 0, 40, 2))
	el.SetAttr(AttrMenuID, "ghost")

	doc.DispatchPointer("contextmenu", 5, 1)
	var routing *RoutingError
	if !errors.As(got, &routing) {
		t.Fatalf("error handler got %v, want RoutingError", got)
	}
	if routing.MenuID != "ghost" {
		t.Fatalf("routing error id = %q", routing.MenuID)
	}
	if m.IsOpen() {
		t.Fatalf("menu opened despite missing configuration")
	}
}

func TestIgnoreLinksSuppressesTrigger(t *testing.T) {
	m, doc := newTestManager(t)
	fileMenu(t, m)
	ignore := true
	m.UpdateMenuConfiguration("files", ConfigPatch{IgnoreLinks: &ignore})
	pane := addTarget(doc, "pane", "pane", rect(0, 0, 40, 20))
	link := doctree.NewElement("a").SetID("link").SetBounds(rect(2, 2, 10, 1))
	pane.Append(link)
	m.BindMenuToElements(pane, "files", "folder")

	doc.DispatchPointer("contextmenu", 3, 2)
	if m.IsOpen() {
		t.Fatalf("menu opened from a link origin despite IgnoreLinks")
	}
	doc.DispatchPointer("contextmenu", 20, 10)
	if !m.IsOpen() {
		t.Fatalf("menu did not open away from the link")
	}
}

func TestIgnoreButtonsChecksRole(t *testing.T) {
	m, doc := newTestManager(t)
	fileMenu(t, m)
	ignore := true
	m.UpdateMenuConfiguration("files", ConfigPatch{IgnoreButtons: &ignore})
	pane := addTarget(doc, "pane", "pane", rect(0, 0, 40, 20))
	btn := doctree.NewElement("span").SetID("btn").SetBounds(rect(2, 2, 10, 1))
	btn.SetAttr("role", "button")
	pane.Append(btn)
	m.BindMenuToElements(pane, "files", "folder")

	doc.DispatchPointer("contextmenu", 3, 2)
	if m.IsOpen() {
		t.Fatalf("menu opened from a button-role origin despite IgnoreButtons")
	}
}

func TestHoverTriggerIgnoresJitterOnOpenTarget(t *testing.T) {
	m, doc := newTestManager(t)
	fileMenu(t, m)
	hover := GestureHover
	if !m.UpdateMenuConfiguration("files", ConfigPatch{Trigger: &hover}) {
		t.Fatalf("trigger update failed")
	}
	el := addTarget(doc, "row", "r", rect(0, 0, 40, 2))
	m.BindMenuToElements(el, "files", "file")

	doc.DispatchPointer("mouseover", 5, 1)
	if !m.IsOpen() {
		t.Fatalf("menu did not open on hover")
	}
	m.mu.Lock()
	opened := m.engine.active
	m.mu.Unlock()

	doc.DispatchPointer("mouseover", 6, 1)
	m.mu.Lock()
	still := m.engine.active
	m.mu.Unlock()
	if still != opened {
		t.Fatalf("jitter on the open target rebuilt the menu")
	}
}

func TestTouchHoldOpens(t *testing.T) {
	m, doc := newTestManager(t)
	fileMenu(t, m)
	touch := true
	m.UpdateOptions(OptionsPatch{TouchCapable: &touch})
	el := addTarget(doc, "row", "r", rect(0, 0, 40, 2))
	m.BindMenuToElements(el, "files", "file")

	ev := doc.DispatchPointer("touchstart", 5, 1)
	if !ev.DefaultPrevented() {
		t.Fatalf("hold-armed touchstart not default-prevented")
	}
	if !m.IsOpen() {
		t.Fatalf("menu did not open on hold")
	}
	doc.DispatchPointer("touchend", 5, 1)
	if !m.IsOpen() {
		t.Fatalf("touchend after held-open closed the menu")
	}
}

func TestTouchTapOpens(t *testing.T) {
	m, doc := newTestManager(t)
	fileMenu(t, m)
	touch := true
	tap := MobileTap
	m.UpdateOptions(OptionsPatch{TouchCapable: &touch, MobileTrigger: &tap})
	el := addTarget(doc, "row", "r", rect(0, 0, 40, 2))
	m.BindMenuToElements(el, "files", "file")

	doc.DispatchPointer("touchstart", 5, 1)
	if m.IsOpen() {
		t.Fatalf("tap opened before touchend")
	}
	doc.DispatchPointer("touchend", 5, 1)
	if !m.IsOpen() {
		t.Fatalf("menu did not open on tap")
	}
}

func TestTouchMoveBeyondSlopCancels(t *testing.T) {
	m, doc := newTestManager(t)
	fileMenu(t, m)
	touch := true
	tap := MobileTap
	m.UpdateOptions(OptionsPatch{TouchCapable: &touch, MobileTrigger: &tap})
	el := addTarget(doc, "row", "r", rect(0, 0, 40, 2))
	m.BindMenuToElements(el, "files", "file")

	doc.DispatchPointer("touchstart", 5, 1)
	doc.DispatchPointer("touchmove", 25, 1)
	doc.DispatchPointer("touchend", 25, 1)
	if m.IsOpen() {
		t.Fatalf("menu opened despite drag beyond the slop")
	}
}

func TestTapOnItemActivatesAndCloses(t *testing.T) {
	m, doc := newTestManager(t)
	fileMenu(t, m)
	touch := true
	m.UpdateOptions(OptionsPatch{TouchCapable: &touch})
	invoked := 0
	if err := m.RegisterAction("open", func(ActionContext) error {
		invoked++
		return nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	el := addTarget(doc, "row", "r", rect(0, 0, 40, 2))
	m.BindMenuToElements(el, "files", "file")

	doc.DispatchPointer("touchstart", 5, 1)
	doc.DispatchPointer("touchend", 5, 1)
	if !m.IsOpen() {
		t.Fatalf("menu did not survive the opening gesture's release")
	}

	_, item := visibleItem(m, "Open")
	if item == nil {
		t.Fatalf("item not visible")
	}
	cx := item.node.Box.X + item.node.Box.W/2
	cy := item.node.Box.Y + item.node.Box.H/2
	doc.DispatchPointer("touchstart", cx, cy)
	doc.DispatchPointer("touchend", cx, cy)
	if invoked != 1 {
		t.Fatalf("invocations = %d, want 1", invoked)
	}
	if m.IsOpen() {
		t.Fatalf("menu still open after tap activation")
	}
}

func TestTapOutsideOpenMenuCloses(t *testing.T) {
	m, doc := newTestManager(t)
	fileMenu(t, m)
	touch := true
	m.UpdateOptions(OptionsPatch{TouchCapable: &touch})
	el := addTarget(doc, "row", "r", rect(0, 0, 40, 2))
	m.BindMenuToElements(el, "files", "file")

	doc.DispatchPointer("touchstart", 5, 1)
	doc.DispatchPointer("touchend", 5, 1)
	if !m.IsOpen() {
		t.Fatalf("menu did not open on hold")
	}

	doc.DispatchPointer("touchstart", 700, 500)
	doc.DispatchPointer("touchend", 700, 500)
	if m.IsOpen() {
		t.Fatalf("tap outside left the menu open")
	}
}

func TestTouchCapableSuppressesSynthesizedContextMenu(t *testing.T) {
	m, doc := newTestManager(t)
	fileMenu(t, m)
	touch := true
	tap := MobileTap
	m.UpdateOptions(OptionsPatch{TouchCapable: &touch, MobileTrigger: &tap})
	el := addTarget(doc, "row", "r", rect(0, 0, 40, 2))
	m.BindMenuToElements(el, "files", "file")

	ev := doc.DispatchPointer("contextmenu", 5, 1)
	if !ev.DefaultPrevented() {
		t.Fatalf("synthesized contextmenu not suppressed")
	}
	if m.IsOpen() {
		t.Fatalf("synthesized contextmenu opened a menu")
	}
}
