package ctxmenu

import (
	"strings"
	"testing"
	"time"

	"github.com/quailyard/ctxmenu/doctree"
)

// newTestManager returns a manager with every delay and animation duration
// zeroed, so timer-driven paths run synchronously inside the dispatch call.
func newTestManager(t *testing.T) (*Manager, *doctree.Document) {
	t.Helper()
	doc := doctree.NewDocument(800, 600)
	m := New(doc)
	t.Cleanup(m.Close)
	zero := time.Duration(0)
	m.UpdateOptions(OptionsPatch{
		HoverOpenDelay:    &zero,
		HoverCloseDelay:   &zero,
		SubmenuOpenDelay:  &zero,
		SubmenuCloseDelay: &zero,
		HoldDuration:      &zero,
		OpenDuration:      &zero,
		CloseDuration:     &zero,
	})
	return m, doc
}

func rect(x, y, w, h float64) doctree.Rect {
	return doctree.Rect{X: x, Y: y, W: w, H: h}
}

// addTarget appends a bounded element to the document root.
func addTarget(doc *doctree.Document, tag, id string, box doctree.Rect) *doctree.Element {
	el := doctree.NewElement(tag).SetID(id).SetBounds(box)
	doc.Root().Append(el)
	return el
}

// mustCommand builds an action command, failing the test on error.
func mustCommand(t *testing.T, label string, action ActionRef) *Command {
	t.Helper()
	cmd, err := NewCommand(label, action)
	if err != nil {
		t.Fatalf("NewCommand(%q): %v", label, err)
	}
	return cmd
}

// mustSublist builds a sublist command, failing the test on error.
func mustSublist(t *testing.T, label string, children ...*Command) *Command {
	t.Helper()
	cmd, err := NewSublist(label, children...)
	if err != nil {
		t.Fatalf("NewSublist(%q): %v", label, err)
	}
	return cmd
}

// visibleItem finds the rendered item with the given label across the active
// menu and its submenu stack.
func visibleItem(m *Manager, label string) (*openMenu, *menuItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	menus := make([]*openMenu, 0, 1+len(m.engine.submenus))
	if m.engine.active != nil {
		menus = append(menus, m.engine.active)
	}
	menus = append(menus, m.engine.submenus...)
	for _, menu := range menus {
		for _, item := range menu.items {
			if item.node.Text == label {
				return menu, item
			}
		}
	}
	return nil, nil
}

// clickItem dispatches a click at the centre of the labelled item.
func clickItem(t *testing.T, m *Manager, doc *doctree.Document, label string) {
	t.Helper()
	_, item := visibleItem(m, label)
	if item == nil {
		t.Fatalf("item %q not visible", label)
	}
	cx := item.node.Box.X + item.node.Box.W/2
	cy := item.node.Box.Y + item.node.Box.H/2
	doc.DispatchPointer("click", cx, cy)
}

// hoverItem dispatches a mousemove at the centre of the labelled item.
func hoverItem(t *testing.T, m *Manager, doc *doctree.Document, label string) {
	t.Helper()
	_, item := visibleItem(m, label)
	if item == nil {
		t.Fatalf("item %q not visible", label)
	}
	cx := item.node.Box.X + item.node.Box.W/2
	cy := item.node.Box.Y + item.node.Box.H/2
	doc.DispatchPointer("mousemove", cx, cy)
}

// fakeScheduler records armed callbacks by key so tests can fire pending
// timers deterministically.
type fakeScheduler struct {
	fns  map[string]func()
	keys []string
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{fns: make(map[string]func())}
}

func (s *fakeScheduler) Schedule(key string, _ time.Duration, fn func()) {
	if _, ok := s.fns[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.fns[key] = fn
}

func (s *fakeScheduler) Cancel(key string) { delete(s.fns, key) }

func (s *fakeScheduler) CancelPrefix(prefix string) {
	for k := range s.fns {
		if strings.HasPrefix(k, prefix) {
			delete(s.fns, k)
		}
	}
}

func (s *fakeScheduler) Stop() { s.fns = make(map[string]func()) }

// fireAll runs every armed callback in arming order, including callbacks
// armed while firing.
func (s *fakeScheduler) fireAll() {
	for len(s.fns) > 0 {
		keys := s.keys
		s.keys = nil
		for _, key := range keys {
			fn, ok := s.fns[key]
			if !ok {
				continue
			}
			delete(s.fns, key)
			fn()
		}
	}
}

// submenuCount reports how many submenus are on the stack.
func submenuCount(m *Manager) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.engine.submenus)
}
