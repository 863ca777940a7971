// Package ctxmenu implements hierarchical, context-sensitive popup menus
// for a document tree: trigger recognition, open/close lifecycle, submenu
// cascades, viewport-aware positioning, contextual filtering and action
// routing.
package ctxmenu

import (
	"sync"
	"time"
	"unicode/utf8"

	"github.com/quailyard/ctxmenu/doctree"
	"github.com/quailyard/ctxmenu/internal/timers"
)

// Measurer returns the rendered width of a label in host units. The default
// multiplies the rune count by Metrics.CharWidth.
type Measurer func(label string) float64

// Scheduler is the delayed-callback backend. The default is a keyed timer
// registry; tests substitute a deterministic one.
type Scheduler interface {
	Schedule(key string, d time.Duration, fn func())
	Cancel(key string)
	CancelPrefix(prefix string)
	Stop()
}

type listenerHandle struct {
	eventType string
	handle    int
}

// Manager is the menu engine facade. One manager serves every menu bound
// into its document; all exported methods are safe for concurrent use.
type Manager struct {
	mu   sync.Mutex
	doc  *doctree.Document
	opts Options

	configs     map[string]*MenuConfiguration
	actions     map[string]ActionFunc
	actionNames map[uintptr]string

	sched      Scheduler
	measurer   Measurer
	logs       *logState
	errHandler func(error)

	dispatcher *dispatcher
	engine     *engine
	listeners  []listenerHandle
	closed     bool
}

// New creates a manager over the document with default options. No
// listeners are attached until the first configuration is registered.
func New(doc *doctree.Document) *Manager {
	m := &Manager{
		doc:         doc,
		opts:        DefaultOptions(),
		configs:     make(map[string]*MenuConfiguration),
		actions:     make(map[string]ActionFunc),
		actionNames: make(map[uintptr]string),
		sched:       timers.NewRegistry(),
		logs:        newLogState(),
	}
	m.dispatcher = newDispatcher(m)
	m.engine = newEngine(m)
	return m
}

// UpdateOptions merges non-nil patch fields into the process-wide options
// and recomputes the listener set, since the default trigger may change.
func (m *Manager) UpdateOptions(patch OptionsPatch) {
	m.mu.Lock()
	defer m.mu.Unlock()
	patch.apply(&m.opts)
	m.refreshListeners()
}

// Options returns a copy of the current process-wide options.
func (m *Manager) Options() Options {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opts
}

// SetLogger installs the log sink. Records still only flow once logging is
// enabled.
func (m *Manager) SetLogger(fn LoggerFunc) { m.logs.set(fn) }

// EnableLogging switches record emission on or off.
func (m *Manager) EnableLogging(enabled bool) { m.logs.enable(enabled) }

// SetErrorHandler installs the callback invoked with routing and action
// errors surfaced from event handling. Errors are logged either way.
func (m *Manager) SetErrorHandler(fn func(error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errHandler = fn
}

// SetMeasurer overrides label width measurement, e.g. with a terminal
// cell-width function.
func (m *Manager) SetMeasurer(fn Measurer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.measurer = fn
}

// SetScheduler replaces the delayed-callback backend. The previous
// scheduler is stopped.
func (m *Manager) SetScheduler(s Scheduler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sched.Stop()
	m.sched = s
}

// OpenMenu programmatically opens a registered menu at the given point for
// a target element, selector or nil (the document root). It bypasses
// gesture recognition but runs the full build, filter and position path,
// and reports whether a menu actually opened; contextual filtering may
// leave nothing to show.
func (m *Manager) OpenMenu(menuID string, target any, x, y float64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg, ok := m.configs[menuID]
	if !ok {
		return false, &RoutingError{MenuID: menuID}
	}
	el := m.doc.Root()
	if els := m.resolveElements(target); len(els) > 0 {
		el = els[0]
	}
	return m.engine.open(cfg, el, x, y, false), nil
}

// CloseMenu closes the active menu through its normal close sequence. A
// no-op when nothing is open.
func (m *Manager) CloseMenu() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.engine.closeRoot(false)
}

// IsOpen reports whether a menu is currently showing.
func (m *Manager) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.engine.hasOpen()
}

// VisibleMenus returns the renderable menu surfaces outermost-first:
// menus still in their closing sequence, then the active menu and its
// submenu stack. Hosts draw these over the document.
func (m *Manager) VisibleMenus() []*Node {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Node
	for _, menu := range m.engine.closing {
		out = append(out, menu.node)
	}
	if m.engine.active != nil {
		out = append(out, m.engine.active.node)
	}
	for _, sub := range m.engine.submenus {
		out = append(out, sub.node)
	}
	return out
}

// Document returns the document this manager serves.
func (m *Manager) Document() *doctree.Document { return m.doc }

// Close detaches every listener, settles open menus instantly and stops
// the scheduler. The manager must not be used afterwards.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	m.engine.stop()
	m.detachListeners()
	m.sched.Stop()
}

// route is the single document-level listener body. The engine sees events
// first while menus are open; unconsumed events fall through to gesture
// dispatch. Action invocations run after the lock is released so callbacks
// may re-enter the manager.
func (m *Manager) route(ev *doctree.Event) {
	m.mu.Lock()
	var inv *invocation
	consumed := false
	if m.engine.hasOpen() || m.engine.hasClosing() {
		inv, consumed = m.engine.handleGlobalEvent(ev)
	}
	var dispErr error
	if consumed {
		ev.PreventDefault()
		ev.StopPropagation()
	} else {
		dispErr = m.dispatcher.handle(ev)
	}
	m.mu.Unlock()

	if dispErr != nil {
		m.logs.emit("dispatch.error", dispErr.Error(), map[string]any{
			"event": ev.Type,
		}, true)
		m.handleError(dispErr)
	}
	if inv != nil {
		if err := m.runInvocation(inv); err != nil {
			m.handleError(err)
		}
	}
}

func (m *Manager) handleError(err error) {
	m.mu.Lock()
	fn := m.errHandler
	m.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}

// refreshListeners recomputes the document-level listener set: the
// dispatcher's gesture types, widened with the engine's global set while a
// menu is open or closing. Full detach and reattach keeps the operation
// idempotent. Caller holds the lock.
func (m *Manager) refreshListeners() {
	if m.closed {
		return
	}
	m.detachListeners()
	set := m.dispatcher.listenTypes()
	if m.engine.hasOpen() || m.engine.hasClosing() {
		for _, t := range []string{evClick, evMouseMove, evScroll, evKeyDown} {
			set[t] = struct{}{}
		}
	}
	root := m.doc.Root()
	for t := range set {
		h := root.On(t, m.route)
		m.listeners = append(m.listeners, listenerHandle{eventType: t, handle: h})
	}
}

func (m *Manager) detachListeners() {
	root := m.doc.Root()
	for _, lh := range m.listeners {
		root.Off(lh.eventType, lh.handle)
	}
	m.listeners = nil
}

// schedule arms a delayed callback that re-acquires the manager lock.
// Non-positive delays run synchronously; the caller already holds the lock.
func (m *Manager) schedule(key string, d time.Duration, fn func()) {
	if d <= 0 {
		fn()
		return
	}
	m.sched.Schedule(key, d, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		fn()
	})
}

func (m *Manager) cancelTimer(key string) { m.sched.Cancel(key) }

func (m *Manager) cancelTimerPrefix(p string) { m.sched.CancelPrefix(p) }

func (m *Manager) measure(label string) float64 {
	if m.measurer != nil {
		return m.measurer(label)
	}
	return float64(utf8.RuneCountInString(label)) * m.opts.Metrics.CharWidth
}
