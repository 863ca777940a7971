package ctxmenu

import (
	"math"
	"time"

	"github.com/quailyard/ctxmenu/doctree"
)

// Raw event types the dispatcher understands. Hover expands into two
// primitives because opening and cancelling a pending open are driven by
// different raw events.
const (
	evClick       = "click"
	evDblClick    = "dblclick"
	evContextMenu = "contextmenu"
	evMouseOver   = "mouseover"
	evMouseOut    = "mouseout"
	evMouseMove   = "mousemove"
	evTouchStart  = "touchstart"
	evTouchMove   = "touchmove"
	evTouchEnd    = "touchend"
	evScroll      = "scroll"
	evKeyDown     = "keydown"
)

// touchSlop is the movement tolerance, per axis, before a touch stops
// counting as a tap or pending hold.
const touchSlop = 10.0

const (
	keyHoverOpen = "dispatcher:hover-open"
	keyTouchHold = "dispatcher:touch-hold"
)

// dispatcher recognizes trigger gestures on bound elements and routes them
// to the lifecycle engine. One listener set serves every registered menu.
type dispatcher struct {
	m     *Manager
	touch touchState
}

type touchState struct {
	active    bool
	el        *doctree.Element
	cfg       *MenuConfiguration
	startX    float64
	startY    float64
	startedAt time.Time
	heldOpen  bool
	moved     bool
}

func newDispatcher(m *Manager) *dispatcher {
	return &dispatcher{m: m}
}

// rawTypes returns the raw event set implied by a trigger gesture.
func rawTypes(g Gesture) []string {
	switch g {
	case GestureHover:
		return []string{evMouseOver, evMouseOut}
	case GestureClick:
		return []string{evClick}
	case GestureDblClick:
		return []string{evDblClick}
	default:
		return []string{evContextMenu}
	}
}

// gestureForRaw maps a raw pointer event to its logical gesture.
func gestureForRaw(eventType string) (Gesture, bool) {
	switch eventType {
	case evClick:
		return GestureClick, true
	case evDblClick:
		return GestureDblClick, true
	case evContextMenu:
		return GestureContextMenu, true
	case evMouseOver:
		return GestureHover, true
	default:
		return "", false
	}
}

// listenTypes computes the active gesture set: the process-wide default
// trigger plus every configuration's explicit override, widened with touch
// primitives on touch-capable hosts.
func (d *dispatcher) listenTypes() map[string]struct{} {
	set := make(map[string]struct{})
	add := func(g Gesture) {
		for _, t := range rawTypes(g) {
			set[t] = struct{}{}
		}
	}
	add(d.m.opts.Trigger)
	for _, cfg := range d.m.configs {
		if cfg.Trigger != nil {
			add(*cfg.Trigger)
		}
	}
	if d.m.opts.TouchCapable {
		set[evTouchStart] = struct{}{}
		set[evTouchMove] = struct{}{}
		set[evTouchEnd] = struct{}{}
		// Needed even when no configuration uses it, to suppress the
		// context-request touch devices synthesize.
		set[evContextMenu] = struct{}{}
	}
	return set
}

// handle routes one raw gesture event. Caller holds the manager lock.
func (d *dispatcher) handle(ev *doctree.Event) error {
	switch ev.Type {
	case evTouchStart, evTouchMove, evTouchEnd:
		return d.handleTouch(ev)
	case evMouseOut:
		// A leave only cancels a pending hover-open; it never closes.
		d.m.cancelTimer(keyHoverOpen)
		return nil
	case evContextMenu:
		if d.m.opts.TouchCapable {
			ev.PreventDefault()
			ev.StopPropagation()
			return nil
		}
	case evClick, evDblClick, evMouseOver:
	default:
		return nil
	}
	return d.handlePointer(ev)
}

func (d *dispatcher) handlePointer(ev *doctree.Event) error {
	el := d.resolveTarget(ev)
	if el == nil {
		return nil
	}
	menuID, _ := el.Attr(AttrMenuID)
	cfg := d.m.configs[menuID]
	if menuID == "" || cfg == nil {
		return &RoutingError{MenuID: menuID}
	}
	if d.suppressedSource(ev.Target, el, cfg) {
		return nil
	}
	expected := cfg.trigger(d.m.opts)
	gesture, ok := gestureForRaw(ev.Type)
	if !ok || gesture != expected {
		return nil
	}
	if expected == GestureHover && d.m.engine.isCurrentTarget(el) {
		// Pointer jitter within the trigger element of the open menu.
		return nil
	}
	ev.PreventDefault()
	x, y := ev.X, ev.Y
	if expected == GestureHover && d.m.opts.HoverOpenDelay > 0 {
		d.m.schedule(keyHoverOpen, d.m.opts.HoverOpenDelay, func() {
			d.m.engine.open(cfg, el, x, y, false)
		})
		return nil
	}
	d.m.engine.open(cfg, el, x, y, false)
	return nil
}

// resolveTarget finds the acting element for an event: under the deepest
// overlap strategy the event target wins when itself bound, otherwise the
// nearest bound ancestor.
func (d *dispatcher) resolveTarget(ev *doctree.Event) *doctree.Element {
	if ev.Target == nil {
		return nil
	}
	bound := func(e *doctree.Element) bool {
		_, ok := e.Attr(AttrMenuID)
		return ok
	}
	if d.m.opts.OverlapStrategy == OverlapDeepest && bound(ev.Target) {
		return ev.Target
	}
	return ev.Target.Closest(bound)
}

// suppressedSource applies the link/button ignore flags to the raw event
// origin, walking from the event target up to the resolved element.
func (d *dispatcher) suppressedSource(origin, resolved *doctree.Element, cfg *MenuConfiguration) bool {
	ignoreLinks := cfg.ignoreLinks(d.m.opts)
	ignoreButtons := cfg.ignoreButtons(d.m.opts)
	if !ignoreLinks && !ignoreButtons {
		return false
	}
	for cur := origin; cur != nil; cur = cur.Parent() {
		role, _ := cur.Attr("role")
		if ignoreLinks && (cur.Tag() == "a" || role == "link") {
			return true
		}
		if ignoreButtons && (cur.Tag() == "button" || role == "button") {
			return true
		}
		if cur == resolved {
			break
		}
	}
	return false
}

func (d *dispatcher) handleTouch(ev *doctree.Event) error {
	switch ev.Type {
	case evTouchStart:
		if d.m.engine.hasOpen() {
			return nil
		}
		el := d.resolveTarget(ev)
		if el == nil {
			return nil
		}
		menuID, _ := el.Attr(AttrMenuID)
		cfg := d.m.configs[menuID]
		if menuID == "" || cfg == nil {
			return &RoutingError{MenuID: menuID}
		}
		d.touch = touchState{
			active:    true,
			el:        el,
			cfg:       cfg,
			startX:    ev.X,
			startY:    ev.Y,
			startedAt: time.Now(),
		}
		if cfg.mobileTrigger(d.m.opts) == MobileHold {
			ev.PreventDefault()
			x, y := ev.X, ev.Y
			d.m.schedule(keyTouchHold, d.m.opts.HoldDuration, func() {
				if !d.touch.active || d.touch.moved {
					return
				}
				d.touch.heldOpen = true
				d.m.engine.open(cfg, el, x, y, false)
			})
		}
	case evTouchMove:
		if !d.touch.active {
			return nil
		}
		if math.Abs(ev.X-d.touch.startX) > touchSlop || math.Abs(ev.Y-d.touch.startY) > touchSlop {
			d.touch.moved = true
			d.m.cancelTimer(keyTouchHold)
		}
	case evTouchEnd:
		t := d.touch
		d.touch = touchState{}
		d.m.cancelTimer(keyTouchHold)
		if !t.active || t.heldOpen || t.moved {
			return nil
		}
		if t.cfg.mobileTrigger(d.m.opts) != MobileTap {
			return nil
		}
		if time.Since(t.startedAt) <= d.m.opts.TapMaxDuration {
			d.m.engine.open(t.cfg, t.el, t.startX, t.startY, false)
		}
	}
	return nil
}
