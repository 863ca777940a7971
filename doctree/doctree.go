// Package doctree provides a minimal document tree for hosts that want to
// attach contextual menus to on-screen regions. Elements carry a tag, id,
// classes, string attributes and a bounding box; events dispatched on an
// element bubble towards the root. The package is deliberately small: it is
// the key-value association and hit-testing surface the menu engine needs,
// not a layout system.
package doctree

import (
	"sort"
	"strings"
)

// Rect is an axis-aligned box in host units (cells or pixels).
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Event is a bubbling occurrence on the tree: pointer gestures, touch
// phases, key presses and synthetic notifications all share this shape.
type Event struct {
	Type   string
	Target *Element
	X, Y   float64
	Detail map[string]any

	stopped          bool
	defaultPrevented bool
}

// StopPropagation halts bubbling after the current element's listeners run.
func (e *Event) StopPropagation() { e.stopped = true }

// PreventDefault marks the event so the host skips its default handling.
func (e *Event) PreventDefault() { e.defaultPrevented = true }

// PropagationStopped reports whether a listener stopped the event.
func (e *Event) PropagationStopped() bool { return e.stopped }

// DefaultPrevented reports whether a listener suppressed default handling.
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// Listener receives events during dispatch.
type Listener func(*Event)

// Element is a node in the document tree.
type Element struct {
	tag      string
	id       string
	classes  []string
	attrs    map[string]string
	parent   *Element
	children []*Element
	bounds   Rect

	listeners  map[string]map[int]Listener
	listenerID int
}

// NewElement constructs a detached element with the given tag.
func NewElement(tag string) *Element {
	return &Element{tag: tag, attrs: make(map[string]string)}
}

// Tag returns the element tag.
func (e *Element) Tag() string { return e.tag }

// ID returns the element identifier, empty when unset.
func (e *Element) ID() string { return e.id }

// SetID assigns the element identifier and returns the element for chaining.
func (e *Element) SetID(id string) *Element {
	e.id = id
	return e
}

// AddClass appends a class when not already present.
func (e *Element) AddClass(class string) *Element {
	for _, c := range e.classes {
		if c == class {
			return e
		}
	}
	e.classes = append(e.classes, class)
	return e
}

// HasClass reports whether the element carries the class.
func (e *Element) HasClass(class string) bool {
	for _, c := range e.classes {
		if c == class {
			return true
		}
	}
	return false
}

// SetBounds assigns the on-screen box and returns the element for chaining.
func (e *Element) SetBounds(r Rect) *Element {
	e.bounds = r
	return e
}

// Bounds returns the element's on-screen box.
func (e *Element) Bounds() Rect { return e.bounds }

// SetAttr stores an attribute value.
func (e *Element) SetAttr(key, value string) *Element {
	e.attrs[key] = value
	return e
}

// Attr looks up an attribute value.
func (e *Element) Attr(key string) (string, bool) {
	v, ok := e.attrs[key]
	return v, ok
}

// RemoveAttr drops an attribute.
func (e *Element) RemoveAttr(key string) {
	delete(e.attrs, key)
}

// Append attaches a child element and returns the parent for chaining.
func (e *Element) Append(child *Element) *Element {
	child.parent = e
	e.children = append(e.children, child)
	return e
}

// Parent returns the parent element, nil at the root.
func (e *Element) Parent() *Element { return e.parent }

// Children returns the child slice in insertion order.
func (e *Element) Children() []*Element { return e.children }

// Closest walks from the element towards the root and returns the first
// element (the receiver included) matching the predicate.
func (e *Element) Closest(match func(*Element) bool) *Element {
	for cur := e; cur != nil; cur = cur.parent {
		if match(cur) {
			return cur
		}
	}
	return nil
}

// Contains reports whether other is the receiver or one of its descendants.
func (e *Element) Contains(other *Element) bool {
	for cur := other; cur != nil; cur = cur.parent {
		if cur == e {
			return true
		}
	}
	return false
}

// On registers a listener for the event type and returns a handle for Off.
func (e *Element) On(eventType string, fn Listener) int {
	if e.listeners == nil {
		e.listeners = make(map[string]map[int]Listener)
	}
	if e.listeners[eventType] == nil {
		e.listeners[eventType] = make(map[int]Listener)
	}
	e.listenerID++
	e.listeners[eventType][e.listenerID] = fn
	return e.listenerID
}

// Off removes a listener previously registered with On.
func (e *Element) Off(eventType string, handle int) {
	if e.listeners == nil {
		return
	}
	delete(e.listeners[eventType], handle)
}

// Dispatch bubbles the event from its target (the receiver when unset) to
// the root. Listener sets are snapshotted per element so handlers may attach
// or detach listeners during delivery.
func (e *Element) Dispatch(ev *Event) {
	if ev.Target == nil {
		ev.Target = e
	}
	for cur := e; cur != nil; cur = cur.parent {
		for _, fn := range cur.listenerSnapshot(ev.Type) {
			fn(ev)
		}
		if ev.stopped {
			return
		}
	}
}

func (e *Element) listenerSnapshot(eventType string) []Listener {
	set := e.listeners[eventType]
	if len(set) == 0 {
		return nil
	}
	handles := make([]int, 0, len(set))
	for h := range set {
		handles = append(handles, h)
	}
	sort.Ints(handles)
	out := make([]Listener, 0, len(handles))
	for _, h := range handles {
		out = append(out, set[h])
	}
	return out
}

// Document owns a root element sized to the viewport.
type Document struct {
	root *Element
}

// NewDocument creates a document whose root spans the given viewport.
func NewDocument(width, height float64) *Document {
	root := NewElement("root")
	root.SetBounds(Rect{W: width, H: height})
	return &Document{root: root}
}

// Root returns the document root element.
func (d *Document) Root() *Element { return d.root }

// Resize updates the root bounds to a new viewport size.
func (d *Document) Resize(width, height float64) {
	b := d.root.bounds
	b.W, b.H = width, height
	d.root.bounds = b
}

// Query returns, in depth-first order, every element matching the selector.
// Selectors are intentionally simple: "#id", ".class" or a bare tag name.
func (d *Document) Query(selector string) []*Element {
	match := matcherFor(selector)
	if match == nil {
		return nil
	}
	var out []*Element
	walk(d.root, func(e *Element) {
		if match(e) {
			out = append(out, e)
		}
	})
	return out
}

// QueryFirst returns the first element matching the selector, nil when none.
func (d *Document) QueryFirst(selector string) *Element {
	if els := d.Query(selector); len(els) > 0 {
		return els[0]
	}
	return nil
}

// ElementAt returns the deepest element whose bounds contain the point.
// Later siblings win, mirroring paint order.
func (d *Document) ElementAt(x, y float64) *Element {
	if !d.root.bounds.Contains(x, y) {
		return nil
	}
	return deepestAt(d.root, x, y)
}

// DispatchPointer hit-tests the point and bubbles a positional event from
// the deepest element there (the root when the point misses everything).
func (d *Document) DispatchPointer(eventType string, x, y float64) *Event {
	target := d.ElementAt(x, y)
	if target == nil {
		target = d.root
	}
	ev := &Event{Type: eventType, Target: target, X: x, Y: y}
	target.Dispatch(ev)
	return ev
}

// DispatchKey bubbles a keydown event from the root.
func (d *Document) DispatchKey(key string) *Event {
	ev := &Event{Type: "keydown", Target: d.root, Detail: map[string]any{"key": key}}
	d.root.Dispatch(ev)
	return ev
}

func deepestAt(e *Element, x, y float64) *Element {
	for i := len(e.children) - 1; i >= 0; i-- {
		child := e.children[i]
		if child.bounds.Contains(x, y) {
			return deepestAt(child, x, y)
		}
	}
	return e
}

func walk(e *Element, visit func(*Element)) {
	visit(e)
	for _, child := range e.children {
		walk(child, visit)
	}
}

func matcherFor(selector string) func(*Element) bool {
	selector = strings.TrimSpace(selector)
	switch {
	case selector == "":
		return nil
	case strings.HasPrefix(selector, "#"):
		id := selector[1:]
		return func(e *Element) bool { return e.id == id }
	case strings.HasPrefix(selector, "."):
		class := selector[1:]
		return func(e *Element) bool { return e.HasClass(class) }
	default:
		return func(e *Element) bool { return e.tag == selector }
	}
}
