package ctxmenu

import (
	"strconv"

	"github.com/quailyard/ctxmenu/doctree"
)

type menuState int

const (
	stateClosed menuState = iota
	stateOpening
	stateOpen
	stateClosing
)

func (s menuState) String() string {
	switch s {
	case stateOpening:
		return "opening"
	case stateOpen:
		return "open"
	case stateClosing:
		return "closing"
	default:
		return "closed"
	}
}

// menuItem ties a rendered node back to its command for hit-testing and
// activation.
type menuItem struct {
	node     *Node
	cmd      *Command
	disabled bool
}

// openMenu is one open menu surface: the root or a submenu.
type openMenu struct {
	node       *Node
	cfg        *MenuConfiguration
	target     *doctree.Element
	targetType string
	state      menuState
	items      []*menuItem
	// parentCmd is nil for the root menu.
	parentCmd *Command
	key       string
}

const (
	keyHoverClose = "engine:hover-close"
	rootMenuKey   = "engine:menu:root"
)

func cascadeOpenKey(c *Command) string { return "engine:cascade:open:" + c.ID }
func cascadeCloseKey(c *Command) string {
	return "engine:cascade:close:" + c.ID
}

// engine owns the active menu, the submenu stack and the timers that drive
// open/close animation and the hover cascade.
type engine struct {
	m        *Manager
	active   *openMenu
	submenus []*openMenu
	closing  []*openMenu

	hovered     *menuItem
	hoveredMenu *openMenu

	// seq numbers every menu instance so open/close timer keys never
	// collide across successive menus of the same shape.
	seq uint64
}

func newEngine(m *Manager) *engine {
	return &engine{m: m}
}

// nextKey derives a timer key unique to one menu instance.
func (e *engine) nextKey(base string) string {
	e.seq++
	return base + ":" + strconv.FormatUint(e.seq, 10)
}

func (e *engine) hasOpen() bool    { return e.active != nil }
func (e *engine) hasClosing() bool { return len(e.closing) > 0 }

func (e *engine) isCurrentTarget(el *doctree.Element) bool {
	return e.active != nil && e.active.target == el
}

// open builds and shows the root menu for a configuration. Opening while
// another root menu is active forces the previous one through its close
// sequence first. Reports whether anything was shown.
func (e *engine) open(cfg *MenuConfiguration, target *doctree.Element, x, y float64, instant bool) bool {
	if e.active != nil {
		e.closeRoot(instant)
	}
	targetType := targetTypeOf(target)
	menu := e.build(cfg, target, targetType, nil)
	if menu == nil {
		e.m.logs.emit("menu.empty", "no visible items after filtering", map[string]any{
			"menuId": cfg.ID,
			"type":   targetType,
		}, false)
		return false
	}
	viewport := e.m.doc.Root().Bounds()
	menu.node.Box.X, menu.node.Box.Y = positionRoot(
		menu.node.Box.W, menu.node.Box.H, x, y, viewport.W, viewport.H,
	)
	e.layoutMenu(menu)
	e.active = menu
	e.transitionOpen(menu)
	e.m.refreshListeners()
	e.m.logs.emit("menu.open", "menu opened", map[string]any{
		"menuId": cfg.ID,
		"type":   targetType,
		"items":  len(menu.items),
	}, false)
	return true
}

// closeRoot unwinds the submenu stack innermost-first, then runs the root's
// close sequence. Instant skips the closing animation.
func (e *engine) closeRoot(instant bool) {
	if e.active == nil {
		return
	}
	e.closeSubmenusFrom(0, instant)
	menu := e.active
	e.active = nil
	e.hovered = nil
	e.hoveredMenu = nil
	e.m.cancelTimer(keyHoverClose)
	e.m.cancelTimerPrefix("engine:cascade:")
	e.beginClose(menu, instant)
	e.m.refreshListeners()
	e.m.logs.emit("menu.close", "menu closed", map[string]any{
		"menuId":  menu.cfg.ID,
		"instant": instant,
	}, false)
}

// build renders one menu surface: the root when parentCmd is nil, otherwise
// the submenu for parentCmd. Returns nil when filtering leaves nothing to
// show.
func (e *engine) build(cfg *MenuConfiguration, target *doctree.Element, targetType string, parentCmd *Command) *openMenu {
	cls := e.m.opts.Classes
	strategy := cfg.filterStrategy(e.m.opts)

	classes := append([]string{cls.Menu}, e.m.opts.ExtraClasses...)
	classes = append(classes, cfg.ExtraClasses...)
	node := newNode(classes...)
	node.SetAttr("data-menu-id", cfg.ID)

	// Submenus never show a header.
	if parentCmd == nil {
		if header := cfg.headerFor(targetType); header != "" {
			hn := newNode(cls.Header)
			hn.Text = header
			node.Append(hn)
		}
	}

	source := cfg.Commands
	key := e.nextKey(rootMenuKey)
	if parentCmd != nil {
		source = parentCmd.SubCommands
		key = e.nextKey("engine:menu:sub:" + parentCmd.ID)
	}

	var items []*menuItem
	visible := 0
	for _, cmd := range source {
		if !cmd.Visible {
			continue
		}
		if cmd.Kind == KindSeparator {
			// Separators carry no type filter and render
			// unconditionally.
			n := newNode(cls.Separator)
			if cmd.IsSubHeader() {
				n.AddClass(cls.Header)
				n.Text = cmd.Content
			}
			node.Append(n)
			items = append(items, &menuItem{node: n, cmd: cmd})
			continue
		}
		match := cmd.matchesType(targetType)
		if !match && strategy == FilterHide {
			continue
		}
		n := newNode(cls.Item)
		n.Text = cmd.Label
		if cmd.Icon != "" {
			n.AddClass(cmd.Icon)
		}
		disabled := cmd.Disabled || (!match && strategy == FilterDisable)
		if disabled {
			n.AddClass(cls.Disabled)
		}
		// The open-affordance only appears when children are declared;
		// their own visibility is evaluated lazily at submenu-open
		// time.
		if cmd.Kind == KindSublist && len(cmd.SubCommands) > 0 {
			n.AddClass(cls.Sublist)
		}
		node.Append(n)
		items = append(items, &menuItem{node: n, cmd: cmd, disabled: disabled})
		visible++
	}
	if visible == 0 {
		return nil
	}

	menu := &openMenu{
		node:       node,
		cfg:        cfg,
		target:     target,
		targetType: targetType,
		items:      items,
		parentCmd:  parentCmd,
		key:        key,
	}
	e.measureMenu(menu)
	return menu
}

// measureMenu computes the menu box from the host metrics and measurer.
func (e *engine) measureMenu(menu *openMenu) {
	met := e.m.opts.Metrics
	width := met.MinWidth
	height := 0.0
	for _, child := range menu.node.Children {
		w := e.m.measure(child.Text) + met.PaddingX
		if child.HasClass(e.m.opts.Classes.Sublist) {
			w += met.AffordanceWidth
		}
		if w > width {
			width = w
		}
		height += e.nodeHeight(child)
	}
	menu.node.Box.W = width
	menu.node.Box.H = height
}

// layoutMenu stacks child boxes vertically once the menu box is placed.
func (e *engine) layoutMenu(menu *openMenu) {
	box := menu.node.Box
	y := box.Y
	for _, child := range menu.node.Children {
		h := e.nodeHeight(child)
		child.Box = doctree.Rect{X: box.X, Y: y, W: box.W, H: h}
		y += h
	}
}

func (e *engine) nodeHeight(n *Node) float64 {
	cls := e.m.opts.Classes
	met := e.m.opts.Metrics
	switch {
	case n.HasClass(cls.Separator):
		if n.Text != "" {
			return met.HeaderHeight
		}
		return met.SeparatorHeight
	case n.HasClass(cls.Header):
		return met.HeaderHeight
	default:
		return met.ItemHeight
	}
}

// transitionOpen runs Closed→Opening→Open. Zero open duration collapses
// the transient state synchronously.
func (e *engine) transitionOpen(menu *openMenu) {
	menu.state = stateOpening
	menu.node.AddClass(e.m.opts.Classes.Opening)
	d := e.m.opts.OpenDuration
	if d <= 0 {
		e.finishOpen(menu)
		return
	}
	e.m.schedule(menu.key+":open", d, func() { e.finishOpen(menu) })
}

func (e *engine) finishOpen(menu *openMenu) {
	if menu.state != stateOpening {
		return
	}
	// A root menu only reaches Open once its predecessor has fully
	// settled into Closed.
	if menu.parentCmd == nil {
		e.flushClosing()
	}
	menu.state = stateOpen
	menu.node.RemoveClass(e.m.opts.Classes.Opening)
	menu.node.AddClass(e.m.opts.Classes.Open)
}

// beginClose runs Opening/Open→Closing→Closed. A close requested
// mid-opening still runs the full close sequence from whatever visual
// state exists.
func (e *engine) beginClose(menu *openMenu, instant bool) {
	e.m.cancelTimer(menu.key + ":open")
	menu.state = stateClosing
	cls := e.m.opts.Classes
	menu.node.RemoveClass(cls.Opening)
	menu.node.RemoveClass(cls.Open)
	menu.node.AddClass(cls.Closing)
	d := e.m.opts.CloseDuration
	if instant || d <= 0 {
		e.finalize(menu)
		return
	}
	e.closing = append(e.closing, menu)
	e.m.schedule(menu.key+":close", d, func() { e.finalize(menu) })
}

func (e *engine) finalize(menu *openMenu) {
	menu.state = stateClosed
	menu.node.RemoveClass(e.m.opts.Classes.Closing)
	for i, c := range e.closing {
		if c == menu {
			e.closing = append(e.closing[:i], e.closing[i+1:]...)
			break
		}
	}
}

func (e *engine) flushClosing() {
	for len(e.closing) > 0 {
		menu := e.closing[0]
		e.m.cancelTimer(menu.key + ":close")
		e.finalize(menu)
	}
}

// stop settles everything instantly; used when the manager shuts down.
func (e *engine) stop() {
	e.closeRoot(true)
	e.flushClosing()
}

// handleGlobalEvent routes document-level events while menus are open or
// closing. It returns a pending invocation (run outside the lock) and
// whether the event was consumed by the menu surface.
func (e *engine) handleGlobalEvent(ev *doctree.Event) (*invocation, bool) {
	switch ev.Type {
	case evScroll:
		e.closeRoot(true)
		return nil, false
	case evKeyDown:
		if e.active != nil && ev.Detail != nil && ev.Detail["key"] == "Escape" {
			e.closeRoot(true)
			return nil, true
		}
		return nil, false
	case evMouseMove:
		e.handleMove(ev.X, ev.Y)
		return nil, false
	case evClick, evDblClick, evContextMenu, evTouchEnd:
		if ev.Type == evTouchEnd && e.m.dispatcher.touch.active {
			// The release of the gesture that opened the menu still
			// belongs to the dispatcher's touch state machine.
			return nil, false
		}
		menu, item := e.hitTest(ev.X, ev.Y)
		if menu == nil {
			if e.active != nil && e.effectiveCloseTrigger() == CloseOnClick {
				e.closeRoot(false)
			}
			return nil, false
		}
		if ev.Type == evDblClick || ev.Type == evContextMenu {
			return nil, true
		}
		return e.activate(menu, item), true
	default:
		return nil, false
	}
}

// activate handles a click on a menu surface.
func (e *engine) activate(menu *openMenu, item *menuItem) *invocation {
	if item == nil || item.disabled || item.cmd.Kind == KindSeparator {
		return nil
	}
	if item.cmd.Kind == KindSublist {
		e.closeSubmenusNotAncestorOf(menu, item.cmd)
		e.m.cancelTimer(cascadeOpenKey(item.cmd))
		e.m.cancelTimer(cascadeCloseKey(item.cmd))
		if e.submenuFor(item.cmd) == nil {
			e.openSubmenu(menu, item)
		}
		return nil
	}
	if item.cmd.Action.IsZero() {
		// Action-less dead node: renders, never invokes.
		return nil
	}
	inv := e.m.resolveInvocation(menu.cfg.ID, item.cmd, menu.target, menu.targetType)
	// The menu is unconditionally closed before the invocation outcome
	// can corrupt timers or bookkeeping.
	e.closeRoot(false)
	return inv
}

// handleMove tracks the hovered item, drives the submenu cascade and the
// mouseout-style close.
func (e *engine) handleMove(x, y float64) {
	menu, item := e.hitTest(x, y)
	if menu == nil {
		if e.hovered != nil {
			e.leaveItem(e.hoveredMenu, e.hovered)
			e.hovered = nil
			e.hoveredMenu = nil
		}
		if e.active != nil && e.effectiveCloseTrigger() == CloseOnMouseOut {
			if e.active.target.Bounds().Contains(x, y) {
				e.m.cancelTimer(keyHoverClose)
			} else {
				e.m.schedule(keyHoverClose, e.m.opts.HoverCloseDelay, func() {
					e.closeRoot(false)
				})
			}
		}
		return
	}
	e.m.cancelTimer(keyHoverClose)
	if item == e.hovered {
		return
	}
	if e.hovered != nil {
		e.leaveItem(e.hoveredMenu, e.hovered)
	}
	e.hovered = item
	e.hoveredMenu = menu
	if item != nil {
		e.enterItem(menu, item)
	}
}

// enterItem cancels pending closes along the hovered command's ancestor
// chain, closes submenus on other branches, and schedules the cascade open
// for sublist items.
func (e *engine) enterItem(menu *openMenu, item *menuItem) {
	cmd := item.cmd
	for c := cmd; c != nil; c = menu.cfg.parentOf(c) {
		e.m.cancelTimer(cascadeCloseKey(c))
	}
	if cmd.Kind != KindSublist {
		return
	}
	e.closeSubmenusNotAncestorOf(menu, cmd)
	if item.disabled || len(cmd.SubCommands) == 0 {
		return
	}
	if e.submenuFor(cmd) != nil {
		// Already open for this command; not rebuilt.
		return
	}
	e.m.schedule(cascadeOpenKey(cmd), e.m.opts.SubmenuOpenDelay, func() {
		e.openSubmenu(menu, item)
	})
}

// leaveItem cancels a pending cascade open and schedules the close of the
// submenu opened from the item, if any.
func (e *engine) leaveItem(menu *openMenu, item *menuItem) {
	if menu == nil || item == nil {
		return
	}
	cmd := item.cmd
	e.m.cancelTimer(cascadeOpenKey(cmd))
	if e.submenuFor(cmd) == nil {
		return
	}
	e.m.schedule(cascadeCloseKey(cmd), e.m.opts.SubmenuCloseDelay, func() {
		if idx := e.submenuIndexFor(cmd); idx >= 0 {
			e.closeSubmenusFrom(idx, false)
		}
	})
}

// openSubmenu builds and shows the submenu for a sublist item, anchored to
// the item's current box. An empty-after-filter submenu aborts and strips
// the open-affordance from its parent item.
func (e *engine) openSubmenu(parent *openMenu, item *menuItem) {
	cmd := item.cmd
	if e.submenuFor(cmd) != nil {
		return
	}
	if e.active == nil {
		return
	}
	sub := e.build(parent.cfg, parent.target, parent.targetType, cmd)
	if sub == nil {
		item.node.RemoveClass(e.m.opts.Classes.Sublist)
		e.m.logs.emit("submenu.empty", "no visible items after filtering", map[string]any{
			"menuId":  parent.cfg.ID,
			"command": cmd.ID,
		}, false)
		return
	}
	viewport := e.m.doc.Root().Bounds()
	sub.node.Box.X, sub.node.Box.Y = positionSubmenu(
		item.node.Box, sub.node.Box.W, sub.node.Box.H, viewport.W, viewport.H,
	)
	e.layoutMenu(sub)
	e.submenus = append(e.submenus, sub)
	e.transitionOpen(sub)
	e.m.logs.emit("submenu.open", "submenu opened", map[string]any{
		"menuId":  parent.cfg.ID,
		"command": cmd.ID,
		"items":   len(sub.items),
	}, false)
}

// closeSubmenusFrom unwinds the submenu stack down to (and including) the
// given index, innermost-first, each with its own close sequence.
func (e *engine) closeSubmenusFrom(idx int, instant bool) {
	for i := len(e.submenus) - 1; i >= idx; i-- {
		sub := e.submenus[i]
		e.m.cancelTimer(cascadeOpenKey(sub.parentCmd))
		e.m.cancelTimer(cascadeCloseKey(sub.parentCmd))
		e.beginClose(sub, instant)
	}
	if idx < len(e.submenus) {
		e.submenus = e.submenus[:idx]
	}
	if e.hoveredMenu != nil && e.submenuIndexOf(e.hoveredMenu) >= len(e.submenus) && e.hoveredMenu.parentCmd != nil {
		e.hovered = nil
		e.hoveredMenu = nil
	}
}

// closeSubmenusNotAncestorOf keeps the stack prefix whose parent commands
// lie on the hovered command's ancestor chain and closes the rest.
func (e *engine) closeSubmenusNotAncestorOf(menu *openMenu, cmd *Command) {
	keep := 0
	for i, sub := range e.submenus {
		if menu.cfg.isAncestorOrSelf(sub.parentCmd, cmd) {
			keep = i + 1
			continue
		}
		break
	}
	e.closeSubmenusFrom(keep, false)
}

func (e *engine) submenuFor(cmd *Command) *openMenu {
	for _, sub := range e.submenus {
		if sub.parentCmd == cmd {
			return sub
		}
	}
	return nil
}

func (e *engine) submenuIndexFor(cmd *Command) int {
	for i, sub := range e.submenus {
		if sub.parentCmd == cmd {
			return i
		}
	}
	return -1
}

func (e *engine) submenuIndexOf(menu *openMenu) int {
	for i, sub := range e.submenus {
		if sub == menu {
			return i
		}
	}
	return len(e.submenus)
}

// hitTest finds the menu surface and item under a point, innermost-first.
// Menus in their closing sequence no longer participate.
func (e *engine) hitTest(x, y float64) (*openMenu, *menuItem) {
	for i := len(e.submenus) - 1; i >= 0; i-- {
		if e.submenus[i].node.Box.Contains(x, y) {
			return e.submenus[i], itemAt(e.submenus[i], x, y)
		}
	}
	if e.active != nil && e.active.node.Box.Contains(x, y) {
		return e.active, itemAt(e.active, x, y)
	}
	return nil, nil
}

func itemAt(menu *openMenu, x, y float64) *menuItem {
	for _, item := range menu.items {
		if item.node.Box.Contains(x, y) {
			return item
		}
	}
	return nil
}

func (e *engine) effectiveCloseTrigger() CloseTrigger {
	if e.active == nil {
		return CloseOnClick
	}
	return e.active.cfg.closeTrigger(e.m.opts)
}
