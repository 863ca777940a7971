package ctxmenu

import "github.com/quailyard/ctxmenu/doctree"

const (
	// AttrMenuID stamps an element with the menu it is bound to.
	AttrMenuID = "data-menu"
	// AttrTargetType stamps an element with its application-defined type.
	AttrTargetType = "data-menu-type"
	// DefaultTargetType is the sentinel used when an element carries no
	// type stamp.
	DefaultTargetType = "default"
)

// BindMenuToElements associates elements with a menu id and target type.
// The argument may be a single element, a slice, or a selector string. An
// existing type stamp is preserved so per-element customization survives
// repeated bind calls. Returns the number of elements bound.
func (m *Manager) BindMenuToElements(target any, menuID, targetType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bindLocked(target, menuID, targetType)
}

func (m *Manager) bindLocked(target any, menuID, targetType string) int {
	els := m.resolveElements(target)
	for _, el := range els {
		el.SetAttr(AttrMenuID, menuID)
		if targetType == "" {
			continue
		}
		if _, ok := el.Attr(AttrTargetType); !ok {
			el.SetAttr(AttrTargetType, targetType)
		}
	}
	if len(els) > 0 {
		m.logs.emit("bind", "elements bound", map[string]any{
			"menuId": menuID,
			"type":   targetType,
			"count":  len(els),
		}, false)
	}
	return len(els)
}

// UnbindMenuFromElements removes both stamps from the resolved elements.
// Active menu state is untouched. Returns the number of elements unbound.
func (m *Manager) UnbindMenuFromElements(target any) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	els := m.resolveElements(target)
	for _, el := range els {
		el.RemoveAttr(AttrMenuID)
		el.RemoveAttr(AttrTargetType)
	}
	return len(els)
}

// resolveElements widens the accepted binding argument forms into a slice.
func (m *Manager) resolveElements(target any) []*doctree.Element {
	switch v := target.(type) {
	case nil:
		return nil
	case *doctree.Element:
		if v == nil {
			return nil
		}
		return []*doctree.Element{v}
	case []*doctree.Element:
		return v
	case string:
		return m.doc.Query(v)
	default:
		return nil
	}
}

// targetTypeOf resolves an element's type stamp, falling back to the
// default sentinel.
func targetTypeOf(el *doctree.Element) string {
	if t, ok := el.Attr(AttrTargetType); ok && t != "" {
		return t
	}
	return DefaultTargetType
}
