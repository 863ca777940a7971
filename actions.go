package ctxmenu

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"github.com/quailyard/ctxmenu/doctree"
)

// EventActionDispatched is the bubbling notification dispatched on the
// trigger element after every successful-or-failed action invocation.
const EventActionDispatched = "ctxmenu:action"

// RegisterAction registers a callback under a name, or unregisters the name
// when fn is nil.
func (m *Manager) RegisterAction(name string, fn ActionFunc) error {
	if name == "" {
		return &ConfigurationError{Reason: "action registration requires a name"}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if fn == nil {
		delete(m.actions, name)
		return nil
	}
	m.actions[name] = fn
	m.actionNames[callbackKey(fn)] = name
	return nil
}

// nameForCallback returns the registry name for an inline callback,
// generating and registering one on first sight. The name is cached per
// distinct function so a callback reused across commands shares one entry.
func (m *Manager) nameForCallback(fn ActionFunc) string {
	key := callbackKey(fn)
	if name, ok := m.actionNames[key]; ok {
		return name
	}
	name := "action-" + uuid.NewString()[:8]
	m.actions[name] = fn
	m.actionNames[key] = name
	return name
}

func callbackKey(fn ActionFunc) uintptr {
	return reflect.ValueOf(fn).Pointer()
}

// invocation is a resolved action activation, executed outside the manager
// lock so callbacks may call back into the public API.
type invocation struct {
	menuID     string
	cmd        *Command
	target     *doctree.Element
	targetType string
	fn         ActionFunc
	resolveErr error
}

// resolveInvocation turns a command activation into an invocation, looking
// named references up in the registered-actions map.
func (m *Manager) resolveInvocation(menuID string, cmd *Command, target *doctree.Element, targetType string) *invocation {
	inv := &invocation{menuID: menuID, cmd: cmd, target: target, targetType: targetType}
	switch {
	case cmd.Action.Direct() != nil:
		inv.fn = cmd.Action.Direct()
	case cmd.Action.Name() != "":
		fn, ok := m.actions[cmd.Action.Name()]
		if !ok {
			inv.resolveErr = &ActionNotFoundError{Name: cmd.Action.Name()}
			break
		}
		inv.fn = fn
	default:
		return nil
	}
	return inv
}

// runInvocation executes a resolved invocation: failures are logged and
// surfaced, and the notification event fires regardless of the outcome.
// The menu has already been force-closed by the time this runs.
func (m *Manager) runInvocation(inv *invocation) error {
	if inv.resolveErr != nil {
		m.logs.emit("action.missing", inv.resolveErr.Error(), map[string]any{
			"menuId":  inv.menuID,
			"command": inv.cmd.ID,
		}, true)
		return inv.resolveErr
	}
	err := safeInvoke(inv.fn, ActionContext{
		Target:     inv.target,
		Command:    inv.cmd,
		TargetType: inv.targetType,
		MenuID:     inv.menuID,
	})
	if err != nil {
		m.logs.emit("action.error", err.Error(), map[string]any{
			"menuId":  inv.menuID,
			"command": inv.cmd.ID,
			"label":   inv.cmd.Label,
		}, true)
		err = &ActionExecutionError{Label: inv.cmd.Label, Err: err}
	} else {
		m.logs.emit("action.done", "action completed", map[string]any{
			"menuId":  inv.menuID,
			"command": inv.cmd.ID,
			"label":   inv.cmd.Label,
		}, false)
	}
	m.notifyAction(inv)
	return err
}

func safeInvoke(fn ActionFunc, ctx ActionContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx)
}

// notifyAction dispatches the decoupled integration event on the trigger
// element.
func (m *Manager) notifyAction(inv *invocation) {
	if inv.target == nil {
		return
	}
	inv.target.Dispatch(&doctree.Event{
		Type:   EventActionDispatched,
		Target: inv.target,
		Detail: map[string]any{
			"menuId":        inv.menuID,
			"commandId":     inv.cmd.ID,
			"commandLabel":  inv.cmd.Label,
			"targetElement": inv.target,
			"targetType":    inv.targetType,
		},
	})
}
