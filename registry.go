package ctxmenu

import (
	"reflect"
	"strings"
)

// AddMenuConfiguration registers (or replaces) a menu configuration.
// Re-registering an id replaces its commands and merges override fields.
// Registration recomputes the dispatcher's gesture set, since a new
// configuration may introduce a trigger not previously listened for.
func (m *Manager) AddMenuConfiguration(cfg *MenuConfiguration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addConfigLocked(cfg)
}

func (m *Manager) addConfigLocked(cfg *MenuConfiguration) error {
	if cfg == nil || strings.TrimSpace(cfg.ID) == "" {
		return &ConfigurationError{Reason: "menu configuration requires an id"}
	}
	if err := cfg.prepare(); err != nil {
		return err
	}
	cfg.mergeOverrides(m.configs[cfg.ID])
	m.configs[cfg.ID] = cfg
	m.refreshListeners()
	m.logs.emit("config.register", "menu configuration registered", map[string]any{
		"menuId":   cfg.ID,
		"commands": len(cfg.Commands),
	}, false)
	return nil
}

// UpdateMenuConfiguration shallow-merges fields into an existing
// configuration. An unknown id is a soft failure: logged, reported false.
func (m *Manager) UpdateMenuConfiguration(id string, patch ConfigPatch) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg, ok := m.configs[id]
	if !ok {
		m.logs.emit("config.missing", "update for unknown menu configuration", map[string]any{
			"menuId": id,
		}, true)
		return false
	}
	patch.apply(cfg)
	m.refreshListeners()
	return true
}

// UpdateMenuCommand merges fields into the first command (pre-order, roots
// before sublist children) whose action matches actionRef. actionRef may be
// a registered name, a callback, or an ActionRef; a direct callback is
// resolved to its registered name first. Reports whether a match was found.
func (m *Manager) UpdateMenuCommand(id string, actionRef any, patch CommandPatch) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg, ok := m.configs[id]
	if !ok {
		m.logs.emit("config.missing", "command update for unknown menu configuration", map[string]any{
			"menuId": id,
		}, true)
		return false
	}
	match := m.actionMatcher(actionRef)
	if match == nil {
		return false
	}
	cmd := cfg.findByAction(match)
	if cmd == nil {
		m.logs.emit("command.missing", "no command matched the action reference", map[string]any{
			"menuId": id,
		}, true)
		return false
	}
	patch.apply(cmd)
	return true
}

func (m *Manager) actionMatcher(actionRef any) func(ActionRef) bool {
	matchFn := func(fn ActionFunc) func(ActionRef) bool {
		key := callbackKey(fn)
		name := m.actionNames[key]
		return func(r ActionRef) bool {
			if name != "" && r.Name() == name {
				return true
			}
			return r.Direct() != nil && reflect.ValueOf(r.Direct()).Pointer() == key
		}
	}
	switch v := actionRef.(type) {
	case string:
		return func(r ActionRef) bool { return r.Name() == v }
	case ActionFunc:
		return matchFn(v)
	case func(ActionContext) error:
		return matchFn(v)
	case ActionRef:
		if v.Direct() != nil {
			return matchFn(v.Direct())
		}
		return func(r ActionRef) bool { return r.Name() == v.Name() }
	default:
		return nil
	}
}

// CreateAndBindMenu normalizes a declarative definition, registers the
// resulting configuration, and binds matching elements when both a
// selector and a target type are given. Inline callbacks get generated
// registry names, cached per distinct function.
func (m *Manager) CreateAndBindMenu(def MenuDefinition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if strings.TrimSpace(def.MenuID) == "" {
		return &ConfigurationError{Reason: "menu definition requires a menuId"}
	}
	if len(def.Structure) == 0 {
		return &ConfigurationError{Reason: "menu definition requires a structure"}
	}
	cfg := &MenuConfiguration{
		ID:             def.MenuID,
		Header:         def.Header,
		Trigger:        def.Trigger,
		MobileTrigger:  def.MobileTrigger,
		CloseTrigger:   def.CloseTrigger,
		FilterStrategy: def.FilterStrategy,
		ExtraClasses:   def.ExtraClasses,
		IgnoreLinks:    def.IgnoreLinks,
		IgnoreButtons:  def.IgnoreButtons,
	}
	for _, spec := range def.Structure {
		cmd, err := normalizeSpec(spec, m.nameForCallback)
		if err != nil {
			return err
		}
		cfg.Commands = append(cfg.Commands, cmd)
	}
	if err := m.addConfigLocked(cfg); err != nil {
		return err
	}
	if def.Selector != "" && def.TargetType != "" {
		m.bindLocked(def.Selector, def.MenuID, def.TargetType)
	}
	return nil
}
