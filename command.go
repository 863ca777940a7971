package ctxmenu

import (
	"github.com/google/uuid"
	"github.com/quailyard/ctxmenu/doctree"
)

// Kind discriminates the three command shapes a menu entry can take.
type Kind int

const (
	// KindAction invokes a callback when activated.
	KindAction Kind = iota
	// KindSublist opens a nested submenu instead of invoking an action.
	KindSublist
	// KindSeparator renders a divider, or a sub-header when it carries
	// content.
	KindSeparator
)

func (k Kind) String() string {
	switch k {
	case KindAction:
		return "action"
	case KindSublist:
		return "sublist"
	case KindSeparator:
		return "separator"
	default:
		return "unknown"
	}
}

// ActionContext is handed to action callbacks at invocation time.
type ActionContext struct {
	Target     *doctree.Element
	Command    *Command
	TargetType string
	MenuID     string
}

// ActionFunc is the callback signature for menu actions.
type ActionFunc func(ActionContext) error

// ActionRef identifies the work an Action command performs: either a name
// resolved against the registered-actions map at invocation time, or a
// direct callback.
type ActionRef struct {
	name string
	fn   ActionFunc
}

// NamedAction references a registered action by name.
func NamedAction(name string) ActionRef { return ActionRef{name: name} }

// DirectAction references a callback directly.
func DirectAction(fn ActionFunc) ActionRef { return ActionRef{fn: fn} }

// Name returns the registered name, empty for direct references.
func (r ActionRef) Name() string { return r.name }

// Direct returns the direct callback, nil for named references.
func (r ActionRef) Direct() ActionFunc { return r.fn }

// IsZero reports whether the reference points at nothing.
func (r ActionRef) IsZero() bool { return r.name == "" && r.fn == nil }

// Command is one node in a menu tree.
type Command struct {
	ID          string
	Kind        Kind
	Label       string
	Action      ActionRef
	TargetTypes []string
	Disabled    bool
	Visible     bool
	Order       int
	Icon        string
	// Content turns a separator into a sub-header when non-empty.
	Content     string
	SubCommands []*Command

	// parentID links back into the owning configuration's index; it is
	// only used for ancestry checks during submenu-close decisions.
	parentID string
}

// NewCommand constructs an Action command. A label is required.
func NewCommand(label string, action ActionRef) (*Command, error) {
	if label == "" {
		return nil, &ConfigurationError{Reason: "action command requires a label"}
	}
	return &Command{
		ID:          uuid.NewString(),
		Kind:        KindAction,
		Label:       label,
		Action:      action,
		TargetTypes: []string{TargetTypeAny},
		Visible:     true,
	}, nil
}

// NewSublist constructs a Sublist command. A label is required.
func NewSublist(label string, children ...*Command) (*Command, error) {
	if label == "" {
		return nil, &ConfigurationError{Reason: "sublist command requires a label"}
	}
	return &Command{
		ID:          uuid.NewString(),
		Kind:        KindSublist,
		Label:       label,
		TargetTypes: []string{TargetTypeAny},
		Visible:     true,
		SubCommands: children,
	}, nil
}

// NewSeparator constructs a Separator command. Non-empty content renders a
// sub-header instead of a plain divider line.
func NewSeparator(content string) *Command {
	return &Command{
		ID:          uuid.NewString(),
		Kind:        KindSeparator,
		Content:     content,
		TargetTypes: []string{TargetTypeAny},
		Visible:     true,
	}
}

// TargetTypeAny is the sentinel matching every resolved target type.
const TargetTypeAny = "*"

// matchesType reports whether the command applies to the resolved type.
func (c *Command) matchesType(targetType string) bool {
	for _, t := range c.TargetTypes {
		if t == TargetTypeAny || t == targetType {
			return true
		}
	}
	return false
}

// IsSubHeader reports whether a separator carries display content.
func (c *Command) IsSubHeader() bool {
	return c.Kind == KindSeparator && c.Content != ""
}

// CommandSpec is the declarative form of a Command, coerced into the typed
// tree at registration time. A spec with sub-commands is auto-promoted to a
// Sublist; Kind may also be set explicitly for separators.
type CommandSpec struct {
	ID          string
	Kind        Kind
	Label       string
	// Action is either a registered name (string), a callback
	// (ActionFunc), or an ActionRef.
	Action      any
	TargetTypes []string
	Disabled    bool
	// Visible defaults to true when nil.
	Visible     *bool
	Order       int
	Icon        string
	Content     string
	SubCommands []CommandSpec
}

// normalizeSpec coerces a declarative spec into a Command. nameFor, when
// non-nil, assigns registry names to inline callbacks.
func normalizeSpec(spec CommandSpec, nameFor func(ActionFunc) string) (*Command, error) {
	kind := spec.Kind
	if kind == KindAction && len(spec.SubCommands) > 0 {
		kind = KindSublist
	}
	if kind != KindSeparator && spec.Label == "" {
		return nil, &ConfigurationError{Reason: kind.String() + " command requires a label"}
	}
	cmd := &Command{
		ID:          spec.ID,
		Kind:        kind,
		Label:       spec.Label,
		TargetTypes: spec.TargetTypes,
		Disabled:    spec.Disabled,
		Visible:     true,
		Order:       spec.Order,
		Icon:        spec.Icon,
		Content:     spec.Content,
	}
	if cmd.ID == "" {
		cmd.ID = uuid.NewString()
	}
	if spec.Visible != nil {
		cmd.Visible = *spec.Visible
	}
	if len(cmd.TargetTypes) == 0 {
		cmd.TargetTypes = []string{TargetTypeAny}
	}
	if kind == KindAction {
		ref, err := coerceAction(spec.Action, nameFor)
		if err != nil {
			return nil, err
		}
		cmd.Action = ref
	}
	for _, sub := range spec.SubCommands {
		child, err := normalizeSpec(sub, nameFor)
		if err != nil {
			return nil, err
		}
		cmd.SubCommands = append(cmd.SubCommands, child)
	}
	return cmd, nil
}

func coerceAction(ref any, nameFor func(ActionFunc) string) (ActionRef, error) {
	switch v := ref.(type) {
	case nil:
		return ActionRef{}, nil
	case string:
		return NamedAction(v), nil
	case ActionRef:
		return v, nil
	case ActionFunc:
		if nameFor != nil {
			return NamedAction(nameFor(v)), nil
		}
		return DirectAction(v), nil
	case func(ActionContext) error:
		if nameFor != nil {
			return NamedAction(nameFor(v)), nil
		}
		return DirectAction(v), nil
	default:
		return ActionRef{}, &ConfigurationError{Reason: "unsupported action reference type"}
	}
}

// CommandPatch merges non-nil fields into an existing command.
type CommandPatch struct {
	Label       *string
	Disabled    *bool
	Visible     *bool
	Order       *int
	Icon        *string
	Content     *string
	TargetTypes []string
	Action      *ActionRef
}

func (p CommandPatch) apply(c *Command) {
	if p.Label != nil {
		c.Label = *p.Label
	}
	if p.Disabled != nil {
		c.Disabled = *p.Disabled
	}
	if p.Visible != nil {
		c.Visible = *p.Visible
	}
	if p.Order != nil {
		c.Order = *p.Order
	}
	if p.Icon != nil {
		c.Icon = *p.Icon
	}
	if p.Content != nil {
		c.Content = *p.Content
	}
	if p.TargetTypes != nil {
		c.TargetTypes = append([]string(nil), p.TargetTypes...)
	}
	if p.Action != nil {
		c.Action = *p.Action
	}
}
