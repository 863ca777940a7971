package ctxmenu

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// MenuConfiguration is one named, reusable menu definition: an ordered
// command tree plus per-menu overrides that fall back to the process-wide
// defaults when nil.
type MenuConfiguration struct {
	ID       string
	Commands []*Command
	// Header is a template for the root menu header; a "{type}"
	// placeholder is substituted with the resolved target type at build
	// time. An empty result omits the header node.
	Header string

	Trigger        *Gesture
	MobileTrigger  *MobileGesture
	CloseTrigger   *CloseTrigger
	FilterStrategy *FilterStrategy
	ExtraClasses   []string
	IgnoreLinks    *bool
	IgnoreButtons  *bool

	index map[string]*Command
}

// Find returns the command with the given id anywhere in the tree.
func (c *MenuConfiguration) Find(id string) *Command {
	return c.index[id]
}

// parentOf resolves a command's parent through the configuration index.
func (c *MenuConfiguration) parentOf(cmd *Command) *Command {
	if cmd == nil || cmd.parentID == "" {
		return nil
	}
	return c.index[cmd.parentID]
}

// isAncestorOrSelf walks the parent chain of cmd looking for anc.
func (c *MenuConfiguration) isAncestorOrSelf(anc, cmd *Command) bool {
	if anc == nil || cmd == nil {
		return false
	}
	for cur := cmd; cur != nil; cur = c.parentOf(cur) {
		if cur == anc {
			return true
		}
	}
	return false
}

// prepare validates labels, auto-promotes commands with children, assigns
// missing ids, stable-sorts siblings by order and rebuilds the flat index.
func (c *MenuConfiguration) prepare() error {
	c.index = make(map[string]*Command)
	sortCommands(c.Commands)
	return c.indexCommands(c.Commands, "")
}

func (c *MenuConfiguration) indexCommands(cmds []*Command, parentID string) error {
	for _, cmd := range cmds {
		if cmd.Kind == KindAction && len(cmd.SubCommands) > 0 {
			cmd.Kind = KindSublist
		}
		if cmd.Kind != KindSeparator && cmd.Label == "" {
			return &ConfigurationError{Reason: cmd.Kind.String() + " command requires a label"}
		}
		if cmd.ID == "" {
			cmd.ID = uuid.NewString()
		}
		if len(cmd.TargetTypes) == 0 {
			cmd.TargetTypes = []string{TargetTypeAny}
		}
		cmd.parentID = parentID
		c.index[cmd.ID] = cmd
		sortCommands(cmd.SubCommands)
		if err := c.indexCommands(cmd.SubCommands, cmd.ID); err != nil {
			return err
		}
	}
	return nil
}

// sortCommands orders siblings by their sort key; ties keep declaration
// order.
func sortCommands(cmds []*Command) {
	sort.SliceStable(cmds, func(i, j int) bool {
		return cmds[i].Order < cmds[j].Order
	})
}

// findByAction locates the first command (pre-order, roots first) whose
// action matches the given matcher.
func (c *MenuConfiguration) findByAction(match func(ActionRef) bool) *Command {
	var dfs func(cmds []*Command) *Command
	dfs = func(cmds []*Command) *Command {
		for _, cmd := range cmds {
			if match(cmd.Action) {
				return cmd
			}
			if found := dfs(cmd.SubCommands); found != nil {
				return found
			}
		}
		return nil
	}
	return dfs(c.Commands)
}

// headerFor substitutes the resolved type into the header template.
func (c *MenuConfiguration) headerFor(targetType string) string {
	return strings.TrimSpace(strings.ReplaceAll(c.Header, "{type}", targetType))
}

// mergeOverrides inherits override fields from a previous registration of
// the same id when the replacement leaves them unset.
func (c *MenuConfiguration) mergeOverrides(prev *MenuConfiguration) {
	if prev == nil {
		return
	}
	if c.Trigger == nil {
		c.Trigger = prev.Trigger
	}
	if c.MobileTrigger == nil {
		c.MobileTrigger = prev.MobileTrigger
	}
	if c.CloseTrigger == nil {
		c.CloseTrigger = prev.CloseTrigger
	}
	if c.FilterStrategy == nil {
		c.FilterStrategy = prev.FilterStrategy
	}
	if c.ExtraClasses == nil {
		c.ExtraClasses = prev.ExtraClasses
	}
	if c.IgnoreLinks == nil {
		c.IgnoreLinks = prev.IgnoreLinks
	}
	if c.IgnoreButtons == nil {
		c.IgnoreButtons = prev.IgnoreButtons
	}
	if c.Header == "" {
		c.Header = prev.Header
	}
}

func (c *MenuConfiguration) trigger(o Options) Gesture {
	if c.Trigger != nil {
		return *c.Trigger
	}
	return o.Trigger
}

func (c *MenuConfiguration) mobileTrigger(o Options) MobileGesture {
	if c.MobileTrigger != nil {
		return *c.MobileTrigger
	}
	return o.MobileTrigger
}

func (c *MenuConfiguration) closeTrigger(o Options) CloseTrigger {
	ct := o.CloseTrigger
	if c.CloseTrigger != nil {
		ct = *c.CloseTrigger
	}
	if ct == CloseAuto {
		if c.trigger(o) == GestureHover {
			return CloseOnMouseOut
		}
		return CloseOnClick
	}
	return ct
}

func (c *MenuConfiguration) filterStrategy(o Options) FilterStrategy {
	if c.FilterStrategy != nil {
		return *c.FilterStrategy
	}
	return o.FilterStrategy
}

func (c *MenuConfiguration) ignoreLinks(o Options) bool {
	if c.IgnoreLinks != nil {
		return *c.IgnoreLinks
	}
	return o.IgnoreLinks
}

func (c *MenuConfiguration) ignoreButtons(o Options) bool {
	if c.IgnoreButtons != nil {
		return *c.IgnoreButtons
	}
	return o.IgnoreButtons
}

// ConfigPatch shallow-merges fields into an existing configuration.
type ConfigPatch struct {
	Header         *string
	Trigger        *Gesture
	MobileTrigger  *MobileGesture
	CloseTrigger   *CloseTrigger
	FilterStrategy *FilterStrategy
	ExtraClasses   []string
	IgnoreLinks    *bool
	IgnoreButtons  *bool
}

func (p ConfigPatch) apply(c *MenuConfiguration) {
	if p.Header != nil {
		c.Header = *p.Header
	}
	if p.Trigger != nil {
		c.Trigger = p.Trigger
	}
	if p.MobileTrigger != nil {
		c.MobileTrigger = p.MobileTrigger
	}
	if p.CloseTrigger != nil {
		c.CloseTrigger = p.CloseTrigger
	}
	if p.FilterStrategy != nil {
		c.FilterStrategy = p.FilterStrategy
	}
	if p.ExtraClasses != nil {
		c.ExtraClasses = append([]string(nil), p.ExtraClasses...)
	}
	if p.IgnoreLinks != nil {
		c.IgnoreLinks = p.IgnoreLinks
	}
	if p.IgnoreButtons != nil {
		c.IgnoreButtons = p.IgnoreButtons
	}
}

// MenuDefinition is the composite input for CreateAndBindMenu.
type MenuDefinition struct {
	MenuID    string
	Structure []CommandSpec
	Header    string
	// Selector plus TargetType, when both set, bind matching elements
	// immediately after registration.
	Selector   string
	TargetType string

	Trigger        *Gesture
	MobileTrigger  *MobileGesture
	CloseTrigger   *CloseTrigger
	FilterStrategy *FilterStrategy
	ExtraClasses   []string
	IgnoreLinks    *bool
	IgnoreButtons  *bool
}
