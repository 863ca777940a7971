package ctxmenu

import (
	"testing"
)

func TestPrepareAssignsIDsAndParents(t *testing.T) {
	child := mustCommand(t, "Email", NamedAction("email"))
	share := mustSublist(t, "Share", child)
	cfg := &MenuConfiguration{ID: "m", Commands: []*Command{share}}
	if err := cfg.prepare(); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if cfg.Find(child.ID) != child {
		t.Fatalf("child not indexed")
	}
	if got := cfg.parentOf(child); got != share {
		t.Fatalf("parentOf(child) = %v, want share", got)
	}
	if cfg.parentOf(share) != nil {
		t.Fatalf("root command has a parent")
	}
}

func TestPrepareSortsSiblingsStable(t *testing.T) {
	a := mustCommand(t, "A", NamedAction("a"))
	a.Order = 2
	b := mustCommand(t, "B", NamedAction("b"))
	b.Order = 1
	c := mustCommand(t, "C", NamedAction("c"))
	c.Order = 1
	cfg := &MenuConfiguration{ID: "m", Commands: []*Command{a, b, c}}
	if err := cfg.prepare(); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	got := []string{cfg.Commands[0].Label, cfg.Commands[1].Label, cfg.Commands[2].Label}
	if got[0] != "B" || got[1] != "C" || got[2] != "A" {
		t.Fatalf("sort order = %v, want [B C A]", got)
	}
}

func TestPreparePromotesActionWithChildren(t *testing.T) {
	cmd := mustCommand(t, "Share", NamedAction("share"))
	cmd.SubCommands = []*Command{mustCommand(t, "Email", NamedAction("email"))}
	cfg := &MenuConfiguration{ID: "m", Commands: []*Command{cmd}}
	if err := cfg.prepare(); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if cmd.Kind != KindSublist {
		t.Fatalf("kind = %v, want sublist", cmd.Kind)
	}
}

func TestIsAncestorOrSelf(t *testing.T) {
	inner := mustCommand(t, "Inner", NamedAction("i"))
	mid := mustSublist(t, "Mid", inner)
	outer := mustSublist(t, "Outer", mid)
	sibling := mustCommand(t, "Sibling", NamedAction("s"))
	cfg := &MenuConfiguration{ID: "m", Commands: []*Command{outer, sibling}}
	if err := cfg.prepare(); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if !cfg.isAncestorOrSelf(outer, inner) {
		t.Fatalf("outer should be an ancestor of inner")
	}
	if !cfg.isAncestorOrSelf(mid, mid) {
		t.Fatalf("self should count")
	}
	if cfg.isAncestorOrSelf(mid, sibling) {
		t.Fatalf("sibling wrongly reported as descendant")
	}
}

func TestHeaderForSubstitutesType(t *testing.T) {
	cfg := &MenuConfiguration{ID: "m", Header: "{type} actions"}
	if got := cfg.headerFor("file"); got != "file actions" {
		t.Fatalf("header = %q", got)
	}
	empty := &MenuConfiguration{ID: "m", Header: "{type}"}
	if got := empty.headerFor(""); got != "" {
		t.Fatalf("header for empty type = %q, want empty", got)
	}
}

func TestCloseTriggerAutoResolution(t *testing.T) {
	opts := DefaultOptions()
	cfg := &MenuConfiguration{ID: "m"}
	if got := cfg.closeTrigger(opts); got != CloseOnClick {
		t.Fatalf("auto with contextmenu trigger = %v, want click", got)
	}
	hover := GestureHover
	cfg.Trigger = &hover
	if got := cfg.closeTrigger(opts); got != CloseOnMouseOut {
		t.Fatalf("auto with hover trigger = %v, want mouseout", got)
	}
	explicit := CloseOnClick
	cfg.CloseTrigger = &explicit
	if got := cfg.closeTrigger(opts); got != CloseOnClick {
		t.Fatalf("explicit close trigger not honoured: %v", got)
	}
}

func TestMergeOverridesInheritsFromPrevious(t *testing.T) {
	hover := GestureHover
	prev := &MenuConfiguration{ID: "m", Header: "old", Trigger: &hover}
	next := &MenuConfiguration{ID: "m"}
	next.mergeOverrides(prev)
	if next.Trigger == nil || *next.Trigger != GestureHover {
		t.Fatalf("trigger not inherited")
	}
	if next.Header != "old" {
		t.Fatalf("header not inherited: %q", next.Header)
	}
	click := GestureClick
	replacement := &MenuConfiguration{ID: "m", Trigger: &click}
	replacement.mergeOverrides(prev)
	if *replacement.Trigger != GestureClick {
		t.Fatalf("explicit override lost on merge")
	}
}

func TestFindByActionPreOrder(t *testing.T) {
	nested := mustCommand(t, "Nested", NamedAction("dup"))
	share := mustSublist(t, "Share", nested)
	top := mustCommand(t, "Top", NamedAction("dup"))
	cfg := &MenuConfiguration{ID: "m", Commands: []*Command{share, top}}
	if err := cfg.prepare(); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	got := cfg.findByAction(func(r ActionRef) bool { return r.Name() == "dup" })
	if got != nested {
		t.Fatalf("findByAction = %v, want the pre-order first match", got)
	}
}
