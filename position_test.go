package ctxmenu

import "testing"

func TestPositionRootFitsUnchanged(t *testing.T) {
	x, y := positionRoot(100, 200, 50, 60, 800, 600)
	if x != 50 || y != 60 {
		t.Fatalf("position = (%v,%v), want anchor point unchanged", x, y)
	}
}

func TestPositionRootHorizontalOverflow(t *testing.T) {
	x, y := positionRoot(100, 200, 750, 60, 800, 600)
	if x != 800-ViewportInset-100 {
		t.Fatalf("x = %v, want right edge pulled to viewport minus inset", x)
	}
	if y != 60 {
		t.Fatalf("y = %v, want unchanged", y)
	}
}

func TestPositionRootVerticalOverflow(t *testing.T) {
	_, y := positionRoot(100, 200, 50, 550, 800, 600)
	if y != 600-ViewportInset-200 {
		t.Fatalf("y = %v, want bottom edge pulled to viewport minus inset", y)
	}
}

func TestPositionRootClampsToInset(t *testing.T) {
	x, y := positionRoot(900, 700, 50, 50, 800, 600)
	if x != ViewportInset || y != ViewportInset {
		t.Fatalf("oversized menu position = (%v,%v), want inset corner", x, y)
	}
}

func TestPositionSubmenuAnchorsRight(t *testing.T) {
	parent := rect(100, 40, 80, 24)
	x, y := positionSubmenu(parent, 120, 100, 800, 600)
	if x != parent.Right() {
		t.Fatalf("x = %v, want parent right edge", x)
	}
	if y != parent.Y {
		t.Fatalf("y = %v, want parent top", y)
	}
}

func TestPositionSubmenuFlipsLeftOnOverflow(t *testing.T) {
	parent := rect(700, 40, 80, 24)
	x, _ := positionSubmenu(parent, 120, 100, 800, 600)
	if x != parent.X-120 {
		t.Fatalf("x = %v, want flipped to the parent's left side", x)
	}
}

func TestPositionSubmenuPullsUpOnOverflow(t *testing.T) {
	parent := rect(100, 560, 80, 24)
	_, y := positionSubmenu(parent, 120, 100, 800, 600)
	if y != 600-ViewportInset-100 {
		t.Fatalf("y = %v, want pulled above the bottom inset", y)
	}
}
