package ctxmenu

import "github.com/quailyard/ctxmenu/doctree"

// ViewportInset is the minimum gap kept between a repositioned menu and the
// viewport edges.
const ViewportInset = 10.0

// positionRoot places a root menu at the desired anchor point, pulling it
// back inside the viewport when an edge would overflow.
func positionRoot(w, h, x, y, vw, vh float64) (float64, float64) {
	if x+w > vw {
		x = vw - ViewportInset - w
		if x < ViewportInset {
			x = ViewportInset
		}
	}
	if y+h > vh {
		y = vh - ViewportInset - h
		if y < ViewportInset {
			y = ViewportInset
		}
	}
	return x, y
}

// positionSubmenu anchors a submenu to its parent item's current box,
// flipping to the item's left side on horizontal overflow and pulling up on
// vertical overflow. The parent box is always re-read so the submenu stays
// attached even if the root menu shifted.
func positionSubmenu(parentItem doctree.Rect, w, h, vw, vh float64) (float64, float64) {
	x := parentItem.Right()
	if x+w > vw {
		x = parentItem.X - w
	}
	y := parentItem.Y
	if y+h > vh {
		y = vh - ViewportInset - h
		if y < ViewportInset {
			y = ViewportInset
		}
	}
	return x, y
}
