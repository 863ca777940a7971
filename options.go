package ctxmenu

import "time"

// Gesture identifies the pointer gesture that opens a menu.
type Gesture string

const (
	GestureContextMenu Gesture = "contextmenu"
	GestureClick       Gesture = "click"
	GestureDblClick    Gesture = "dblclick"
	GestureHover       Gesture = "hover"
)

// MobileGesture identifies the touch gesture that opens a menu.
type MobileGesture string

const (
	MobileHold MobileGesture = "hold"
	MobileTap  MobileGesture = "tap"
)

// CloseTrigger selects how an open menu is dismissed.
type CloseTrigger string

const (
	// CloseOnClick dismisses on any interaction outside the open nodes.
	CloseOnClick CloseTrigger = "click"
	// CloseOnMouseOut dismisses after the hover-close delay once the
	// pointer has left both the trigger element and the menu.
	CloseOnMouseOut CloseTrigger = "mouseout"
	// CloseAuto resolves to CloseOnMouseOut for hover triggers and
	// CloseOnClick otherwise.
	CloseAuto CloseTrigger = "auto"
)

// FilterStrategy selects what happens to commands whose target types do not
// match the resolved type of the trigger element.
type FilterStrategy string

const (
	FilterHide    FilterStrategy = "hide"
	FilterDisable FilterStrategy = "disable"
)

// OverlapStrategy resolves which binding applies when nested bound elements
// overlap under the event target.
type OverlapStrategy string

const (
	OverlapClosest OverlapStrategy = "closest"
	OverlapDeepest OverlapStrategy = "deepest"
)

// ClassNames holds the decoration classes stamped onto built visual nodes.
type ClassNames struct {
	Menu      string
	Item      string
	Header    string
	Separator string
	Sublist   string
	Disabled  string
	Opening   string
	Open      string
	Closing   string
}

// DefaultClassNames returns the stock decoration classes.
func DefaultClassNames() ClassNames {
	return ClassNames{
		Menu:      "context-menu",
		Item:      "context-menu-item",
		Header:    "context-menu-header",
		Separator: "context-menu-separator",
		Sublist:   "context-menu-sublist",
		Disabled:  "disabled",
		Opening:   "opening",
		Open:      "open",
		Closing:   "closing",
	}
}

// Metrics drives the default box measurement for built menus, in host units.
type Metrics struct {
	ItemHeight      float64
	HeaderHeight    float64
	SeparatorHeight float64
	CharWidth       float64
	PaddingX        float64
	AffordanceWidth float64
	MinWidth        float64
}

// DefaultMetrics returns pixel-ish measurement defaults. Terminal hosts
// substitute cell-sized metrics.
func DefaultMetrics() Metrics {
	return Metrics{
		ItemHeight:      24,
		HeaderHeight:    28,
		SeparatorHeight: 9,
		CharWidth:       8,
		PaddingX:        16,
		AffordanceWidth: 20,
		MinWidth:        40,
	}
}

// Options are the process-wide defaults a configuration can override
// per menu.
type Options struct {
	Trigger         Gesture
	MobileTrigger   MobileGesture
	CloseTrigger    CloseTrigger
	FilterStrategy  FilterStrategy
	OverlapStrategy OverlapStrategy
	ExtraClasses    []string
	Classes         ClassNames
	IgnoreLinks     bool
	IgnoreButtons   bool
	TouchCapable    bool

	HoverOpenDelay    time.Duration
	HoverCloseDelay   time.Duration
	SubmenuOpenDelay  time.Duration
	SubmenuCloseDelay time.Duration
	HoldDuration      time.Duration
	TapMaxDuration    time.Duration
	OpenDuration      time.Duration
	CloseDuration     time.Duration

	Metrics Metrics
}

// DefaultOptions returns the stock defaults.
func DefaultOptions() Options {
	return Options{
		Trigger:           GestureContextMenu,
		MobileTrigger:     MobileHold,
		CloseTrigger:      CloseAuto,
		FilterStrategy:    FilterHide,
		OverlapStrategy:   OverlapClosest,
		Classes:           DefaultClassNames(),
		HoverOpenDelay:    300 * time.Millisecond,
		HoverCloseDelay:   400 * time.Millisecond,
		SubmenuOpenDelay:  300 * time.Millisecond,
		SubmenuCloseDelay: 400 * time.Millisecond,
		HoldDuration:      500 * time.Millisecond,
		TapMaxDuration:    300 * time.Millisecond,
		OpenDuration:      150 * time.Millisecond,
		CloseDuration:     150 * time.Millisecond,
		Metrics:           DefaultMetrics(),
	}
}

// OptionsPatch merges non-nil fields into the process-wide defaults.
type OptionsPatch struct {
	Trigger         *Gesture
	MobileTrigger   *MobileGesture
	CloseTrigger    *CloseTrigger
	FilterStrategy  *FilterStrategy
	OverlapStrategy *OverlapStrategy
	ExtraClasses    []string
	Classes         *ClassNames
	IgnoreLinks     *bool
	IgnoreButtons   *bool
	TouchCapable    *bool

	HoverOpenDelay    *time.Duration
	HoverCloseDelay   *time.Duration
	SubmenuOpenDelay  *time.Duration
	SubmenuCloseDelay *time.Duration
	HoldDuration      *time.Duration
	TapMaxDuration    *time.Duration
	OpenDuration      *time.Duration
	CloseDuration     *time.Duration

	Metrics *Metrics
}

func (p OptionsPatch) apply(o *Options) {
	if p.Trigger != nil {
		o.Trigger = *p.Trigger
	}
	if p.MobileTrigger != nil {
		o.MobileTrigger = *p.MobileTrigger
	}
	if p.CloseTrigger != nil {
		o.CloseTrigger = *p.CloseTrigger
	}
	if p.FilterStrategy != nil {
		o.FilterStrategy = *p.FilterStrategy
	}
	if p.OverlapStrategy != nil {
		o.OverlapStrategy = *p.OverlapStrategy
	}
	if p.ExtraClasses != nil {
		o.ExtraClasses = append([]string(nil), p.ExtraClasses...)
	}
	if p.Classes != nil {
		o.Classes = *p.Classes
	}
	if p.IgnoreLinks != nil {
		o.IgnoreLinks = *p.IgnoreLinks
	}
	if p.IgnoreButtons != nil {
		o.IgnoreButtons = *p.IgnoreButtons
	}
	if p.TouchCapable != nil {
		o.TouchCapable = *p.TouchCapable
	}
	if p.HoverOpenDelay != nil {
		o.HoverOpenDelay = *p.HoverOpenDelay
	}
	if p.HoverCloseDelay != nil {
		o.HoverCloseDelay = *p.HoverCloseDelay
	}
	if p.SubmenuOpenDelay != nil {
		o.SubmenuOpenDelay = *p.SubmenuOpenDelay
	}
	if p.SubmenuCloseDelay != nil {
		o.SubmenuCloseDelay = *p.SubmenuCloseDelay
	}
	if p.HoldDuration != nil {
		o.HoldDuration = *p.HoldDuration
	}
	if p.TapMaxDuration != nil {
		o.TapMaxDuration = *p.TapMaxDuration
	}
	if p.OpenDuration != nil {
		o.OpenDuration = *p.OpenDuration
	}
	if p.CloseDuration != nil {
		o.CloseDuration = *p.CloseDuration
	}
	if p.Metrics != nil {
		o.Metrics = *p.Metrics
	}
}
