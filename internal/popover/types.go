package popover

import (
	"context"
	"image"
	"time"

	"github.com/trayd/trayd/internal/calendar"
	"github.com/trayd/trayd/internal/geom"
	"github.com/trayd/trayd/internal/item"
)

// Surface is one of the mutually exclusive popover surfaces.
type Surface int

const (
	SurfaceNone Surface = iota
	SurfaceCalendar
	SurfaceItem
	SurfacePreview
)

func (s Surface) String() string {
	switch s {
	case SurfaceCalendar:
		return "calendar"
	case SurfaceItem:
		return "item"
	case SurfacePreview:
		return "preview"
	default:
		return "none"
	}
}

// ClickSource tells where a pointer-down was observed.
type ClickSource int

const (
	// SourceGlobal: a system-wide listener, blind to this app's own windows.
	SourceGlobal ClickSource = iota
	// SourceApp: a listener on the app's own windows.
	SourceApp
)

func (s ClickSource) String() string {
	if s == SourceApp {
		return "app"
	}
	return "global"
}

// Anchors exposes the live tray entries to the coordinator.
type Anchors interface {
	Spec(id string) (item.Spec, bool)
	Anchor(id string) (geom.Rect, bool)
	// HitTest returns the id of the entry under p.
	HitTest(p geom.Point) (string, bool)
}

// Panels presents the surfaces. Content is one of CalendarContent,
// ItemContent or PreviewContent.
type Panels interface {
	Show(s Surface, frame geom.Rect, content any)
	Update(s Surface, content any)
	Hide(s Surface)
}

// Notifier delivers events to the host.
type Notifier interface {
	Emit(channel, event string, args map[string]any)
}

// Resolver produces popover data for locally resolvable ids. It may block.
type Resolver interface {
	PopoverData(ctx context.Context, id string) map[string]any
}

// Poster hands work to the UI loop.
type Poster interface {
	Post(fn func()) bool
}

// Pointer reports the current pointer location and attached displays.
type Pointer interface {
	Location() geom.Point
	Displays() []geom.Display
}

// WindowController controls the host application's main window.
type WindowController interface {
	Show()
	Hide()
	Exit()
}

// Launcher opens other applications by well-known name.
type Launcher interface {
	Open(app string) error
}

// Theme is shared by every surface.
type Theme struct {
	Dark   bool   `json:"isDarkMode"`
	Locale string `json:"locale"`
}

// CalendarContent is what the calendar surface shows.
type CalendarContent struct {
	Title    string           `json:"title"`
	Clock    string           `json:"clock"`
	Weekdays [7]string        `json:"weekdays"`
	Weeks    [][]calendar.Day `json:"weeks"`
	Theme    Theme            `json:"theme"`
}

// ItemContent is what an item popover shows. Data is replaced wholesale
// on every update.
type ItemContent struct {
	ItemID  string         `json:"itemId"`
	Data    map[string]any `json:"data"`
	Loading bool           `json:"isLoading"`
	Theme   Theme          `json:"theme"`
}

// PreviewConfig is the showTrayPopup argument set.
type PreviewConfig struct {
	Width          float64 `json:"popupWidth"`
	Height         float64 `json:"popupHeight"`
	TitleBarHeight float64 `json:"titleBarHeight"`
	// Pinned keeps the preview open on outside clicks.
	Pinned bool `json:"isPinned"`
}

// Frame is one streamed preview image.
type Frame struct {
	Image  image.Image
	Width  int
	Height int
}

// PreviewContent is what the tray preview shows.
type PreviewContent struct {
	Config PreviewConfig `json:"config"`
	Frame  *Frame        `json:"-"`
	Theme  Theme         `json:"theme"`
}

// Action is a button inside a surface.
type Action string

const (
	ActionShowWindow          Action = "showWindow"
	ActionHideWindow          Action = "hideWindow"
	ActionExitApp             Action = "exitApp"
	ActionOpenActivityMonitor Action = "openActivityMonitor"
	ActionOpenCalendar        Action = "openCalendar"
)

// Snapshot is a read-only view of the coordinator state.
type Snapshot struct {
	Surface   Surface         `json:"surface"`
	Frame     geom.Rect       `json:"frame"`
	ItemID    string          `json:"itemId,omitempty"`
	Loading   bool            `json:"isLoading"`
	Data      map[string]any  `json:"data,omitempty"`
	Calendar  calendar.Cursor `json:"calendar"`
	HasFrame  bool            `json:"hasFrame"`
	Pinned    bool            `json:"isPinned"`
	Theme     Theme           `json:"theme"`
	OpenCount uint64          `json:"openCount"`
}

// Ticker starts a periodic tick. stop releases it.
type Ticker func(d time.Duration) (ticks <-chan time.Time, stop func())

func systemTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}
