package bridge

import "encoding/json"

// Channels group bridge methods and events the way the host addresses them.
const (
	ChannelMenuBar     = "menu_bar_helper"
	ChannelPopover     = "menu_bar_popover"
	ChannelTrayPopup   = "tray_popup"
	ChannelSystemInfo  = "system_info"
	ChannelAccess      = "accessibility"
	ChannelMouse       = "mouse_control"
	StreamKeyEvents    = "key_events"
	StreamMouseEvents  = "mouse_events"
	MethodStreamListen = "listen"
	MethodStreamCancel = "cancel"
)

// Events sent to the host.
const (
	EventItemClicked        = "onMenuBarItemClicked"
	EventNativePopupShowing = "onNativePopupShowing"
	EventPopoverClosed      = "onPopoverClosed"
	EventTrayPopupClosed    = "onTrayPopupClosed"
	EventStartStreaming     = "startStreaming"
	EventStopStreaming      = "stopStreaming"
	EventShowWindow         = "onShowWindow"
	EventHideWindow         = "onHideWindow"
	EventExitApp            = "onExitApp"
	EventSurfaceShow        = "onSurfaceShow"
	EventSurfaceUpdate      = "onSurfaceUpdate"
	EventSurfaceHide        = "onSurfaceHide"
)

// Request is one host call. ID correlates the response.
type Request struct {
	ID      uint64         `json:"id"`
	Channel string         `json:"channel"`
	Method  string         `json:"method"`
	Args    map[string]any `json:"args,omitempty"`
}

// ErrorBody is the typed failure of a call.
type ErrorBody struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Message is any line sent from trayd to a client: a response (ID set), an
// event (Event set) or a stream item (Stream set).
type Message struct {
	ID     uint64          `json:"id,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *ErrorBody      `json:"error,omitempty"`

	Event   string         `json:"event,omitempty"`
	Channel string         `json:"channel,omitempty"`
	Args    map[string]any `json:"args,omitempty"`

	Stream string `json:"stream,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// IsResponse reports whether m answers a request.
func (m Message) IsResponse() bool {
	return m.ID != 0 && m.Event == "" && m.Stream == ""
}
