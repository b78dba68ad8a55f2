package app

import (
	"github.com/trayd/trayd/internal/bridge"
	"github.com/trayd/trayd/internal/geom"
	"github.com/trayd/trayd/internal/popover"
)

// HostPanels draws nothing itself: it asks the host to show, refresh and
// hide popover surfaces. Backends without native panels (sni) use it.
type HostPanels struct {
	Events popover.Notifier
}

func (p *HostPanels) Show(s popover.Surface, frame geom.Rect, content any) {
	p.Events.Emit(bridge.ChannelPopover, bridge.EventSurfaceShow, map[string]any{
		"surface": s.String(),
		"frame":   frame,
		"content": content,
	})
}

func (p *HostPanels) Update(s popover.Surface, content any) {
	p.Events.Emit(bridge.ChannelPopover, bridge.EventSurfaceUpdate, map[string]any{
		"surface": s.String(),
		"content": content,
	})
}

func (p *HostPanels) Hide(s popover.Surface) {
	p.Events.Emit(bridge.ChannelPopover, bridge.EventSurfaceHide, map[string]any{
		"surface": s.String(),
	})
}
