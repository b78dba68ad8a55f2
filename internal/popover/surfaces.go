package popover

import (
	"maps"
	"time"

	"github.com/trayd/trayd/internal/bridge"
	"github.com/trayd/trayd/internal/calendar"
	"github.com/trayd/trayd/internal/geom"
)

func (c *Coordinator) openItem(id string, anchor geom.Rect, data map[string]any) {
	c.seq++
	c.surface = SurfaceItem
	c.itemID = id
	c.frame = anchor.Below(c.opts.SizeFor(id), c.opts.Gap)
	c.assignData(data)
	c.deps.Panels.Show(SurfaceItem, c.frame, c.itemContent())
}

func (c *Coordinator) setItemData(data map[string]any) {
	c.assignData(data)
	c.deps.Panels.Update(SurfaceItem, c.itemContent())
}

// assignData keeps a copy of data; the caller's map is never written.
func (c *Coordinator) assignData(data map[string]any) {
	data = maps.Clone(data)
	if data == nil {
		data = map[string]any{}
	}
	if _, ok := data["itemId"]; !ok {
		data["itemId"] = c.itemID
	}
	loading, _ := data["isLoading"].(bool)
	c.data = data
	c.loading = loading
}

func (c *Coordinator) itemContent() ItemContent {
	return ItemContent{ItemID: c.itemID, Data: c.data, Loading: c.loading, Theme: c.theme}
}

// resolve fetches local data for id off the UI loop. The result is applied
// only if the popover opened as seq for id is still the open one.
func (c *Coordinator) resolve(id string, seq uint64) {
	ctx := c.ctx
	resolver := c.deps.Resolver
	c.opts.Go(func() {
		data := resolver.PopoverData(ctx, id)
		c.deps.Poster.Post(func() {
			if c.surface != SurfaceItem || c.itemID != id || c.seq != seq {
				c.log.Debug("dropping stale data for %q", id)
				return
			}
			c.setItemData(data)
		})
	})
}

func (c *Coordinator) closeItem() {
	c.deps.Panels.Hide(SurfaceItem)
	c.surface = SurfaceNone
	c.itemID = ""
	c.data = nil
	c.loading = false
	c.frame = geom.Rect{}
	c.deps.Notifier.Emit(bridge.ChannelPopover, bridge.EventPopoverClosed, nil)
}

func (c *Coordinator) openCalendar(anchor geom.Rect) {
	c.deps.Notifier.Emit(bridge.ChannelMenuBar, bridge.EventNativePopupShowing, nil)

	c.cursor.Reset(c.opts.Now())
	c.surface = SurfaceCalendar
	c.frame = anchor.Below(c.opts.CalendarSize, c.opts.Gap)
	c.deps.Panels.Show(SurfaceCalendar, c.frame, c.calendarContent())
	c.startClock()
}

// startClock refreshes the clock label every second until the calendar closes.
func (c *Coordinator) startClock() {
	ticks, stopTicker := c.opts.Ticker(time.Second)
	done := make(chan struct{})
	c.stopClock = func() {
		stopTicker()
		close(done)
	}
	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticks:
				c.deps.Poster.Post(func() {
					select {
					case <-done:
					default:
						c.refreshCalendar()
					}
				})
			}
		}
	}()
}

func (c *Coordinator) closeCalendar() {
	if c.stopClock != nil {
		c.stopClock()
		c.stopClock = nil
	}
	c.deps.Panels.Hide(SurfaceCalendar)
	c.surface = SurfaceNone
	c.frame = geom.Rect{}
}

func (c *Coordinator) calendarContent() CalendarContent {
	now := c.opts.Now()
	return CalendarContent{
		Title:    c.cursor.Title(),
		Clock:    calendar.ClockLabel(now),
		Weekdays: calendar.Weekdays,
		Weeks:    c.cursor.Weeks(now),
		Theme:    c.theme,
	}
}

func (c *Coordinator) refreshCalendar() {
	if c.surface == SurfaceCalendar {
		c.deps.Panels.Update(SurfaceCalendar, c.calendarContent())
	}
}

func (c *Coordinator) closePreview() {
	c.deps.Panels.Hide(SurfacePreview)
	c.surface = SurfaceNone
	c.frame = geom.Rect{}
	c.preview = PreviewConfig{}
	c.deps.Notifier.Emit(bridge.ChannelTrayPopup, bridge.EventStopStreaming, nil)
	c.deps.Notifier.Emit(bridge.ChannelTrayPopup, bridge.EventTrayPopupClosed, nil)
}

func (c *Coordinator) previewContent() PreviewContent {
	return PreviewContent{Config: c.preview, Frame: c.lastFrame, Theme: c.theme}
}

// closeAll closes whichever surface is open.
func (c *Coordinator) closeAll() {
	switch c.surface {
	case SurfaceCalendar:
		c.closeCalendar()
	case SurfaceItem:
		c.closeItem()
	case SurfacePreview:
		c.closePreview()
	}
}

func (c *Coordinator) refresh() {
	switch c.surface {
	case SurfaceCalendar:
		c.refreshCalendar()
	case SurfaceItem:
		c.deps.Panels.Update(SurfaceItem, c.itemContent())
	case SurfacePreview:
		c.deps.Panels.Update(SurfacePreview, c.previewContent())
	}
}

// MarshalText renders the surface by name.
func (s Surface) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
