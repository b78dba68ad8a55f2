package sni

import (
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"
)

// D-Bus names of the StatusNotifierItem protocol.
const (
	ItemInterface    = "org.kde.StatusNotifierItem"
	ItemPath         = dbus.ObjectPath("/StatusNotifierItem")
	WatcherName      = "org.kde.StatusNotifierWatcher"
	WatcherPath      = dbus.ObjectPath("/StatusNotifierWatcher")
	WatcherInterface = "org.kde.StatusNotifierWatcher"
)

// Pixmap is one IconPixmap entry, signature (iiay).
type Pixmap struct {
	Width  int32
	Height int32
	Data   []byte
}

// itemObject is the exported StatusNotifierItem. Its methods are called on
// the D-Bus dispatch goroutine.
type itemObject struct {
	id      string
	onClick func(x, y int32)

	mu    sync.Mutex
	props *prop.Properties
}

func (o *itemObject) Activate(x, y int32) *dbus.Error {
	o.onClick(x, y)
	return nil
}

// SecondaryActivate (middle click) behaves like Activate.
func (o *itemObject) SecondaryActivate(x, y int32) *dbus.Error {
	o.onClick(x, y)
	return nil
}

// ContextMenu behaves like Activate: entries have no menu of their own.
func (o *itemObject) ContextMenu(x, y int32) *dbus.Error {
	o.onClick(x, y)
	return nil
}

func (o *itemObject) Scroll(delta int32, orientation string) *dbus.Error {
	return nil
}

// initialProps is the property table exported for a new entry.
func initialProps(id string) prop.Map {
	ro := func(v any) *prop.Prop {
		return &prop.Prop{Value: v, Writable: false, Emit: prop.EmitTrue}
	}
	return prop.Map{
		ItemInterface: {
			"Category":   ro("ApplicationStatus"),
			"Id":         ro(id),
			"Title":      ro(id),
			"Status":     ro("Active"),
			"WindowId":   ro(uint32(0)),
			"IconName":   ro(""),
			"IconPixmap": ro([]Pixmap{}),
			"ItemIsMenu": ro(false),
			"Menu":       ro(dbus.ObjectPath("/NO_DBUSMENU")),
		},
	}
}

var introspection = introspect.Node{
	Name: string(ItemPath),
	Interfaces: []introspect.Interface{
		introspect.IntrospectData,
		prop.IntrospectData,
		{
			Name: ItemInterface,
			Methods: []introspect.Method{
				{Name: "Activate", Args: []introspect.Arg{{Name: "x", Type: "i", Direction: "in"}, {Name: "y", Type: "i", Direction: "in"}}},
				{Name: "SecondaryActivate", Args: []introspect.Arg{{Name: "x", Type: "i", Direction: "in"}, {Name: "y", Type: "i", Direction: "in"}}},
				{Name: "ContextMenu", Args: []introspect.Arg{{Name: "x", Type: "i", Direction: "in"}, {Name: "y", Type: "i", Direction: "in"}}},
				{Name: "Scroll", Args: []introspect.Arg{{Name: "delta", Type: "i", Direction: "in"}, {Name: "orientation", Type: "s", Direction: "in"}}},
			},
			Signals: []introspect.Signal{
				{Name: "NewTitle"},
				{Name: "NewIcon"},
				{Name: "NewStatus", Args: []introspect.Arg{{Name: "status", Type: "s"}}},
			},
			Properties: []introspect.Property{
				{Name: "Category", Type: "s", Access: "read"},
				{Name: "Id", Type: "s", Access: "read"},
				{Name: "Title", Type: "s", Access: "read"},
				{Name: "Status", Type: "s", Access: "read"},
				{Name: "WindowId", Type: "u", Access: "read"},
				{Name: "IconName", Type: "s", Access: "read"},
				{Name: "IconPixmap", Type: "a(iiay)", Access: "read"},
				{Name: "ItemIsMenu", Type: "b", Access: "read"},
				{Name: "Menu", Type: "o", Access: "read"},
			},
		},
	},
}
