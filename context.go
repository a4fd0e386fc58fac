package livemap

import (
	"github.com/yohamta/donburi"

	"github.com/phanxgames/livemap/async"
	"github.com/phanxgames/livemap/geom"
	"github.com/phanxgames/livemap/projection"
	"github.com/phanxgames/livemap/style"
	"github.com/phanxgames/livemap/tiles"
	"github.com/phanxgames/livemap/viewport"
)

// Context is the shared state every system receives. The singletons are
// named fields rather than components looked up by type.
type Context struct {
	World      donburi.World
	Projection projection.Projection
	Viewport   *viewport.Viewport
	Camera     *viewport.Camera
	Location   *LocationComponent
	Mailbox    *async.Mailbox
	Tiles      *tiles.Engine

	// InitialPosition and InitialZoom are the view chosen by the location
	// system. Valid once Initialized is true.
	InitialPosition geom.Vec[geom.World]
	InitialZoom     int
	Initialized     bool

	Scene   *Scene
	Locator *Locator

	Background style.Color
	Dev        DevParams

	input pointerInput
}

// zoomOffset returns the zoom relative to the initial zoom.
func (c *Context) zoomOffset() int {
	if !c.Initialized {
		return 0
	}
	return c.Viewport.Zoom() - c.InitialZoom
}
