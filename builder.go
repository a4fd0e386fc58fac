package livemap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/yohamta/donburi"

	"github.com/phanxgames/livemap/async"
	"github.com/phanxgames/livemap/ecs"
	"github.com/phanxgames/livemap/geocoding"
	"github.com/phanxgames/livemap/geom"
	"github.com/phanxgames/livemap/internal/logger"
	"github.com/phanxgames/livemap/layers"
	"github.com/phanxgames/livemap/projection"
	"github.com/phanxgames/livemap/style"
	"github.com/phanxgames/livemap/tiles"
	"github.com/phanxgames/livemap/viewport"
)

// Geocoding cache defaults.
const (
	geocodeCacheSize = 256
	geocodeCacheTTL  = time.Hour
)

// DefaultAnimationDuration is how long the camera takes to move to a new
// position once the map is showing.
const DefaultAnimationDuration = 0.3

// Builder assembles a Map from options and plot layers.
type Builder struct {
	size   geom.Vec[geom.Client]
	opts   Options
	layers []layers.LayerData

	payloads   map[int]any
	geocoder   *geocoding.Client
	httpClient *http.Client
	tileOpts   []tiles.EngineOption
	ctx        context.Context
}

// NewBuilder starts a map of the given Client size.
func NewBuilder(size geom.Vec[geom.Client], opts Options) *Builder {
	return &Builder{size: size, opts: opts, payloads: map[int]any{}, ctx: context.Background()}
}

// AddLayers appends plot layers. Layer indices follow the order of all
// added layers.
func (b *Builder) AddLayers(data ...layers.LayerData) *Builder {
	b.layers = append(b.layers, data...)
	return b
}

// SetPayload registers the value hit-test results report for a layer.
func (b *Builder) SetPayload(layer int, payload any) *Builder {
	b.payloads[layer] = payload
	return b
}

// WithGeocoder sets the geocoding client used for location names, instead
// of one built from the geocoding URL.
func (b *Builder) WithGeocoder(c *geocoding.Client) *Builder {
	b.geocoder = c
	return b
}

// WithHTTPClient sets the client used for tile downloads.
func (b *Builder) WithHTTPClient(c *http.Client) *Builder {
	b.httpClient = c
	return b
}

// WithTileOptions passes extra options to the tile engine.
func (b *Builder) WithTileOptions(opts ...tiles.EngineOption) *Builder {
	b.tileOpts = append(b.tileOpts, opts...)
	return b
}

// WithContext sets the context of the map's network requests. Cancelling it
// stops pending downloads; Map.Close does the same.
func (b *Builder) WithContext(ctx context.Context) *Builder {
	b.ctx = ctx
	return b
}

// Build validates the options, converts the layers and creates the map. It
// fails without creating anything when the configuration is invalid.
func (b *Builder) Build() (*Map, error) {
	o := b.opts
	if o.MaxZoom < o.MinZoom {
		return nil, fmt.Errorf("%w: tiles.min_zoom %d exceeds tiles.max_zoom %d", ErrConfig, o.MinZoom, o.MaxZoom)
	}

	provider, err := tiles.NewProvider(o.Tiles, o.Dev.DebugTiles, o.Dev.ComputationQuant)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	converted, err := layers.Convert(b.layers, o.LayerOptions())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	geocoder := b.geocoder
	if len(o.Location.Names) > 0 && geocoder == nil {
		if geocoder, err = newGeocoder(o.GeocodingURL); err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithCancel(b.ctx)
	proj := projection.New(o.Projection)
	mb := &async.Mailbox{}

	vp := viewport.New(proj, b.size, o.MinZoom, o.MaxZoom)
	vp.ClampToWorld = true
	cam := viewport.NewCamera()
	cam.AnimationDuration = DefaultAnimationDuration

	engineOpts := []tiles.EngineOption{tiles.WithContext(ctx)}
	if b.httpClient != nil {
		engineOpts = append(engineOpts, tiles.WithHTTPClient(b.httpClient))
	}
	engineOpts = append(engineOpts, b.tileOpts...)

	world := donburi.NewWorld()
	mctx := &Context{
		World:      world,
		Projection: proj,
		Viewport:   vp,
		Camera:     cam,
		Location:   &LocationComponent{},
		Mailbox:    mb,
		Tiles:      tiles.NewEngine(provider, proj, mb, engineOpts...),
		Scene:      newScene(),
		Locator:    newLocator(b.payloads),
		Background: background(provider),
		Dev:        o.Dev,
	}
	mctx.Scene.Attribution = provider.Attribution

	f := &entityFactory{world: world}
	for _, l := range converted {
		l.Apply(f)
	}

	var rect *async.Async[geom.Rect[geom.World]]
	switch {
	case o.Location.BBox != nil:
		rect = async.Constant(projection.ProjectRect(proj, *o.Location.BBox))
	case len(o.Location.Names) > 0:
		rect = geocodeLocation(ctx, geocoder, mb, proj, o.Location.Names)
	}

	location := NewLocationSystem(o.Zoom, rect)
	camera := &CameraSystem{}
	scheduler := ecs.NewScheduler[*Context](world,
		MailboxSystem{},
		&GeometrySystem{Quant: o.Dev.ComputationQuant},
		location,
		camera,
		TileSystem{},
		RenderSystem{},
	)

	logger.L().Info("map_built",
		"projection", o.Projection.String(),
		"tiles", provider.Kind.String(),
		"layers", len(converted),
		"objects", f.count,
	)
	return &Map{
		ctx:       mctx,
		scheduler: scheduler,
		location:  location,
		camera:    camera,
		cancel:    cancel,
		renderer:  newRenderer(),
		readInput: true,
	}, nil
}

// entityFactory turns converted layer objects into entities.
type entityFactory struct {
	world donburi.World
	count int
}

func (f *entityFactory) AddObject(_ layers.Layer, obj layers.Object) {
	e := f.world.Entry(f.world.Create(Object, NeedsProjection))
	Object.SetValue(e, ObjectData{Object: obj, Order: f.count})
	f.count++
}

func newGeocoder(url string) (*geocoding.Client, error) {
	cache := geocoding.Cache(geocoding.NewMemoryCache(geocodeCacheSize, geocodeCacheTTL))
	if rc := geocoding.OpenRedisFromEnv(); rc != nil {
		cache = geocoding.NewRedisCache(rc, geocodeCacheTTL)
	}
	c, err := geocoding.NewClient(url, geocoding.WithCache(cache))
	if err != nil {
		return nil, fmt.Errorf("%w: geocoding.url is required to resolve location names: %w", ErrConfig, err)
	}
	return c, nil
}

// geocodeLocation resolves names to the union of their World extents.
// Names the service does not know are skipped; when none is known the
// default location is used.
func geocodeLocation(ctx context.Context, c *geocoding.Client, mb *async.Mailbox, proj projection.Projection, names []string) *async.Async[geom.Rect[geom.World]] {
	return async.Map(c.GeocodeAsync(ctx, mb, names), func(features []geocoding.Feature) geom.Rect[geom.World] {
		if len(features) == 0 {
			logger.L().Warn("location_fallback", "names", names)
			return projection.ProjectRect(proj, DefaultLocation)
		}
		rects := make([]geom.Rect[geom.World], len(features))
		for i, f := range features {
			rects[i] = projection.ProjectRect(proj, f.Rect())
		}
		return viewport.CalculateBoundingBox(rects)
	})
}

func background(p tiles.Provider) style.Color {
	switch p.Kind {
	case tiles.KindSolid:
		return p.Fill
	case tiles.KindVector:
		return p.Theme.Palette().Background
	}
	return style.ColorWhite
}
