// Package livemap draws plot layers on an interactive geographic map with
// [Ebitengine].
//
// A map is assembled by a [Builder] from [Options] and plot layers, and
// runs as an ebiten.Game. Each frame runs a fixed list of systems over a
// donburi world: async results are delivered, layer geometry is projected
// under a per-frame budget, the initial view is chosen once, the camera
// applies pan and zoom, basemap tiles are requested and the scene is
// rebuilt together with its hit-test [Locator].
//
// # Quick start
//
//	opts, err := livemap.ParseOptions(map[string]any{
//		"projection": "epsg4326",
//		"tiles":      map[string]any{"kind": "chessboard"},
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	m, err := livemap.NewBuilder(geom.V[geom.Client](800, 600), opts).
//		AddLayers(pointLayer).
//		Build()
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer m.Close()
//	ebiten.RunGame(m)
//
// Hosts that own the game loop call [Map.Tick] or [Map.Update], [Map.Draw]
// and [Map.Layout] themselves.
//
// # Location
//
// The initial view comes from, in order: an explicit bbox, geocoded
// location names, the union of the layer extents, and finally
// [DefaultLocation]. An explicit zoom replaces the fitted one. Once chosen
// the view is never re-fitted; [Map.OnLocationResolved] fires exactly once.
//
// # Errors
//
// Every error caused by bad options or unsupported layer data wraps
// [ErrConfig].
//
// # Logging
//
// The package is silent until a logger is installed with [SetLogger].
//
// [Ebitengine]: https://ebitengine.org
package livemap
