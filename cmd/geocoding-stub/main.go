// Command geocoding-stub serves a small built-in gazetteer over the
// geocoding protocol for local development of live maps.
package main

import (
	"encoding/json"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/phanxgames/livemap/geocoding"
	"github.com/phanxgames/livemap/internal/logger"
	"github.com/phanxgames/livemap/internal/metrics"
)

func main() {
	_ = godotenv.Load(".env")
	l := logger.Setup()

	addr := os.Getenv("GEOCODING_ADDR")
	if addr == "" {
		addr = ":8081"
	}

	g := geocoding.DefaultGazetteer()
	if path := os.Getenv("GEOCODING_GAZETTEER"); path != "" {
		if err := loadGazetteer(g, path); err != nil {
			l.Error("gazetteer_load_error", "path", path, "err", err)
			os.Exit(1)
		}
		l.Info("gazetteer_loaded", "path", path, "regions", len(g))
	}

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := geocoding.NewRouter(g)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	l.Info("geocoding_stub_listen", "addr", addr)
	if err := r.Run(addr); err != nil {
		l.Error("geocoding_stub_error", "err", err)
		os.Exit(1)
	}
}

// loadGazetteer merges a JSON array of features into g.
func loadGazetteer(g geocoding.Gazetteer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var features []geocoding.Feature
	if err := json.Unmarshal(data, &features); err != nil {
		return err
	}
	for _, f := range features {
		g.Add(f)
	}
	return nil
}
