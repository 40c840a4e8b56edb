// Package api provides the read only HTTP API over ingest history
package api

import (
	"time"

	"hamfinder/internal/modkit"
	"hamfinder/internal/modkit/swaggerkit"
	"hamfinder/internal/platform/config"
	phttp "hamfinder/internal/platform/net/http"
	"hamfinder/internal/platform/net/middleware"

	historymod "hamfinder/internal/services/api/history/module"
	metamod "hamfinder/internal/services/api/meta/module"
)

// Options are the API options
type Options struct {
	Config  config.Conf
	Deps    modkit.Deps
	History historymod.Ports

	EnableProfiler bool
	EnableDocs     bool
}

// OptionsFromConfig reads CORE_API_* switches
func OptionsFromConfig(cfg config.Conf) Options {
	api := cfg.Prefix("CORE_API_")
	return Options{
		Config:         cfg,
		EnableProfiler: api.MayBool("PROFILER", false),
		EnableDocs:     api.MayBool("DOCS", true),
	}
}

// Mount mounts the API onto the given router
func Mount(r phttp.Router, opt Options) {
	api := opt.Config.Prefix("CORE_API_")
	slow := api.MayDuration("SLOW", 500*time.Millisecond)

	r.Use(middleware.Defaults(slow)...)
	r.Use(middleware.CORS(middleware.CORSOptions{
		AllowedOrigins: api.MayCSV("CORS_ORIGINS", nil),
		MaxAge:         api.MayInt("CORS_MAX_AGE", 300),
	}))

	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)
	swaggerkit.Mount(r, opt.EnableDocs, swaggerkit.Options{
		Prefix:      "/docs",
		Service:     "hamfinder-api",
		TitleSuffix: api.MayString("DOCS_TITLE_SUFFIX", ""),
	})

	modkit.Mount(r, metamod.New(opt.Deps, "hamfinder-api"), modkit.WithPrefix("/meta"))
	modkit.Mount(r, historymod.New(opt.History), modkit.WithPrefix("/v1"))
}
