// Package swaggerkit serves the API's OpenAPI document and the Swagger UI over it
package swaggerkit

import (
	"net/http"
	"path"

	phttp "hamfinder/internal/platform/net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Options configure the docs mount
type Options struct {
	// Prefix is where the UI lives, e.g. "/docs"
	Prefix string
	// Service is reported as the document's version owner
	Service string
	// TitleSuffix is appended to info.title when set, e.g. "(staging)"
	TitleSuffix string
}

// Mount serves <prefix>/doc.json and the Swagger UI under <prefix>/ when enabled
func Mount(r phttp.Router, enabled bool, opt Options) {
	if !enabled {
		return
	}
	prefix := opt.Prefix
	if prefix == "" {
		prefix = "/docs"
	}
	docURL := path.Join(prefix, "doc.json")

	r.Get(prefix, func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, prefix+"/", http.StatusPermanentRedirect)
	})
	r.Get(docURL, serveDocJSON(opt))
	r.Handle(prefix+"/*", httpSwagger.Handler(
		httpSwagger.InstanceName("hamfinder"),
		httpSwagger.URL(docURL),
	))
}
