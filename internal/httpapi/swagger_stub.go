//go:build !swagger

package httpapi

import (
	"github.com/go-chi/chi/v5"
)

// MountSwagger is a no-op in default builds of orchd. Build with
// -tags=swagger to serve the generated API docs.
func MountSwagger(r chi.Router) {}
