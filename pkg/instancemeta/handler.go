package instancemeta

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// SystemInfoResponse wraps the metadata so the page can render a fallback
// when the metadata service is unreachable (e.g., local development).
type SystemInfoResponse struct {
	Available bool              `json:"available"`
	Instance  *InstanceMetadata `json:"instance,omitempty"`
}

// Routes returns a http.Handler exposing the system info endpoint.
func Routes(client *Client) http.Handler {
	r := chi.NewRouter()

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		meta, err := client.Fetch(r.Context())
		if err != nil {
			slog.Warn("Instance metadata unavailable", "error", err)
			render.JSON(w, r, SystemInfoResponse{Available: false})
			return
		}

		render.JSON(w, r, SystemInfoResponse{Available: true, Instance: meta})
	})

	return r
}
