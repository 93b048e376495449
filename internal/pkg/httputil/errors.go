package httputil

import (
	"context"
	"errors"
	"net/http"

	"github.com/statusdesk/statusdesk/internal/pkg/ctxlog"
)

// ErrorMapping pairs a sentinel error with the status (and optional
// message) it should produce. An empty Message falls back to the
// error's own text.
type ErrorMapping struct {
	Error   error
	Status  int
	Message string
}

// HandleError writes the response for a service-layer error. Errors
// with no mapping are treated as internal: logged with full detail,
// answered with a generic 500 so nothing leaks to the client.
func HandleError(ctx context.Context, w http.ResponseWriter, err error, mappings []ErrorMapping) {
	for _, m := range mappings {
		if !errors.Is(err, m.Error) {
			continue
		}
		msg := m.Message
		if msg == "" {
			msg = err.Error()
		}
		Error(w, m.Status, msg)
		return
	}

	ctxlog.FromContext(ctx).Error("internal error", "error", err)
	Error(w, http.StatusInternalServerError, "internal error")
}
