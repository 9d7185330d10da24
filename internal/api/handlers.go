package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ignite/outreach-platform/internal/auth"
	"github.com/ignite/outreach-platform/internal/domain"
	"github.com/ignite/outreach-platform/internal/pkg/httputil"
)

// urlUUID parses a UUID path parameter. Writes a 400 and returns false on
// malformed input.
func urlUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		httputil.BadRequest(w, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// currentUser pulls the authenticated user out of the request context.
// RequireAuth guarantees presence; the nil check guards direct handler
// invocations in tests.
func currentUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	user := auth.CurrentUser(r.Context())
	if user == nil {
		httputil.Unauthorized(w, "authentication required")
		return nil, false
	}
	return user, true
}
