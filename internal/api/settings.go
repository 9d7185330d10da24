package api

import (
	"net/http"

	"github.com/ignite/outreach-platform/internal/pkg/httputil"
	"github.com/ignite/outreach-platform/internal/service/emailsettings"
)

func (h *Handlers) getSettings(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	s, err := h.Settings.Get(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, s)
}

func (h *Handlers) createSettings(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var input emailsettings.CreateInput
	if !httputil.Decode(w, r, &input) {
		return
	}
	s, err := h.Settings.Create(r.Context(), user.ID, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.Created(w, s)
}

func (h *Handlers) updateSettings(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var input emailsettings.UpdateInput
	if !httputil.Decode(w, r, &input) {
		return
	}
	s, err := h.Settings.Update(r.Context(), user.ID, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, s)
}

func (h *Handlers) deleteSettings(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := h.Settings.Delete(r.Context(), user.ID); err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.NoContent(w)
}

func (h *Handlers) verifySettings(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	s, err := h.Settings.Verify(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, s)
}
