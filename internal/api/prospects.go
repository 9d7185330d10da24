package api

import (
	"net/http"

	"github.com/ignite/outreach-platform/internal/pkg/httputil"
	"github.com/ignite/outreach-platform/internal/service/prospect"
)

// Prospect list management. Admin-only; routes.go mounts these behind
// RequireAdmin.

func (h *Handlers) listProspectLists(w http.ResponseWriter, r *http.Request) {
	lists, err := h.Prospects.ListLists(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, lists)
}

func (h *Handlers) getProspectList(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	l, err := h.Prospects.GetList(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, l)
}

func (h *Handlers) createProspectList(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var input prospect.ListInput
	if !httputil.Decode(w, r, &input) {
		return
	}
	l, err := h.Prospects.CreateList(r.Context(), user.ID, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.Created(w, l)
}

func (h *Handlers) updateProspectList(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	var input prospect.UpdateListInput
	if !httputil.Decode(w, r, &input) {
		return
	}
	l, err := h.Prospects.UpdateList(r.Context(), id, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, l)
}

func (h *Handlers) deleteProspectList(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Prospects.DeleteList(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.NoContent(w)
}

func (h *Handlers) listContacts(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	p := ParsePagination(r, 50, 500)
	contacts, total, err := h.Prospects.ListContacts(r.Context(), id, p.Limit, p.Offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, NewPaginatedResponse(contacts, p, total))
}

func (h *Handlers) addContact(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	var input prospect.ContactInput
	if !httputil.Decode(w, r, &input) {
		return
	}
	c, err := h.Prospects.AddContact(r.Context(), id, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.Created(w, c)
}

func (h *Handlers) removeContact(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	contactID, ok := urlUUID(w, r, "contactID")
	if !ok {
		return
	}
	if err := h.Prospects.RemoveContact(r.Context(), id, contactID); err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.NoContent(w)
}

// importContacts accepts a multipart upload with a "file" part holding CSV
// data, or a raw text/csv body.
func (h *Handlers) importContacts(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	body := r.Body
	if err := r.ParseMultipartForm(32 << 20); err == nil {
		file, _, ferr := r.FormFile("file")
		if ferr != nil {
			httputil.BadRequest(w, "multipart upload missing file part")
			return
		}
		defer file.Close()
		body = file
	}

	result, err := h.Prospects.ImportCSV(r.Context(), id, body)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, result)
}
