package api

import (
	"net/http"

	"github.com/ignite/outreach-platform/internal/domain"
	"github.com/ignite/outreach-platform/internal/pkg/httputil"
	"github.com/ignite/outreach-platform/internal/service/template"
)

func (h *Handlers) listTemplates(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	templates, err := h.Templates.List(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, templates)
}

func (h *Handlers) getTemplate(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	t, err := h.Templates.Get(r.Context(), user.ID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, t)
}

func (h *Handlers) createTemplate(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var input template.CreateInput
	if !httputil.Decode(w, r, &input) {
		return
	}
	t, err := h.Templates.Create(r.Context(), user.ID, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.Created(w, t)
}

func (h *Handlers) updateTemplate(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Name         *string                `json:"name"`
		Description  *string                `json:"description"`
		Subject      *string                `json:"subject"`
		MJMLSource   *string                `json:"mjml_source"`
		PlainContent *string                `json:"plain_content"`
		Status       *domain.TemplateStatus `json:"status"`
	}
	if !httputil.Decode(w, r, &req) {
		return
	}
	t, err := h.Templates.Update(r.Context(), user.ID, id, template.UpdateFields{
		Name:         req.Name,
		Description:  req.Description,
		Subject:      req.Subject,
		MJMLSource:   req.MJMLSource,
		PlainContent: req.PlainContent,
		Status:       req.Status,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, t)
}

func (h *Handlers) deleteTemplate(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Templates.Delete(r.Context(), user.ID, id); err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.NoContent(w)
}

func (h *Handlers) compileTemplate(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	t, err := h.Templates.Compile(r.Context(), user.ID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, t)
}

func (h *Handlers) templateVariables(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	vars, err := h.Templates.Variables(r.Context(), user.ID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, map[string]interface{}{"variables": vars})
}

func (h *Handlers) renderTemplate(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Context map[string]interface{} `json:"context"`
		Strict  bool                   `json:"strict"`
	}
	if !httputil.Decode(w, r, &req) {
		return
	}
	mode := template.RenderModeLax
	if req.Strict {
		mode = template.RenderModeStrict
	}
	rendered, err := h.Templates.Render(r.Context(), user.ID, id, req.Context, mode)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, rendered)
}

func (h *Handlers) cloneTemplate(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if !httputil.Decode(w, r, &req) {
		return
	}
	t, err := h.Templates.Clone(r.Context(), user.ID, id, req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.Created(w, t)
}

func (h *Handlers) testSendTemplate(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		To      string                 `json:"to"`
		Context map[string]interface{} `json:"context"`
	}
	if !httputil.Decode(w, r, &req) {
		return
	}
	if err := h.Templates.TestSend(r.Context(), user.ID, id, req.To, req.Context); err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, map[string]string{"status": "sent"})
}
