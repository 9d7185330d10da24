package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/outreach-platform/internal/domain"
	"github.com/ignite/outreach-platform/internal/pkg/httputil"
	"github.com/ignite/outreach-platform/internal/service/aicampaign"
)

// AI campaign management. Admin-only; routes.go mounts these behind
// RequireAdmin.

func (h *Handlers) listCampaigns(w http.ResponseWriter, r *http.Request) {
	p := ParsePagination(r, 50, 200)
	campaigns, total, err := h.Campaigns.List(r.Context(), aicampaign.ListFilter{
		Status: r.URL.Query().Get("status"),
		Limit:  p.Limit,
		Offset: p.Offset,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, NewPaginatedResponse(campaigns, p, total))
}

func (h *Handlers) getCampaign(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	c, err := h.Campaigns.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, c)
}

func (h *Handlers) createCampaign(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var input aicampaign.CreateInput
	if !httputil.Decode(w, r, &input) {
		return
	}
	c, err := h.Campaigns.Create(r.Context(), user.ID, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.Created(w, c)
}

func (h *Handlers) updateCampaign(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Name        *string                 `json:"name"`
		ListID      *uuid.UUID              `json:"list_id"`
		TemplateID  *uuid.UUID              `json:"template_id"`
		AccountID   *uuid.UUID              `json:"account_id"`
		Channel     *domain.CampaignChannel `json:"channel"`
		ScheduledAt *time.Time              `json:"scheduled_at"`
	}
	if !httputil.Decode(w, r, &req) {
		return
	}
	c, err := h.Campaigns.Update(r.Context(), id, aicampaign.UpdateFields{
		Name:        req.Name,
		ListID:      req.ListID,
		TemplateID:  req.TemplateID,
		AccountID:   req.AccountID,
		Channel:     req.Channel,
		ScheduledAt: req.ScheduledAt,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, c)
}

func (h *Handlers) deleteCampaign(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Campaigns.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.NoContent(w)
}

func (h *Handlers) launchCampaign(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	c, err := h.Campaigns.Launch(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, c)
}

func (h *Handlers) cancelCampaign(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	c, err := h.Campaigns.Cancel(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, c)
}

func (h *Handlers) campaignStats(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	stats, err := h.Campaigns.CampaignStats(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, stats)
}
