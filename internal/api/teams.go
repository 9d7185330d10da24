package api

import (
	"net/http"

	"github.com/ignite/outreach-platform/internal/domain"
	"github.com/ignite/outreach-platform/internal/pkg/httputil"
	"github.com/ignite/outreach-platform/internal/service/team"
)

func (h *Handlers) listTeams(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	teams, err := h.Teams.List(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, teams)
}

func (h *Handlers) getTeam(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	t, err := h.Teams.Get(r.Context(), user.ID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, t)
}

func (h *Handlers) createTeam(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var input team.CreateInput
	if !httputil.Decode(w, r, &input) {
		return
	}
	t, err := h.Teams.Create(r.Context(), user.ID, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.Created(w, t)
}

func (h *Handlers) updateTeam(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	var input team.UpdateInput
	if !httputil.Decode(w, r, &input) {
		return
	}
	t, err := h.Teams.Update(r.Context(), user.ID, id, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, t)
}

func (h *Handlers) deleteTeam(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Teams.Delete(r.Context(), user.ID, id); err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.NoContent(w)
}

func (h *Handlers) listTeamMembers(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	members, err := h.Teams.ListMembers(r.Context(), user.ID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, members)
}

func (h *Handlers) changeMemberRole(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	teamID, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	memberID, ok := urlUUID(w, r, "userID")
	if !ok {
		return
	}
	var req struct {
		Role domain.TeamRole `json:"role"`
	}
	if !httputil.Decode(w, r, &req) {
		return
	}
	m, err := h.Teams.ChangeMemberRole(r.Context(), user.ID, teamID, memberID, req.Role)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, m)
}

func (h *Handlers) removeMember(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	teamID, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	memberID, ok := urlUUID(w, r, "userID")
	if !ok {
		return
	}
	if err := h.Teams.RemoveMember(r.Context(), user.ID, teamID, memberID); err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.NoContent(w)
}

func (h *Handlers) listInvitations(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	teamID, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	invites, err := h.Teams.ListInvitations(r.Context(), user.ID, teamID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, invites)
}

func (h *Handlers) createInvitation(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	teamID, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	var input team.InviteInput
	if !httputil.Decode(w, r, &input) {
		return
	}
	inv, err := h.Teams.Invite(r.Context(), user.ID, teamID, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.Created(w, inv)
}

func (h *Handlers) revokeInvitation(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	teamID, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	invID, ok := urlUUID(w, r, "invID")
	if !ok {
		return
	}
	if err := h.Teams.RevokeInvitation(r.Context(), user.ID, teamID, invID); err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.NoContent(w)
}

func (h *Handlers) acceptInvitation(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req struct {
		Token string `json:"token"`
	}
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.Token == "" {
		httputil.BadRequest(w, "token is required")
		return
	}
	m, err := h.Teams.Accept(r.Context(), user, req.Token)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, m)
}
