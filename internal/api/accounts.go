package api

import (
	"net/http"

	"github.com/ignite/outreach-platform/internal/domain"
	"github.com/ignite/outreach-platform/internal/pkg/httputil"
	"github.com/ignite/outreach-platform/internal/service/account"
)

func (h *Handlers) listAccounts(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	accounts, err := h.Accounts.List(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, accounts)
}

func (h *Handlers) getAccount(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	a, err := h.Accounts.Get(r.Context(), user.ID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, a)
}

func (h *Handlers) createAccount(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var input account.CreateInput
	if !httputil.Decode(w, r, &input) {
		return
	}
	a, err := h.Accounts.Create(r.Context(), user.ID, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.Created(w, a)
}

func (h *Handlers) updateAccount(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		DisplayName *string               `json:"display_name"`
		ReplyTo     *string               `json:"reply_to"`
		Signature   *string               `json:"signature"`
		DailyLimit  *int                  `json:"daily_limit"`
		Status      *domain.AccountStatus `json:"status"`
	}
	if !httputil.Decode(w, r, &req) {
		return
	}
	a, err := h.Accounts.Update(r.Context(), user.ID, id, account.UpdateFields{
		DisplayName: req.DisplayName,
		ReplyTo:     req.ReplyTo,
		Signature:   req.Signature,
		DailyLimit:  req.DailyLimit,
		Status:      req.Status,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, a)
}

func (h *Handlers) deleteAccount(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Accounts.Delete(r.Context(), user.ID, id); err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.NoContent(w)
}

func (h *Handlers) verifyAccount(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	a, err := h.Accounts.Verify(r.Context(), user.ID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, a)
}

func (h *Handlers) setDefaultAccount(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	a, err := h.Accounts.SetDefault(r.Context(), user.ID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, a)
}
