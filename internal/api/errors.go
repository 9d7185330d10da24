package api

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/ignite/outreach-platform/internal/pkg/httputil"
	"github.com/ignite/outreach-platform/internal/service/account"
	"github.com/ignite/outreach-platform/internal/service/aicampaign"
	"github.com/ignite/outreach-platform/internal/service/emailsettings"
	"github.com/ignite/outreach-platform/internal/service/prospect"
	"github.com/ignite/outreach-platform/internal/service/team"
	"github.com/ignite/outreach-platform/internal/service/template"
)

// serviceStatus maps a service sentinel error to an HTTP status code.
// Unknown errors report as 500.
func serviceStatus(err error) int {
	switch {
	case errors.Is(err, account.ErrNotFound),
		errors.Is(err, emailsettings.ErrNotFound),
		errors.Is(err, team.ErrNotFound),
		errors.Is(err, team.ErrMemberNotFound),
		errors.Is(err, team.ErrInviteNotFound),
		errors.Is(err, template.ErrNotFound),
		errors.Is(err, prospect.ErrListNotFound),
		errors.Is(err, prospect.ErrContactNotFound),
		errors.Is(err, aicampaign.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, account.ErrDuplicateAddress),
		errors.Is(err, emailsettings.ErrAlreadyExists),
		errors.Is(err, team.ErrAlreadyMember),
		errors.Is(err, team.ErrLastOwner),
		errors.Is(err, team.ErrInviteNotUsable),
		errors.Is(err, template.ErrNotCompiled),
		errors.Is(err, prospect.ErrDuplicateContact),
		errors.Is(err, aicampaign.ErrInvalidTransition),
		errors.Is(err, aicampaign.ErrLaunchInProgress):
		return http.StatusConflict

	case errors.Is(err, team.ErrForbidden),
		errors.Is(err, team.ErrInviteEmailMatch):
		return http.StatusForbidden

	case errors.Is(err, account.ErrNotVerifiable),
		errors.Is(err, emailsettings.ErrVerifyFailed),
		errors.Is(err, template.ErrCompile),
		errors.Is(err, template.ErrSendUnavailable),
		errors.Is(err, aicampaign.ErrEmptyList):
		return http.StatusUnprocessableEntity

	case errors.Is(err, account.ErrInvalidAddress),
		errors.Is(err, account.ErrInvalidInput),
		errors.Is(err, emailsettings.ErrInvalidInput),
		errors.Is(err, team.ErrInvalidRole),
		errors.Is(err, team.ErrInvalidInput),
		errors.Is(err, template.ErrInvalidInput),
		errors.Is(err, prospect.ErrInvalidInput),
		errors.Is(err, prospect.ErrBadCSV),
		errors.Is(err, aicampaign.ErrInvalidInput):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// writeServiceError translates a service error into a JSON error response.
// 4xx errors expose the service message; 5xx errors log the real error and
// return a sanitized message so internals never leak to clients.
func writeServiceError(w http.ResponseWriter, err error) {
	code := serviceStatus(err)
	if code < 500 {
		httputil.Error(w, code, err.Error())
		return
	}
	log.Printf("ERROR [%d]: %v", code, err)
	httputil.Error(w, code, safeErrorMessage(err))
}

// safeErrorMessage maps internal error patterns to public-safe messages.
func safeErrorMessage(err error) string {
	if err == nil {
		return "an internal error occurred"
	}
	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "dial tcp"):
		return "service temporarily unavailable"

	case strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded") ||
		strings.Contains(errStr, "context canceled"):
		return "request timed out"

	case strings.Contains(errStr, "sql") ||
		strings.Contains(errStr, "pq:") ||
		strings.Contains(errStr, "query") ||
		strings.Contains(errStr, "scan") ||
		strings.Contains(errStr, "transaction") ||
		strings.Contains(errStr, "database"):
		return "a database error occurred"

	default:
		return "an internal error occurred"
	}
}
