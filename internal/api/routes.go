package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ignite/outreach-platform/internal/pkg/httputil"
)

// setupRoutes configures all API routes. Everything under /api requires an
// authenticated session; everything under /api/admin additionally requires
// the platform admin role.
func setupRoutes(h *Handlers, limiter *rateLimiter) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(instrumentRequests)

	// CORS - allow credentials for auth cookies
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httputil.OK(w, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", MetricsHandler())

	// Auth routes (no session required)
	if h.Auth != nil {
		r.Get("/auth/login", h.Auth.HandleLogin)
		r.Get("/auth/callback", h.Auth.HandleCallback)
		r.Get("/auth/logout", h.Auth.HandleLogout)
		r.Get("/auth/user", h.Auth.HandleUserInfo)
	}

	r.Route("/api", func(r chi.Router) {
		if h.Auth != nil {
			r.Use(h.Auth.RequireAuth)
		}
		if limiter != nil {
			r.Use(limiter.middleware)
		}

		r.Route("/email-accounts", func(r chi.Router) {
			r.Get("/", h.listAccounts)
			r.Post("/", h.createAccount)
			r.Get("/{id}", h.getAccount)
			r.Put("/{id}", h.updateAccount)
			r.Delete("/{id}", h.deleteAccount)
			r.Post("/{id}/verify", h.verifyAccount)
			r.Post("/{id}/default", h.setDefaultAccount)
		})

		r.Route("/settings/email", func(r chi.Router) {
			r.Get("/", h.getSettings)
			r.Post("/", h.createSettings)
			r.Put("/", h.updateSettings)
			r.Delete("/", h.deleteSettings)
			r.Post("/verify", h.verifySettings)
		})

		r.Route("/teams", func(r chi.Router) {
			r.Get("/", h.listTeams)
			r.Post("/", h.createTeam)
			r.Get("/{id}", h.getTeam)
			r.Put("/{id}", h.updateTeam)
			r.Delete("/{id}", h.deleteTeam)
			r.Get("/{id}/members", h.listTeamMembers)
			r.Put("/{id}/members/{userID}", h.changeMemberRole)
			r.Delete("/{id}/members/{userID}", h.removeMember)
			r.Get("/{id}/invitations", h.listInvitations)
			r.Post("/{id}/invitations", h.createInvitation)
			r.Delete("/{id}/invitations/{invID}", h.revokeInvitation)
		})
		r.Post("/invitations/accept", h.acceptInvitation)

		r.Route("/templates", func(r chi.Router) {
			r.Get("/", h.listTemplates)
			r.Post("/", h.createTemplate)
			r.Get("/{id}", h.getTemplate)
			r.Put("/{id}", h.updateTemplate)
			r.Delete("/{id}", h.deleteTemplate)
			r.Post("/{id}/compile", h.compileTemplate)
			r.Get("/{id}/variables", h.templateVariables)
			r.Post("/{id}/render", h.renderTemplate)
			r.Post("/{id}/clone", h.cloneTemplate)
			r.Post("/{id}/test-send", h.testSendTemplate)
		})

		r.Route("/admin", func(r chi.Router) {
			if h.Auth != nil {
				r.Use(h.Auth.RequireAdmin)
			}

			r.Route("/prospect-lists", func(r chi.Router) {
				r.Get("/", h.listProspectLists)
				r.Post("/", h.createProspectList)
				r.Get("/{id}", h.getProspectList)
				r.Put("/{id}", h.updateProspectList)
				r.Delete("/{id}", h.deleteProspectList)
				r.Get("/{id}/contacts", h.listContacts)
				r.Post("/{id}/contacts", h.addContact)
				r.Delete("/{id}/contacts/{contactID}", h.removeContact)
				r.Post("/{id}/contacts/import", h.importContacts)
			})

			r.Route("/ai-campaigns", func(r chi.Router) {
				r.Get("/", h.listCampaigns)
				r.Post("/", h.createCampaign)
				r.Get("/{id}", h.getCampaign)
				r.Put("/{id}", h.updateCampaign)
				r.Delete("/{id}", h.deleteCampaign)
				r.Post("/{id}/launch", h.launchCampaign)
				r.Post("/{id}/cancel", h.cancelCampaign)
				r.Get("/{id}/stats", h.campaignStats)
			})

			// Old route name, kept for clients that still call it.
			r.Route("/pitches", func(r chi.Router) {
				r.Get("/", h.listCampaigns)
				r.Post("/", h.createCampaign)
				r.Get("/{id}", h.getCampaign)
				r.Put("/{id}", h.updateCampaign)
				r.Delete("/{id}", h.deleteCampaign)
				r.Post("/{id}/launch", h.launchCampaign)
				r.Post("/{id}/cancel", h.cancelCampaign)
				r.Get("/{id}/stats", h.campaignStats)
			})
		})
	})

	return r
}
