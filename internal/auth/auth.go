// Package auth implements Google OAuth login, cookie sessions, and the
// middleware that attaches the signed-in user to request contexts.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/ignite/outreach-platform/internal/config"
	"github.com/ignite/outreach-platform/internal/domain"
)

type contextKey string

// userContextKey carries the *domain.User for authenticated requests.
const userContextKey contextKey = "auth.user"

// GoogleUserInfo represents the user info returned by Google
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
	HD            string `json:"hd"` // Hosted domain (GSuite domain)
}

// Session represents an authenticated user session
type Session struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Picture   string    `json:"picture"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserStore provisions and loads application users on login.
type UserStore interface {
	// Provision finds the user by email or creates a new row. The role is
	// upgraded to admin when the config allowlist says so.
	Provision(ctx context.Context, email, name string, role domain.UserRole) (*domain.User, error)
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// Manager handles Google OAuth authentication and session tracking.
type Manager struct {
	config       *config.AuthConfig
	oauth2Config *oauth2.Config
	users        UserStore
	sessions     map[string]*Session
	sessionMu    sync.RWMutex
	baseURL      string
}

// NewManager creates a new authentication manager
func NewManager(cfg *config.AuthConfig, users UserStore, baseURL string) *Manager {
	oauth2Config := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  baseURL + "/auth/callback",
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}

	return &Manager{
		config:       cfg,
		oauth2Config: oauth2Config,
		users:        users,
		sessions:     make(map[string]*Session),
		baseURL:      baseURL,
	}
}

// generateState creates a random state string for OAuth
func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// generateSessionID creates a random session ID
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// HandleLogin initiates the Google OAuth flow
func (m *Manager) HandleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := generateState()
	if err != nil {
		http.Error(w, "Failed to generate state", http.StatusInternalServerError)
		return
	}

	// Store state in a cookie for verification
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   300, // 5 minutes
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	url := m.oauth2Config.AuthCodeURL(state, oauth2.AccessTypeOnline)
	if m.config.AllowedDomain != "" {
		// hd restricts the Google account chooser to the allowed domain
		url += "&hd=" + m.config.AllowedDomain
	}
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// HandleCallback processes the OAuth callback from Google
func (m *Manager) HandleCallback(w http.ResponseWriter, r *http.Request) {
	// Verify state
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil {
		log.Printf("Auth: No state cookie found: %v", err)
		http.Redirect(w, r, "/?error=invalid_state", http.StatusTemporaryRedirect)
		return
	}

	if r.URL.Query().Get("state") != stateCookie.Value {
		log.Printf("Auth: State mismatch")
		http.Redirect(w, r, "/?error=invalid_state", http.StatusTemporaryRedirect)
		return
	}

	// Clear state cookie
	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	// Check for errors from Google
	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		log.Printf("Auth: Google returned error: %s", errMsg)
		http.Redirect(w, r, "/?error="+errMsg, http.StatusTemporaryRedirect)
		return
	}

	// Exchange code for token
	code := r.URL.Query().Get("code")
	token, err := m.oauth2Config.Exchange(r.Context(), code)
	if err != nil {
		log.Printf("Auth: Failed to exchange code: %v", err)
		http.Redirect(w, r, "/?error=exchange_failed", http.StatusTemporaryRedirect)
		return
	}

	// Get user info from Google
	userInfo, err := m.getUserInfo(token.AccessToken)
	if err != nil {
		log.Printf("Auth: Failed to get user info: %v", err)
		http.Redirect(w, r, "/?error=userinfo_failed", http.StatusTemporaryRedirect)
		return
	}

	// Verify domain
	if m.config.AllowedDomain != "" {
		parts := strings.Split(userInfo.Email, "@")
		if len(parts) != 2 || parts[1] != m.config.AllowedDomain {
			log.Printf("Auth: Domain not allowed: %s (expected %s)", userInfo.Email, m.config.AllowedDomain)
			http.Redirect(w, r, "/?error=domain_not_allowed", http.StatusTemporaryRedirect)
			return
		}
	}

	// Provision the application user; admin allowlist wins over stored role.
	role := domain.RoleMember
	if m.config.IsAdminEmail(userInfo.Email) {
		role = domain.RoleAdmin
	}
	user, err := m.users.Provision(r.Context(), userInfo.Email, userInfo.Name, role)
	if err != nil {
		log.Printf("Auth: Failed to provision user %s: %v", userInfo.Email, err)
		http.Redirect(w, r, "/?error=provision_failed", http.StatusTemporaryRedirect)
		return
	}

	sessionID, err := m.IssueSession(user, userInfo.Picture)
	if err != nil {
		log.Printf("Auth: Failed to create session: %v", err)
		http.Redirect(w, r, "/?error=session_failed", http.StatusTemporaryRedirect)
		return
	}

	log.Printf("Auth: User logged in: %s (%s)", user.Email, user.Role)

	// Set session cookie
	http.SetCookie(w, &http.Cookie{
		Name:     m.config.CookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   m.config.CookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

// HandleLogout logs out the user
func (m *Manager) HandleLogout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(m.config.CookieName)
	if err == nil {
		m.sessionMu.Lock()
		delete(m.sessions, cookie.Value)
		m.sessionMu.Unlock()
	}

	http.SetCookie(w, &http.Cookie{
		Name:   m.config.CookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

// HandleUserInfo returns the current user's info as JSON
func (m *Manager) HandleUserInfo(w http.ResponseWriter, r *http.Request) {
	session := m.GetSession(r)
	if session == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"authenticated": false,
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"authenticated": true,
		"user": map[string]string{
			"id":      session.UserID.String(),
			"email":   session.Email,
			"name":    session.Name,
			"picture": session.Picture,
			"role":    session.Role,
		},
	})
}

// IssueSession registers a new session for the user and returns its ID.
// The session lives for the configured cookie max age.
func (m *Manager) IssueSession(user *domain.User, picture string) (string, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return "", err
	}

	m.sessionMu.Lock()
	m.sessions[sessionID] = &Session{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Picture:   picture,
		Role:      string(user.Role),
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Duration(m.config.CookieMaxAge) * time.Second),
	}
	m.sessionMu.Unlock()
	return sessionID, nil
}

// GetSession returns the session for the current request, or nil if not authenticated
func (m *Manager) GetSession(r *http.Request) *Session {
	cookie, err := r.Cookie(m.config.CookieName)
	if err != nil {
		return nil
	}

	m.sessionMu.RLock()
	session, exists := m.sessions[cookie.Value]
	m.sessionMu.RUnlock()

	if !exists {
		return nil
	}

	// Check if session has expired
	if time.Now().After(session.ExpiresAt) {
		m.sessionMu.Lock()
		delete(m.sessions, cookie.Value)
		m.sessionMu.Unlock()
		return nil
	}

	return session
}

// RequireAuth is middleware that rejects unauthenticated requests and loads
// the current user into the request context.
func (m *Manager) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := m.GetSession(r)
		if session == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
			return
		}

		user, err := m.users.GetByID(r.Context(), session.UserID)
		if err != nil {
			log.Printf("Auth: session user %s not found: %v", session.UserID, err)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin is middleware that rejects non-admin users.
// Must run inside RequireAuth.
func (m *Manager) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r.Context())
		if user == nil || !user.IsAdmin() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(map[string]string{"error": "admin access required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CurrentUser returns the authenticated user from the request context,
// or nil when the request did not pass through RequireAuth.
func CurrentUser(ctx context.Context) *domain.User {
	user, _ := ctx.Value(userContextKey).(*domain.User)
	return user
}

// WithUser returns a context carrying the given user. Handler tests use this
// to simulate an authenticated request.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// getUserInfo fetches the user's profile from Google
func (m *Manager) getUserInfo(accessToken string) (*GoogleUserInfo, error) {
	resp, err := http.Get("https://www.googleapis.com/oauth2/v2/userinfo?access_token=" + accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google API error: %s", string(body))
	}

	var userInfo GoogleUserInfo
	if err := json.Unmarshal(body, &userInfo); err != nil {
		return nil, fmt.Errorf("failed to parse user info: %w", err)
	}

	return &userInfo, nil
}

// ValidateCredentials performs a lightweight check against Google's token
// endpoint to verify the OAuth client ID and secret are valid. This catches
// stale/rotated credentials at boot instead of at first user login.
func (m *Manager) ValidateCredentials(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	// Use the token endpoint with an invalid grant to provoke a distinguishable error.
	// Google returns "invalid_client" for bad credentials vs "invalid_grant" for
	// bad code — so we can tell the difference.
	vals := fmt.Sprintf("grant_type=authorization_code&code=validation_probe&client_id=%s&client_secret=%s&redirect_uri=%s",
		m.oauth2Config.ClientID, m.oauth2Config.ClientSecret, m.oauth2Config.RedirectURL)

	req, err := http.NewRequestWithContext(ctx, "POST", google.Endpoint.TokenURL, strings.NewReader(vals))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("token endpoint unreachable: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	bodyStr := string(body)

	// "invalid_grant" or "invalid_request" means the client itself is fine,
	// but the dummy code is (obviously) wrong — that's the success case.
	if strings.Contains(bodyStr, "invalid_grant") || strings.Contains(bodyStr, "invalid_request") || strings.Contains(bodyStr, "redirect_uri_mismatch") {
		return nil
	}

	// "invalid_client" means the client ID or secret is wrong.
	if strings.Contains(bodyStr, "invalid_client") {
		return fmt.Errorf("Google OAuth credentials are INVALID (client_id or client_secret rejected by Google). "+
			"Verify in GCP Console → APIs & Services → Credentials for project %s", m.oauth2Config.ClientID[:12]+"...")
	}

	return fmt.Errorf("unexpected response from Google token endpoint (HTTP %d): %s", resp.StatusCode, bodyStr)
}

// CleanupExpiredSessions removes expired sessions periodically
func (m *Manager) CleanupExpiredSessions() {
	ticker := time.NewTicker(5 * time.Minute)
	go func() {
		for range ticker.C {
			m.sessionMu.Lock()
			now := time.Now()
			for id, session := range m.sessions {
				if now.After(session.ExpiresAt) {
					delete(m.sessions, id)
				}
			}
			m.sessionMu.Unlock()
		}
	}()
}
