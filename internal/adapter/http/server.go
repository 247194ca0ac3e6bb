// Package adapthttp implements the HTTP adapter for the application.
package adapthttp

import (
	"context"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"journal/internal/app"
)

// Services bundles the application services the adapter drives.
type Services struct {
	Entries    *app.EntryService
	Insights   *app.InsightsService
	Garden     *app.GardenService
	Reflection *app.ReflectionService
	Weekly     *app.WeeklySummaryService
	Auth       *app.AuthService
}

// OIDCConfig holds single sign-on settings. The zero value disables SSO.
type OIDCConfig struct {
	Enabled      bool
	Provider     *oidc.Provider
	OAuth2Config *oauth2.Config
}

// NewOIDCConfig discovers issuer and builds the OAuth2 client for it.
func NewOIDCConfig(ctx context.Context, issuer, clientID, clientSecret, redirectURL string) (OIDCConfig, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return OIDCConfig{}, fmt.Errorf("oidc discovery: %w", err)
	}
	return OIDCConfig{
		Enabled:  true,
		Provider: provider,
		OAuth2Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
	}, nil
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	entries    *app.EntryService
	insights   *app.InsightsService
	garden     *app.GardenService
	reflection *app.ReflectionService
	weekly     *app.WeeklySummaryService
	authSvc    *app.AuthService

	oidcConfig  OIDCConfig
	disableAuth bool
	sanitizer   *Sanitizer
	webDir      string
	log         *zap.Logger
}

// New creates a Server wired to the given application services.
func New(svc Services, webDir string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		entries:    svc.Entries,
		insights:   svc.Insights,
		garden:     svc.Garden,
		reflection: svc.Reflection,
		weekly:     svc.Weekly,
		authSvc:    svc.Auth,
		sanitizer:  NewSanitizer(),
		webDir:     webDir,
		log:        log,
	}
}

// WithoutAuth disables authentication. Requests then name their user with
// the userId parameter.
func (s *Server) WithoutAuth() *Server {
	s.disableAuth = true
	return s
}

// WithOIDC enables single sign-on.
func (s *Server) WithOIDC(cfg OIDCConfig) *Server {
	s.oidcConfig = cfg
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	protected := http.NewServeMux()
	protected.HandleFunc("/entries", s.handleEntries)
	protected.HandleFunc("/insights", s.handleInsights)
	protected.HandleFunc("/garden", s.handleGarden)
	protected.HandleFunc("/reflection", s.handleReflection)
	protected.HandleFunc("/reflections", s.handleReflections)
	protected.HandleFunc("/weekly-summary", s.handleWeeklySummary)
	protected.HandleFunc("/weekly-summary/latest", s.handleWeeklySummaryLatest)

	api := http.NewServeMux()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	api.HandleFunc("/auth/login", s.handleLogin)
	api.HandleFunc("/auth/logout", s.handleLogout)
	api.HandleFunc("/auth/setup", s.handleSetupUser)
	api.HandleFunc("/auth/config", s.handleConfig)
	api.HandleFunc("/auth/sso/login", s.handleSSOLogin)
	api.HandleFunc("/auth/sso/callback", s.handleSSOCallback)
	api.Handle("/", s.authMiddleware(protected))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	root.Handle("/metrics", promhttp.Handler())
	root.Handle("/", spaFromDisk(s.webDir))

	return s.loggingMiddleware(withNoCache(root))
}
