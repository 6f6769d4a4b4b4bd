package routes

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"MAILMUSE_BACK-END/internal/config"
	"MAILMUSE_BACK-END/internal/handlers"
	"MAILMUSE_BACK-END/internal/middleware"
)

// Handlers bundles everything SetupRoutes wires up
type Handlers struct {
	Auth       *handlers.AuthHandler
	GoogleAuth *handlers.GoogleAuthHandler
	Password   *handlers.ForgotPasswordHandler
	Health     *handlers.HealthHandler
	Context    *handlers.ContextHandler
	Campaign   *handlers.CampaignHandler
	Workspace  *handlers.WorkspaceHandler
	Export     *handlers.ExportHandler
	Usage      *handlers.UsageHandler
	APIKey     *handlers.APIKeyHandler
	Billing    *handlers.BillingHandler
}

// SetupRoutes configures all application routes
func SetupRoutes(h Handlers, cfg *config.Config) {
	jwtCfg := &cfg.JWT

	// Health check routes
	http.HandleFunc("/healthz", h.Health.HealthCheck)
	http.HandleFunc("/livez", h.Health.LivenessCheck)
	http.HandleFunc("/readyz", h.Health.ReadinessCheck)

	// Authentication routes
	http.HandleFunc("/api/auth/register", h.Auth.Register)
	http.HandleFunc("/api/auth/login", h.Auth.Login)
	http.HandleFunc("/api/auth/profile", middleware.AuthMiddleware(h.Auth.GetProfile, jwtCfg))
	http.HandleFunc("/api/auth/google/login", h.GoogleAuth.GoogleLogin)
	http.HandleFunc("/api/auth/google/callback", h.GoogleAuth.GoogleCallback)
	http.HandleFunc("/api/auth/forgot-password", h.Password.ForgotPassword)
	http.HandleFunc("/api/auth/verify-otp", h.Password.VerifyOTP)
	http.HandleFunc("/api/auth/reset-password", h.Password.ResetPassword)

	// Profile extraction works for anonymous and signed-in callers alike
	http.HandleFunc("/api/context/extract", middleware.OptionalAuthMiddleware(h.Context.Extract, jwtCfg))
	http.HandleFunc("/api/context", middleware.AuthMiddleware(h.Context.SaveContext, jwtCfg))

	// Campaign routes; exact paths win over the trailing-slash prefix
	http.HandleFunc("/api/campaigns/generate", middleware.OptionalAuthMiddleware(h.Campaign.Generate, jwtCfg))
	http.HandleFunc("/api/campaigns/export", middleware.OptionalAuthMiddleware(h.Export.Export, jwtCfg))
	http.HandleFunc("/api/campaigns", middleware.AuthMiddleware(h.Campaign.Collection, jwtCfg))
	http.HandleFunc("/api/campaigns/", middleware.AuthMiddleware(h.Campaign.ByID, jwtCfg))

	// Workspace routes
	http.HandleFunc("/api/workspaces", middleware.AuthMiddleware(h.Workspace.Collection, jwtCfg))
	http.HandleFunc("/api/workspaces/default", middleware.AuthMiddleware(h.Workspace.Default, jwtCfg))
	http.HandleFunc("/api/workspaces/import", middleware.AuthMiddleware(h.Workspace.Import, jwtCfg))
	http.HandleFunc("/api/workspaces/", middleware.AuthMiddleware(h.Workspace.ByID, jwtCfg))

	// Usage and personal keys
	http.HandleFunc("/api/usage", middleware.OptionalAuthMiddleware(h.Usage.Get, jwtCfg))
	http.HandleFunc("/api/keys", middleware.AuthMiddleware(h.APIKey.Handle, jwtCfg))

	// Billing routes; the webhook authenticates by signature, not JWT
	http.HandleFunc("/api/billing/checkout", middleware.AuthMiddleware(h.Billing.Checkout, jwtCfg))
	http.HandleFunc("/api/billing/webhook", h.Billing.Webhook)

	// Observability and docs
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	// Root route
	http.HandleFunc("/", rootHandler)
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("MailMuse backend is running."))
}
