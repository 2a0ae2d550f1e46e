package main

import (
	"context"
	"embed"
	"flag"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/appleboy/graceful"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spaceshelter/oauth2-sample-client/internal/cache"
	httpc "github.com/spaceshelter/oauth2-sample-client/internal/client"
	"github.com/spaceshelter/oauth2-sample-client/internal/config"
	"github.com/spaceshelter/oauth2-sample-client/internal/handlers"
	"github.com/spaceshelter/oauth2-sample-client/internal/metrics"
	"github.com/spaceshelter/oauth2-sample-client/internal/middleware"
	"github.com/spaceshelter/oauth2-sample-client/internal/oauth"
	"github.com/spaceshelter/oauth2-sample-client/internal/store"
	"github.com/spaceshelter/oauth2-sample-client/internal/version"
)

//go:embed internal/templates/*.html
var templatesFS embed.FS

func main() {
	// Define flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Usage = printUsage
	flag.Parse()

	// Show version and exit if requested
	if *showVersion {
		version.PrintVersion()
		os.Exit(0)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize metrics
	recorder := metrics.Init(cfg.MetricsEnabled)

	// Initialize credential store
	credStore, err := createCredentialStore(cfg)
	if err != nil {
		log.Fatalf("Failed to create credential store: %v", err)
	}

	// Create HTTP client for OAuth requests
	oauthHTTPClient := httpc.CreateOAuthClient(cfg.OAuthTimeout, cfg.OAuthInsecureSkipVerify)

	// Wire the OAuth client
	creds := oauth.Credentials{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
	}
	flow := oauth.NewFlow(credStore, creds, cfg.AuthorizationEndpoint, cfg.RedirectURI, cfg.Scope)
	exchanger := oauth.NewExchanger(cfg.TokenEndpoint, cfg.RedirectURI, creds, oauthHTTPClient)
	resource := oauth.NewResourceClient(
		cfg.APIEndpoint,
		credStore,
		exchanger,
		oauth.WithHTTPClient(oauthHTTPClient),
		oauth.WithRecorder(recorder),
	)
	oauthClient := oauth.NewClient(credStore, flow, exchanger, resource, recorder)

	appHandler := handlers.NewAppHandler(oauthClient)

	// Setup Gin
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	// Setup Prometheus metrics middleware (must be before other routes)
	r.Use(metrics.HTTPMetricsMiddleware(recorder))
	r.Use(gin.Logger(), gin.Recovery())

	// Setup session middleware
	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   cfg.SessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.IsProduction,     // Require HTTPS in production
		SameSite: http.SameSiteLaxMode, // Lax mode required for OAuth callbacks
	})
	r.Use(sessions.Sessions("oauth_session", sessionStore))
	r.Use(middleware.EnsureSessionID())

	// Load embedded page templates
	r.SetHTMLTemplate(template.Must(template.ParseFS(templatesFS, "internal/templates/*.html")))

	// Health check endpoint
	r.GET("/health", createHealthCheckHandler(credStore))

	// Prometheus metrics endpoint
	if cfg.MetricsEnabled {
		log.Printf("Prometheus metrics enabled at /metrics")
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	// Demo routes around the four OAuth client operations
	r.GET("/", appHandler.Home)
	r.GET("/login", appHandler.Login)
	r.GET("/start", appHandler.Start)
	r.GET("/initiate-auth", appHandler.Login)
	r.GET("/callback", appHandler.Callback)
	r.GET("/status", appHandler.Status)
	r.GET("/logout", appHandler.Logout)

	// Start server
	log.Printf("OAuth2 sample client starting on %s", cfg.ServerAddr)
	log.Printf("Authorization endpoint: %s", cfg.AuthorizationEndpoint)
	log.Printf("Token endpoint: %s", cfg.TokenEndpoint)
	log.Printf("Credential store backend: %s", cfg.StoreBackend)

	// Create HTTP server
	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Create graceful manager
	m := graceful.NewManager()

	// Add server as a running job
	m.AddRunningJob(func(ctx context.Context) error {
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Failed to start server: %v", err)
			}
		}()
		<-ctx.Done()
		return nil
	})

	// Add shutdown job for HTTP server
	m.AddShutdownJob(func() error {
		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server forced to shutdown: %v", err)
			return err
		}

		log.Println("Server exited")
		return nil
	})

	// Add shutdown job for the credential store backend
	m.AddShutdownJob(func() error {
		log.Println("Closing credential store...")
		if err := credStore.Close(); err != nil {
			log.Printf("Error closing credential store: %v", err)
			return err
		}
		return nil
	})

	// Wait for graceful shutdown
	<-m.Done()
}

// createCredentialStore builds the per-session credential store for the
// configured backend.
func createCredentialStore(cfg *config.Config) (*store.Store, error) {
	switch cfg.StoreBackend {
	case config.StoreBackendRedis:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		states, err := cache.NewRueidisCache[string](
			ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, "oauth2client:state:",
		)
		if err != nil {
			return nil, err
		}
		tokens, err := cache.NewRueidisCache[oauth.TokenSet](
			ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, "oauth2client:tokens:",
		)
		if err != nil {
			_ = states.Close()
			return nil, err
		}

		log.Printf("Credential store: redis (%s)", cfg.RedisAddr)
		return store.New(states, tokens, cfg.CredentialTTL), nil

	default:
		log.Println("Credential store: memory (single instance only)")
		return store.New(
			cache.NewMemoryCache[string](),
			cache.NewMemoryCache[oauth.TokenSet](),
			cfg.CredentialTTL,
		), nil
	}
}

// createHealthCheckHandler reports process and store health.
func createHealthCheckHandler(credStore *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := credStore.Health(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func printUsage() {
	fmt.Println("OAuth2 sample client")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Printf("  %s [flags]\n", os.Args[0])
	fmt.Println()
	fmt.Println("Flags:")
	flag.PrintDefaults()
}
