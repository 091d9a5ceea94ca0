package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	servertiming "github.com/mitchellh/go-server-timing"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/malo-app/malo-web/internal/apiclient"
	"github.com/malo-app/malo-web/internal/config"
	"github.com/malo-app/malo-web/internal/database"
	"github.com/malo-app/malo-web/internal/handler"
	"github.com/malo-app/malo-web/internal/logger"
	"github.com/malo-app/malo-web/internal/middleware"
	"github.com/malo-app/malo-web/internal/queue"
	"github.com/malo-app/malo-web/internal/router"
	queue_publisher "github.com/malo-app/malo-web/internal/service"
	"github.com/malo-app/malo-web/internal/session"
	"github.com/malo-app/malo-web/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	logger.Init(cfg.LogLevel)
	rlog := logger.Default()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb := config.NewRedisClient()
	if rdb == nil {
		rlog.Warn("redis unavailable: rate limiting and caching disabled")
	}
	store := newStore(ctx, cfg, rdb)
	sessions := session.NewManager([]byte(cfg.SessionSecret), store, session.Options{
		TTL:    cfg.SessionTTL,
		Secure: cfg.CookieSecure,
	})

	cacheCfg, err := config.LoadCacheConfig()
	if err != nil {
		rlog.WithError(err).Fatal("load cache config")
	}
	rlCfg, err := config.LoadRateLimitConfig()
	if err != nil {
		rlog.WithError(err).Fatal("load rate limit config")
	}

	api := apiclient.New(apiclient.Options{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.APITimeout,
		Tokens:  session.ContextTokens{},
		Cache:   apiclient.NewResponseCache(cacheCfg, rdb),
	})
	base := &handler.Base{API: api, Sessions: sessions}

	renderer, err := handler.NewRenderer(web.FS)
	if err != nil {
		rlog.WithError(err).Fatal("parse templates")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.HTTPErrorHandler = handler.ErrorHandler(base)

	e.Use(middleware.RequestLogger())
	e.Use(echomw.Recover())
	e.Use(echo.WrapMiddleware(func(next http.Handler) http.Handler {
		return servertiming.Middleware(next, nil)
	}))
	e.Use(middleware.LoadSession(sessions))
	if cfg.CSRFEnabled {
		e.Use(echomw.CSRFWithConfig(echomw.CSRFConfig{
			TokenLookup:    "form:_csrf",
			CookieName:     "malo_csrf",
			CookiePath:     "/",
			CookieHTTPOnly: true,
			CookieSecure:   cfg.CookieSecure,
			CookieSameSite: http.SameSiteLaxMode,
			// Google posts the credential cross-site with its own double-submit token
			Skipper: func(c echo.Context) bool {
				return strings.HasSuffix(c.Path(), "/auth/google")
			},
		}))
	}

	var events handler.VisitPublisher
	if cfg.RabbitURL != "" {
		events = queue_publisher.New(cfg.RabbitURL)
	}
	auth := handler.NewAuthHandler(base, cfg.GoogleClient, cfg.PublicBaseURL)

	router.RegisterRoutes(e, echo.MustSubFS(web.FS, "static"))
	router.RegisterAuth(e, auth, middleware.NewTokenBucket(rlCfg, rdb))
	router.RegisterAdmin(e, sessions, router.AdminHandlers{
		Auth:      auth,
		Admin:     handler.NewAdminHandler(base),
		Residents: handler.NewResidentRoster(base),
		Staff:     handler.NewStaffRoster(base),
		Profile:   handler.NewAdminProfileHandler(base),
	})
	router.RegisterResident(e, sessions, router.ResidentHandlers{
		Auth:     auth,
		Resident: handler.NewResidentHandler(base, events),
		Profile:  handler.NewResidentProfileHandler(base),
	})

	if cfg.VisitConsumerEnabled && cfg.RabbitURL != "" {
		go func() {
			if err := queue.StartVisitConsumer(ctx, cfg.RabbitURL, cfg.VisitLogDir); err != nil && !errors.Is(err, context.Canceled) {
				rlog.WithError(err).Error("visit consumer stopped")
			}
		}()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.ProxyHeaders(handlers.CompressHandler(e)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		rlog.Infof("listening on %s (env=%s, sessions=%s)", srv.Addr, cfg.Env, cfg.SessionStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			rlog.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		rlog.WithError(err).Error("shutdown")
	}
}

// newStore picks the session backend named by SESSION_STORE.  A backend
// that cannot be reached falls back to memory so the portals stay usable;
// sessions are then lost on restart.
func newStore(ctx context.Context, cfg config.Config, rdb *redis.Client) session.Store {
	rlog := logger.Default().WithField("store", cfg.SessionStore)
	switch cfg.SessionStore {
	case config.StoreRedis:
		if rdb != nil {
			return session.NewRedisStore(rdb, "")
		}
		rlog.Warn("redis unavailable, falling back to memory sessions")
	case config.StoreMySQL:
		db, err := database.Open(cfg.DB)
		if err != nil {
			rlog.WithError(err).Warn("mysql unavailable, falling back to memory sessions")
			break
		}
		store := session.NewSQLStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			rlog.WithError(err).Warn("session table missing, falling back to memory sessions")
			_ = db.Close()
			break
		}
		go purgeLoop(ctx, store, cfg.SessionTTL)
		return store
	}
	return session.NewMemoryStore()
}

// purgeLoop removes expired session rows until ctx is done.
func purgeLoop(ctx context.Context, store *session.SQLStore, ttl time.Duration) {
	every := ttl / 4
	if every < time.Minute {
		every = time.Minute
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := store.PurgeExpired(ctx)
			if err != nil {
				logger.Default().WithError(err).Warn("purge expired sessions")
				continue
			}
			if n > 0 {
				logger.Default().WithField("rows", n).Debug("purged expired sessions")
			}
		}
	}
}
