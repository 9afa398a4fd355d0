package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	cloudstorage "cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/menuboard/api/internal/access"
	"github.com/menuboard/api/internal/handlers"
	"github.com/menuboard/api/internal/platform/auth"
	"github.com/menuboard/api/internal/platform/config"
	"github.com/menuboard/api/internal/platform/media"
	"github.com/menuboard/api/internal/platform/observability"
	"github.com/menuboard/api/internal/platform/secrets"
	"github.com/menuboard/api/internal/services"
	"github.com/menuboard/api/internal/store"
)

func main() {
	ctx := context.Background()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("api")
	ctx = observability.WithLogger(ctx, logger)

	boot, err := config.LoadBootstrap()
	if err != nil {
		logger.Fatal("failed to read secret fetcher settings", zap.Error(err))
	}

	fetcher, err := secrets.NewFetcher(ctx,
		secrets.WithLogger(logger.Named("secrets")),
		secrets.WithProject(boot.SecretsProject),
		secrets.WithFallbackFile(boot.SecretsFallbackFile),
	)
	if err != nil {
		logger.Fatal("failed to initialise secret fetcher", zap.Error(err))
	}
	defer func() {
		if err := fetcher.Close(); err != nil {
			logger.Warn("secret fetcher close error", zap.Error(err))
		}
	}()

	cfg, err := config.Load(ctx, config.WithSecretResolver(config.SecretResolverFunc(fetcher.Resolve)))
	if err != nil {
		var validation *config.ValidationError
		if errors.As(err, &validation) {
			logger.Fatal("invalid configuration", zap.Strings("fields", validation.Fields()))
		}
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	backingStore, verifier, passwords, err := buildIdentityAndStore(ctx, logger, cfg)
	if err != nil {
		logger.Fatal("failed to initialise store and identity clients", zap.Error(err))
	}

	mediaStore, closeMedia, err := buildMediaStore(ctx, logger, cfg)
	if err != nil {
		logger.Fatal("failed to initialise media uploader", zap.Error(err))
	}
	defer closeMedia()

	serviceLogger := newServiceLogger(logger.Named("services"))

	catalog, err := services.NewCatalogService(services.CatalogServiceDeps{Store: backingStore, Logger: serviceLogger})
	if err != nil {
		logger.Fatal("failed to initialise catalog service", zap.Error(err))
	}
	gallery, err := services.NewGalleryService(services.GalleryServiceDeps{Store: backingStore, Media: mediaStore, Logger: serviceLogger})
	if err != nil {
		logger.Fatal("failed to initialise gallery service", zap.Error(err))
	}
	settings, err := services.NewSettingsService(services.SettingsServiceDeps{Store: backingStore, Logger: serviceLogger})
	if err != nil {
		logger.Fatal("failed to initialise settings service", zap.Error(err))
	}

	watcher := store.NewWatcher(backingStore,
		store.WithPollInterval(cfg.Store.PollInterval),
		store.WithWatcherLogger(logger.Named("watch")),
	)
	menu, err := services.NewMenuService(services.MenuServiceDeps{Watcher: watcher, Logger: serviceLogger})
	if err != nil {
		logger.Fatal("failed to initialise menu service", zap.Error(err))
	}
	if err := menu.Start(ctx); err != nil {
		logger.Fatal("failed to establish live caches", zap.Error(err))
	}
	defer menu.Close()

	policy := access.NewPolicy(cfg.Access.Clients, cfg.Access.Developers)

	authHandlers, err := handlers.NewAuthHandlers(handlers.AuthHandlersDeps{
		Passwords:     passwords,
		Sessions:      verifier,
		Verifier:      verifier,
		Policy:        policy,
		CookieName:    cfg.Session.CookieName,
		SessionTTL:    cfg.Session.TTL,
		SecureCookies: cfg.Security.Environment != "local",
	})
	if err != nil {
		logger.Fatal("failed to initialise auth handlers", zap.Error(err))
	}
	publicHandlers, err := handlers.NewPublicHandlers(menu)
	if err != nil {
		logger.Fatal("failed to initialise public handlers", zap.Error(err))
	}
	clientHandlers, err := handlers.NewClientPanelHandlers(handlers.ClientPanelDeps{Catalog: catalog, Policy: policy})
	if err != nil {
		logger.Fatal("failed to initialise client panel handlers", zap.Error(err))
	}
	devHandlers, err := handlers.NewDevPanelHandlers(handlers.DevPanelDeps{
		Catalog:     catalog,
		Gallery:     gallery,
		Settings:    settings,
		Policy:      policy,
		Sessions:    verifier,
		ClearCookie: authHandlers.ClearSessionCookie,
	})
	if err != nil {
		logger.Fatal("failed to initialise dev panel handlers", zap.Error(err))
	}

	authenticator := auth.NewAuthenticator(verifier, auth.WithCookieName(cfg.Session.CookieName))

	router := handlers.NewRouter(
		handlers.WithMiddlewares(
			observability.TraceMiddleware(cfg.Firebase.ProjectID),
			observability.InjectLoggerMiddleware(logger),
			observability.RequestLoggerMiddleware(cfg.Firebase.ProjectID),
			observability.RecoveryMiddleware(logger),
		),
		handlers.WithSessionMiddleware(authenticator.RequireSession),
		handlers.WithPublicHandlers(publicHandlers),
		handlers.WithAuthHandlers(authHandlers),
		handlers.WithClientPanelHandlers(clientHandlers),
		handlers.WithDevPanelHandlers(devHandlers),
		handlers.WithHealthHandlers(handlers.NewHealthHandlers(menu.Ready)),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("menuboard api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// buildIdentityAndStore constructs the backing store and the identity
// clients for the configured backend. With the memory backend there is no
// Firebase project at all, which keeps local development credential-free;
// sessions then use an unconfigured verifier and every panel request fails
// closed.
func buildIdentityAndStore(ctx context.Context, logger *zap.Logger, cfg config.Config) (store.Store, *auth.FirebaseVerifier, *auth.PasswordClient, error) {
	if strings.EqualFold(cfg.Store.Backend, "memory") {
		// Credential-free local mode: without a web API key the login
		// endpoints fail closed while the public page keeps working.
		logger.Warn("using in-memory store backend; data is not persisted")
		var passwords *auth.PasswordClient
		if strings.TrimSpace(cfg.Firebase.WebAPIKey) != "" {
			var err error
			passwords, err = auth.NewPasswordClient(cfg.Firebase.WebAPIKey)
			if err != nil {
				return nil, nil, nil, err
			}
		}
		return store.NewMemoryStore(), nil, passwords, nil
	}

	passwords, err := auth.NewPasswordClient(cfg.Firebase.WebAPIKey)
	if err != nil {
		return nil, nil, nil, err
	}

	app, err := auth.NewFirebaseApp(ctx, cfg.Firebase)
	if err != nil {
		return nil, nil, nil, err
	}
	verifier, err := auth.NewFirebaseVerifier(ctx, app)
	if err != nil {
		return nil, nil, nil, err
	}
	dbClient, err := app.Database(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("initialise database client: %w", err)
	}
	backingStore, err := store.NewFirebaseStore(dbClient)
	if err != nil {
		return nil, nil, nil, err
	}
	return backingStore, verifier, passwords, nil
}

// buildMediaStore wires the Cloud Storage uploader when a bucket is
// configured; otherwise uploads stay inlined in the store.
func buildMediaStore(ctx context.Context, logger *zap.Logger, cfg config.Config) (services.MediaStore, func(), error) {
	if cfg.Media.Bucket == "" {
		return nil, func() {}, nil
	}
	client, err := cloudstorage.NewClient(ctx)
	if err != nil {
		return nil, nil, err
	}
	closeClient := func() {
		if err := client.Close(); err != nil {
			logger.Warn("storage close error", zap.Error(err))
		}
	}
	bucket, err := media.NewGCSBucket(client, cfg.Media.Bucket)
	if err != nil {
		closeClient()
		return nil, nil, err
	}
	uploader, err := media.NewUploader(bucket)
	if err != nil {
		closeClient()
		return nil, nil, err
	}
	logger.Info("media uploads offloaded to bucket", zap.String("bucket", cfg.Media.Bucket))
	return uploader, closeClient, nil
}

func newServiceLogger(logger *zap.Logger) services.LogFunc {
	return func(_ context.Context, event string, fields map[string]any) {
		zapFields := make([]zap.Field, 0, len(fields))
		for key, value := range fields {
			zapFields = append(zapFields, zap.Any(key, value))
		}
		logger.Info(event, zapFields...)
	}
}
