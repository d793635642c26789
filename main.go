package main

import (
	"context"
	"errors"
	"time"

	"github.com/dailypost/dailypost/auth"
	"github.com/dailypost/dailypost/config"
	"github.com/dailypost/dailypost/routes"
	"github.com/dailypost/dailypost/storage"
	"github.com/dailypost/dailypost/store"
	"github.com/dailypost/dailypost/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer func() { _ = utils.Logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	kv, err := openStorage(cfg)
	if err != nil {
		utils.Sugar.Fatalf("failed to open %s storage: %v", cfg.StorageBackend, err)
	}

	posts := store.NewLocal(kv, store.WithLogger(utils.Logger.Named("store")))
	loaded, err := posts.Load(ctx)
	var le *store.LoadError
	switch {
	case errors.As(err, &le):
		utils.Sugar.Errorf("stored posts are unreadable, serving an empty collection: %v", err)
	case err != nil:
		utils.Sugar.Fatalf("failed to load posts: %v", err)
	}
	utils.Sugar.Infof("loaded %d posts from %s storage", len(loaded), cfg.StorageBackend)

	// Other instances writing through Redis trigger a reload here
	if n, ok := kv.(storage.Notifier); ok && cfg.StorageBackend == "redis" {
		if err := posts.WatchNotifier(ctx, n); err != nil {
			utils.Sugar.Warnf("change notifications unavailable: %v", err)
		}
	}

	utils.StartUploadCleaner(ctx, cfg.UploadDir, posts, time.Hour, 24*time.Hour)

	r := routes.SetupRouter(routes.Dependencies{
		Posts: posts,
		Auth:  authenticator(cfg),
	})

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	err = utils.GraceServer(":"+cfg.AppPort, r, cancel, func() {
		if rc := utils.GetRedis(); rc != nil {
			_ = rc.Close()
		}
	})
	if err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}

func openStorage(cfg config.AppConfig) (storage.KV, error) {
	switch cfg.StorageBackend {
	case "memory":
		return storage.NewMemory(cfg.StorageQuotaBytes), nil
	case "redis":
		return storage.NewRedis(utils.GetRedis(), cfg.StorageQuotaBytes), nil
	case "sql", "mysql":
		return storage.NewSQL(config.InitDatabase(storage.Migrate), cfg.StorageQuotaBytes), nil
	default:
		f, err := storage.NewFile(cfg.StoragePath, cfg.StorageQuotaBytes)
		if err != nil {
			return nil, err
		}
		return f, nil
	}
}

func authenticator(cfg config.AppConfig) auth.Authenticator {
	if cfg.AdminPasswordHash != "" {
		return auth.NewBcryptCredential(cfg.AdminUsername, cfg.AdminPasswordHash)
	}
	if cfg.AdminPassword == "" {
		utils.Sugar.Warn("no admin password configured, accepting the demo credentials")
	}
	return auth.NewFixedCredential(cfg.AdminUsername, cfg.AdminPassword)
}
