package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/otcheredev/pcd-manager/internal/archive"
	"github.com/otcheredev/pcd-manager/internal/cache"
	"github.com/otcheredev/pcd-manager/internal/config"
	"github.com/otcheredev/pcd-manager/internal/database"
	"github.com/otcheredev/pcd-manager/internal/extconfig"
	"github.com/otcheredev/pcd-manager/internal/fsm"
	"github.com/otcheredev/pcd-manager/internal/httpapi"
	"github.com/otcheredev/pcd-manager/internal/manager"
	"github.com/otcheredev/pcd-manager/internal/models"
	"github.com/otcheredev/pcd-manager/internal/repository"
	"github.com/otcheredev/pcd-manager/internal/stdconfig"
	"github.com/otcheredev/pcd-manager/internal/telemetry"
	"github.com/otcheredev/pcd-manager/internal/transport"
	"github.com/otcheredev/pcd-manager/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", os.Getenv("PCD_CONFIG_FILE"), "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger.Init(cfg.Log.Level, cfg.Log.Format)
	log.Info().Msg("starting PCD Manager")

	localSystemID, err := hex.DecodeString(cfg.Transport.LocalSystemID)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid transport.local_system_id")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var shutdownTracing func(context.Context) error
	if cfg.Telemetry.TracingEnabled {
		shutdownTracing, err = telemetry.InitTracing(ctx, telemetry.TracingConfig{
			Endpoint:    cfg.Telemetry.OTLPEndpoint,
			ServiceName: cfg.Telemetry.ServiceName,
			Insecure:    cfg.Telemetry.OTLPInsecure,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize tracing")
		}
	}
	if cfg.Telemetry.ProfilingEnabled {
		profiler, err := telemetry.StartProfiling(telemetry.ProfilingConfig{
			ServerAddress:   cfg.Telemetry.PyroscopeAddr,
			ApplicationName: cfg.Telemetry.ServiceName,
		})
		if err != nil {
			log.Warn().Err(err).Msg("failed to start continuous profiling")
		} else {
			defer func() { _ = profiler.Stop() }()
		}
	}

	var db *gorm.DB
	var events *repository.AssociationEventRepository
	if cfg.Database.Host != "" {
		dbCfg := database.Config{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
			LogLevel: cfg.Database.LogLevel,
		}
		if err := database.Migrate(dbCfg); err != nil {
			log.Fatal().Err(err).Msg("failed to apply database migrations")
		}
		db, err = database.Connect(dbCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		events = repository.NewAssociationEventRepository(db)
	} else {
		log.Warn().Msg("no database configured, association history will not be recorded")
	}

	var cacheImpl cache.Cache
	switch {
	case cfg.Cache.Enabled && cfg.Cache.Type == "redis":
		cacheImpl, err = cache.NewRedisCache(fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
	default:
		cacheImpl = cache.NewMemoryCache()
	}

	extRegistry, err := buildExtConfigRegistry(cfg, db, cacheImpl)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize extended-config registry")
	}

	catalogue, err := stdconfig.New()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load standard configuration catalogue")
	}

	var archiveStore *archive.Store
	if cfg.Archive.Enabled {
		archiveStore, err = archive.NewStore(ctx, archive.Config{
			Bucket:          cfg.Archive.Bucket,
			Prefix:          cfg.Archive.Prefix,
			Region:          cfg.Archive.Region,
			Endpoint:        cfg.Archive.Endpoint,
			AccessKeyID:     cfg.Archive.AccessKeyID,
			SecretAccessKey: cfg.Archive.SecretAccessKey,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize segment archive")
		}
	}

	registry := manager.NewRegistry(cfg.Transport.IdleTimeout)

	callbacks := fsm.Callbacks{
		OnDeviceAvailable: func(dl fsm.DataList) {
			log.Info().Int("objects", len(dl.Objects)).Msg("manager: device available")
		},
		OnMeasurementDataUpdated: func(dl fsm.DataList) {
			log.Debug().Int("objects", len(dl.Objects)).Msg("manager: measurement data updated")
		},
		OnDisassociated: func(reason fsm.DisassociateReason) {
			log.Info().Str("reason", fmt.Sprint(reason)).Msg("manager: disassociated")
		},
	}

	listener, err := transport.Listen(cfg.Transport.ListenAddr)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to bind PHD transport listener")
	}
	log.Info().Str("addr", cfg.Transport.ListenAddr).Msg("PHD transport listening")

	go acceptLoop(listener, registry, localSystemID, catalogue, extRegistry, callbacks, events)

	healthHandler := httpapi.NewHealthHandler(db)
	adminHandler := httpapi.NewAdminHandler(registry, events, extRegistry, archiveStore)
	router := httpapi.NewRouter(httpapi.Dependencies{
		Health:         healthHandler,
		Admin:          adminHandler,
		JWTSecret:      []byte(cfg.Auth.JWTSecret),
		CORSOrigins:    cfg.CORS.AllowedOrigins,
		MetricsEnabled: cfg.Metrics.Enabled,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("admin API listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("admin API server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("admin API shutdown error")
	}
	if err := listener.Close(); err != nil {
		log.Error().Err(err).Msg("transport listener close error")
	}
	if err := registry.Close(); err != nil {
		log.Error().Err(err).Msg("connection registry close error")
	}
	if shutdownTracing != nil {
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("tracing shutdown error")
		}
	}
	log.Info().Msg("shutdown complete")
}

func buildExtConfigRegistry(cfg *config.Config, db *gorm.DB, c cache.Cache) (extconfig.Registry, error) {
	var backend extconfig.Registry
	var err error

	switch cfg.ExtConfig.Backend {
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.DBName, cfg.Database.SSLMode)
		backend, err = extconfig.NewPostgresRegistry(dsn)
	case "sqlite":
		backend, err = extconfig.NewSQLiteRegistry(cfg.ExtConfig.SQLitePath)
	default:
		backend, err = extconfig.NewBadgerRegistry(cfg.ExtConfig.BadgerDir)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Cache.Enabled {
		return extconfig.NewCachedRegistry(backend, c, cfg.Cache.TTL), nil
	}
	return backend, nil
}

// acceptLoop accepts inbound Agent connections and registers each one
// as a manager.Connection running its own Serve loop.
func acceptLoop(
	l *transport.Listener,
	registry *manager.Registry,
	localSystemID []byte,
	catalogue *stdconfig.Catalogue,
	extRegistry extconfig.Registry,
	callbacks fsm.Callbacks,
	events *repository.AssociationEventRepository,
) {
	for {
		conn, err := l.Accept()
		if err != nil {
			log.Info().Err(err).Msg("manager: accept loop ending")
			return
		}

		id := uuid.NewString()
		connLog := log.With().Str("connection_id", id).Str("remote_addr", conn.RemoteAddr()).Logger()

		connCallbacks := callbacks
		if events != nil {
			connCallbacks.OnDisassociated = func(reason fsm.DisassociateReason) {
				callbacks.OnDisassociated(reason)
				recordDisassociation(events, id, reason)
			}
		}

		c := manager.NewConnection(id, conn, localSystemID, catalogue, extRegistry, connCallbacks, connLog)
		registry.Add(c)
		connLog.Info().Msg("manager: accepted connection")

		go func() {
			c.Serve()
			registry.Remove(id)
		}()
	}
}

func recordDisassociation(events *repository.AssociationEventRepository, connectionIDStr string, reason fsm.DisassociateReason) {
	connectionID, err := uuid.Parse(connectionIDStr)
	if err != nil {
		return
	}
	ev := &models.AssociationEvent{
		ConnectionID: connectionID,
		ToState:      "unassociated",
		Detail:       fmt.Sprint(reason),
		CreatedAt:    time.Now().UTC(),
	}
	if err := events.Create(context.Background(), ev); err != nil {
		log.Warn().Err(err).Msg("failed to record association event")
	}
}
