//go:build integration

package extconfig_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/otcheredev/pcd-manager/internal/codec"
	"github.com/otcheredev/pcd-manager/internal/database"
	"github.com/otcheredev/pcd-manager/internal/extconfig"
)

// startPostgres brings up a disposable postgres container, the same way
// production deploys point GormRegistry at a real server: Migrate runs
// the golang-migrate schema first, then NewPostgresRegistry opens its
// own gorm pool against the migrated database.
func startPostgres(t *testing.T) database.Config {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("pcd_manager_it"),
		postgres.WithUsername("pcd_manager_it"),
		postgres.WithPassword("pcd_manager_it"),
		testcontainers.WithWaitStrategyAndDeadline(5*time.Minute,
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	mapped, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("container mapped port: %v", err)
	}

	return database.Config{
		Host:     host,
		Port:     mapped.Int(),
		User:     "pcd_manager_it",
		Password: "pcd_manager_it",
		DBName:   "pcd_manager_it",
		SSLMode:  "disable",
		LogLevel: "silent",
	}
}

// TestGormRegistryRoundTripAgainstRealPostgres exercises the extended
// config cache's Register/Lookup path against an actual Postgres
// instance instead of the sqlite stand-in used elsewhere, so the
// migrations under internal/database/migrations get run for real at
// least once.
func TestGormRegistryRoundTripAgainstRealPostgres(t *testing.T) {
	if os.Getenv("PCD_MANAGER_SKIP_DOCKER_TESTS") != "" {
		t.Skip("PCD_MANAGER_SKIP_DOCKER_TESTS set, skipping testcontainers-backed test")
	}

	cfg := startPostgres(t)
	if err := database.Migrate(cfg); err != nil {
		t.Fatalf("database.Migrate: %v", err)
	}

	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)
	registry, err := extconfig.NewPostgresRegistry(dsn)
	if err != nil {
		t.Fatalf("extconfig.NewPostgresRegistry: %v", err)
	}

	ctx := context.Background()
	systemID := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	const configReportID = 0x9001
	want := []codec.ConfigObject{
		{ObjClass: codec.ObjClassNumeric, ObjHandle: 1},
		{ObjClass: codec.ObjClassNumeric, ObjHandle: 2},
	}

	if _, found, err := registry.Lookup(ctx, systemID, configReportID); err != nil {
		t.Fatalf("Lookup before Register: %v", err)
	} else if found {
		t.Fatalf("Lookup before Register: found = true, want false")
	}

	if err := registry.Register(ctx, systemID, configReportID, want); err != nil {
		t.Fatalf("Register: %v", err)
	}

	got, found, err := registry.Lookup(ctx, systemID, configReportID)
	if err != nil {
		t.Fatalf("Lookup after Register: %v", err)
	}
	if !found {
		t.Fatalf("Lookup after Register: found = false, want true")
	}
	if len(got) != len(want) {
		t.Fatalf("Lookup returned %d objects, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ObjClass != want[i].ObjClass || got[i].ObjHandle != want[i].ObjHandle {
			t.Fatalf("object %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
