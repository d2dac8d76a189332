package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/tendant/chi-demo/app"
	dbutils "github.com/tendant/db-utils/db"

	"github.com/tendant/simple-acm/pkg/config"
	"github.com/tendant/simple-acm/pkg/domain"
	"github.com/tendant/simple-acm/pkg/dummy"
	"github.com/tendant/simple-acm/pkg/group"
	"github.com/tendant/simple-acm/pkg/organisation"
	"github.com/tendant/simple-acm/pkg/pgstore"
	"github.com/tendant/simple-acm/pkg/role"
	"github.com/tendant/simple-acm/pkg/user"
	"github.com/tendant/simple-acm/pkg/validation"
)

type Config struct {
	AcmDbConfig config.DatabaseConfig
	AppConfig   app.AppConfig
}

// loadEnvFile loads environment variables from .env file if it exists
// Only sets variables that are not already set in the environment
func loadEnvFile() {
	execPath, err := os.Executable()
	if err != nil {
		slog.Error("Failed to get executable path", "error", err)
		return
	}

	envFile := filepath.Join(filepath.Dir(execPath), ".env")
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		cwd, err := os.Getwd()
		if err != nil {
			slog.Error("Failed to get current working directory", "error", err)
			return
		}
		envFile = filepath.Join(cwd, ".env")
	}

	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		return
	}

	slog.Info("Loading configuration from .env file", "path", envFile)
	if err := godotenv.Load(envFile); err != nil {
		slog.Error("Failed to load .env file", "path", envFile, "error", err)
	}
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
	}))
	slog.SetDefault(logger)

	loadEnvFile()

	cfg := Config{}
	cleanenv.ReadEnv(&cfg)

	server := app.DefaultApp()
	app.RegisterHealthzRoutes(server.R)

	dbConfig := cfg.AcmDbConfig.ToDbConfig()
	pool, err := dbutils.NewDbPool(context.Background(), dbConfig)
	if err != nil {
		slog.Error("Failed creating dbpool", "db", dbConfig.Database, "host", dbConfig.Host, "port", dbConfig.Port, "user", dbConfig.User)
		os.Exit(-1)
	}

	store, err := pgstore.NewStore(pool)
	if err != nil {
		slog.Error("Failed creating store", "error", err)
		os.Exit(-1)
	}

	// Seed the cursor sequence above everything already persisted so new
	// stamps stay strictly increasing across restarts.
	maxCursor, err := store.MaxCursor(context.Background())
	if err != nil {
		slog.Error("Failed reading max cursor", "error", err)
		os.Exit(-1)
	}

	stamp := domain.NewStamper(domain.SystemClock{}, domain.NewCounter(maxCursor))
	ids := domain.UUIDGenerator{}
	validate := validation.New()

	userService := user.NewUserService(store, stamp, validate)
	organisationService := organisation.NewOrganisationService(store, stamp, validate)
	groupService := group.NewGroupService(store, stamp, ids, validate)
	roleService := role.NewRoleService(store, stamp, ids, validate)
	dummyService := dummy.NewDummyService(store, stamp, ids, validate)

	user.NewHandler(userService).RegisterRoutes(server.R)
	organisation.NewHandler(organisationService).RegisterRoutes(server.R)
	group.NewHandler(groupService).RegisterRoutes(server.R)
	role.NewHandler(roleService).RegisterRoutes(server.R)
	dummy.NewHandler(dummyService).RegisterRoutes(server.R)

	server.Run()
}
