package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"github.com/smartlaw/crm-backend/internal/dataservice"
	"github.com/smartlaw/crm-backend/internal/server"
	"github.com/smartlaw/crm-backend/internal/state"
	"github.com/smartlaw/crm-backend/pkg/config"
	"github.com/smartlaw/crm-backend/pkg/database"
	"github.com/smartlaw/crm-backend/pkg/logger"
	"github.com/smartlaw/crm-backend/pkg/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		ServiceName: "smartlaw-crm",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Console:     cfg.App.IsDev(),
	})

	db, err := database.Init(cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("opening database")
	}

	st := store.New(db, log)
	if err := st.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	// First run seeds the starter dataset; afterwards the stored aggregate
	// wins unless it is corrupt.
	ctx := context.Background()
	mgr := state.Load(ctx, st, cfg.App.StorageKey, dataservice.InitialData())

	app := server.New(mgr)

	log.Info().Str("port", cfg.App.Port).Msg("server running")
	if err := app.Listen(":" + cfg.App.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
