package main

import (
	"github.com/letphil/dbz-auto-arena/internal/characters"
	"github.com/letphil/dbz-auto-arena/internal/config"
	"github.com/letphil/dbz-auto-arena/internal/engine"
	"github.com/letphil/dbz-auto-arena/internal/logging"
	"github.com/letphil/dbz-auto-arena/internal/storage"
)

func loadConfigOrExit(path string) *config.LoadedConfig {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		logging.Fatal("Missing or invalid arena configuration", err, logging.Fields{"config_path": path, "hint": "create an arena_config.json with optional keys: server.address, battle{max_damage,round_cap,recent_battles_minutes}, characters{base_url,fetch_attempts,request_timeout_seconds,max_vitality}"})
	}
	return cfg
}

func createRepositoryOrExit(dbPath string) storage.Repository {
	db, err := storage.OpenAndMigrate(dbPath)
	if err != nil {
		logging.Fatal("Failed to initialize database", err, nil)
	}
	return storage.NewSQLiteRepository(db)
}

func newCharacterClient(cfg *config.LoadedConfig) *characters.Client {
	return characters.New(characters.Options{
		BaseURL:     cfg.CharacterAPIBaseURL,
		Attempts:    cfg.FetchAttempts,
		Timeout:     cfg.RequestTimeout,
		MaxVitality: cfg.MaxVitality,
	})
}

func battleOptions(cfg *config.LoadedConfig) engine.Options {
	return engine.Options{MaxDamage: cfg.MaxDamage, RoundCap: cfg.RoundCap}
}
