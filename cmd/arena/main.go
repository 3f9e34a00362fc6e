package main

import (
	"os"

	"github.com/letphil/dbz-auto-arena/internal/api"
	"github.com/letphil/dbz-auto-arena/internal/constants"
	"github.com/letphil/dbz-auto-arena/internal/logging"

	"github.com/gin-gonic/gin"
)

func main() {
	// Configuration file path may be provided via ARENA_CONFIG or defaults
	// to ./arena_config.json in the current working directory.
	configPath := os.Getenv(constants.EnvArenaConfig)
	if configPath == "" {
		configPath = "./arena_config.json"
	}
	cfg := loadConfigOrExit(configPath)

	// Allow the DB path to be configured via ARENA_DB. Default to a `data/`
	// directory inside the module for local development.
	dbPath := os.Getenv(constants.EnvArenaDB)
	if dbPath == "" {
		dbPath = "./data/arena.db"
	}
	repo := createRepositoryOrExit(dbPath)

	fetcher := newCharacterClient(cfg)
	handler := api.NewBattleHandler(repo, fetcher, battleOptions(cfg), cfg.RecentBattlesWindow)

	router := gin.Default()

	apiRoutes := router.Group(constants.RouteAPIPrefix)
	{
		apiRoutes.POST(constants.RouteBattles, handler.CreateBattle)
		apiRoutes.GET(constants.RouteBattles, handler.ListRecentBattles)
		apiRoutes.GET(constants.RouteBattleByID, handler.GetBattle)
		apiRoutes.GET(constants.RouteLeaderboard, handler.ListLeaderboard)
		apiRoutes.GET(constants.RouteRandomCharacter, handler.GetRandomCharacter)
		apiRoutes.GET(constants.RouteCombatantStats, handler.GetCombatantStats)
		apiRoutes.GET(constants.RouteVersion, api.GetVersion)
	}

	addr := cfg.ServerAddress
	logging.Info("Server started", logging.Fields{constants.LogFieldAddr: addr})
	if err := router.Run(addr); err != nil {
		logging.Fatal("Failed to start server", err, nil)
	}
}
