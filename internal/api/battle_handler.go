package api

import (
	"time"

	"github.com/letphil/dbz-auto-arena/internal/engine"
	"github.com/letphil/dbz-auto-arena/internal/service"
	"github.com/letphil/dbz-auto-arena/internal/storage"
)

// BattleHandler groups all battle-related HTTP handlers.
type BattleHandler struct {
	repo         storage.Repository
	fetcher      service.CombatantFetcher
	opts         engine.Options
	recentWindow time.Duration
}

// NewBattleHandler creates a new BattleHandler with the given repository,
// character fetcher, resolver bounds and recent-battles window.
func NewBattleHandler(repo storage.Repository, fetcher service.CombatantFetcher, opts engine.Options, recentWindow time.Duration) *BattleHandler {
	return &BattleHandler{repo: repo, fetcher: fetcher, opts: opts, recentWindow: recentWindow}
}
