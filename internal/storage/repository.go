package storage

import (
	"time"

	"github.com/letphil/dbz-auto-arena/internal/battle"
)

type Repository interface {
	CreateBattle(b *battle.Battle) error
	GetBattleByID(id uint) (*battle.Battle, error)
	// GetRecentBattles returns battles created within the given window,
	// newest first.
	GetRecentBattles(window time.Duration) ([]battle.Battle, error)
	// UpdateStatsOnBattleEnd upserts per-character aggregates for one
	// resolved battle. Draws count for both combatants.
	UpdateStatsOnBattleEnd(b *battle.Battle) error
	GetStatsByName(name string) (*battle.CombatantStats, error)
	// Leaderboard
	GetTopCombatants(limit int) ([]battle.CombatantStats, error)
}
