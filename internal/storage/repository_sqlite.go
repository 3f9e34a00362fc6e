package storage

import (
	"time"

	"github.com/letphil/dbz-auto-arena/internal/battle"

	"gorm.io/gorm"
)

type sqliteRepository struct {
	db *gorm.DB
}

func NewSQLiteRepository(db *gorm.DB) Repository {
	return &sqliteRepository{db: db}
}

func (r *sqliteRepository) CreateBattle(b *battle.Battle) error {
	if err := b.EncodeRounds(); err != nil {
		return err
	}
	return r.db.Create(b).Error
}

func (r *sqliteRepository) GetBattleByID(id uint) (*battle.Battle, error) {
	var b battle.Battle
	if err := r.db.First(&b, id).Error; err != nil {
		return nil, err
	}
	// Populate the derived round log on every load; it is stored serialized
	// and not worth a dedicated table.
	if err := b.DecodeRounds(); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *sqliteRepository) GetRecentBattles(window time.Duration) ([]battle.Battle, error) {
	var battles []battle.Battle
	cutoff := time.Now().Add(-window)
	if err := r.db.Where("created_at > ?", cutoff).Order("created_at desc").Find(&battles).Error; err != nil {
		return nil, err
	}
	for i := range battles {
		if err := battles[i].DecodeRounds(); err != nil {
			return nil, err
		}
	}
	return battles, nil
}

func (r *sqliteRepository) UpdateStatsOnBattleEnd(b *battle.Battle) error {
	// Helper to upsert and add deltas
	upsert := func(name string, played, wins, draws int) error {
		var cs battle.CombatantStats
		if err := r.db.Where("name = ?", name).First(&cs).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				cs = battle.CombatantStats{Name: name}
			} else {
				return err
			}
		}
		cs.Battles += played
		cs.Wins += wins
		cs.Draws += draws
		return r.db.Save(&cs).Error
	}

	draw := b.Winner == battle.WinnerDraw
	aWins, bWins := 0, 0
	if !draw {
		if b.Winner == b.CombatantAName {
			aWins = 1
		} else if b.Winner == b.CombatantBName {
			bWins = 1
		}
	}
	drawDelta := 0
	if draw {
		drawDelta = 1
	}
	if err := upsert(b.CombatantAName, 1, aWins, drawDelta); err != nil {
		return err
	}
	// A character can battle itself; fold the deltas into one row then.
	if b.CombatantBName == b.CombatantAName {
		return upsert(b.CombatantBName, 0, bWins, 0)
	}
	return upsert(b.CombatantBName, 1, bWins, drawDelta)
}

func (r *sqliteRepository) GetStatsByName(name string) (*battle.CombatantStats, error) {
	var cs battle.CombatantStats
	if err := r.db.Where("name = ?", name).First(&cs).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return &battle.CombatantStats{Name: name}, nil
		}
		return nil, err
	}
	return &cs, nil
}

// GetTopCombatants returns the top N characters ordered by wins desc, then
// battles desc.
func (r *sqliteRepository) GetTopCombatants(limit int) ([]battle.CombatantStats, error) {
	if limit <= 0 {
		limit = 10
	}
	var stats []battle.CombatantStats
	if err := r.db.Model(&battle.CombatantStats{}).
		Order("wins DESC").
		Order("battles DESC").
		Limit(limit).
		Find(&stats).Error; err != nil {
		return nil, err
	}
	return stats, nil
}
