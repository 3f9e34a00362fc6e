package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/letphil/dbz-auto-arena/internal/battle"
	"github.com/letphil/dbz-auto-arena/internal/constants"
	"github.com/letphil/dbz-auto-arena/internal/engine"
	"github.com/letphil/dbz-auto-arena/internal/logging"

	"golang.org/x/sync/errgroup"
)

// BattleRepo is the minimal repository interface required by RunBattle.
type BattleRepo interface {
	CreateBattle(b *battle.Battle) error
	UpdateStatsOnBattleEnd(b *battle.Battle) error
}

// CombatantFetcher obtains combatants from the character API.
type CombatantFetcher interface {
	FetchRandomCombatant(ctx context.Context) (battle.Combatant, error)
}

var (
	ErrFetchFailed   = errors.New("failed to fetch combatants")
	ErrPersistFailed = errors.New("failed to persist battle")
)

// duplicateRerolls bounds re-fetching when both random combatants resolve to
// the same character id.
const duplicateRerolls = 3

// RunBattleRequest describes one battle to run. Nil combatants are fetched
// randomly; a non-nil Seed makes the battle replayable.
type RunBattleRequest struct {
	CombatantA *battle.Combatant
	CombatantB *battle.Combatant
	Seed       *int64
	Options    engine.Options
}

// RunBattle materializes both combatants, resolves the battle and persists
// the record plus per-character stats. Fetching happens concurrently when
// both combatants are random; resolution itself is synchronous.
func RunBattle(ctx context.Context, repo BattleRepo, fetcher CombatantFetcher, req RunBattleRequest) (*battle.Battle, error) {
	a, b, err := materializeCombatants(ctx, fetcher, req)
	if err != nil {
		return nil, err
	}

	var src engine.RandomSource
	if req.Seed != nil {
		src = engine.NewSeededSource(*req.Seed)
	} else {
		src = engine.NewSource()
	}

	res, err := engine.Resolve(a, b, src, req.Options)
	if err != nil {
		return nil, err
	}

	rec := &battle.Battle{
		CombatantAID:    a.SourceID,
		CombatantAName:  a.Name,
		CombatantAStart: a.Vitality,
		CombatantAFinal: res.FinalVitalityA,
		CombatantBID:    b.SourceID,
		CombatantBName:  b.Name,
		CombatantBStart: b.Vitality,
		CombatantBFinal: res.FinalVitalityB,
		Winner:          res.Winner,
		RoundsPlayed:    len(res.Rounds),
		Seed:            req.Seed,
		Rounds:          res.Rounds,
	}
	if err := repo.CreateBattle(rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}
	if err := repo.UpdateStatsOnBattleEnd(rec); err != nil {
		// The battle itself is already stored; log and keep going.
		logging.Error("failed to update combatant stats", err, logging.Fields{constants.LogFieldBattleID: rec.ID})
	}
	fields := logging.Fields{
		constants.LogFieldBattleID: rec.ID,
		constants.LogFieldWinner:   rec.Winner,
		constants.LogFieldRounds:   rec.RoundsPlayed,
	}
	if rec.Seed != nil {
		fields[constants.LogFieldSeed] = *rec.Seed
	}
	logging.Info("battle resolved", fields)
	return rec, nil
}

// materializeCombatants fills in missing combatants from the character API.
// When both are fetched, a duplicate character id triggers a bounded re-roll
// of the second combatant so the demo pits two distinct fighters.
func materializeCombatants(ctx context.Context, fetcher CombatantFetcher, req RunBattleRequest) (battle.Combatant, battle.Combatant, error) {
	var a, b battle.Combatant
	fetchA := req.CombatantA == nil
	fetchB := req.CombatantB == nil
	if !fetchA {
		a = *req.CombatantA
	}
	if !fetchB {
		b = *req.CombatantB
	}
	if (fetchA || fetchB) && fetcher == nil {
		return a, b, fmt.Errorf("%w: no fetcher configured", ErrFetchFailed)
	}

	g, gctx := errgroup.WithContext(ctx)
	if fetchA {
		g.Go(func() error {
			cb, err := fetcher.FetchRandomCombatant(gctx)
			if err != nil {
				return err
			}
			a = cb
			return nil
		})
	}
	if fetchB {
		g.Go(func() error {
			cb, err := fetcher.FetchRandomCombatant(gctx)
			if err != nil {
				return err
			}
			b = cb
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return a, b, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	if fetchA && fetchB {
		for i := 0; i < duplicateRerolls && a.SourceID != 0 && a.SourceID == b.SourceID; i++ {
			cb, err := fetcher.FetchRandomCombatant(ctx)
			if err != nil {
				return a, b, fmt.Errorf("%w: %v", ErrFetchFailed, err)
			}
			b = cb
		}
	}
	return a, b, nil
}
