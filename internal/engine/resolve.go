package engine

import (
	"errors"
	"fmt"

	"github.com/letphil/dbz-auto-arena/internal/battle"
)

var (
	// ErrInvalidInput is returned before any round runs when a combatant or
	// option fails validation.
	ErrInvalidInput = errors.New("invalid battle input")
	// ErrSimulationDiverged is returned when the round cap is reached without
	// either combatant crossing zero (degenerate random source).
	ErrSimulationDiverged = errors.New("battle simulation diverged")
)

const (
	// DefaultMaxDamage is the exclusive upper bound on a single damage roll.
	DefaultMaxDamage = 5000
	// DefaultRoundCap bounds the loop against a zero-producing source.
	DefaultRoundCap = 10000
)

// Options configures a single resolution. Zero values fall back to the
// defaults; explicit non-positive values are rejected.
type Options struct {
	MaxDamage int
	RoundCap  int
}

func (o Options) withDefaults() Options {
	if o.MaxDamage == 0 {
		o.MaxDamage = DefaultMaxDamage
	}
	if o.RoundCap == 0 {
		o.RoundCap = DefaultRoundCap
	}
	return o
}

func validate(a, b battle.Combatant, src RandomSource, opts Options) error {
	if src == nil {
		return fmt.Errorf("%w: random source is required", ErrInvalidInput)
	}
	if a.Name == "" || b.Name == "" {
		return fmt.Errorf("%w: combatant name must not be empty", ErrInvalidInput)
	}
	if a.Vitality < 0 {
		return fmt.Errorf("%w: %s has negative vitality %d", ErrInvalidInput, a.Name, a.Vitality)
	}
	if b.Vitality < 0 {
		return fmt.Errorf("%w: %s has negative vitality %d", ErrInvalidInput, b.Name, b.Vitality)
	}
	if opts.MaxDamage <= 0 {
		return fmt.Errorf("%w: max damage must be positive, got %d", ErrInvalidInput, opts.MaxDamage)
	}
	if opts.RoundCap <= 0 {
		return fmt.Errorf("%w: round cap must be positive, got %d", ErrInvalidInput, opts.RoundCap)
	}
	return nil
}

// Resolve runs the auto-battle loop: both combatants deal an independent
// random damage roll in [0, MaxDamage) each round, applied simultaneously
// against the pre-round vitality values, until at most one combatant remains
// strictly positive. The returned result carries the winner (or the draw
// marker), final vitalities and the full round log.
//
// A combatant starting at zero vitality loses immediately without any round;
// both starting at zero is a draw. The loop is bounded by RoundCap to fail
// safe on a source that never produces damage.
func Resolve(a, b battle.Combatant, src RandomSource, opts Options) (*battle.Result, error) {
	opts = opts.withDefaults()
	if err := validate(a, b, src, opts); err != nil {
		return nil, err
	}

	res := &battle.Result{
		FinalVitalityA: a.Vitality,
		FinalVitalityB: b.Vitality,
		Rounds:         []battle.RoundRecord{},
	}

	// Degenerate starts resolve without consuming the source.
	switch {
	case a.Vitality == 0 && b.Vitality == 0:
		res.Winner = battle.WinnerDraw
		return res, nil
	case a.Vitality == 0:
		res.Winner = b.Name
		return res, nil
	case b.Vitality == 0:
		res.Winner = a.Name
		return res, nil
	}

	va, vb := a.Vitality, b.Vitality
	for round := 1; va > 0 && vb > 0; round++ {
		if round > opts.RoundCap {
			return nil, fmt.Errorf("%w: no decision after %d rounds", ErrSimulationDiverged, opts.RoundCap)
		}
		damageA := src.IntN(opts.MaxDamage)
		damageB := src.IntN(opts.MaxDamage)
		// Simultaneous application: both rolls hit the pre-round values.
		va, vb = va-damageB, vb-damageA
		res.Rounds = append(res.Rounds, battle.RoundRecord{
			Round:     round,
			DamageA:   damageA,
			DamageB:   damageB,
			VitalityA: va,
			VitalityB: vb,
		})
	}

	res.FinalVitalityA = va
	res.FinalVitalityB = vb
	switch {
	case va > 0 && vb <= 0:
		res.Winner = a.Name
	case vb > 0 && va <= 0:
		res.Winner = b.Name
	default:
		// both crossed zero on the same round
		res.Winner = battle.WinnerDraw
	}
	return res, nil
}
