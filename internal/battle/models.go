package battle

import (
	"encoding/json"

	"gorm.io/gorm"
)

// Combatant is one participant in a battle. SourceID is the upstream
// character API id when the combatant was fetched (0 for manual combatants).
type Combatant struct {
	SourceID int    `json:"source_id,omitempty"`
	Name     string `json:"name"`
	Vitality int    `json:"vitality"`
}

// RoundRecord captures one simultaneous exchange. Vitality values are the
// post-round values after both damage amounts were applied.
type RoundRecord struct {
	Round     int `json:"round"`
	DamageA   int `json:"damage_a"`
	DamageB   int `json:"damage_b"`
	VitalityA int `json:"vitality_a"`
	VitalityB int `json:"vitality_b"`
}

// WinnerDraw is the designated winner marker when both combatants cross
// zero on the same round (or both start at zero).
const WinnerDraw = "draw"

// Result is the terminal output of a resolved battle. Ownership of the
// round log transfers to the caller; the resolver keeps no state.
type Result struct {
	Winner         string        `json:"winner"`
	FinalVitalityA int           `json:"final_vitality_a"`
	FinalVitalityB int           `json:"final_vitality_b"`
	Rounds         []RoundRecord `json:"rounds"`
}

// Battle is the persisted record of a resolved battle. The round log is
// stored serialized in RoundLog; the derived Rounds field (gorm:"-") is
// populated on load so API responses include the full log without a
// redundant table.
type Battle struct {
	gorm.Model
	CombatantAID    int    `json:"combatant_a_id"`
	CombatantAName  string `json:"combatant_a_name" gorm:"size:64;index"`
	CombatantAStart int    `json:"combatant_a_start"`
	CombatantAFinal int    `json:"combatant_a_final"`
	CombatantBID    int    `json:"combatant_b_id"`
	CombatantBName  string `json:"combatant_b_name" gorm:"size:64;index"`
	CombatantBStart int    `json:"combatant_b_start"`
	CombatantBFinal int    `json:"combatant_b_final"`
	Winner          string `json:"winner" gorm:"size:64"`
	RoundsPlayed    int    `json:"rounds_played"`
	// Seed is recorded when the caller requested a deterministic battle so
	// the exact round sequence can be replayed later.
	Seed     *int64        `json:"seed,omitempty"`
	RoundLog string        `json:"-" gorm:"type:text"`
	Rounds   []RoundRecord `json:"rounds" gorm:"-"`
}

func (Battle) TableName() string { return "battle_records" }

// EncodeRounds serializes the derived round log into the persisted column.
func (b *Battle) EncodeRounds() error {
	if b.Rounds == nil {
		b.RoundLog = "[]"
		return nil
	}
	raw, err := json.Marshal(b.Rounds)
	if err != nil {
		return err
	}
	b.RoundLog = string(raw)
	return nil
}

// DecodeRounds populates the derived round log from the persisted column.
func (b *Battle) DecodeRounds() error {
	if b.RoundLog == "" {
		b.Rounds = []RoundRecord{}
		return nil
	}
	return json.Unmarshal([]byte(b.RoundLog), &b.Rounds)
}

// CombatantStats stores aggregate outcomes per character name and backs the
// leaderboard. Draws count for both participants.
type CombatantStats struct {
	gorm.Model
	Name    string `json:"name" gorm:"uniqueIndex;size:64"`
	Battles int    `json:"battles"`
	Wins    int    `json:"wins"`
	Draws   int    `json:"draws"`
}

func (CombatantStats) TableName() string { return "combatant_stats" }
