package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/letphil/dbz-auto-arena/internal/constants"
)

type rawConfig struct {
	Server *struct {
		Address string `json:"address"`
	} `json:"server"`
	Battle *struct {
		MaxDamage            int `json:"max_damage"`
		RoundCap             int `json:"round_cap"`
		RecentBattlesMinutes int `json:"recent_battles_minutes"`
	} `json:"battle"`
	Characters *struct {
		BaseURL               string `json:"base_url"`
		FetchAttempts         int    `json:"fetch_attempts"`
		RequestTimeoutSeconds int    `json:"request_timeout_seconds"`
		MaxVitality           int    `json:"max_vitality"`
	} `json:"characters"`
}

// LoadedConfig contains the validated runtime configuration.
type LoadedConfig struct {
	ServerAddress string

	// Battle bounds passed to the resolver.
	MaxDamage int
	RoundCap  int
	// Window for the recent-battles listing.
	RecentBattlesWindow time.Duration

	// Character API client settings.
	CharacterAPIBaseURL string
	FetchAttempts       int
	RequestTimeout      time.Duration
	// Fetched ki values are clamped to MaxVitality so battles stay inside
	// the round cap at the configured damage bound.
	MaxVitality int
}

// LoadConfig reads the configuration file at path, applies defaults for
// omitted keys and validates the rest. All keys are optional; an empty file
// ("{}") yields the default configuration.
func LoadConfig(path string) (*LoadedConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var rc rawConfig
	if err := json.Unmarshal(b, &rc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg := &LoadedConfig{
		ServerAddress:       ":8080",
		MaxDamage:           5000,
		RoundCap:            10000,
		RecentBattlesWindow: 60 * time.Minute,
		CharacterAPIBaseURL: constants.CharacterAPIBaseURL,
		FetchAttempts:       5,
		RequestTimeout:      10 * time.Second,
		MaxVitality:         10000,
	}

	if rc.Server != nil && rc.Server.Address != "" {
		cfg.ServerAddress = rc.Server.Address
	}
	if rc.Battle != nil {
		if rc.Battle.MaxDamage != 0 {
			if rc.Battle.MaxDamage < 0 {
				return nil, fmt.Errorf("config file %s: battle.max_damage must be positive", path)
			}
			cfg.MaxDamage = rc.Battle.MaxDamage
		}
		if rc.Battle.RoundCap != 0 {
			if rc.Battle.RoundCap < 0 {
				return nil, fmt.Errorf("config file %s: battle.round_cap must be positive", path)
			}
			cfg.RoundCap = rc.Battle.RoundCap
		}
		if rc.Battle.RecentBattlesMinutes != 0 {
			if rc.Battle.RecentBattlesMinutes < 0 {
				return nil, fmt.Errorf("config file %s: battle.recent_battles_minutes must be positive", path)
			}
			cfg.RecentBattlesWindow = time.Duration(rc.Battle.RecentBattlesMinutes) * time.Minute
		}
	}
	if rc.Characters != nil {
		if rc.Characters.BaseURL != "" {
			cfg.CharacterAPIBaseURL = strings.TrimRight(rc.Characters.BaseURL, "/")
		}
		if rc.Characters.FetchAttempts != 0 {
			if rc.Characters.FetchAttempts < 0 {
				return nil, fmt.Errorf("config file %s: characters.fetch_attempts must be positive", path)
			}
			cfg.FetchAttempts = rc.Characters.FetchAttempts
		}
		if rc.Characters.RequestTimeoutSeconds != 0 {
			if rc.Characters.RequestTimeoutSeconds < 0 {
				return nil, fmt.Errorf("config file %s: characters.request_timeout_seconds must be positive", path)
			}
			cfg.RequestTimeout = time.Duration(rc.Characters.RequestTimeoutSeconds) * time.Second
		}
		if rc.Characters.MaxVitality != 0 {
			if rc.Characters.MaxVitality < 0 {
				return nil, fmt.Errorf("config file %s: characters.max_vitality must be positive", path)
			}
			cfg.MaxVitality = rc.Characters.MaxVitality
		}
	}

	return cfg, nil
}
