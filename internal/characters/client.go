package characters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/letphil/dbz-auto-arena/internal/battle"
	"github.com/letphil/dbz-auto-arena/internal/constants"
	"github.com/letphil/dbz-auto-arena/internal/dedupe"
	"github.com/letphil/dbz-auto-arena/internal/engine"
	"github.com/letphil/dbz-auto-arena/internal/logging"
)

var (
	// ErrCharacterNotFound is returned for ids the API does not know.
	ErrCharacterNotFound = errors.New("character not found")
	// ErrUnparsableKi is returned when a character's ki value is textual
	// (e.g. "969 Googolplex") and cannot be used as vitality.
	ErrUnparsableKi = errors.New("unparsable ki value")
	// ErrNoAttemptsLeft wraps the last failure once the retry budget for a
	// random fetch is exhausted.
	ErrNoAttemptsLeft = errors.New("no fetch attempts left")
)

// Options configures the character API client.
type Options struct {
	BaseURL string
	// Attempts bounds the retry loop of FetchRandomCombatant.
	Attempts int
	Timeout  time.Duration
	// MaxVitality clamps parsed ki values.
	MaxVitality int
	// Random picks ids for random fetches; injected for deterministic tests.
	Random engine.RandomSource
}

// Client fetches combatants from the public Dragon Ball character API.
type Client struct {
	baseURL     string
	attempts    int
	maxVitality int
	random      engine.RandomSource
	httpClient  *http.Client

	mu         sync.Mutex
	rosterSize int
}

// New builds a Client; zero option fields fall back to sensible defaults.
func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = constants.CharacterAPIBaseURL
	}
	if opts.Attempts <= 0 {
		opts.Attempts = 5
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxVitality <= 0 {
		opts.MaxVitality = 10000
	}
	if opts.Random == nil {
		opts.Random = engine.NewSource()
	}
	return &Client{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		attempts:    opts.Attempts,
		maxVitality: opts.MaxVitality,
		random:      opts.Random,
		httpClient:  &http.Client{Timeout: opts.Timeout},
	}
}

type apiCharacter struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Ki   string `json:"ki"`
}

type apiList struct {
	Meta struct {
		TotalItems int `json:"totalItems"`
	} `json:"meta"`
}

// FetchCharacterByID fetches a single character and maps it to a Combatant.
// The character's ki string becomes its vitality, clamped to MaxVitality.
func (c *Client) FetchCharacterByID(ctx context.Context, id int) (battle.Combatant, error) {
	url := c.baseURL + fmt.Sprintf(constants.CharacterAPIDetailPath, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return battle.Combatant{}, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return battle.Combatant{}, fmt.Errorf("character request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusBadRequest {
		return battle.Combatant{}, fmt.Errorf("%w: id %d", ErrCharacterNotFound, id)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return battle.Combatant{}, fmt.Errorf("character fetch failed: %d %s", resp.StatusCode, string(body))
	}

	var ch apiCharacter
	if err := json.NewDecoder(resp.Body).Decode(&ch); err != nil {
		return battle.Combatant{}, fmt.Errorf("failed to decode character response: %w", err)
	}
	if ch.Name == "" {
		return battle.Combatant{}, fmt.Errorf("%w: id %d has no name", ErrCharacterNotFound, id)
	}
	vitality, err := ParseKi(ch.Ki)
	if err != nil {
		return battle.Combatant{}, fmt.Errorf("%w: %s (%q)", ErrUnparsableKi, ch.Name, ch.Ki)
	}
	if vitality > c.maxVitality {
		vitality = c.maxVitality
	}
	return battle.Combatant{SourceID: ch.ID, Name: ch.Name, Vitality: vitality}, nil
}

// FetchRandomCombatant picks a random id in [1, rosterSize] and fetches it.
// Unknown ids and unparsable ki values are retried with a fresh id up to the
// configured attempt budget; the loop is explicit, never recursive.
func (c *Client) FetchRandomCombatant(ctx context.Context) (battle.Combatant, error) {
	size, err := c.RosterSize(ctx)
	if err != nil {
		return battle.Combatant{}, err
	}
	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		id := 1 + c.random.IntN(size)
		cb, err := c.FetchCharacterByID(ctx, id)
		if err == nil {
			return cb, nil
		}
		if !errors.Is(err, ErrCharacterNotFound) && !errors.Is(err, ErrUnparsableKi) {
			return battle.Combatant{}, err
		}
		logging.Debug("random character fetch retry", logging.Fields{
			constants.LogFieldCharacterID: id,
			constants.LogFieldAttempt:     attempt,
			"reason":                      err.Error(),
		})
		lastErr = err
	}
	return battle.Combatant{}, fmt.Errorf("%w: %v", ErrNoAttemptsLeft, lastErr)
}

// RosterSize returns the number of characters the API exposes. The first
// successful lookup is cached; concurrent lookups share one request through
// the dedupe singleflight group.
func (c *Client) RosterSize(ctx context.Context) (int, error) {
	c.mu.Lock()
	if c.rosterSize > 0 {
		size := c.rosterSize
		c.mu.Unlock()
		return size, nil
	}
	c.mu.Unlock()

	v, err, _ := dedupe.RosterGroup.Do(c.baseURL, func() (interface{}, error) {
		return c.fetchRosterSize(ctx)
	})
	if err != nil {
		return 0, err
	}
	size := v.(int)
	c.mu.Lock()
	c.rosterSize = size
	c.mu.Unlock()
	return size, nil
}

func (c *Client) fetchRosterSize(ctx context.Context) (int, error) {
	url := c.baseURL + constants.CharacterAPIListPath + "?page=1&limit=1"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("roster request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("roster fetch failed: %d %s", resp.StatusCode, string(body))
	}
	var list apiList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return 0, fmt.Errorf("failed to decode roster response: %w", err)
	}
	if list.Meta.TotalItems <= 0 {
		return 0, fmt.Errorf("roster fetch returned no characters")
	}
	return list.Meta.TotalItems, nil
}

// ParseKi converts the API's formatted ki strings ("60.000.000") into an
// integer. Dots and commas are thousand separators; any other non-digit
// content makes the value unparsable.
func ParseKi(s string) (int, error) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.ReplaceAll(cleaned, ".", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return 0, ErrUnparsableKi
	}
	v, err := strconv.Atoi(cleaned)
	if err != nil || v < 0 {
		return 0, ErrUnparsableKi
	}
	return v, nil
}
