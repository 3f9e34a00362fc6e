package constants

// Centralized constants for env keys, headers and the character API.
const (
	// Environment variable keys
	EnvArenaConfig = "ARENA_CONFIG"
	EnvArenaDB     = "ARENA_DB"

	// HTTP headers and content types
	HeaderContentType = "Content-Type"
	ContentTypeJSON   = "application/json"

	// Character API defaults (the public Dragon Ball API used by the demo)
	CharacterAPIBaseURL    = "https://dragonball-api.com/api"
	CharacterAPIListPath   = "/characters"
	CharacterAPIDetailPath = "/characters/%d"
)

// Routes used by the backend router
const (
	RouteAPIPrefix       = "/api"
	RouteBattles         = "/battles"
	RouteBattleByID      = "/battles/:battleID"
	RouteLeaderboard     = "/leaderboard"
	RouteRandomCharacter = "/characters/random"
	RouteCombatantStats  = "/combatant-stats"
	RouteVersion         = "/version"
)

// Common JSON response keys
const (
	JSONKeyError   = "error"
	JSONKeyMessage = "message"
	JSONKeyStatus  = "status"
)

// Common error messages used across API handlers
const (
	ErrInvalidRequest         = "Invalid request"
	ErrInvalidBattleID        = "Invalid battle ID"
	ErrBattleNotFound         = "Battle not found"
	ErrFailedFetchBattles     = "Failed to fetch battles"
	ErrFailedEncodeBattle     = "Failed to encode battle"
	ErrFailedFetchLeaderboard = "Failed to fetch leaderboard"
	ErrFailedFetchCharacter   = "Failed to fetch character"
	ErrFailedRunBattle        = "Failed to run battle"
	ErrFailedFetchStats       = "Failed to fetch stats"
	ErrNameRequired           = "name is required"
	ErrBattleDiverged         = "Battle did not resolve within the round cap"
)

// Logging field names
const (
	LogFieldBattleID    = "battle_id"
	LogFieldCharacterID = "character_id"
	LogFieldWinner      = "winner"
	LogFieldRounds      = "rounds"
	LogFieldSeed        = "seed"
	LogFieldAddr        = "addr"
	LogFieldAttempt     = "attempt"
)
