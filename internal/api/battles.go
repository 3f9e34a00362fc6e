package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/letphil/dbz-auto-arena/internal/battle"
	"github.com/letphil/dbz-auto-arena/internal/constants"
	"github.com/letphil/dbz-auto-arena/internal/engine"
	"github.com/letphil/dbz-auto-arena/internal/service"

	"github.com/gin-gonic/gin"
)

type createBattleRequest struct {
	CombatantA *battle.Combatant `json:"combatant_a"`
	CombatantB *battle.Combatant `json:"combatant_b"`
	Seed       *int64            `json:"seed"`
}

// CreateBattle runs one auto-battle. Combatants omitted from the body are
// fetched randomly from the character API.
func (h *BattleHandler) CreateBattle(c *gin.Context) {
	var body createBattleRequest
	// An empty body is valid: both combatants are fetched randomly. Binding
	// unconditionally also covers chunked requests, where ContentLength is -1.
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}

	rec, err := service.RunBattle(c.Request.Context(), h.repo, h.fetcher, service.RunBattleRequest{
		CombatantA: body.CombatantA,
		CombatantB: body.CombatantB,
		Seed:       body.Seed,
		Options:    h.opts,
	})
	switch {
	case err == nil:
	case errors.Is(err, engine.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: err.Error()})
		return
	case errors.Is(err, engine.ErrSimulationDiverged):
		c.JSON(http.StatusUnprocessableEntity, gin.H{constants.JSONKeyError: constants.ErrBattleDiverged})
		return
	case errors.Is(err, service.ErrFetchFailed):
		c.JSON(http.StatusBadGateway, gin.H{constants.JSONKeyError: constants.ErrFailedFetchCharacter})
		return
	default:
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedRunBattle})
		return
	}

	out, err := MarshalIntoSnakeTimestamps(rec)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedEncodeBattle})
		return
	}
	c.JSON(http.StatusCreated, out)
}

// GetBattle returns a stored battle by ID, including its round log.
func (h *BattleHandler) GetBattle(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("battleID"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidBattleID})
		return
	}
	rec, err := h.repo.GetBattleByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrBattleNotFound})
		return
	}
	out, err := MarshalIntoSnakeTimestamps(rec)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedEncodeBattle})
		return
	}
	c.JSON(http.StatusOK, out)
}

// ListRecentBattles returns battles resolved within the configured window.
func (h *BattleHandler) ListRecentBattles(c *gin.Context) {
	battles, err := h.repo.GetRecentBattles(h.recentWindow)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchBattles})
		return
	}
	out, err := MarshalIntoSnakeTimestamps(battles)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchBattles})
		return
	}
	c.JSON(http.StatusOK, out)
}

// ListLeaderboard returns the top characters by wins (desc), top 10 by default.
func (h *BattleHandler) ListLeaderboard(c *gin.Context) {
	// optional ?limit=N
	limit := 10
	if s := c.Query("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	stats, err := h.repo.GetTopCombatants(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchLeaderboard})
		return
	}
	out, err := MarshalIntoSnakeTimestamps(stats)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchLeaderboard})
		return
	}
	c.JSON(http.StatusOK, out)
}

// GetCombatantStats returns aggregated outcomes for a given character name.
func (h *BattleHandler) GetCombatantStats(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrNameRequired})
		return
	}
	stats, err := h.repo.GetStatsByName(name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchStats})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetRandomCharacter fetches one random combatant; useful for demos and for
// inspecting how ki values map to vitality.
func (h *BattleHandler) GetRandomCharacter(c *gin.Context) {
	cb, err := h.fetcher.FetchRandomCombatant(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{constants.JSONKeyError: constants.ErrFailedFetchCharacter})
		return
	}
	c.JSON(http.StatusOK, cb)
}
