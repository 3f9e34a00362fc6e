package api

import (
	"net/http"

	"github.com/letphil/dbz-auto-arena/internal/version"

	"github.com/gin-gonic/gin"
)

// GetVersion reports build information injected via ldflags.
func GetVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version": version.Version,
		"commit":  version.Commit,
		"date":    version.Date,
	})
}
