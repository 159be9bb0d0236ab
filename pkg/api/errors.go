package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codeready-toolchain/codegen-orchestrator/pkg/orchestrator"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/taskstore"
)

// respondError maps a domain error to an HTTP status and writes a
// {"error": "..."} JSON body.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, taskstore.ErrTaskNotFound),
		errors.Is(err, orchestrator.ErrTaskNotFound),
		errors.Is(err, orchestrator.ErrBundleNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, orchestrator.ErrNoPendingApproval):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		slog.Error("unexpected api error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
