package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func ServerTime(ctx *gin.Context) {
	now := time.Now().UTC()

	ctx.JSON(http.StatusOK, gin.H{
		"serverTime": now.Format(time.RFC3339),
		"timestamp":  now.UnixMilli(),
	})
}

func SystemHealth(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"serverTime": time.Now().UTC().Format(time.RFC3339),
	})
}

func HealthCheck(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
