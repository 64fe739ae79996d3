package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-intern-harvester/internal/app"
	"go-intern-harvester/internal/logger"
	"go-intern-harvester/internal/pipeline"
)

type runner interface {
	RunOnce(ctx context.Context) (pipeline.Result, error)
}

func newRouter(r runner, log logger.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Manual trigger; the request blocks until the run completes.
	router.POST("/runs", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), runTimeout)
		defer cancel()

		res, err := r.RunOnce(ctx)
		switch {
		case errors.Is(err, app.ErrRunInProgress):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		case err != nil && res.Stats.Outcome == "":
			log.Error("Manual run failed", logger.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		body := gin.H{
			"postings": res.Postings,
			"stats": gin.H{
				"outcome":    res.Stats.Outcome,
				"pages":      res.Stats.Pages,
				"harvested":  res.Stats.Harvested,
				"known":      res.Stats.Known,
				"no_id":      res.Stats.NoID,
				"duplicates": res.Stats.Duplicates,
				"failed":     res.Stats.Failed,
				"new":        res.Stats.New,
				"elapsed":    res.Stats.Elapsed.String(),
			},
		}
		if err != nil {
			body["error"] = err.Error()
		}
		c.JSON(http.StatusOK, body)
	})

	return router
}
