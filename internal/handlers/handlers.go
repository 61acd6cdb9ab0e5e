// Package handlers exposes the optional HTTP trigger surface: a liveness
// probe, a localhost-only pprof group, and the assemble endpoint that
// drives internal/render.Orchestrator for a directory already present on
// disk.
package handlers

import (
	"context"
	"net/http"
	"net/http/pprof"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/chinmay-sawant/pdfassemble/internal/middleware"
	"github.com/chinmay-sawant/pdfassemble/internal/models"
	"github.com/chinmay-sawant/pdfassemble/internal/render"
)

// RegisterRoutes wires the healthz probe, the assemble trigger, and a
// localhost-restricted pprof group onto router.
func RegisterRoutes(router *gin.Engine) {
	router.GET("/healthz", handleHealthz)

	v1 := router.Group("/api/v1")
	v1.Use(middleware.CORSMiddleware())
	v1.Use(middleware.GoogleAuthMiddleware())
	{
		v1.OPTIONS("/*path", func(c *gin.Context) {})
		v1.POST("/assemble", handleAssemble)
	}

	pprofGroup := router.Group("/debug/pprof")
	pprofGroup.Use(localhostOnly)
	{
		pprofGroup.GET("/", gin.WrapF(http.HandlerFunc(pprof.Index)))
		pprofGroup.GET("/cmdline", gin.WrapF(http.HandlerFunc(pprof.Cmdline)))
		pprofGroup.GET("/profile", gin.WrapF(http.HandlerFunc(pprof.Profile)))
		pprofGroup.GET("/symbol", gin.WrapF(http.HandlerFunc(pprof.Symbol)))
		pprofGroup.POST("/symbol", gin.WrapF(http.HandlerFunc(pprof.Symbol)))
		pprofGroup.GET("/trace", gin.WrapF(http.HandlerFunc(pprof.Trace)))
		pprofGroup.GET("/heap", gin.WrapF(http.HandlerFunc(pprof.Index)))
		pprofGroup.GET("/goroutine", gin.WrapF(http.HandlerFunc(pprof.Index)))
		pprofGroup.GET("/allocs", gin.WrapF(http.HandlerFunc(pprof.Index)))
		pprofGroup.GET("/block", gin.WrapF(http.HandlerFunc(pprof.Index)))
		pprofGroup.GET("/mutex", gin.WrapF(http.HandlerFunc(pprof.Index)))
		pprofGroup.GET("/threadcreate", gin.WrapF(http.HandlerFunc(pprof.Index)))
	}
}

func localhostOnly(c *gin.Context) {
	clientIP := c.ClientIP()
	if clientIP != "127.0.0.1" && clientIP != "::1" {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden: pprof is only accessible from localhost"})
		return
	}
	c.Next()
}

func handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleAssemble triggers an orchestrator run for req.Directory, which
// must already exist on disk (this endpoint does not accept uploads; the
// rendering HTML must be reachable from the local filesystem it serves).
func handleAssemble(c *gin.Context) {
	middleware.LogAuthInfo(c)

	var req models.AssembleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	info, err := os.Stat(req.Directory)
	if err != nil || !info.IsDir() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "directory not found: " + req.Directory})
		return
	}

	opt, err := render.LoadOptions(req.Directory)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load render options: " + err.Error()})
		return
	}

	ctx := context.Background()
	orch, cleanup, err := render.NewOrchestrator(ctx, req.Directory, opt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start orchestrator: " + err.Error()})
		return
	}
	defer cleanup()

	reports, err := orch.Run(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]models.AssembleResponse, 0, len(reports))
	for _, r := range reports {
		item := models.AssembleResponse{TOCPath: r.TOCPath, OutputPath: r.OutputPath, Pages: r.Pages}
		if r.Err != nil {
			item.Error = r.Err.Error()
		}
		resp = append(resp, item)
	}

	c.JSON(http.StatusOK, gin.H{"results": resp})
}
