// Command pdfassemble renders a tree of toc.json-described HTML pages to
// PDF and merges each tree into a single navigable PDF. Usage:
//
//	pdfassemble [directory]
//	pdfassemble -serve
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chinmay-sawant/pdfassemble/internal/handlers"
	"github.com/chinmay-sawant/pdfassemble/internal/render"
)

func main() {
	serve := flag.Bool("serve", false, "start the HTTP trigger surface instead of running once")
	flag.Parse()

	if os.Getenv("ENABLE_PROFILING") == "1" {
		f, err := os.Create("/tmp/mem.prof")
		if err != nil {
			log.Printf("could not create memory profile: %v", err)
		} else {
			defer func() {
				log.Println("writing memory profile...")
				if err := pprof.WriteHeapProfile(f); err != nil {
					log.Printf("could not write memory profile: %v", err)
				}
				_ = f.Close()
			}()
		}
	}

	if *serve {
		runServer()
		return
	}

	dir := flag.Arg(0)
	if dir == "" {
		dir = "."
	}
	if err := runOnce(dir); err != nil {
		log.Fatalf("pdfassemble: %v", err)
	}
}

func runOnce(dir string) error {
	opt, err := render.LoadOptions(dir)
	if err != nil {
		return fmt.Errorf("load options: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Println("pdfassemble: received interrupt, cancelling...")
		cancel()
	}()

	orch, cleanup, err := render.NewOrchestrator(ctx, dir, opt)
	if err != nil {
		return fmt.Errorf("start orchestrator: %w", err)
	}
	defer cleanup()

	reports, err := orch.Run(ctx)
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		log.Println("pdfassemble: no eligible TOCs found, nothing to do")
		return nil
	}

	failed := 0
	for _, r := range reports {
		if r.Err != nil {
			failed++
			log.Printf("pdfassemble: %s: %v", r.TOCPath, r.Err)
			continue
		}
		log.Printf("pdfassemble: wrote %s (%d pages)", r.OutputPath, r.Pages)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d TOCs failed to merge", failed, len(reports))
	}
	return nil
}

func runServer() {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[recovery] panic recovered: %v", r)
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	})
	if gin.Mode() == gin.DebugMode {
		router.Use(gin.Logger())
	}

	// Each inbound /api/v1/assemble call starts its own headless Chrome
	// instance and tab pool, unlike the teacher's CPU-bound PDF requests,
	// so the inbound bound is much lower than a per-core count.
	maxConcurrent := 4
	semaphore := make(chan struct{}, maxConcurrent)
	log.Printf("pdfassemble: serving with %d max concurrent assemble requests", maxConcurrent)

	router.Use(func(c *gin.Context) {
		semaphore <- struct{}{}
		defer func() { <-semaphore }()
		c.Next()
	})

	handlers.RegisterRoutes(router)

	srv := &http.Server{
		Addr:         ":8080",
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("pdfassemble: shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("pdfassemble: graceful shutdown failed: %v", err)
	}
}
