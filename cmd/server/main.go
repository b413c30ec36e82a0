package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jengzang/combined-routes/internal/api"
	"github.com/jengzang/combined-routes/internal/config"
	"github.com/jengzang/combined-routes/internal/database"
	"github.com/jengzang/combined-routes/internal/logging"
	"github.com/jengzang/combined-routes/internal/middleware"
	"github.com/jengzang/combined-routes/internal/service"
	"github.com/jengzang/combined-routes/internal/timeutil"
)

func main() {
	cfg := config.Load()

	issue := flag.String("issue-token", "", "print a bearer token for this subject and exit")
	ttl := flag.Duration("token-ttl", 24*time.Hour, "lifetime of issued tokens")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	logger := logging.New(os.Stderr, *verbose)

	if *issue != "" {
		token, err := middleware.IssueToken(cfg.JWTSecret, *issue, *ttl, time.Now())
		if err != nil {
			log.Fatalf("Failed to issue token (is JWT_SECRET set?): %v", err)
		}
		fmt.Println(token)
		return
	}

	db, err := database.Open(database.Config{Path: cfg.DBPath, Logger: logger})
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer db.Close()

	router := api.SetupRouter(cfg, service.NewCatalogService(db), timeutil.RealClock{}, logger)

	if cfg.JWTSecret == "" {
		logger.Printf("[Server] JWT_SECRET not set, API is unauthenticated")
	}
	logger.Printf("[Server] Serving %s on port %s", cfg.ArtifactsDir, cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
