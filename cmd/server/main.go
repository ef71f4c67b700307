/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the card ledger server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (optional) and parse command-line flags
  2. Initialize SQLite store
  3. Create API handler with dependencies
  4. Configure HTTP router
  5. Start the nightly snapshot scheduler
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port            HTTP server port (default: 8080, env PORT)
  -db              SQLite database path (default: ledger.db, env DB_PATH)
                   Use ":memory:" for an in-memory database
  -snapshot-cron   Cron spec for the nightly snapshot job
                   (default: "0 2 * * *", env SNAPSHOT_CRON)
  -retention-days  Snapshot retention window; 0 keeps forever
                   (default: 365, env SNAPSHOT_RETENTION_DAYS)
  -scheduler       Enable the background scheduler (default: true)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the scheduler, waiting for a running job
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/ledger.db"

  # Run with in-memory database, no scheduler
  ./server -db=":memory:" -scheduler=false

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/FlameXS01/Viajex-sub000/api"
	"github.com/FlameXS01/Viajex-sub000/store/sqlite"
)

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func main() {
	// .env is optional; flags override environment.
	godotenv.Load()

	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envString("DB_PATH", "ledger.db"), "SQLite database path")
	snapshotCron := flag.String("snapshot-cron", envString("SNAPSHOT_CRON", "0 2 * * *"), "cron spec for the nightly snapshot job")
	retentionDays := flag.Int("retention-days", envInt("SNAPSHOT_RETENTION_DAYS", 365), "snapshot retention window in days, 0 keeps forever")
	schedulerEnabled := flag.Bool("scheduler", true, "enable the background snapshot scheduler")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Initialize handler and router
	handler := api.NewHandler(store)
	router := api.NewRouter(handler)

	// Scheduler
	var scheduler *api.SnapshotScheduler
	if *schedulerEnabled {
		scheduler = api.NewSnapshotScheduler(handler, *snapshotCron, *retentionDays)
		if err := scheduler.Start(); err != nil {
			log.Fatalf("Failed to start scheduler: %v", err)
		}
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost:%d", *port)
		log.Printf("API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	if scheduler != nil {
		scheduler.Stop()
	}

	log.Println("Server stopped")
}
