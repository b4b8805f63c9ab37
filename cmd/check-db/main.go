// Package main is a diagnostic tool for testing database connectivity and
// inspecting the live registry. It loads the same configuration as the server,
// connects to the database, reports the migration version, and prints row
// counts for the core tables. The binary exits with a non-zero code on any
// failure so it can be embedded in health checks or CI/CD pipeline steps to
// gate deployments on a reachable, migrated database.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/reinzjustinedagang/osca-ims-backend/internal/config"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/db"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	database, err := db.Connect(cfg.Database.GetDSN(), cfg.Database.MaxConnections, cfg.Database.MinIdleConnections)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	fmt.Printf("Connected to %s:%d/%s\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.Name)

	version, dirty, err := db.GetMigrationVersion(database)
	if err != nil {
		log.Fatalf("Failed to read migration version: %v", err)
	}
	fmt.Printf("Schema version: %d (dirty: %v)\n", version, dirty)

	tables := []string{
		"users",
		"sessions",
		"senior_citizens",
		"form_fields",
		"barangays",
		"audit_logs",
		"sms_logs",
	}

	fmt.Println("\n=== TABLE COUNTS ===")
	for _, table := range tables {
		var count int
		if err := database.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
			log.Fatalf("Failed to count %s: %v", table, err)
		}
		fmt.Printf("%-16s %d\n", table, count)
	}

	var deleted int
	if err := database.QueryRow("SELECT COUNT(*) FROM senior_citizens WHERE deleted_at IS NOT NULL").Scan(&deleted); err != nil {
		log.Fatalf("Failed to count soft-deleted citizens: %v", err)
	}
	fmt.Printf("\nSoft-deleted citizens awaiting purge: %d\n", deleted)
}
