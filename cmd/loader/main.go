// Command loader bulk-ingests historical payload files outside the live
// request path: every *.json file in the given directory is applied through
// the ingestion logic with no notification sink.
package main

import (
	"log"
	"os"

	"github.com/wachat/wachat-backend/config"
	"github.com/wachat/wachat-backend/models"
	"github.com/wachat/wachat-backend/services"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatalf("Usage: loader <payloads_dir>")
	}
	dir := os.Args[1]

	if _, err := config.Load(); err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	db := config.GetDB()
	if err := db.AutoMigrate(&models.Message{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	if err := services.ProcessDirectory(db, dir); err != nil {
		log.Fatalf("Payload processing failed: %v", err)
	}

	log.Println("All payloads processed.")
}
