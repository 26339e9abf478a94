// cmd/expiry-digest sends administrators the daily digest of
// documents that are expired or expiring within 60 days. Run it from
// cron; it exits non-zero when the digest could not be sent.
package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"

	"compliance-dashboard-api/config"
	"compliance-dashboard-api/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config.InitDB()

	count, err := services.SendExpiryDigest(time.Now())
	if err != nil {
		log.Fatalf("expiry digest failed: %v", err)
	}
	if count == 0 {
		log.Println("expiry digest: nothing expiring, no mail sent")
		return
	}
	log.Printf("expiry digest sent with %d entries", count)
}
