package main

import (
	"log"

	"github.com/tabvault/tabvault/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ tabvaultd failed to start: %v", err)
	}
}
