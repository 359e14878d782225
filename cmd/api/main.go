package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"corpval/pkg/api"
	"corpval/pkg/config"
)

func main() {
	// Load environment variables
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("[FATAL] Failed to load config: %v\n", err)
		os.Exit(1)
	}

	srv := api.NewServer(cfg)

	fmt.Printf("API server starting on %s...\n", cfg.Addr())
	fmt.Println("  - GET  /health")
	fmt.Println("  - GET  /api/v1/config")
	fmt.Println("  - POST /api/v1/metrics")
	fmt.Println("  - POST /api/v1/project")
	fmt.Println("  - POST /api/v1/dcf")
	fmt.Println("  - POST /api/v1/sensitivity")
	fmt.Println("  - POST /api/v1/comps")
	fmt.Println("  - POST /api/v1/transactions")
	fmt.Println("  - POST /api/v1/lbo")
	fmt.Println("  - POST /api/v1/scenarios")

	if err := srv.ListenAndServe(cfg.Addr()); err != nil {
		fmt.Printf("[FATAL] Server failed to start: %v\n", err)
		os.Exit(1)
	}
}
