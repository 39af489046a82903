package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"food-delivery/internal/config"
	"food-delivery/internal/db"
	"food-delivery/internal/importer"
	"food-delivery/internal/repository/restaurant"
	"food-delivery/internal/repository/user"
)

func main() {
	var (
		filePath     string
		restaurantID string
		ownerEmail   string
	)
	flag.StringVar(&filePath, "file", "", "Path to menu CSV (restaurant,name,description,price,image)")
	flag.StringVar(&restaurantID, "restaurant", "", "Restaurant id for rows without one")
	flag.StringVar(&ownerEmail, "owner", "", "Owner email whose restaurant receives rows without a restaurant id")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[importer] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	restRepo := restaurant.NewPostgres(pool, logger)
	if restaurantID == "" && ownerEmail != "" {
		owner, err := user.NewPostgres(pool, logger).GetByEmail(ctx, ownerEmail)
		if err != nil {
			logger.Fatalf("find owner %q: %v", ownerEmail, err)
		}
		rest, err := restRepo.GetByOwner(ctx, owner.ID)
		if err != nil {
			logger.Fatalf("find restaurant for owner %q: %v", ownerEmail, err)
		}
		restaurantID = rest.ID
	}

	f, err := os.Open(filePath)
	if err != nil {
		logger.Fatalf("open file: %v", err)
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f, restRepo, restaurantID)

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		logger.Fatalf("import failed after %d rows: %v", count, err)
	}

	fmt.Printf("Imported %d menu items in %s\n", count, time.Since(start).Truncate(time.Millisecond))
}
