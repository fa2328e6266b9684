// Command sweep fails overdue milestones and cascades active goals whose
// schedule has lapsed. Intended to run on a schedule (cron, systemd timer).
package main

import (
	"context"
	"log"
	"time"

	"strive/internal/config"
	"strive/internal/database"
	"strive/internal/repository"
	"strive/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	milestoneRepo := repository.NewMilestoneRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	svc := service.NewMilestoneService(milestoneRepo, goalRepo)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result, err := svc.SweepOverdue(ctx, time.Now())
	if err != nil {
		log.Fatalf("Sweep failed: %v", err)
	}

	log.Printf("Sweep complete: %d milestones failed, %d goals failed",
		result.MilestonesFailed, result.GoalsFailed)
}
