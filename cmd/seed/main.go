package main

import (
	"context"
	"flag"
	"os"

	"arogya-chat-be/internal/config"
	"arogya-chat-be/internal/entity"
	"arogya-chat-be/internal/repository/specification"
	"arogya-chat-be/internal/repository/unitofwork"
	"arogya-chat-be/pkg/database"

	"github.com/fatih/color"
)

func main() {
	retention := flag.String("retention", string(entity.Retention24Hours), "history retention for the demo user (off, 24h, 3d, 7d, 28d)")
	userId := flag.String("id", "demo-user", "demo user id")
	flag.Parse()

	policy := entity.RetentionPolicy(*retention)
	if !policy.IsValid() {
		color.Red("Invalid retention %q", *retention)
		os.Exit(1)
	}

	cfg := config.Load()
	if cfg.Database.Connection == "" {
		color.Red("Error: DB_CONNECTION_STRING is not set")
		os.Exit(1)
	}

	db, err := database.Open(cfg.Database.Driver, cfg.Database.Connection)
	if err != nil {
		color.Red("Error: Failed to connect to database: %v", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		color.Red("Error: Migration failed: %v", err)
		os.Exit(1)
	}

	ctx := context.Background()
	uow := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx)

	color.Cyan("Seeding demo users...")

	users := []*entity.User{
		{Id: *userId, Name: "Demo User", Email: *userId + "@arogya.local", HistoryRetention: policy},
		{Id: "keep-forever", Name: "Archive User", Email: "keep-forever@arogya.local", HistoryRetention: entity.RetentionOff},
	}

	for _, u := range users {
		existing, err := uow.UserRepository().FindOne(ctx, specification.UserByID{ID: u.Id})
		if err != nil {
			color.Red("Lookup of '%s' failed: %v", u.Id, err)
			continue
		}

		if existing != nil {
			existing.HistoryRetention = u.HistoryRetention
			if err := uow.UserRepository().Update(ctx, existing); err != nil {
				color.Red("Update of '%s' failed: %v", u.Id, err)
				continue
			}
			color.Yellow("User '%s' already exists, retention set to %s", u.Id, u.HistoryRetention)
			continue
		}

		if err := uow.UserRepository().Create(ctx, u); err != nil {
			color.Red("Create of '%s' failed: %v", u.Id, err)
			continue
		}
		color.Green("Created user: %s (retention %s)", u.Id, u.HistoryRetention)
	}

	color.Cyan("Seeding completed!")
}
