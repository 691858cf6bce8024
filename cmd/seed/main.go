package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"accountsvc/internal/auth"
	"accountsvc/internal/config"
	"accountsvc/internal/db"
	apperrors "accountsvc/internal/errors"
	"accountsvc/internal/model"
	"accountsvc/internal/repository"
)

func main() {
	email := flag.String("email", "admin@example.com", "admin account email")
	password := flag.String("password", "", "admin account password (required)")
	name := flag.String("name", "Administrator", "admin account name")
	flag.Parse()

	if *password == "" {
		log.Fatal("-password is required")
	}

	log.Println("Starting admin bootstrap...")

	cfg := config.Load()
	if cfg.MySQLDSN == "" {
		log.Fatal("MYSQL_DSN must be set; the in-memory store cannot be seeded")
	}

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	repo := repository.NewUserRepository(gormDB)
	ctx := context.Background()

	existing, err := repo.FindByEmail(ctx, *email)
	if err != nil && !errors.Is(err, apperrors.ErrUserNotFound) {
		log.Fatalf("Failed to check existing admin: %v", err)
	}
	if existing != nil {
		log.Printf("Admin %s already exists, nothing to do", *email)
		return
	}

	hashed, err := auth.NewPasswordHasher().Hash(*password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	admin := &model.User{
		Name:         *name,
		Email:        *email,
		PasswordHash: hashed,
		IsAdmin:      true,
	}
	if err := repo.Create(ctx, admin); err != nil {
		log.Fatalf("Failed to create admin: %v", err)
	}

	log.Printf("Admin %s created with ID %s", admin.Email, admin.ID)
}
