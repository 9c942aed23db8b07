package main

import (
	"context"
	"fmt"
	"syscall"

	"github.com/lingvoclub/placement-backend/internal/config"
	"github.com/lingvoclub/placement-backend/internal/database"
	"github.com/lingvoclub/placement-backend/internal/logger"
	"github.com/lingvoclub/placement-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	settingRepo := repository.NewSettingRepository(pool)

	// ─── CLI Input ─────────────────────────────────────────────────────
	fmt.Println("=== Set Admin Password ===")

	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	fmt.Println() // Newline after password input

	fmt.Print("Repeat Password: ")
	byteConfirm, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	fmt.Println()

	password := string(bytePassword)
	if password != string(byteConfirm) {
		fmt.Println("Error: Passwords do not match")
		return
	}
	if len(password) < 6 {
		fmt.Println("Error: Password must be at least 6 characters")
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	if err := settingRepo.Upsert(ctx, repository.SettingKeyAdminPasswordHash, string(hashedPassword)); err != nil {
		log.Fatal().Err(err).Msg("Failed to store admin password hash")
	}

	fmt.Println("\nSuccess! Admin password updated.")
}
