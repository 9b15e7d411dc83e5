// Command admin_seed bootstraps a fresh deployment: it creates the
// initial admin user and the first commission config version so the
// settlement engine can resolve rates from the first request.
package main

import (
	"context"
	"log"

	"lexpay/internal/config"
	"lexpay/internal/errors"
	"lexpay/internal/models"
	"lexpay/internal/repositories"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	config.LoadEnv()

	if err := repositories.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	ctx := context.Background()
	seedAdmin(ctx)
	seedCommissionConfig(ctx)
}

func seedAdmin(ctx context.Context) {
	email := config.GetEnv("ADMIN_EMAIL", "admin@lexpay.local")
	password := config.GetEnv("ADMIN_PASSWORD", "")
	if password == "" {
		log.Fatal("ADMIN_PASSWORD must be set")
	}

	userRepo := repositories.NewUserRepository(repositories.DB)
	if _, err := userRepo.GetByEmail(ctx, email); err == nil {
		log.Printf("Admin %s already exists, skipping", email)
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Fatalf("Failed to look up admin: %v", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	admin := &models.User{
		Email:    email,
		Password: string(hashed),
		Name:     "Platform Admin",
		Role:     "admin",
		Status:   "active",
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		log.Fatalf("Failed to create admin: %v", err)
	}
	log.Printf("✅ Admin %s created", email)
}

func seedCommissionConfig(ctx context.Context) {
	repo := repositories.NewCommissionRepository(repositories.DB)

	if cfg, err := repo.Active(ctx); err == nil {
		log.Printf("Commission config v%d already active, skipping", cfg.Version)
		return
	} else if !errors.Is(err, errors.ErrConfigNotFound) {
		log.Fatalf("Failed to look up commission config: %v", err)
	}

	cfg := &models.CommissionConfig{
		DefaultRate: 15,
		MinAmount:   100,
		ByConsultationType: models.RateMap{
			models.ConsultationTypeEmergency: 20,
			models.ConsultationTypeRetainer:  10,
		},
		ByLawyerTier: models.RateMap{
			models.LawyerTierGold:     8,
			models.LawyerTierPlatinum: 5,
		},
		Note: "initial platform rates",
	}
	hist := &models.CommissionHistory{
		NewValue: models.Snapshot(cfg),
		Note:     "initial platform rates",
	}
	if err := repo.CreateVersion(ctx, cfg, hist); err != nil {
		log.Fatalf("Failed to seed commission config: %v", err)
	}
	log.Printf("✅ Commission config v%d seeded", cfg.Version)
}
