// cmd/seedadmin creates or updates the super admin and the default plans.
// Usage: SEED_ADMIN_EMAIL=... SEED_ADMIN_PASSWORD=... go run ./cmd/seedadmin
package main

import (
	"context"
	"os"

	"printscrap/internal/config"
	"printscrap/internal/infra"
	"printscrap/internal/model"
	"printscrap/internal/repository"
	"printscrap/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var defaultPlans = []model.Plan{
	{Name: "Daily", Price: decimal.NewFromInt(49), BillingCycle: model.CycleDaily, Active: true},
	{Name: "Monthly", Price: decimal.NewFromInt(999), BillingCycle: model.CycleMonthly, Active: true},
	{Name: "Yearly", Price: decimal.NewFromInt(9999), BillingCycle: model.CycleYearly, Active: true},
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	email := envOr("SEED_ADMIN_EMAIL", "admin@printscrap.ai")
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if len(password) < 8 {
		log.Fatal().Msg("SEED_ADMIN_PASSWORD must be at least 8 characters")
	}

	db, err := infra.NewDatabase(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect error")
	}
	if err := infra.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate error")
	}

	ctx := context.Background()
	if err := seedAdmin(ctx, db, email, password); err != nil {
		log.Fatal().Err(err).Msg("seed super admin")
	}
	log.Info().Str("email", email).Msg("super admin ready")

	n, err := seedPlans(ctx, repository.NewPlanRepository(db))
	if err != nil {
		log.Fatal().Err(err).Msg("seed plans")
	}
	log.Info().Int("created", n).Msg("default plans ready")
}

func seedAdmin(ctx context.Context, db *gorm.DB, email, password string) error {
	hash, err := service.HashPassword(password)
	if err != nil {
		return err
	}
	users := repository.NewUserRepository(db)
	existing, err := users.FindByEmail(ctx, email)
	if err == nil {
		return db.WithContext(ctx).Model(existing).Updates(map[string]any{
			"password_hash": hash,
			"role":          model.RoleSuperAdmin,
			"active":        true,
		}).Error
	}
	if !repository.IsNotFound(err) {
		return err
	}
	return users.CreateTx(db.WithContext(ctx), &model.User{
		Name:         "Super Admin",
		CompanyName:  "PrintScrap",
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleSuperAdmin,
		Active:       true,
	})
}

// seedPlans creates the default plans whose names are not taken yet.
func seedPlans(ctx context.Context, plans repository.PlanRepository) (int, error) {
	existing, err := plans.List(ctx, false)
	if err != nil {
		return 0, err
	}
	taken := make(map[string]bool, len(existing))
	for _, p := range existing {
		taken[p.Name] = true
	}
	created := 0
	for _, p := range defaultPlans {
		if taken[p.Name] {
			continue
		}
		plan := p
		if err := plans.Create(ctx, &plan); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
