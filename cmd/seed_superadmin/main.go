// seed_superadmin crea (o actualiza la contraseña de) el usuario superadmin de la plataforma
// con las credenciales SUPERADMIN_NAME / SUPERADMIN_EMAIL / SUPERADMIN_PASSWORD.
//
// Uso: go run ./cmd/seed_superadmin [-migrate]
// Con -migrate aplica antes los scripts de migrations/.
package main

import (
	"context"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/raposo-pdv/pdv-api/internal/application/auth"
	"github.com/raposo-pdv/pdv-api/internal/domain/entity"
	"github.com/raposo-pdv/pdv-api/internal/infrastructure/postgres"
	"github.com/raposo-pdv/pdv-api/pkg/config"
	"github.com/raposo-pdv/pdv-api/pkg/logger"
)

func main() {
	migrate := flag.Bool("migrate", false, "aplicar migraciones antes de crear el superadmin")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "seed_superadmin"})

	email := strings.ToLower(strings.TrimSpace(cfg.Superadmin.Email))
	if email == "" || cfg.Superadmin.Password == "" {
		log.Error().Msg("SUPERADMIN_EMAIL y SUPERADMIN_PASSWORD son obligatorios")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if *migrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("aplicar migraciones")
		}
		log.Info().Msg("migraciones aplicadas")
	}

	hash, err := auth.HashPassword(cfg.Superadmin.Password)
	if err != nil {
		log.Fatal().Err(err).Msg("contraseña del superadmin")
	}

	users := postgres.NewUserRepository(pool)
	existing, err := users.GetByEmail(ctx, email)
	if err != nil {
		log.Fatal().Err(err).Msg("buscar usuario")
	}
	if existing != nil {
		if !existing.IsSuperadmin() {
			log.Fatal().Str("email", email).Str("role", existing.Role).Msg("el email ya pertenece a un usuario de empresa")
		}
		if err := users.UpdatePasswordHash(ctx, existing.ID, hash); err != nil {
			log.Fatal().Err(err).Msg("actualizar contraseña")
		}
		log.Info().Int64("user_id", existing.ID).Msg("contraseña del superadmin actualizada")
		return
	}

	now := time.Now()
	u := &entity.User{
		Name:            strings.TrimSpace(cfg.Superadmin.Name),
		Email:           email,
		PasswordHash:    hash,
		Role:            entity.RoleSuperadmin,
		PeriodStartedAt: now,
		CreatedAt:       now,
	}
	if err := users.Create(ctx, u); err != nil {
		log.Fatal().Err(err).Msg("crear superadmin")
	}
	log.Info().Int64("user_id", u.ID).Str("email", email).Msg("superadmin creado")
}
