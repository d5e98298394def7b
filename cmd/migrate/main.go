package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"portfolio_backend/internal/platform/config"
	platformdb "portfolio_backend/internal/platform/db"
	"portfolio_backend/internal/platform/logger"
)

func main() {
	command := flag.String("command", "up", "migrate command (up|status|down)")
	timeout := flag.Duration("timeout", time.Minute, "command timeout")
	target := flag.Int64("target", 0, "target version for down command (optional)")
	envFile := flag.String("env", ".env", "dotenv file to load before reading the environment")
	flag.Parse()

	var cfg struct {
		Env string `env:"APP_ENV" env-default:"development"`
		DB  config.DB
	}
	if err := config.LoadInto(*envFile, &cfg); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.New("migrate", cfg.Env)
	slog.SetDefault(log)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	dbCfg := cfg.DB
	dbCfg.RunMigrations = false
	gdb, err := platformdb.Open(ctx, dbCfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		log.Error("failed to obtain database handle", "error", err)
		os.Exit(1)
	}
	defer func() { _ = sqlDB.Close() }()

	switch *command {
	case "up":
		err = platformdb.MigrateUp(ctx, sqlDB)
	case "status":
		err = platformdb.MigrateStatus(sqlDB)
	case "down":
		err = platformdb.MigrateDown(ctx, sqlDB, *target)
	default:
		log.Error("unsupported command", "command", *command)
		os.Exit(1)
	}
	if err != nil {
		log.Error("migration command failed", "command", *command, "error", err)
		os.Exit(1)
	}

	log.Info("migration command completed", "command", *command)
}
