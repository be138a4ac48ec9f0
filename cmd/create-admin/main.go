// Command create-admin creates the administrator account, or promotes an
// existing account with the same email.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/layer-3/taskboard/adapters/events"
	"github.com/layer-3/taskboard/adapters/mongo"
	"github.com/layer-3/taskboard/internal/config"
	"github.com/layer-3/taskboard/internal/logctx"
	"github.com/layer-3/taskboard/service"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file (overrides CONFIG_PATH env)")
	flag.Parse()

	cfg := config.MustLoad(configPath)
	log := logctx.New(cfg.Env, os.Stderr)

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("create_admin_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	if cfg.Mongo.Driver != config.DriverMongo {
		return fmt.Errorf("create-admin needs MONGO_DRIVER=%s, got %q", config.DriverMongo, cfg.Mongo.Driver)
	}

	dbCtx, cancel := context.WithTimeout(ctx, cfg.Mongo.ConnectTimeout)
	defer cancel()

	db, err := mongo.New(dbCtx, cfg.Mongo.URI)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close(context.Background()) }()

	admin := service.NewAdminService(db.Users(), events.NopPublisher{})
	res, err := admin.EnsureAdmin(ctx, service.AdminInput{
		Name:     cfg.Admin.Name,
		Email:    cfg.Admin.Email,
		Password: cfg.Admin.Password,
	})
	if err != nil {
		return err
	}

	log.Info("admin_ensured", "email", cfg.Admin.Email, "result", res.String())
	return nil
}
