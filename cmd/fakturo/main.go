package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/agencyops/fakturo/internal/client"
	"github.com/agencyops/fakturo/internal/clock"
	"github.com/agencyops/fakturo/internal/config"
	"github.com/agencyops/fakturo/internal/creditpackage"
	"github.com/agencyops/fakturo/internal/engagement"
	"github.com/agencyops/fakturo/internal/events"
	"github.com/agencyops/fakturo/internal/extrawork"
	"github.com/agencyops/fakturo/internal/invoice"
	"github.com/agencyops/fakturo/internal/issuance"
	"github.com/agencyops/fakturo/internal/migration"
	"github.com/agencyops/fakturo/internal/observability"
	"github.com/agencyops/fakturo/internal/scheduler"
	"github.com/agencyops/fakturo/internal/seed"
	"github.com/agencyops/fakturo/internal/server"
	"github.com/agencyops/fakturo/pkg/db"
)

var version = "dev"

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		clock.Module,
		fx.Provide(func() *snowflake.Node {
			node, err := snowflake.NewNode(1)
			if err != nil {
				panic(err)
			}
			return node
		}),
		db.Module,
		fx.Provide(events.NewOutbox),
		fx.Invoke(func(conn *gorm.DB, cfg config.Config, clk clock.Clock) error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := migration.RunMigrations(sqlDB); err != nil {
				return err
			}
			if cfg.IsProduction() {
				return nil
			}
			return seed.EnsureDemoData(conn, clk.Now())
		}),
		client.Module,
		engagement.Module,
		extrawork.Module,
		creditpackage.Module,
		issuance.Module,
		invoice.Module,
		scheduler.Module,
		server.Module,
	)
	app.Run()
}
