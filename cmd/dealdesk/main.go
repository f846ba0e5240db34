package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/dealdesk/dealdesk/internal/config"
	"github.com/dealdesk/dealdesk/internal/migration"
	"github.com/dealdesk/dealdesk/internal/seed"
	"github.com/dealdesk/dealdesk/internal/server"
	"github.com/dealdesk/dealdesk/pkg/db"
	"github.com/dealdesk/dealdesk/pkg/log"
)

func main() {
	app := fx.New(
		config.Module,
		log.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		seed.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
