package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/routewise/routewise/internal/config"
	"github.com/routewise/routewise/internal/migration"
	"github.com/routewise/routewise/internal/observability"
	"github.com/routewise/routewise/internal/server"
	"github.com/routewise/routewise/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(newSnowflakeNode),
		db.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func newSnowflakeNode() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
