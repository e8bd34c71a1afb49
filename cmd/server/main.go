package main

import (
	"github.com/vendange/backend/internal/server"
	"github.com/vendange/backend/internal/util"
	"github.com/vendange/backend/pkg/logger"
	"github.com/vendange/backend/pkg/logger/console"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
