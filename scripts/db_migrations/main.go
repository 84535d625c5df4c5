package main

import (
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/banking-core/internal/config"
	"github.com/carson-networks/banking-core/internal/logging"
	"github.com/carson-networks/banking-core/internal/storage"
)

func main() {
	env, err := config.ProcessEnvironmentVariables()
	if err != nil {
		logrus.WithError(err).Fatal("ProcessEnvironmentVariables")
		return
	}

	logger, err := logging.SetupLogging(env.LogLevel)
	if err != nil {
		logrus.WithError(err).Fatal("SetupLogging")
		return
	}

	store, err := storage.NewStorage(env)
	if err != nil {
		logger.WithError(err).Fatal("storage.NewStorage")
		return
	}
	defer store.Close()

	if err := store.Migrate(env.MigrationsPath, logger); err != nil {
		logger.WithError(err).Fatal("storage.Migrate")
	}
}
