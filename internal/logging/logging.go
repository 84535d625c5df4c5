package logging

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// SetupLogging builds the JSON logger shared by every component. An empty
// level means info.
func SetupLogging(level string) (*logrus.Logger, error) {
	logLevel := logrus.InfoLevel
	if level != "" {
		parsed, err := logrus.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("log level %q: %w", level, err)
		}
		logLevel = parsed
	}

	logger := logrus.Logger{
		Formatter: &logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyLevel: "loglevel",
			},
		},
		Out:   os.Stdout,
		Hooks: make(logrus.LevelHooks),
		Level: logLevel,
	}

	return &logger, nil
}
