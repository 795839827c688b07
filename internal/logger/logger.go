package logger

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// New создает логгер приложения: JSON в production, текстовый формат в остальных окружениях
func New(appEnv, level string) *logrus.Logger {
	log := logrus.New()

	if appEnv == "production" {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	return log
}

// Service возвращает запись логгера с полем service
func Service(log *logrus.Logger, name string) *logrus.Entry {
	return log.WithField("service", name)
}

// Discard возвращает логгер, который ничего не пишет
func Discard() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}
