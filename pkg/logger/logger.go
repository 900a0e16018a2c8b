package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New создает настроенный логгер приложения
func New(logLevel string) *logrus.Logger {
	log := logrus.New()

	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		// Уровень по умолчанию, если передан некорректный
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}
