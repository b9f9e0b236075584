package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New builds a logrus logger tagged with the service name.
// LOG_LEVEL picks the level and LOG_FORMAT=text switches away from JSON.
func New(service string) *logrus.Entry {
	return NewWithOutput(service, os.Stdout)
}

func NewWithOutput(service string, out io.Writer) *logrus.Entry {
	log := logrus.New()
	log.SetOutput(out)

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "text" {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	}

	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		log.SetLevel(logrus.DebugLevel)
	case "warn":
		log.SetLevel(logrus.WarnLevel)
	case "error":
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}

	return log.WithField("service", service)
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *logrus.Entry {
	return NewWithOutput("test", io.Discard)
}
