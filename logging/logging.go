package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

var logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}

type Fields = logrus.Fields

// SetLevel accepts logrus level names. Unknown names leave the level alone.
func SetLevel(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logger.WithField("level", level).Warn("unknown log level")
		return
	}
	logger.SetLevel(lvl)
}

func Logger() *logrus.Logger {
	return logger
}

func WithFields(fields Fields) *logrus.Entry {
	return logger.WithFields(fields)
}

func WithField(key string, value interface{}) *logrus.Entry {
	return logger.WithField(key, value)
}

func WithError(err error) *logrus.Entry {
	return logger.WithError(err)
}

func Info(args ...interface{}) {
	logger.Info(args...)
}

func Debug(args ...interface{}) {
	logger.Debug(args...)
}

func Warn(args ...interface{}) {
	logger.Warn(args...)
}
