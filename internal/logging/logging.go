package logging

import (
	"io"
	"os"
	"strings"

	"werdiff/internal/config"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// App is the value of the "app" field on every entry.
const App = "werdiff"

// Configure sets up logrus with rotation. Every entry carries app and pid so
// lines from the background server and one-shot commands can be told apart
// in the shared log file.
func Configure(cfg *config.Config) (*logrus.Logger, error) {
	if err := config.MustStatePaths(cfg); err != nil {
		return nil, err
	}
	logger := logrus.New()
	switch strings.ToLower(cfg.Logging.Format) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	rotator := &lumberjack.Logger{
		Filename:   cfg.Paths.LogPath,
		MaxSize:    20, // megabytes
		MaxBackups: 3,
		MaxAge:     30,
	}
	if cfg.Logging.Stdout {
		logger.SetOutput(io.MultiWriter(os.Stderr, rotator))
	} else {
		logger.SetOutput(rotator)
	}
	logger.AddHook(fieldsHook{"app": App, "pid": os.Getpid()})
	lvl, err := logrus.ParseLevel(strings.ToLower(cfg.Logging.Level))
	if err != nil {
		logger.Warnf("logging.level %q not recognised, using %s", cfg.Logging.Level, logger.GetLevel())
	} else {
		logger.SetLevel(lvl)
	}
	return logger, nil
}

// NewTestLogger returns a logger that discards everything.
func NewTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.DebugLevel)
	return logger
}

// fieldsHook adds fixed fields to entries that do not set them already.
type fieldsHook logrus.Fields

func (h fieldsHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h fieldsHook) Fire(e *logrus.Entry) error {
	for k, v := range h {
		if _, ok := e.Data[k]; !ok {
			e.Data[k] = v
		}
	}
	return nil
}
