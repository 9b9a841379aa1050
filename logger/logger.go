package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nijaru/yt-transcript/config"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds the process logger. When cfg.Dir is set, output is mirrored to a
// rotating file in that directory.
func New(cfg config.LogConfig) (*logrus.Logger, error) {
	log := logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if strings.EqualFold(cfg.Format, "text") {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	var out io.Writer = os.Stdout
	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, os.ModePerm); err != nil {
			return nil, errors.Wrap(err, "failed to create log directory")
		}
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   filepath.Join(cfg.Dir, "app.log"),
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		})
	}
	log.SetOutput(out)

	return log, nil
}
