package logging

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Log writes to stderr so that extracted JSON on stdout stays clean
var Log *logrus.Logger

func init() {
	Log = logrus.New()
	Log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
	})
	Log.SetOutput(os.Stderr)
	Log.SetLevel(logrus.InfoLevel)
}

// SetLevel applies a level name such as "debug" or "warn". Unknown names keep info.
func SetLevel(name string) {
	if name == "" {
		return
	}
	level, err := logrus.ParseLevel(name)
	if err != nil {
		Log.Warnf("Unknown log level %q, using info", name)
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)
}
