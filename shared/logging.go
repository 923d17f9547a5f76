package shared

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// ConfigureLogging sets the global logrus level and formatter. Unknown levels
// fall back to info.
func ConfigureLogging(level, format string) {
	logrus.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.Warnf("Invalid LOG_LEVEL value: %s, using info", level)
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)

	if strings.EqualFold(format, "json") {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}
