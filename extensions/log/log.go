package log

import (
	"os"

	E "github.com/sagernet/sing/common/exceptions"
	"github.com/sirupsen/logrus"
)

func init() {
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
}

func NewLogger(tag string) logrus.FieldLogger {
	return logrus.StandardLogger().WithField("prefix", tag)
}

func SetLevel(name string) error {
	if name == "" {
		return nil
	}
	level, err := logrus.ParseLevel(name)
	if err != nil {
		return E.New("unknown log level ", name)
	}
	logrus.SetLevel(level)
	return nil
}
