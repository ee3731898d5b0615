package providers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"qrtrack/internal/structures"

	"github.com/rs/zerolog"
)

type TypeEnum int

const (
	TypeApp TypeEnum = iota
	TypeGet
	TypePost
)

var typeNames = map[TypeEnum]string{
	TypeApp:  "app",
	TypeGet:  "get",
	TypePost: "post",
}

func GetLogTypeByRequestType(method string) TypeEnum {
	if method == http.MethodPost {
		return TypePost
	}
	return TypeGet
}

type Logger interface {
	Errorf(t TypeEnum, format string, args ...interface{})
	Warnf(t TypeEnum, format string, args ...interface{})
	Debugf(t TypeEnum, format string, args ...interface{})
	Infof(t TypeEnum, format string, args ...interface{})
	Fatalf(t TypeEnum, format string, args ...interface{})
	Close()
}

// LogProvider writes one log file per request type so that scan traffic
// does not drown application-level events.
type LogProvider struct {
	loggers map[TypeEnum]zerolog.Logger
	files   []*os.File
}

func NewLogProvider(conf *structures.Config) (Logger, error) {
	level, err := zerolog.ParseLevel(conf.Logger.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", conf.Logger.Level, err)
	}

	lp := &LogProvider{
		loggers: make(map[TypeEnum]zerolog.Logger),
	}

	for t, name := range typeNames {
		path := filepath.Join(conf.Logger.Dir, name+".log")
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, os.FileMode(conf.Logger.Mode))
		if err != nil {
			lp.Close()
			return nil, fmt.Errorf("cannot open log file %s: %w", path, err)
		}
		lp.files = append(lp.files, file)
		lp.loggers[t] = zerolog.New(file).Level(level).With().Timestamp().Logger()
	}

	return lp, nil
}

func (lp *LogProvider) logger(t TypeEnum) zerolog.Logger {
	if l, ok := lp.loggers[t]; ok {
		return l
	}
	return lp.loggers[TypeApp]
}

func (lp *LogProvider) Errorf(t TypeEnum, format string, args ...interface{}) {
	l := lp.logger(t)
	l.Error().Msgf(format, args...)
}

func (lp *LogProvider) Warnf(t TypeEnum, format string, args ...interface{}) {
	l := lp.logger(t)
	l.Warn().Msgf(format, args...)
}

func (lp *LogProvider) Debugf(t TypeEnum, format string, args ...interface{}) {
	l := lp.logger(t)
	l.Debug().Msgf(format, args...)
}

func (lp *LogProvider) Infof(t TypeEnum, format string, args ...interface{}) {
	l := lp.logger(t)
	l.Info().Msgf(format, args...)
}

func (lp *LogProvider) Fatalf(t TypeEnum, format string, args ...interface{}) {
	l := lp.logger(t)
	l.Fatal().Msgf(format, args...)
}

func (lp *LogProvider) Close() {
	for _, f := range lp.files {
		_ = f.Close()
	}
	lp.files = nil
}
