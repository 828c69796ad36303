package genericconf

import (
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"
	"golang.org/x/exp/slog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ToSlogLevel parses a level name or a legacy numeric verbosity.
func ToSlogLevel(str string) (slog.Level, error) {
	switch strings.ToUpper(str) {
	case "TRACE":
		return log.LevelTrace, nil
	case "DEBUG":
		return log.LevelDebug, nil
	case "INFO":
		return log.LevelInfo, nil
	case "WARN":
		return log.LevelWarn, nil
	case "ERROR":
		return log.LevelError, nil
	case "CRIT":
		return log.LevelCrit, nil
	default:
		legacyLevel, err := strconv.Atoi(str)
		if err != nil {
			return log.LevelTrace, errors.Errorf("invalid log-level %q", str)
		}
		return log.FromLegacyLevel(legacyLevel), nil
	}
}

func HandlerFromLogType(logType string, output io.Writer) (slog.Handler, error) {
	if logType == "plaintext" {
		return log.NewTerminalHandler(output, false), nil
	}
	if logType == "json" {
		return log.JSONHandler(output), nil
	}
	return nil, errors.Errorf("invalid log-type %q", logType)
}

var (
	fileLoggerMutex sync.Mutex
	fileLogger      *lumberjack.Logger
)

// fileLoggerWriter swaps in a rotating file writer, closing any previous
// one so InitLog stays safe to call more than once.
func fileLoggerWriter(config *FileLoggingConfig) (io.Writer, error) {
	fileLoggerMutex.Lock()
	defer fileLoggerMutex.Unlock()
	if fileLogger != nil {
		if err := fileLogger.Close(); err != nil {
			return nil, err
		}
	}
	fileLogger = &lumberjack.Logger{
		Filename:   config.File,
		MaxSize:    config.MaxSize,
		MaxAge:     config.MaxAge,
		MaxBackups: config.MaxBackups,
		LocalTime:  config.LocalTime,
		Compress:   config.Compress,
	}
	return fileLogger, nil
}

// InitLog installs the default logger: terminal or json formatting,
// glog-style verbosity filtering, optionally teed into a rotating file.
func InitLog(logType, logLevel string, fileLoggingConfig *FileLoggingConfig) error {
	level, err := ToSlogLevel(logLevel)
	if err != nil {
		return err
	}
	var output io.Writer = os.Stderr
	if fileLoggingConfig != nil && fileLoggingConfig.Enable {
		fileWriter, err := fileLoggerWriter(fileLoggingConfig)
		if err != nil {
			return errors.Wrap(err, "initializing file logging")
		}
		output = io.MultiWriter(os.Stderr, fileWriter)
	}
	handler, err := HandlerFromLogType(logType, output)
	if err != nil {
		return err
	}
	glogger := log.NewGlogHandler(handler)
	glogger.Verbosity(level)
	log.SetDefault(log.NewLogger(glogger))
	return nil
}
