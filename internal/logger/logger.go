package logger

import (
	"context"
	"io"
	"os"

	"github.com/maxaizer/hh-hire/internal/config"
	"github.com/maxaizer/hh-hire/internal/metrics"
	"github.com/maxaizer/hh-hire/pkg/loki"
	log "github.com/sirupsen/logrus"
)

const ErrorTypeField = "error_type"

const (
	ErrorTypeDb        = "db"
	ErrorTypeHhApi     = "hh_api"
	ErrorTypeIntegrity = "integrity"
	ErrorTypeConflict  = "conflict"
	ErrorTypeTgApi     = "tg_api"
	ErrorTypeJob       = "job"
)

var (
	logFile    *os.File
	lokiPusher *loki.Pusher
)

type prometheusHook struct{}

func (h *prometheusHook) Fire(entry *log.Entry) error {
	errorType, ok := entry.Data[ErrorTypeField].(string)
	if !ok {
		errorType = "unknown"
	}

	metrics.ErrorsCounter.WithLabelValues(errorType).Inc()
	return nil
}

func (h *prometheusHook) Levels() []log.Level {
	return []log.Level{
		log.ErrorLevel,
		log.FatalLevel,
		log.PanicLevel,
	}
}

func Setup(ctx context.Context, cfg config.LoggerConfig) {

	logDir := "./logs"
	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.Fatalf("Failed to create log directory: %v", err)
	}

	var err error
	logFile, err = os.OpenFile(logDir+"/"+cfg.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}

	log.SetOutput(io.MultiWriter(os.Stdout, logFile))
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05.000 -0700",
	})
	log.SetReportCaller(true)
	log.AddHook(&prometheusHook{})

	level := parseLevel(cfg.LogLevel)
	log.SetLevel(level)

	if cfg.LokiURL != "" {
		lokiCfg := loki.Config{
			Url:      cfg.LokiURL,
			Username: cfg.LokiUser,
			Password: cfg.LokiPassword,
			Labels:   map[string]string{"app": cfg.AppName},
		}
		if err = addLokiHook(ctx, lokiCfg, level); err != nil {
			log.Errorf("Failed to enable Loki logging: %v", err)
		}
	}
}

func parseLevel(level config.LogLevel) log.Level {
	switch level {
	case config.LevelDebug:
		return log.DebugLevel
	case config.LevelWarning:
		return log.WarnLevel
	case config.LevelError:
		return log.ErrorLevel
	case config.LevelFatal:
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

func Cleanup() {
	if lokiPusher != nil {
		lokiPusher.Stop()
	}
	if logFile != nil {
		_ = logFile.Close()
	}
}
