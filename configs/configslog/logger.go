package configslog

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log yapılandırılmış (structured) logger.
var Log *zap.Logger

// SLog printf tarzı loglama için sugared logger.
var SLog *zap.SugaredLogger

func init() {
	// Ortam değişkeni okunmadan önce de loglama yapılabilmesi için
	// init sırasında varsayılan logger kurulur.
	InitLogger()
}

// InitLogger APP_ENV ve LOG_LEVEL değerlerine göre global logger'ları kurar.
func InitLogger() {
	env := strings.ToLower(os.Getenv("APP_ENV"))

	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		if level, err := zapcore.ParseLevel(levelStr); err == nil {
			cfg.Level = zap.NewAtomicLevelAt(level)
		}
	}

	logger, err := cfg.Build(zap.AddCallerSkip(0))
	if err != nil {
		// Logger kurulamazsa uygulama çalışmaya devam edemez.
		panic("logger oluşturulamadı: " + err.Error())
	}

	Log = logger
	SLog = logger.Sugar()
}

// Sync buffer'daki logları flush'lar (main'de defer ile çağrılır).
func Sync() {
	if Log != nil {
		_ = Log.Sync()
	}
}
