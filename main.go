package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
	"go.uber.org/zap"

	"formulier.link/configs"
	"formulier.link/configs/configslog"
	"formulier.link/pkg/workerpool"
	"formulier.link/plugins"
	"formulier.link/plugins/registration"
	"formulier.link/routes"
)

func main() {
	configs.LoadEnv()
	configslog.InitLogger()
	defer configslog.Sync()

	db := configs.ConnectDB()

	// Kayıt (registration) işleri için arka plan havuzu
	poolCtx, poolCancel := context.WithCancel(context.Background())
	defer poolCancel()
	pool := workerpool.New(poolCtx, 4, 64)

	mailer := registration.NewSMTPMailerFromEnv()
	pluginSet := plugins.NewDefaultSet(db, mailer)

	engine := html.New("./views", ".html")
	app := fiber.New(fiber.Config{
		Views:        engine,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	routes.SetupRoutes(app, routes.Deps{
		Set:    pluginSet,
		Pool:   pool,
		Mailer: mailer,
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		configslog.SLog.Info("Kapanış sinyali alındı, sunucu durduruluyor...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		pool.Shutdown(shutdownCtx)
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			configslog.Log.Error("Sunucu kapanışında hata", zap.Error(err))
		}
	}()

	addr := os.Getenv("APP_ADDR")
	if addr == "" {
		addr = ":3000"
	}
	configslog.SLog.Infof("Sunucu dinlemeye başlıyor: %s", addr)
	if err := app.Listen(addr); err != nil {
		configslog.Log.Fatal("Sunucu başlatılamadı", zap.Error(err))
	}
}
