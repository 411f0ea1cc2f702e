package configs

import (
	"github.com/joho/godotenv"

	"formulier.link/configs/configslog"
)

// LoadEnv .env dosyasını yükler. Dosya yoksa (örn. production)
// ortam değişkenleri olduğu gibi kullanılır.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		configslog.SLog.Info(".env dosyası bulunamadı, mevcut ortam değişkenleri kullanılıyor.")
	}
	// .env APP_ENV / LOG_LEVEL değiştirmiş olabilir, logger yeniden kurulur.
	configslog.InitLogger()
}
