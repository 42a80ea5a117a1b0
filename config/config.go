package config

import (
	"os"
	"strconv"
	"strings"

	"anydl/internal/model"

	"github.com/joho/godotenv"
)

// Load loads configuration from environment variables
func Load() *model.Config {
	godotenv.Load()

	return &model.Config{
		Server: model.ServerConfig{
			Port:        getEnvInt("SERVER_PORT", 8080),
			Host:        getEnvStr("SERVER_HOST", "0.0.0.0"),
			Timeout:     getEnvInt("SERVER_TIMEOUT", 300),
			FrontendDir: getEnvStr("FRONTEND_DIR", "./frontend"),
		},
		Storage: model.StorageConfig{
			DownloadDir:     getEnvStr("DOWNLOAD_DIR", "./downloads"),
			MaxVideoSizeMB:  getEnvInt("MAX_VIDEO_SIZE_MB", 300),
			CleanupInterval: getEnvInt("STORAGE_CLEANUP_INTERVAL", 3600),
			FileTTLSeconds:  getEnvInt("FILE_TTL_SECONDS", 86400),
		},
		Extractor: model.ExtractorConfig{
			BinaryPath:    getEnvStr("YTDLP_PATH", "yt-dlp"),
			FFmpegPath:    getEnvStr("FFMPEG_PATH", ""),
			Timeout:       getEnvInt("EXTRACTOR_TIMEOUT", 300),
			SocketTimeout: getEnvInt("EXTRACTOR_SOCKET_TIMEOUT", 30),
			Retries:       getEnvInt("EXTRACTOR_RETRIES", 3),
		},
		Logging: model.LoggingConfig{
			Level:    getEnvStr("LOG_LEVEL", "info"),
			FilePath: getEnvStr("LOG_FILE", "./log/app.log"),
		},
		Security: model.SecurityConfig{
			MaxURLLength:   getEnvInt("MAX_URL_LENGTH", 2048),
			RequestTimeout: getEnvInt("REQUEST_TIMEOUT", 60),
		},
		History: model.HistoryConfig{
			MysqlDSN: getEnvStr("MYSQL_DSN", ""),
			ListMax:  getEnvInt("HISTORY_LIST_MAX", 50),
		},
		Redis: model.RedisConfig{
			Addr:       getEnvStr("REDIS_ADDR", ""),
			Password:   getEnvStr("REDIS_PASSWORD", ""),
			DB:         getEnvInt("REDIS_DB", 0),
			TTLSeconds: getEnvInt("REDIS_TTL_SECONDS", 1800),
		},
		RateLimit: model.RateLimitConfig{
			Enabled:           getEnvBool("RATELIMIT_ENABLED", true),
			RequestsPerMinute: getEnvInt("RATELIMIT_REQUESTS_PER_MINUTE", 60),
			CleanupInterval:   getEnvInt("RATELIMIT_CLEANUP_INTERVAL", 1800),
		},
		Quota: model.QuotaConfig{
			Enabled:      getEnvBool("QUOTA_ENABLED", false),
			DailyLimitMB: getEnvInt64("QUOTA_DAILY_LIMIT_MB", 1000),
			ResetHour:    getEnvInt("QUOTA_RESET_HOUR", 0),
		},
	}
}

func getEnvStr(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	valStr := getEnvStr(key, "")
	if val, err := strconv.Atoi(valStr); err == nil {
		return val
	}
	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) int64 {
	valStr := getEnvStr(key, "")
	if val, err := strconv.ParseInt(valStr, 10, 64); err == nil {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	valStr := strings.ToLower(getEnvStr(key, ""))
	if valStr == "true" || valStr == "1" || valStr == "yes" {
		return true
	}
	if valStr == "false" || valStr == "0" || valStr == "no" {
		return false
	}
	return defaultVal
}
