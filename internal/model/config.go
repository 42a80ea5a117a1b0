package model

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Extractor ExtractorConfig
	Logging   LoggingConfig
	Security  SecurityConfig
	History   HistoryConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Quota     QuotaConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port        int
	Host        string
	Timeout     int // seconds
	FrontendDir string
}

// StorageConfig holds storage configuration
type StorageConfig struct {
	DownloadDir     string
	MaxVideoSizeMB  int
	CleanupInterval int // seconds
	FileTTLSeconds  int // Time to live for downloaded files
}

// ExtractorConfig holds yt-dlp configuration
type ExtractorConfig struct {
	BinaryPath    string
	FFmpegPath    string
	Timeout       int // seconds, per invocation
	SocketTimeout int // seconds, passed to yt-dlp
	Retries       int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string
	FilePath string
}

// SecurityConfig holds security configuration
type SecurityConfig struct {
	MaxURLLength   int
	RequestTimeout int // seconds
}

// HistoryConfig holds download history persistence configuration.
// An empty DSN selects the in-memory store.
type HistoryConfig struct {
	MysqlDSN string
	ListMax  int
}

// RedisConfig holds the optional metadata cache configuration.
// An empty Addr disables caching.
type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	TTLSeconds int
}

// RateLimitConfig holds per-IP request limiting configuration
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	CleanupInterval   int // seconds
}

// QuotaConfig holds per-IP daily download volume configuration
type QuotaConfig struct {
	Enabled      bool
	DailyLimitMB int64
	ResetHour    int // hour (0-23) at which usage counters reset
}
