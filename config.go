package courier

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

type AppConfig struct {
	Mode    string
	ApiPort string

	RequestConfig struct {
		TimeoutSeconds int
		MaxWorkers     int
		PollInterval   time.Duration
	}
	SmtpConfig struct {
		DialTimeout      time.Duration
		SanitizeHTML     bool
		ConnectivityAddr string
		AttachmentRoot   string
	}
	JWTConfig struct {
		Secret            string
		Expiration        int // in minutes
		RefreshExpiration int // in days
	}
	RateLimit struct {
		Requests int
		Window   time.Duration
	}
	// Empty Host disables the backend.
	MainDatabase struct {
		Host         string
		Port         string
		User         string
		Password     string
		DatabaseName string
		SSLMode      string
	}
	RedisConfig struct {
		Host     string
		Port     string
		Password string
		DB       int
		TaskTTL  time.Duration
	}
	NatsURL           string
	UserDirectoryFile string
}

var config AppConfig

// InitConfig loads envfile, builds the configuration and connects the optional backends.
func InitConfig(envfile string) {
	err := godotenv.Load(envfile)
	if err != nil {
		log.Fatal(fmt.Sprintf("Error loading %s file: %s", envfile, err))
	}
	config = LoadConfig()
	Logger = initLogger(config.Mode)

	if config.MainDatabase.Host != "" {
		DB = connectToPostgres(config.MainDatabase.Host, config.MainDatabase.User, config.MainDatabase.Password, config.MainDatabase.DatabaseName, config.MainDatabase.Port, config.MainDatabase.SSLMode)
	}
	if config.RedisConfig.Host != "" {
		Redis = connectToRedis(config.RedisConfig.Host, config.RedisConfig.Port, config.RedisConfig.Password, config.RedisConfig.DB)
	}
	if config.NatsURL != "" {
		NATS = connectToNats(config.NatsURL)
	}
}

// LoadConfig reads the configuration from the process environment without touching any backend.
func LoadConfig() AppConfig {
	var cfg AppConfig
	cfg.Mode = getEnvOrPanic("RUN_MODE")
	cfg.ApiPort = getEnvOrPanic("API_PORT")

	cfg.RequestConfig.TimeoutSeconds = getIntEnvOrDefault("REQUEST_TIMEOUT_SECONDS", 60)
	cfg.RequestConfig.MaxWorkers = getIntEnvOrDefault("WORKER_POOL_SIZE", 16)
	cfg.RequestConfig.PollInterval = time.Duration(getIntEnvOrDefault("POLL_INTERVAL_MS", 50)) * time.Millisecond

	cfg.SmtpConfig.DialTimeout = time.Duration(getIntEnvOrDefault("SMTP_DIAL_TIMEOUT_SECONDS", 30)) * time.Second
	cfg.SmtpConfig.SanitizeHTML = GetEnv("EMAIL_SANITIZE_HTML", "false") == "true"
	cfg.SmtpConfig.ConnectivityAddr = GetEnv("CONNECTIVITY_CHECK_ADDR", "")
	cfg.SmtpConfig.AttachmentRoot = GetEnv("ATTACHMENT_ROOT", "")

	cfg.JWTConfig.Secret = GetEnv("JWT_SECRET", "")
	cfg.JWTConfig.Expiration = getIntEnvOrDefault("JWT_EXPIRATION_MINUTES", 60)
	cfg.JWTConfig.RefreshExpiration = getIntEnvOrDefault("JWT_REFRESH_EXPIRATION_DAYS", 30)

	cfg.RateLimit.Requests = getIntEnvOrDefault("RATE_LIMIT_REQUESTS", 30)
	cfg.RateLimit.Window = time.Duration(getIntEnvOrDefault("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second

	cfg.MainDatabase.Host = GetEnv("DB_HOSTNAME", "")
	cfg.MainDatabase.Port = GetEnv("DB_PORT", "5432")
	cfg.MainDatabase.User = GetEnv("DB_USERNAME", "")
	cfg.MainDatabase.Password = GetEnv("DB_PASSWORD", "")
	cfg.MainDatabase.DatabaseName = GetEnv("DB_NAME", "")
	cfg.MainDatabase.SSLMode = GetEnv("DB_SSL_MODE", "disable")

	cfg.RedisConfig.Host = GetEnv("REDIS_HOST", "")
	cfg.RedisConfig.Port = GetEnv("REDIS_PORT", "6379")
	cfg.RedisConfig.Password = GetEnv("REDIS_PASSWORD", "")
	cfg.RedisConfig.DB = getIntEnvOrDefault("REDIS_DB", 0)
	cfg.RedisConfig.TaskTTL = time.Duration(getIntEnvOrDefault("TASK_TTL_MINUTES", 60)) * time.Minute

	cfg.NatsURL = GetEnv("NATS_URL", "")
	cfg.UserDirectoryFile = GetEnv("USER_DIRECTORY_FILE", "")
	return cfg
}

func GetConfig() AppConfig {
	return config
}

func getEnvOrPanic(key string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Fatalf("%s must be set", key)
	}
	return value
}

func GetEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntEnvOrDefault(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return value
}

func connectToPostgres(host string, username string, password string, dbname string, port string, ssl string) *gorm.DB {
	var err error
	var db *gorm.DB
	var conn *sql.DB

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		host, username, password, dbname, port, ssl)
	if db, err = gorm.Open(postgres.Open(dsn),
		&gorm.Config{
			Logger: logger.New(
				log.New(os.Stdout, "\r\n", log.LstdFlags),
				logger.Config{
					SlowThreshold: 0,
					LogLevel:      logger.Error,
				},
			),
			TranslateError: true,
			NamingStrategy: schema.NamingStrategy{
				SingularTable: true,
			}}); err != nil {
		panic(err)
	}
	if conn, err = db.DB(); err != nil {
		panic(err)
	}
	conn.SetMaxIdleConns(5)
	conn.SetMaxOpenConns(5)
	conn.SetConnMaxLifetime(time.Hour)
	return db
}

func initLogger(mode string) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "15:04:05",
		NoColor:    false,
		FormatLevel: func(i interface{}) string {
			return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
		},
		FormatMessage: func(i interface{}) string {
			return fmt.Sprintf("  %s  ", i)
		},
		FormatFieldName: func(i interface{}) string {
			return fmt.Sprintf("%s=", i)
		},
		FormatFieldValue: func(i interface{}) string {
			return fmt.Sprintf("%s", i)
		},
	}

	level := zerolog.InfoLevel
	if mode == "dev" {
		level = zerolog.DebugLevel
	}
	return zerolog.New(output).Level(level).With().Timestamp().Caller().Logger()
}

func connectToRedis(host string, port string, password string, db int) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		panic(fmt.Sprintf("Failed to connect to Redis: %v", err))
	}

	return client
}

func connectToNats(url string) *nats.Conn {
	nc, err := nats.Connect(url, nats.Name("courier"), nats.MaxReconnects(-1))
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to NATS: %v", err))
	}
	return nc
}
