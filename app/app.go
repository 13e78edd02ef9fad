package app

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"Gin_postgres_redis_av_lending/config"
	"Gin_postgres_redis_av_lending/db"
	"Gin_postgres_redis_av_lending/lending"
	"Gin_postgres_redis_av_lending/session"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// 简化别名，便于 handlers 调用
type Ctx = gin.Context
type H = gin.H

// App 聚合各依赖
type App struct {
	Router *gin.Engine
	DB     *gorm.DB
	RDB    *redis.Client
	Repo   *db.Repo
	Svc    *lending.Service
	Log    zerolog.Logger
	Config Config

	appSess *session.AppSessionStore
	codec   *session.CookieCodec
}

// Config 从环境变量读取
type Config struct {
	DatabaseURL    string
	RedisAddr      string
	RedisPwd       string
	WebOrigin      string
	Port           string
	SessionTTL     time.Duration
	SessionSecret  []byte
	AdminEmails    []string
	BootstrapEmail string
	BootstrapPwd   string
	LoginRateLimit int
	LastSeenEvery  time.Duration
	LogLevel       string
	LogFormat      string
}

// IsAdminEmail ADMIN_EMAILS 里的账号始终视为管理员
func (c Config) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, a := range c.AdminEmails {
		if a == email {
			return true
		}
	}
	return false
}

// SecureCookies 前端走 https 时 cookie 才加 Secure
func (c Config) SecureCookies() bool { return strings.HasPrefix(c.WebOrigin, "https://") }

func (a *App) AppSessions() *session.AppSessionStore { return a.appSess }
func (a *App) Cookies() *session.CookieCodec         { return a.codec }

// MustNew 连接 Postgres + Redis，任何一步失败直接退出
func MustNew() *App {
	cfg := LoadConfig()
	logger := NewLogger(cfg)

	dbConn, err := db.ConnectDB(cfg.DatabaseURL, cfg.LogLevel != "debug")
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("redis")
	}

	return New(dbConn, rdb, cfg, logger)
}

// New wires an App around already opened connections.
func New(dbConn *gorm.DB, rdb *redis.Client, cfg Config, logger zerolog.Logger) *App {
	if len(cfg.SessionSecret) == 0 {
		logger.Warn().Msg("SESSION_SECRET not set, using a random key; sessions end on restart")
		cfg.SessionSecret = session.RandomKey()
	}
	repo := db.NewRepo(dbConn)

	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(logger))
	useCORS(r, cfg)

	return &App{
		Router: r, DB: dbConn, RDB: rdb, Repo: repo, Config: cfg, Log: logger,
		Svc:     lending.New(repo, logger),
		appSess: session.NewAppSessionStore(rdb, cfg.SessionTTL),
		codec:   session.NewCookieCodec(cfg.SessionSecret, cfg.SessionTTL),
	}
}

func (a *App) Close() {
	_ = a.RDB.Close()
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func LoadConfig() Config {
	ttlHours := config.GetInt("SESSION_TTL_HOURS", 24)
	if ttlHours <= 0 {
		ttlHours = 24
	}
	var admins []string
	for _, e := range config.GetCSV("ADMIN_EMAILS") { // 例如: "admin@ex.com,ops@ex.com"
		admins = append(admins, strings.ToLower(e))
	}
	var secret []byte
	if s := os.Getenv("SESSION_SECRET"); s != "" {
		secret = []byte(s)
	}
	return Config{
		DatabaseURL:    databaseURL(),
		RedisAddr:      config.Get("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPwd:       os.Getenv("REDIS_PASSWORD"),
		WebOrigin:      config.Get("WEB_ORIGIN", "http://localhost:5173"),
		Port:           config.Get("PORT", "3001"),
		SessionTTL:     time.Duration(ttlHours) * time.Hour,
		SessionSecret:  secret,
		AdminEmails:    admins,
		BootstrapEmail: strings.ToLower(config.Get("BOOTSTRAP_ADMIN_EMAIL", "")),
		BootstrapPwd:   os.Getenv("BOOTSTRAP_ADMIN_PASSWORD"),
		LoginRateLimit: config.GetInt("LOGIN_RATE_LIMIT", 10),
		LastSeenEvery:  5 * time.Minute,
		LogLevel:       config.Get("LOG_LEVEL", "info"),
		LogFormat:      config.Get("LOG_FORMAT", "json"),
	}
}

// databaseURL DATABASE_URL 优先，否则用 DB_* 拼
func databaseURL() string {
	if v := config.Get("DATABASE_URL", ""); v != "" {
		return v
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(config.Get("DB_USER", "postgres"), os.Getenv("DB_PASSWORD")),
		Host:     fmt.Sprintf("%s:%s", config.Get("DB_HOST", "127.0.0.1"), config.Get("DB_PORT", "5432")),
		Path:     config.Get("DB_NAME", "av_lending"),
		RawQuery: "sslmode=" + config.Get("DB_SSLMODE", "disable"),
	}
	return u.String()
}
