package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr  string
	DBDSN     string
	JWTSecret string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Presence heartbeat the clients are expected to send. A profile
	// claiming online/away is reported offline once last_seen falls
	// behind by more than 3 heartbeats.
	PresenceHeartbeat time.Duration

	// Messages are purged this long after creation.
	MessageRetention time.Duration

	RetentionSweepInterval time.Duration
}

func (c Config) PresenceStaleAfter() time.Duration {
	return c.PresenceHeartbeat * 3
}

func Load() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	// DSN demo:
	// app:apppass@tcp(127.0.0.1:3306)/plantpulse_chat?charset=utf8mb4&parseTime=true&loc=Local
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "app:apppass@tcp(127.0.0.1:3306)/plantpulse_chat?charset=utf8mb4&parseTime=true&loc=Local"
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-change-me"
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "127.0.0.1:6379"
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	heartbeat := 30 * time.Second
	if v := os.Getenv("PRESENCE_HEARTBEAT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			heartbeat = time.Duration(n) * time.Second
		}
	}

	retentionDays := 60
	if v := os.Getenv("MESSAGE_RETENTION_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			retentionDays = n
		}
	}

	sweep := 15 * time.Minute
	if v := os.Getenv("RETENTION_SWEEP_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			sweep = time.Duration(n) * time.Minute
		}
	}

	return Config{
		HTTPAddr:  addr,
		DBDSN:     dsn,
		JWTSecret: secret,

		RedisAddr:     redisAddr,
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		PresenceHeartbeat:      heartbeat,
		MessageRetention:       time.Duration(retentionDays) * 24 * time.Hour,
		RetentionSweepInterval: sweep,
	}
}
