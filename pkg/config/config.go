package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerAddr   string
	TrustProxy   bool     // honor X-Forwarded-For / X-Real-IP
	MaxBodyBytes int64    // bytes for /isGenuineLead payload
	Outputs      []string // enabled sinks: log, kafka, postgres

	// IPQualityScore upstream
	IPQSAPIKey     string
	IPQSBaseURL    string
	IPQSTimeout    time.Duration
	IPQSStrictness int

	// Redis lookup cache; empty addr disables caching
	RedisAddr     string
	RedisCacheTTL time.Duration

	// Optional HMAC request auth; empty secret disables it
	HMACSecret string
}

func getOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getBool(k string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(k)))
	switch v {
	case "1", "t", "true", "y", "yes":
		return true
	case "0", "f", "false", "n", "no":
		return false
	}
	return def
}

func getInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getInt64(k string, def int64) int64 {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func getDuration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getStringSlice(k, def string) []string {
	v := os.Getenv(k)
	if v == "" {
		v = def
	}
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func Load() Config {
	// .env is optional; deployments usually set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file found, using environment variables")
	}

	return Config{
		ServerAddr:   getOr("SERVER_ADDR", ":8000"),
		TrustProxy:   getBool("TRUST_PROXY", true),
		MaxBodyBytes: getInt64("MAX_BODY_BYTES", 1<<20), // 1 MiB default
		Outputs:      getStringSlice("OUTPUTS", "log"),  // default to log only

		IPQSAPIKey:     getOr("IP_QUALITY_SCORE_API_KEY", ""),
		IPQSBaseURL:    getOr("IPQS_BASE_URL", "https://www.ipqualityscore.com/api/json/ip"),
		IPQSTimeout:    getDuration("IPQS_TIMEOUT", 10*time.Second),
		IPQSStrictness: getInt("IPQS_STRICTNESS", 1),

		RedisAddr:     getOr("REDIS_ADDR", ""),
		RedisCacheTTL: getDuration("REDIS_CACHE_TTL", 15*time.Minute),

		HMACSecret: getOr("HMAC_SECRET", ""),
	}
}
