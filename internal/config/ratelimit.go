package config

import (
	"os"
	"strconv"
)

// RateLimitConfig carries settings for the fixed-window rate limiter.
// send-code carries one per-IP tier; the chat endpoint is guarded by two
// tiers at once (per-minute burst control and a per-hour quota) and a
// request must pass both.
type RateLimitConfig struct {
	Enabled       bool
	Prefix        string
	SendPerMinute int
	ChatPerMinute int
	ChatPerHour   int
}

func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled:       envBool("RATE_LIMIT_ENABLED", true),
		Prefix:        envStr("RATE_LIMIT_PREFIX", "rl"),
		SendPerMinute: envInt("RATE_LIMIT_SEND_PER_MINUTE", 5),
		ChatPerMinute: envInt("RATE_LIMIT_CHAT_PER_MINUTE", 10),
		ChatPerHour:   envInt("RATE_LIMIT_CHAT_PER_HOUR", 120),
	}
	if cfg.SendPerMinute < 1 {
		cfg.SendPerMinute = 1
	}
	if cfg.ChatPerMinute < 1 {
		cfg.ChatPerMinute = 1
	}
	if cfg.ChatPerHour < 1 {
		cfg.ChatPerHour = 1
	}
	return cfg
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}
