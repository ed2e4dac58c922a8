package utils

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvOrDefault returns ENV value or fallback default.
func EnvOrDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}

// EnvInt parses an integer variable, falling back to def when unset or malformed.
func EnvInt(key string, def int) int {
	raw := EnvOrDefault(key, "")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("warning: %s=%q is not an integer, using %d", key, raw, def)
		return def
	}
	return n
}

func EnvBool(key string, def bool) bool {
	raw := EnvOrDefault(key, "")
	if raw == "" {
		return def
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("warning: %s=%q is not a boolean, using %t", key, raw, def)
		return def
	}
	return b
}

// EnvLocation loads an IANA timezone name such as "Asia/Bangkok".
func EnvLocation(key string) *time.Location {
	name := EnvOrDefault(key, "Local")
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("warning: unknown timezone %s=%q, using Local", key, name)
		return time.Local
	}
	return loc
}
