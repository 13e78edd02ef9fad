package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// LoadEnv 读取 .env（不存在就算了，直接用进程环境变量）
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

func Get(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func GetInt(key string, def int) int {
	v, err := strconv.Atoi(Get(key, ""))
	if err != nil {
		return def
	}
	return v
}

// GetCSV splits a comma separated value, dropping blanks.
func GetCSV(key string) []string {
	var out []string
	for _, s := range strings.Split(os.Getenv(key), ",") {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}
