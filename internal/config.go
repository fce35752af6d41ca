/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Backend string

const (
	BackendMemory Backend = "memory"
	BackendDisk   Backend = "disk"
	BackendS3     Backend = "s3"
)

// Config holds settings shared by the command line tool and the bot.
type Config struct {
	Backend        Backend
	DataDir        string
	S3Bucket       string
	S3Gzip         bool
	MaxRetries     int
	RosterCacheTTL time.Duration

	DiscordPublicKey  string
	DiscordListenAddr string
	// DiscordBotToken and DiscordAppID are only needed to register the
	// slash command.
	DiscordBotToken string
	DiscordAppID    string
}

// LoadConfig reads an optional .env file from the working directory and
// then the process environment. Variables already set in the environment
// win over the .env file.
func LoadConfig() (*Config, error) {
	// a missing .env is normal outside development
	_ = godotenv.Load()

	return configFromEnv(os.Getenv)
}

func configFromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Backend:           BackendDisk,
		RosterCacheTTL:    DefaultRosterCacheTTL,
		DiscordListenAddr: DefaultListenAddr,
	}

	if v := getenv("BRACKETMAKER_BACKEND"); v != "" {
		switch b := Backend(strings.ToLower(v)); b {
		case BackendMemory, BackendDisk, BackendS3:
			cfg.Backend = b
		default:
			return nil, fmt.Errorf("invalid BRACKETMAKER_BACKEND %q: want memory, disk or s3", v)
		}
	}

	cfg.DataDir = getenv("BRACKETMAKER_DATA_DIR")
	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("unable to determine home directory: %w", err)
		}
		cfg.DataDir = filepath.Join(home, DefaultDataDirName)
	}

	cfg.S3Bucket = getenv("BRACKETMAKER_S3_BUCKET")
	if cfg.Backend == BackendS3 && cfg.S3Bucket == "" {
		return nil, fmt.Errorf("BRACKETMAKER_S3_BUCKET must be set for the s3 backend")
	}
	if v := getenv("BRACKETMAKER_S3_GZIP"); v != "" {
		gz, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid BRACKETMAKER_S3_GZIP: %w", err)
		}
		cfg.S3Gzip = gz
	}

	if v := getenv("BRACKETMAKER_MAX_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid BRACKETMAKER_MAX_RETRIES: %w", err)
		}
		if n < 1 {
			return nil, fmt.Errorf("BRACKETMAKER_MAX_RETRIES must be positive, got %d", n)
		}
		cfg.MaxRetries = n
	}

	if v := getenv("BRACKETMAKER_ROSTER_CACHE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid BRACKETMAKER_ROSTER_CACHE_TTL: %w", err)
		}
		cfg.RosterCacheTTL = ttl
	}

	cfg.DiscordPublicKey = getenv("DISCORD_PUBLIC_KEY")
	cfg.DiscordBotToken = getenv("DISCORD_BOT_TOKEN")
	cfg.DiscordAppID = getenv("DISCORD_APP_ID")
	if v := getenv("DISCORD_LISTEN_ADDR"); v != "" {
		cfg.DiscordListenAddr = v
	}

	return cfg, nil
}
