package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default config file location.
const ConfigPath = "config.yaml"

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	BotToken           string  `yaml:"botToken"`
	GeminiAPIKey       string  `yaml:"geminiAPIKey"`
	GenerationModel    string  `yaml:"generationModel"`
	AdminIDs           []int64 `yaml:"adminIDs"`
	ChannelID          string  `yaml:"channelID"`
	GroupID            string  `yaml:"groupID"`
	ModerationChatID   string  `yaml:"moderationChatID"`
	WebsiteURL         string  `yaml:"websiteURL"`
	NotificationTime   string  `yaml:"notificationTime"`
	Timezone           string  `yaml:"timezone"`
	DatabaseURL        string  `yaml:"databaseURL"`
	RedisAddr          string  `yaml:"redisAddr"`
	RedisPassword      string  `yaml:"redisPassword"`
	AIQueriesPerMinute int     `yaml:"aiQueriesPerMinute"`
	SendIntervalMs     int     `yaml:"sendIntervalMs"`
	LogLevel           string  `yaml:"logLevel"`
}

// Load reads config from path (defaults to config.yaml).
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{
		GenerationModel:    "gemini-1.5-flash",
		NotificationTime:   "08:00",
		AIQueriesPerMinute: 5,
		SendIntervalMs:     50,
	}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	// Override with environment variables
	if v := os.Getenv("BOT_TOKEN"); v != "" {
		cfg.BotToken = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.GeminiAPIKey = v
	}
	if v := os.Getenv("GEMINI_GENERATION_MODEL"); v != "" {
		cfg.GenerationModel = v
	}
	if v := os.Getenv("ADMIN_IDS"); v != "" {
		ids, err := parseAdminIDs(v)
		if err != nil {
			return cfg, fmt.Errorf("config: ADMIN_IDS: %w", err)
		}
		cfg.AdminIDs = ids
	}
	if v := os.Getenv("CHANNEL_ID"); v != "" {
		cfg.ChannelID = v
	}
	if v := os.Getenv("GROUP_ID"); v != "" {
		cfg.GroupID = v
	}
	if v := os.Getenv("MODERATION_CHAT_ID"); v != "" {
		cfg.ModerationChatID = v
	}
	if v := os.Getenv("WEBSITE_URL"); v != "" {
		cfg.WebsiteURL = v
	}
	if v := os.Getenv("NOTIFICATION_TIME"); v != "" {
		cfg.NotificationTime = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("TIMEZONE"); v != "" {
		cfg.Timezone = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// NotificationClock parses notificationTime ("HH:MM") into hour and
// minute.
func (c FileConfig) NotificationClock() (hour, minute int, err error) {
	parts := strings.Split(c.NotificationTime, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("notificationTime %q: want HH:MM", c.NotificationTime)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("notificationTime %q: bad hour", c.NotificationTime)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("notificationTime %q: bad minute", c.NotificationTime)
	}
	return hour, minute, nil
}

func parseAdminIDs(csv string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(csv, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad admin id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func validateConfig(cfg FileConfig) error {
	if cfg.BotToken == "" {
		return errors.New("config: botToken is required (set in config.yaml or BOT_TOKEN)")
	}
	if cfg.GeminiAPIKey == "" {
		return errors.New("config: geminiAPIKey is required (set in config.yaml or GEMINI_API_KEY)")
	}
	if cfg.ChannelID == "" {
		return errors.New("config: channelID is required (set in config.yaml)")
	}
	if cfg.GroupID == "" {
		return errors.New("config: groupID is required (set in config.yaml)")
	}
	if cfg.DatabaseURL == "" {
		return errors.New("config: databaseURL is required (set in config.yaml or DATABASE_URL)")
	}
	if _, _, err := cfg.NotificationClock(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if cfg.AIQueriesPerMinute < 0 {
		return errors.New("config: aiQueriesPerMinute must not be negative")
	}
	if cfg.SendIntervalMs < 0 {
		return errors.New("config: sendIntervalMs must not be negative")
	}
	return nil
}
