package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config holds the application configuration
type Config struct {
	// Remote store (Drive-style REST API)
	StoreBaseURL      string `json:"store_base_url"`        // e.g. "https://www.googleapis.com/drive/v3"
	StoreUploadURL    string `json:"store_upload_url"`      // e.g. "https://www.googleapis.com/upload/drive/v3"
	StoreAccessToken  string `json:"store_access_token"`    // bearer token for the store API
	SourceFolderID    string `json:"source_folder_id"`      // folder scanned for unprocessed videos
	ProcessedFolderID string `json:"processed_folder_id"`   // folder the public reels are uploaded to

	// Publish endpoint (Graph-style REST API)
	PublishBaseURL     string `json:"publish_base_url"` // e.g. "https://graph.facebook.com/v17.0"
	PublishAccountID   string `json:"publish_account_id"`
	PublishAccessToken string `json:"publish_access_token"`
	CaptionTemplate    string `json:"caption_template"` // caption text; "%s" is replaced with the post date

	// Video processing
	FFmpegPath              string  `json:"ffmpeg_path"`
	WatermarkPath           string  `json:"watermark_path"`
	WatermarkWidth          int     `json:"watermark_width"`           // watermark is scaled to this width, aspect preserved
	CanvasWidth             int     `json:"canvas_width"`              // portrait output canvas
	CanvasHeight            int     `json:"canvas_height"`
	LiveHeight              int     `json:"live_height"`               // height of the live-video region inside the canvas
	MaxSegmentSeconds       float64 `json:"max_segment_seconds"`       // bounded reel duration
	BounceCapSeconds        float64 `json:"bounce_cap_seconds"`        // watermark animation window
	TranscodeTimeoutSeconds int     `json:"transcode_timeout_seconds"` // wall-clock limit per ffmpeg invocation

	// Scheduling: either a fixed interval or a daily wall-clock hour
	SweepIntervalMinutes int `json:"sweep_interval_minutes"` // 0 disables the interval trigger
	DailyHour            int `json:"daily_hour"`             // -1 disables the daily trigger

	// Infrastructure
	TempDir            string `json:"temp_dir"`
	DatabasePath       string `json:"database_path"`
	HTTPTimeoutSeconds int    `json:"http_timeout_seconds"`
	WebAddr            string `json:"web_addr"`
	WebPort            int    `json:"web_port"`
	LogPath            string `json:"log_path"`
	LogLevel           string `json:"log_level"`
}

// DefaultConfig returns a new Config with default values
func DefaultConfig() *Config {
	return &Config{
		StoreBaseURL:            "https://www.googleapis.com/drive/v3",
		StoreUploadURL:          "https://www.googleapis.com/upload/drive/v3",
		PublishBaseURL:          "https://graph.facebook.com/v17.0",
		CaptionTemplate:         "Posted %s",
		FFmpegPath:              "ffmpeg",
		WatermarkWidth:          350,
		CanvasWidth:             1080,
		CanvasHeight:            1920,
		LiveHeight:              608,
		MaxSegmentSeconds:       90,
		BounceCapSeconds:        30,
		TranscodeTimeoutSeconds: 600,
		SweepIntervalMinutes:    0,
		DailyHour:               18,
		TempDir:                 os.TempDir(),
		DatabasePath:            "reelpress.db",
		HTTPTimeoutSeconds:      120,
		WebAddr:                 "0.0.0.0",
		WebPort:                 5050,
		LogPath:                 "logs",
		LogLevel:                "info",
	}
}

// LoadConfig loads configuration from a JSON file
func LoadConfig(filename string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// Config file doesn't exist, create a default one
			if err := saveConfig(filename, config); err != nil {
				return nil, fmt.Errorf("failed to create default config file: %w", err)
			}
			fmt.Printf("Default config file created at %s\n", filename)
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyDefaults()

	return config, nil
}

// applyDefaults fills in defaults for values missing from the config file
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.StoreBaseURL == "" {
		c.StoreBaseURL = defaults.StoreBaseURL
	}
	if c.StoreUploadURL == "" {
		c.StoreUploadURL = defaults.StoreUploadURL
	}
	if c.PublishBaseURL == "" {
		c.PublishBaseURL = defaults.PublishBaseURL
	}
	if c.CaptionTemplate == "" {
		c.CaptionTemplate = defaults.CaptionTemplate
	}
	if c.FFmpegPath == "" {
		c.FFmpegPath = defaults.FFmpegPath
	}
	if c.WatermarkWidth == 0 {
		c.WatermarkWidth = defaults.WatermarkWidth
	}
	if c.CanvasWidth == 0 {
		c.CanvasWidth = defaults.CanvasWidth
	}
	if c.CanvasHeight == 0 {
		c.CanvasHeight = defaults.CanvasHeight
	}
	if c.LiveHeight == 0 {
		c.LiveHeight = defaults.LiveHeight
	}
	if c.MaxSegmentSeconds == 0 {
		c.MaxSegmentSeconds = defaults.MaxSegmentSeconds
	}
	if c.BounceCapSeconds == 0 {
		c.BounceCapSeconds = defaults.BounceCapSeconds
	}
	if c.TranscodeTimeoutSeconds == 0 {
		c.TranscodeTimeoutSeconds = defaults.TranscodeTimeoutSeconds
	}
	if c.TempDir == "" {
		c.TempDir = defaults.TempDir
	}
	if c.DatabasePath == "" {
		c.DatabasePath = defaults.DatabasePath
	}
	if c.HTTPTimeoutSeconds == 0 {
		c.HTTPTimeoutSeconds = defaults.HTTPTimeoutSeconds
	}
	if c.WebAddr == "" {
		c.WebAddr = defaults.WebAddr
	}
	if c.WebPort == 0 {
		c.WebPort = defaults.WebPort
	}
	if c.LogPath == "" {
		c.LogPath = defaults.LogPath
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
}

// Validate checks if the configuration is structurally valid
func (c *Config) Validate() error {
	if c.WebPort <= 0 || c.WebPort > 65535 {
		return fmt.Errorf("invalid web port: %d", c.WebPort)
	}
	if c.MaxSegmentSeconds <= 0 {
		return fmt.Errorf("invalid max segment seconds: %f", c.MaxSegmentSeconds)
	}
	if c.BounceCapSeconds < 0 {
		return fmt.Errorf("invalid bounce cap seconds: %f", c.BounceCapSeconds)
	}
	if c.CanvasWidth <= 0 || c.CanvasHeight <= 0 {
		return fmt.Errorf("invalid canvas dimensions: %dx%d", c.CanvasWidth, c.CanvasHeight)
	}
	if c.LiveHeight <= 0 || c.LiveHeight >= c.CanvasHeight {
		return fmt.Errorf("invalid live region height: %d", c.LiveHeight)
	}
	if c.SweepIntervalMinutes < 0 {
		return fmt.Errorf("invalid sweep interval: %d", c.SweepIntervalMinutes)
	}
	if c.DailyHour < -1 || c.DailyHour > 23 {
		return fmt.Errorf("invalid daily hour: %d", c.DailyHour)
	}
	if c.SweepIntervalMinutes == 0 && c.DailyHour == -1 {
		return fmt.Errorf("no sweep trigger configured: set sweep_interval_minutes or daily_hour")
	}
	return nil
}

// ConfigOverrides holds potential override values for configuration
type ConfigOverrides struct {
	SourceFolderID     *string
	ProcessedFolderID  *string
	PublishAccountID   *string
	PublishAccessToken *string
	WatermarkPath      *string
	MaxSegmentSeconds  *float64
	SweepInterval      *int
	DailyHour          *int
}

// Override allows overriding specific configuration values using ConfigOverrides struct
func (c *Config) Override(overrides ConfigOverrides) {
	if overrides.SourceFolderID != nil && *overrides.SourceFolderID != "" {
		c.SourceFolderID = *overrides.SourceFolderID
	}
	if overrides.ProcessedFolderID != nil && *overrides.ProcessedFolderID != "" {
		c.ProcessedFolderID = *overrides.ProcessedFolderID
	}
	if overrides.PublishAccountID != nil && *overrides.PublishAccountID != "" {
		c.PublishAccountID = *overrides.PublishAccountID
	}
	if overrides.PublishAccessToken != nil && *overrides.PublishAccessToken != "" {
		c.PublishAccessToken = *overrides.PublishAccessToken
	}
	if overrides.WatermarkPath != nil && *overrides.WatermarkPath != "" {
		c.WatermarkPath = *overrides.WatermarkPath
	}
	if overrides.MaxSegmentSeconds != nil && *overrides.MaxSegmentSeconds > 0 {
		c.MaxSegmentSeconds = *overrides.MaxSegmentSeconds
	}
	if overrides.SweepInterval != nil && *overrides.SweepInterval > 0 {
		c.SweepIntervalMinutes = *overrides.SweepInterval
	}
	if overrides.DailyHour != nil && *overrides.DailyHour >= 0 && *overrides.DailyHour <= 23 {
		c.DailyHour = *overrides.DailyHour
	}
}

// saveConfig saves a configuration to a JSON file
func saveConfig(filename string, config *Config) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
