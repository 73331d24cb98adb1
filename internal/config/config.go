package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/lojasmm/cartaz/internal/component"
	"github.com/lojasmm/cartaz/internal/engine"
	"github.com/lojasmm/cartaz/internal/render"
	"github.com/lojasmm/cartaz/internal/resolve"
)

type Config struct {
	Port    string
	DataDir string

	Engine          engine.Name
	TemplateOrder   render.Order
	TimestampFormat string
	ViewTimeout     time.Duration
	// TemplateDir, when set, is seeded into the store at startup.
	TemplateDir string

	DiscordToken string

	WAPhoneNumberID string
	WAAccessToken   string
	WAVerifyToken   string
}

func Load() (*Config, error) {
	// .env is optional; production sets real env vars.
	_ = godotenv.Load()

	cfg := &Config{
		Port:            os.Getenv("PORT"),
		DataDir:         os.Getenv("DATA_DIR"),
		Engine:          engine.Name(os.Getenv("CARTAZ_ENGINE")),
		TimestampFormat: os.Getenv("CARTAZ_TIMESTAMP_FORMAT"),
		TemplateDir:     os.Getenv("CARTAZ_TEMPLATE_DIR"),
		DiscordToken:    os.Getenv("DISCORD_TOKEN"),
		WAPhoneNumberID: os.Getenv("WA_PHONE_NUMBER_ID"),
		WAAccessToken:   os.Getenv("WA_ACCESS_TOKEN"),
		WAVerifyToken:   os.Getenv("WA_VERIFY_TOKEN"),
		ViewTimeout:     component.DefaultTimeout,
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	if cfg.DataDir == "" {
		cfg.DataDir = "."
	}

	if cfg.Engine == "" {
		cfg.Engine = engine.NameFormat
	}
	if _, err := engine.New(cfg.Engine); err != nil {
		return nil, fmt.Errorf("CARTAZ_ENGINE: %w", err)
	}

	order, err := render.ParseOrder(os.Getenv("CARTAZ_TEMPLATE_ORDER"))
	if err != nil {
		return nil, fmt.Errorf("CARTAZ_TEMPLATE_ORDER: %w", err)
	}
	cfg.TemplateOrder = order

	if cfg.TimestampFormat == "" {
		cfg.TimestampFormat = resolve.DefaultTimestampFormat
	}
	if _, err := resolve.Layout(cfg.TimestampFormat); err != nil {
		return nil, fmt.Errorf("CARTAZ_TIMESTAMP_FORMAT: %w", err)
	}

	if v := os.Getenv("CARTAZ_VIEW_TIMEOUT"); v != "" {
		d, err := resolve.Seconds(v)
		if err != nil {
			return nil, fmt.Errorf("CARTAZ_VIEW_TIMEOUT: %w", err)
		}
		cfg.ViewTimeout = d
	}

	if cfg.WAAccessToken != "" {
		if cfg.WAPhoneNumberID == "" {
			return nil, fmt.Errorf("required env var WA_PHONE_NUMBER_ID is not set")
		}
		if cfg.WAVerifyToken == "" {
			token, err := randomHex(16)
			if err != nil {
				return nil, fmt.Errorf("generating verify token: %w", err)
			}
			cfg.WAVerifyToken = token
		}
	}

	return cfg, nil
}

// RenderOptions are the renderer settings the config selects.
func (c *Config) RenderOptions() (render.Options, error) {
	eng, err := engine.New(c.Engine)
	if err != nil {
		return render.Options{}, err
	}
	return render.Options{
		Engine:          eng,
		Order:           c.TemplateOrder,
		TimestampFormat: c.TimestampFormat,
		ViewTimeout:     c.ViewTimeout,
	}, nil
}

// WhatsAppEnabled reports whether the WhatsApp host is configured.
func (c *Config) WhatsAppEnabled() bool { return c.WAAccessToken != "" }

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
