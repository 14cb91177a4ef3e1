package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
)

type Config struct {
	TelegramBot TelegramBot
	Raidbots    Raidbots
	Schedule    Schedule
	Output      Output
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":80"`
}

type TelegramBot struct {
	Token  string `envconfig:"TELEGRAM_TOKEN" required:"true"`
	ChatID int64  `envconfig:"CHAT_ID"`
}

type Raidbots struct {
	Host        string        `envconfig:"RAIDBOTS_HOST" default:"raidbots.com"`
	Marker      string        `envconfig:"SIM_MARKER" default:"/228843/"`
	Timeout     time.Duration `envconfig:"FETCH_TIMEOUT" default:"30s"`
	Concurrency int           `envconfig:"FETCH_CONCURRENCY" default:"4"`
}

type Schedule struct {
	Cron      string `envconfig:"REFRESH_CRON"`
	InputFile string `envconfig:"SIMS_INPUT_FILE"`
	Timezone  string `envconfig:"TIMEZONE" default:"America/Chicago"`
}

type Output struct {
	CSVPath    string `envconfig:"OUTPUT_CSV"`
	SQLitePath string `envconfig:"SQLITE_PATH"`
}

func New() (*Config, error) {
	var c Config
	err := envconfig.Process("", &c)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if err := c.Raidbots.Validate(); err != nil {
		return err
	}
	return c.Schedule.Validate()
}

func (r Raidbots) Validate() error {
	if r.Host == "" {
		return fmt.Errorf("RAIDBOTS_HOST must not be empty")
	}
	if r.Marker == "" {
		return fmt.Errorf("SIM_MARKER must not be empty")
	}
	if r.Concurrency < 1 {
		return fmt.Errorf("FETCH_CONCURRENCY must be at least 1, got %d", r.Concurrency)
	}
	return nil
}

func (s Schedule) Enabled() bool {
	return s.Cron != ""
}

func (s Schedule) Validate() error {
	if !s.Enabled() {
		return nil
	}
	if _, err := cron.ParseStandard(s.Cron); err != nil {
		return fmt.Errorf("invalid REFRESH_CRON %q: %w", s.Cron, err)
	}
	if s.InputFile == "" {
		return fmt.Errorf("SIMS_INPUT_FILE is required when REFRESH_CRON is set")
	}
	return nil
}
