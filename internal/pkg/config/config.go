package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DBUsername string `yaml:"db_username"`
	DBPassword string `yaml:"db_password"`
	DBHost     string `yaml:"db_host"`
	DBPort     string `yaml:"port"`
	DBName     string `yaml:"db_name"`
	DisableTLS bool   `yaml:"disable_tls"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	BaseUrl     string   `yaml:"base_url"`
	JWTKey      string   `yaml:"jwt_key"`
	CORSOrigins []string `yaml:"cors_origins"`

	// StatementFont is a TTF file with Hangul glyphs for pay statements.
	StatementFont string `yaml:"statement_font"`

	// Timezone is the store's zone; work days and clock times are local to it.
	Timezone string `yaml:"timezone"`

	HourlyWage      int64  `yaml:"hourly_wage"`
	WithholdingRate string `yaml:"withholding_rate"`

	// Clock actions allowed per staff member per minute, and the burst.
	ClockPerMinute int `yaml:"clock_per_minute"`
	ClockBurst     int `yaml:"clock_burst"`

	// AllowOutOfRange records clock actions outside the store radius as
	// unverified instead of rejecting them.
	AllowOutOfRange bool `yaml:"allow_out_of_range"`
}

func NewConfig(path string) (*Config, error) {
	c := Config{
		DBPort:          "5432",
		Timezone:        "Asia/Seoul",
		WithholdingRate: "0.033",
		ClockPerMinute:  6,
		ClockBurst:      3,
	}

	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}

	if err = yaml.Unmarshal(yamlFile, &c); err != nil {
		return nil, errors.Wrap(err, "parsing config")
	}

	if c.DBUsername == "" || c.DBPassword == "" || c.DBHost == "" || c.DBName == "" {
		return nil, errors.New("missing required database configuration")
	}
	if c.JWTKey == "" {
		return nil, errors.New("missing jwt_key")
	}
	if _, err = c.Location(); err != nil {
		return nil, err
	}
	if _, err = c.Withholding(); err != nil {
		return nil, err
	}

	return &c, nil
}

// Location loads the store time zone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, errors.Wrapf(err, "loading timezone %q", c.Timezone)
	}
	return loc, nil
}

// Withholding parses the flat withholding rate.
func (c Config) Withholding() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(c.WithholdingRate)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "parsing withholding_rate %q", c.WithholdingRate)
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return decimal.Zero, errors.Errorf("withholding_rate %s out of range [0,1)", rate)
	}
	return rate, nil
}
