package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	PostgresAddress  string
	PostgresPort     string
	PostgresDB       string
	PostgresUsername string
	PostgresPassword string

	HTTPPort        string
	OperatorWorkers int

	// Currency conversion engine.
	RateProviderBaseURL string
	RateProviderTimeout time.Duration
	RateRefreshInterval time.Duration
	BaseCurrency        string
	TrackedCurrencies   []string
	// CurrencyDecimals overrides rounding for currencies that do not use
	// two decimal places (e.g. JPY: 0). Core logic only reads it through
	// DecimalPlaces.
	CurrencyDecimals map[string]int32

	// Bill lifecycle manager.
	UpcomingBillWindowDays int
}

// DecimalPlaces returns the number of decimal places amounts in the given
// currency are rounded to.
func (c *Config) DecimalPlaces(currency string) int32 {
	if places, ok := c.CurrencyDecimals[strings.ToUpper(currency)]; ok {
		return places
	}
	return 2
}

func ProcessEnvironmentVariables() (*Config, error) {
	// In all cases the default behavior should be for the docker compose setup
	env := Config{
		PostgresAddress:  "localhost",
		PostgresPort:     "5433",
		PostgresDB:       "postgres",
		PostgresUsername: "postgres",
		PostgresPassword: "testpassword",

		HTTPPort:        "9446",
		OperatorWorkers: 4,

		RateProviderBaseURL: "https://api.exchangerate-api.com/v4/latest",
		RateProviderTimeout: 10 * time.Second,
		RateRefreshInterval: 60 * time.Minute,
		BaseCurrency:        "USD",
		TrackedCurrencies:   []string{"USD", "EUR", "GBP", "CAD", "JPY"},
		CurrencyDecimals:    map[string]int32{"JPY": 0, "KRW": 0},

		UpcomingBillWindowDays: 30,
	}

	setString(&env.PostgresAddress, "POSTGRES_ADDRESS")
	setString(&env.PostgresPort, "POSTGRES_PORT")
	setString(&env.PostgresDB, "POSTGRES_DB")
	setString(&env.PostgresUsername, "POSTGRES_USERNAME")
	setString(&env.PostgresPassword, "POSTGRES_PASSWORD")
	setString(&env.HTTPPort, "HTTP_PORT")
	setString(&env.RateProviderBaseURL, "RATE_PROVIDER_BASE_URL")
	setString(&env.BaseCurrency, "BASE_CURRENCY")

	if v := os.Getenv("OPERATOR_WORKERS"); v != "" {
		workers, err := strconv.Atoi(v)
		if err != nil {
			return nil, err
		}
		env.OperatorWorkers = workers
	}

	if v := os.Getenv("RATE_PROVIDER_TIMEOUT"); v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			return nil, err
		}
		env.RateProviderTimeout = timeout
	}

	if v := os.Getenv("RATE_REFRESH_INTERVAL"); v != "" {
		interval, err := time.ParseDuration(v)
		if err != nil {
			return nil, err
		}
		env.RateRefreshInterval = interval
	}

	if v := os.Getenv("TRACKED_CURRENCIES"); v != "" {
		currencies := strings.Split(v, ",")
		for i := range currencies {
			currencies[i] = strings.ToUpper(strings.TrimSpace(currencies[i]))
		}
		env.TrackedCurrencies = currencies
	}

	if v := os.Getenv("UPCOMING_BILL_WINDOW_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return nil, err
		}
		env.UpcomingBillWindowDays = days
	}

	return &env, nil
}

func setString(target *string, key string) {
	if v := os.Getenv(key); len(v) != 0 {
		*target = v
	}
}
