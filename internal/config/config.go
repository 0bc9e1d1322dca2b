package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type AppConfig struct {
	Env             string        `koanf:"env"`
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdowntimeout"`
}

type CatalogConfig struct {
	Source string `koanf:"source"`
}

type StorageConfig struct {
	Driver      string        `koanf:"driver"`
	RedisURL    string        `koanf:"redisurl"`
	PostgresDSN string        `koanf:"postgresdsn"`
	KeyPrefix   string        `koanf:"keyprefix"`
	TTL         time.Duration `koanf:"ttl"`
}

type MySQLConfig struct {
	DSN string `koanf:"dsn"`
}

type AuthConfig struct {
	Provider      string        `koanf:"provider"`
	JWTSecret     string        `koanf:"jwtsecret"`
	JWTExpiration time.Duration `koanf:"jwtexpiration"`
	BcryptCost    int           `koanf:"bcryptcost"`
}

type OrdersConfig struct {
	Provider        string        `koanf:"provider"`
	ProcessingDelay time.Duration `koanf:"processingdelay"`
	SubmitTimeout   time.Duration `koanf:"submittimeout"`
}

type APIConfig struct {
	BaseURL string        `koanf:"baseurl"`
	Timeout time.Duration `koanf:"timeout"`
}

type NotifyConfig struct {
	Driver      string `koanf:"driver"`
	SMTPAddr    string `koanf:"smtpaddr"`
	SMTPFrom    string `koanf:"smtpfrom"`
	NATSURL     string `koanf:"natsurl"`
	NATSSubject string `koanf:"natssubject"`
}

type BreakerConfig struct {
	ConsecutiveFailures uint32        `koanf:"consecutivefailures"`
	OpenTimeout         time.Duration `koanf:"opentimeout"`
}

type Config struct {
	App     AppConfig     `koanf:"app"`
	Catalog CatalogConfig `koanf:"catalog"`
	Storage StorageConfig `koanf:"storage"`
	MySQL   MySQLConfig   `koanf:"mysql"`
	Auth    AuthConfig    `koanf:"auth"`
	Orders  OrdersConfig  `koanf:"orders"`
	API     APIConfig     `koanf:"api"`
	Notify  NotifyConfig  `koanf:"notify"`
	Breaker BreakerConfig `koanf:"breaker"`
}

func defaults() map[string]any {
	return map[string]any{
		"app.env":                     "development",
		"app.port":                    8080,
		"app.shutdowntimeout":         "10s",
		"catalog.source":              "memory",
		"storage.driver":              "memory",
		"storage.keyprefix":           "storefront:",
		"auth.provider":               "local",
		"auth.jwtexpiration":          "24h",
		"auth.bcryptcost":             10,
		"orders.provider":             "local",
		"orders.processingdelay":      "2s",
		"orders.submittimeout":        "10s",
		"api.timeout":                 "5s",
		"notify.driver":               "none",
		"notify.natssubject":          "orders.placed",
		"breaker.consecutivefailures": 5,
		"breaker.opentimeout":         "30s",
	}
}

func oneOf(field, v string, allowed ...string) error {
	for _, a := range allowed {
		if v == a {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of %s, got %q", field, strings.Join(allowed, "|"), v)
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	var errs []error

	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("app.port %d is out of range", c.App.Port))
	}
	if c.App.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("app.shutdowntimeout is not configured"))
	}

	if err := oneOf("catalog.source", c.Catalog.Source, "memory", "mysql", "remote"); err != nil {
		errs = append(errs, err)
	}
	if err := oneOf("storage.driver", c.Storage.Driver, "memory", "redis", "postgres"); err != nil {
		errs = append(errs, err)
	}
	if c.Storage.Driver == "redis" && c.Storage.RedisURL == "" {
		errs = append(errs, errors.New("storage.redisurl is required for the redis driver"))
	}
	if c.Storage.Driver == "postgres" && c.Storage.PostgresDSN == "" {
		errs = append(errs, errors.New("storage.postgresdsn is required for the postgres driver"))
	}
	if c.Catalog.Source == "mysql" && c.MySQL.DSN == "" {
		errs = append(errs, errors.New("mysql.dsn is required for the mysql catalog"))
	}

	if err := oneOf("auth.provider", c.Auth.Provider, "local", "remote"); err != nil {
		errs = append(errs, err)
	}
	if c.Auth.Provider == "local" && c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwtsecret is required for the local provider"))
	}
	if err := oneOf("orders.provider", c.Orders.Provider, "local", "remote"); err != nil {
		errs = append(errs, err)
	}
	if c.Orders.ProcessingDelay < 0 || c.Orders.SubmitTimeout < 0 {
		errs = append(errs, errors.New("orders durations must not be negative"))
	}

	if c.Catalog.Source == "remote" || c.Auth.Provider == "remote" || c.Orders.Provider == "remote" {
		if c.API.BaseURL == "" {
			errs = append(errs, errors.New("api.baseurl is required for remote providers"))
		}
	}

	if err := oneOf("notify.driver", c.Notify.Driver, "none", "smtp", "nats"); err != nil {
		errs = append(errs, err)
	}
	if c.Notify.Driver == "smtp" && (c.Notify.SMTPAddr == "" || c.Notify.SMTPFrom == "") {
		errs = append(errs, errors.New("notify.smtpaddr and notify.smtpfrom are required for smtp"))
	}
	if c.Notify.Driver == "nats" && c.Notify.NATSURL == "" {
		errs = append(errs, errors.New("notify.natsurl is required for nats"))
	}

	return errors.Join(errs...)
}

func (c *Config) String() string {
	var b strings.Builder

	b.WriteString("\n--- Server Configuration ---\n")
	fmt.Fprintf(&b, "  app.env: %s\n", c.App.Env)
	fmt.Fprintf(&b, "  app.port: %d\n", c.App.Port)
	fmt.Fprintf(&b, "  app.shutdowntimeout: %s\n", c.App.ShutdownTimeout)

	b.WriteString("\n--- Storefront ---\n")
	fmt.Fprintf(&b, "  catalog.source: %s\n", c.Catalog.Source)
	fmt.Fprintf(&b, "  storage.driver: %s\n", c.Storage.Driver)
	fmt.Fprintf(&b, "  storage.redisurl: %s\n", maskURL(c.Storage.RedisURL))
	fmt.Fprintf(&b, "  storage.postgresdsn: %s\n", maskURL(c.Storage.PostgresDSN))
	fmt.Fprintf(&b, "  mysql.dsn: %s\n", maskURL(c.MySQL.DSN))
	fmt.Fprintf(&b, "  auth.provider: %s\n", c.Auth.Provider)
	fmt.Fprintf(&b, "  orders.provider: %s\n", c.Orders.Provider)
	fmt.Fprintf(&b, "  orders.processingdelay: %s\n", c.Orders.ProcessingDelay)
	fmt.Fprintf(&b, "  orders.submittimeout: %s\n", c.Orders.SubmitTimeout)
	fmt.Fprintf(&b, "  api.baseurl: %s\n", c.API.BaseURL)

	b.WriteString("\n--- Notifications ---\n")
	fmt.Fprintf(&b, "  notify.driver: %s\n", c.Notify.Driver)
	fmt.Fprintf(&b, "  notify.natsurl: %s\n", maskURL(c.Notify.NATSURL))

	return b.String()
}

func maskURL(url string) string {
	if url == "" {
		return "<not configured>"
	}
	parts := strings.Split(url, "@")
	if len(parts) == 2 {
		return "****@" + parts[1]
	}
	return "****"
}
