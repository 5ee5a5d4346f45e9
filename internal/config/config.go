package config

import "time"

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	DatabaseURL string `env:"DATABASE_URL" envDefault:"sqlite://bunah.db"`

	Thawani   Thawani   `envPrefix:"THAWANI_"`
	Cache     Cache     `envPrefix:"CACHE_"`
	Pricing   Pricing   `envPrefix:"PRICING_"`
	Inventory Inventory `envPrefix:"INVENTORY_"`
}

type Thawani struct {
	BaseApiURL      string        `env:"API_URL"`
	APIKey          string        `env:"API_KEY"`
	PublishableKey  string        `env:"PUBLISHABLE_KEY"`
	CheckoutHost    string        `env:"CHECKOUT_HOST" envDefault:"https://uatcheckout.thawani.om"`
	SuccessURL      string        `env:"SUCCESS_URL" envDefault:"https://www.bunah3.com/SuccessRedirect"`
	CancelURL       string        `env:"CANCEL_URL" envDefault:"https://www.bunah3.com/cancel"`
	Timeout         time.Duration `env:"TIMEOUT" envDefault:"30s"`
	SessionPageSize int           `env:"SESSION_PAGE_SIZE" envDefault:"20"`
	SessionMaxPages int           `env:"SESSION_MAX_PAGES" envDefault:"5"`
}

type Cache struct {
	Driver        string        `env:"DRIVER" envDefault:"memory"` // memory, database
	TTL           time.Duration `env:"TTL" envDefault:"2h"`
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"5m"`
}

type Pricing struct {
	RulesFile string `env:"RULES_FILE"`
}

type Inventory struct {
	Concurrency int `env:"CONCURRENCY" envDefault:"4"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host           string   `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port           string   `env:"HTTP_PORT" envDefault:"8080"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"https://www.bunah3.com,https://bunah3.com,http://localhost:5173"`
	RateLimitRPS   float64  `env:"RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst int      `env:"RATE_LIMIT_BURST" envDefault:"10"`
	BodyLimit      string   `env:"HTTP_BODY_LIMIT" envDefault:"1M"`
}
