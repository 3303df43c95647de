package configuration

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/iota-uz/utils/fs"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/staff-console/pkg/logging"
)

const Production = "production"

var singleton = sync.OnceValue(func() *Configuration {
	c := &Configuration{}
	if err := c.load([]string{".env", ".env.local"}); err != nil {
		c.Unload()
		panic(err)
	}
	return c
})

func LoadEnv(envFiles []string) (int, error) {
	existingFiles := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if fs.FileExists(file) {
			existingFiles = append(existingFiles, file)
		}
	}

	if len(existingFiles) == 0 {
		return 0, nil
	}

	return len(existingFiles), godotenv.Load(existingFiles...)
}

type APIOptions struct {
	BaseURL         string        `env:"API_BASE_URL" envDefault:"http://localhost:8000/api"`
	Timeout         time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`
	CSRFCookieName  string        `env:"CSRF_COOKIE_NAME" envDefault:"csrftoken"`
	CSRFHeaderName  string        `env:"CSRF_HEADER_NAME" envDefault:"X-CSRFToken"`
	RequestIDHeader string        `env:"REQUEST_ID_HEADER" envDefault:"X-Request-ID"`
	MaxUploadSize   int64         `env:"MAX_UPLOAD_SIZE" envDefault:"16777216"`
}

// Validate checks the API client configuration for errors
func (a *APIOptions) Validate() error {
	u, err := url.Parse(a.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("API_BASE_URL must be an absolute URL, got %q", a.BaseURL)
	}
	if a.Timeout < 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be non-negative, got %s", a.Timeout)
	}
	if a.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be positive, got %d", a.MaxUploadSize)
	}
	return nil
}

type TableOptions struct {
	PageSize  int    `env:"PAGE_SIZE" envDefault:"10"`
	PageSizes string `env:"PAGE_SIZES" envDefault:"5,10,15,25"`
}

// Sizes parses PAGE_SIZES. The default PAGE_SIZE is always part of the result.
func (t *TableOptions) Sizes() ([]int, error) {
	sizes := make([]int, 0, 4)
	seen := map[int]bool{}
	for _, part := range strings.Split(t.PageSizes, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid PAGE_SIZES entry %q", part)
		}
		if !seen[n] {
			seen[n] = true
			sizes = append(sizes, n)
		}
	}
	if !seen[t.PageSize] {
		sizes = append(sizes, t.PageSize)
	}
	return sizes, nil
}

func (t *TableOptions) Validate() error {
	if t.PageSize <= 0 {
		return fmt.Errorf("PAGE_SIZE must be positive, got %d", t.PageSize)
	}
	_, err := t.Sizes()
	return err
}

type MockAPIOptions struct {
	Port          int    `env:"MOCK_API_PORT" envDefault:"8000"`
	SeedEmployees int    `env:"MOCK_API_SEED_EMPLOYEES" envDefault:"42"`
	MetricsPath   string `env:"PROMETHEUS_METRICS_PATH" envDefault:"/debug/prometheus"`
}

type RateLimitOptions struct {
	Enabled   bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	GlobalRPS int  `env:"RATE_LIMIT_GLOBAL_RPS" envDefault:"1000"`
}

// Validate checks the rate limit configuration for errors
func (r *RateLimitOptions) Validate() error {
	if r.GlobalRPS < 0 {
		return fmt.Errorf("rate limit GlobalRPS must be non-negative, got %d", r.GlobalRPS)
	}
	if r.GlobalRPS > 1000000 {
		return fmt.Errorf("rate limit GlobalRPS too high, maximum is 1,000,000, got %d", r.GlobalRPS)
	}
	return nil
}

type Configuration struct {
	API       APIOptions
	Table     TableOptions
	MockAPI   MockAPIOptions
	RateLimit RateLimitOptions

	SessionFile      string `env:"SESSION_FILE"`
	HistoryFile      string `env:"HISTORY_FILE"`
	DocumentTitle    string `env:"DOCUMENT_TITLE" envDefault:"Staff console"`
	GoAppEnvironment string `env:"GO_APP_ENV" envDefault:"development"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"error"`
	LogPath          string `env:"LOG_PATH"`

	logFile *os.File
	logger  *logrus.Logger
}

func (c *Configuration) Logger() *logrus.Logger {
	return c.logger
}

func (c *Configuration) LogrusLogLevel() logrus.Level {
	switch c.LogLevel {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.ErrorLevel
	}
}

func Use() *Configuration {
	return singleton()
}

// Load builds a configuration outside the process-wide singleton.
func Load(envFiles ...string) (*Configuration, error) {
	c := &Configuration{}
	if err := c.load(envFiles); err != nil {
		c.Unload()
		return nil, err
	}
	return c, nil
}

func (c *Configuration) load(envFiles []string) error {
	n, err := LoadEnv(envFiles)
	if err != nil {
		return err
	}
	if n == 0 && len(envFiles) > 0 {
		wd, _ := os.Getwd()
		log.Println("No .env files found. Tried:")
		for _, file := range envFiles {
			log.Println(filepath.Join(wd, file))
		}
	}
	if err := env.Parse(c); err != nil {
		return err
	}

	if err := c.API.Validate(); err != nil {
		return fmt.Errorf("api configuration error: %w", err)
	}
	if err := c.Table.Validate(); err != nil {
		return fmt.Errorf("table configuration error: %w", err)
	}
	if err := c.RateLimit.Validate(); err != nil {
		return fmt.Errorf("rate limit configuration error: %w", err)
	}

	if c.SessionFile == "" || c.HistoryFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home directory: %w", err)
		}
		if c.SessionFile == "" {
			c.SessionFile = filepath.Join(home, ".staff-console", "session.json")
		}
		if c.HistoryFile == "" {
			c.HistoryFile = filepath.Join(home, ".staff-console", "history.jsonl")
		}
	}

	f, logger, err := logging.FileLogger(c.LogrusLogLevel(), c.LogPath)
	if err != nil {
		return err
	}
	c.logFile = f
	c.logger = logger
	return nil
}

// Unload handles a graceful shutdown.
func (c *Configuration) Unload() {
	if c.logFile != nil {
		if err := c.logFile.Close(); err != nil {
			log.Printf("Failed to close log file: %v", err)
		}
	}
}
