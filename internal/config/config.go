package config

import (
	"errors"
	"fmt"
	"francoggm/mpesa-c2b-relay/internal/models"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	SandboxBaseURL    = "https://sandbox.safaricom.co.ke"
	ProductionBaseURL = "https://api.safaricom.co.ke"
)

const (
	TokenCacheNone   = "none"
	TokenCacheMemory = "memory"
	TokenCacheRedis  = "redis"
)

const (
	ValidationModeCanonical = "canonical"
	ValidationModeMessage   = "message"
)

type Config struct {
	Server
	Mpesa
	C2B
	TokenCache
	Cache
	Log
}

type Server struct {
	Port        string
	Environment string
}

type Mpesa struct {
	Environment     string
	BaseURL         string
	ConsumerKey     string
	ConsumerSecret  string
	ShortCode       string
	PassKey         string
	UpstreamTimeout time.Duration
}

type C2B struct {
	ConfirmationURL        string
	ValidationURL          string
	ResponseType           string
	CommandID              string
	ValidateRequest        bool
	ValidationResponseMode string
}

type TokenCache struct {
	Mode        string
	RefreshSkew time.Duration
}

type Cache struct {
	Host     string
	Port     string
	Password string
}

type Log struct {
	Level string
}

func NewConfig() *Config {
	mpesaEnv := getEnvString("MPESA_ENVIRONMENT", "sandbox")

	return &Config{
		Server: Server{
			Port:        getEnvString("PORT", "10000"),
			Environment: getEnvString("ENVIRONMENT", "development"),
		},
		Mpesa: Mpesa{
			Environment:     mpesaEnv,
			BaseURL:         strings.TrimRight(getEnvString("MPESA_BASE_URL", defaultBaseURL(mpesaEnv)), "/"),
			ConsumerKey:     getEnvString("CONSUMER_KEY", ""),
			ConsumerSecret:  getEnvString("CONSUMER_SECRET", ""),
			ShortCode:       getEnvString("SHORT_CODE", ""),
			PassKey:         getEnvString("PASS_KEY", ""),
			UpstreamTimeout: getEnvDuration("UPSTREAM_TIMEOUT", 10*time.Second),
		},
		C2B: C2B{
			ConfirmationURL:        getEnvString("CONFIRMATION_URL", ""),
			ValidationURL:          getEnvString("VALIDATION_URL", ""),
			ResponseType:           getEnvString("RESPONSE_TYPE", "Completed"),
			CommandID:              getEnvString("C2B_COMMAND_ID", "CustomerPayBillOnline"),
			ValidateRequest:        getEnvBool("C2B_VALIDATE_REQUEST", true),
			ValidationResponseMode: getEnvString("VALIDATION_RESPONSE_MODE", ValidationModeCanonical),
		},
		TokenCache: TokenCache{
			Mode:        getEnvString("TOKEN_CACHE", TokenCacheMemory),
			RefreshSkew: getEnvDuration("TOKEN_REFRESH_SKEW", 60*time.Second),
		},
		Cache: Cache{
			Host:     getEnvString("CACHE_HOST", "localhost"),
			Port:     getEnvString("CACHE_PORT", "6379"),
			Password: getEnvString("CACHE_PASSWORD", ""),
		},
		Log: Log{
			Level: getEnvString("LOG_LEVEL", "info"),
		},
	}
}

func (c *Config) Validate() error {
	var errs []error

	if c.Mpesa.ConsumerKey == "" {
		errs = append(errs, errors.New("CONSUMER_KEY is required"))
	}
	if c.Mpesa.ConsumerSecret == "" {
		errs = append(errs, errors.New("CONSUMER_SECRET is required"))
	}
	if c.Mpesa.ShortCode == "" {
		errs = append(errs, errors.New("SHORT_CODE is required"))
	}
	if c.Mpesa.UpstreamTimeout <= 0 {
		errs = append(errs, errors.New("UPSTREAM_TIMEOUT must be positive"))
	}

	switch c.TokenCache.Mode {
	case TokenCacheNone, TokenCacheMemory, TokenCacheRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown TOKEN_CACHE %q", c.TokenCache.Mode))
	}

	switch c.C2B.ValidationResponseMode {
	case ValidationModeCanonical, ValidationModeMessage:
	default:
		errs = append(errs, fmt.Errorf("unknown VALIDATION_RESPONSE_MODE %q", c.C2B.ValidationResponseMode))
	}

	return errors.Join(errs...)
}

func (c *Config) Credentials() models.Credentials {
	return models.Credentials{
		Key:    c.Mpesa.ConsumerKey,
		Secret: c.Mpesa.ConsumerSecret,
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

func (c *Config) CacheAddr() string {
	return fmt.Sprintf("%s:%s", c.Cache.Host, c.Cache.Port)
}

func defaultBaseURL(environment string) string {
	if environment == "production" {
		return ProductionBaseURL
	}

	return SandboxBaseURL
}

func getEnvString(key string, defaultValue string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}

	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolValue
}

// getEnvDuration accepts Go durations ("15s") and bare seconds ("15").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	if d, err := time.ParseDuration(value); err == nil {
		return d
	}

	return time.Duration(getEnvInt(key, int(defaultValue/time.Second))) * time.Second
}
