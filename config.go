// Copyright (c) 2025 @AmarnathCJD

package moocauth

import (
	"time"

	"github.com/amarnathcjd/moocauth/internal/vdf"
)

const (
	// DefaultSM4Key encrypts every encParams blob sent to the login host.
	DefaultSM4Key = "BC60B8B9E4FFEFFA219E5AD77F11F9E2"

	// DefaultPublicKey encrypts the password field of the login form.
	DefaultPublicKey = `-----BEGIN PUBLIC KEY-----
MIGfMA0GCSqGSIb3DQEBAQUAA4GNADCBiQKBgQC5gsH+AA4XWONB5TDcUd+xCz7e
jOFHZKlcZDx+pF1i7Gsvi1vjyJoQhRtRSn950x498VUkx7rUxg1/ScBVfrRxQOZ8
xFBye3pjAzfb22+RCuYApSVpJ3OO3KsEuKExftz9oFBv3ejxPlYc5yq7YiBO8XlT
nQN0Sa4R4qhPO3I2MQIDAQAB
-----END PUBLIC KEY-----`

	DefaultProductID    = "cjJVGQM"
	DefaultProduct      = "imooc"
	DefaultTopURL       = "https://www.icourse163.org/"
	DefaultRememberDays = 10
	DefaultCacheTTL     = 7 * 24 * time.Hour
)

type Config struct {
	SM4Key       string        `mapstructure:"sm4key"`
	PublicKey    string        `mapstructure:"pubkey"`
	ProductID    string        `mapstructure:"pkid"`
	Product      string        `mapstructure:"product"`
	TopURL       string        `mapstructure:"topurl"`
	Remember     bool          `mapstructure:"remember"`
	RememberDays int           `mapstructure:"days"`
	ChunkSize    int           `mapstructure:"chunksize"`
	LogLevel     string        `mapstructure:"loglevel"`
	LogFormat    string        `mapstructure:"logformat"`
	CachePath    string        `mapstructure:"cache"`
	CacheSecret  string        `mapstructure:"cachesecret"`
	CacheTTL     time.Duration `mapstructure:"cachettl"`
}

func DefaultConfig() *Config {
	return &Config{
		SM4Key:       DefaultSM4Key,
		PublicKey:    DefaultPublicKey,
		ProductID:    DefaultProductID,
		Product:      DefaultProduct,
		TopURL:       DefaultTopURL,
		RememberDays: DefaultRememberDays,
		ChunkSize:    vdf.DefaultChunkSize,
		LogLevel:     "info",
		LogFormat:    "text",
		CachePath:    "./data/mooc_cookies.json",
		CacheTTL:     DefaultCacheTTL,
	}
}

// withDefaults fills the zero fields of c from DefaultConfig.
func (c *Config) withDefaults() *Config {
	d := DefaultConfig()
	if c == nil {
		return d
	}
	out := *c
	if out.SM4Key == "" {
		out.SM4Key = d.SM4Key
	}
	if out.PublicKey == "" {
		out.PublicKey = d.PublicKey
	}
	if out.ProductID == "" {
		out.ProductID = d.ProductID
	}
	if out.Product == "" {
		out.Product = d.Product
	}
	if out.TopURL == "" {
		out.TopURL = d.TopURL
	}
	if out.RememberDays == 0 {
		out.RememberDays = d.RememberDays
	}
	if out.ChunkSize == 0 {
		out.ChunkSize = d.ChunkSize
	}
	if out.LogLevel == "" {
		out.LogLevel = d.LogLevel
	}
	if out.LogFormat == "" {
		out.LogFormat = d.LogFormat
	}
	return &out
}
