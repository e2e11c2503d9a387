package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/joho/godotenv"
	"github.com/kc2/kc2/lib/cloudinit"
)

type Config struct {
	Port             string
	LXDSocket        string
	UbuntuRemote     string
	LXCRemote        string
	DefaultArch      string
	CatalogTimeout   time.Duration
	CloudInitTimeout time.Duration
	CreateTimeout    time.Duration
	RequestTimeout   time.Duration

	ProxyURL         string
	ProxyListenPort  int
	ProxyBypassCIDRs []string
	TransocksURL     string

	MaxVCPU    int
	MaxMemory  string
	BcryptCost int

	OtelEnabled     bool
	OtelEndpoint    string
	OtelInsecure    bool
	OtelServiceName string
	Version         string
	Env             string
}

// Load loads configuration from environment variables
// Automatically loads .env file if present
func Load() *Config {
	// Try to load .env file (fail silently if not present)
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		LXDSocket:        getEnv("LXD_SOCKET", "/var/snap/lxd/common/lxd/unix.socket"),
		UbuntuRemote:     getEnv("UBUNTU_REMOTE_URL", "https://cloud-images.ubuntu.com/releases"),
		LXCRemote:        getEnv("LINUXCONTAINERS_REMOTE_URL", "https://images.linuxcontainers.org"),
		DefaultArch:      getEnv("DEFAULT_ARCH", "amd64"),
		CatalogTimeout:   getEnvDuration("CATALOG_TIMEOUT", 15*time.Second),
		CloudInitTimeout: getEnvDuration("CLOUDINIT_TIMEOUT", 5*time.Second),
		CreateTimeout:    getEnvDuration("CREATE_TIMEOUT", 10*time.Minute),
		RequestTimeout:   getEnvDuration("REQUEST_TIMEOUT", 60*time.Second),

		ProxyURL:         getEnv("PROXY_URL", "socks5://socks.cc.uec.ac.jp:1080"),
		ProxyListenPort:  getEnvInt("PROXY_LISTEN_PORT", 1081),
		ProxyBypassCIDRs: getEnvList("PROXY_BYPASS_CIDRS", []string{"130.153.0.0/16"}),
		TransocksURL:     getEnv("TRANSOCKS_URL", "https://github.com/cybozu-go/transocks/releases/latest/download/transocks"),

		MaxVCPU:    getEnvInt("MAX_VCPU", 16),
		MaxMemory:  getEnv("MAX_MEMORY", "32GB"),
		BcryptCost: getEnvInt("BCRYPT_COST", 0),

		OtelEnabled:     getEnvBool("OTEL_ENABLED", false),
		OtelEndpoint:    getEnv("OTEL_ENDPOINT", "localhost:4317"),
		OtelInsecure:    getEnvBool("OTEL_INSECURE", true),
		OtelServiceName: getEnv("OTEL_SERVICE_NAME", "kc2"),
		Version:         getEnv("VERSION", "dev"),
		Env:             getEnv("ENV", "unset"),
	}

	return cfg
}

// Validate checks values that cannot be checked when read.
func (c *Config) Validate() error {
	if c.CatalogTimeout <= 0 {
		return fmt.Errorf("CATALOG_TIMEOUT must be positive")
	}
	if c.CloudInitTimeout <= 0 {
		return fmt.Errorf("CLOUDINIT_TIMEOUT must be positive")
	}
	if c.CreateTimeout <= 0 {
		return fmt.Errorf("CREATE_TIMEOUT must be positive")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	if c.ProxyListenPort < 1 || c.ProxyListenPort > 65535 {
		return fmt.Errorf("PROXY_LISTEN_PORT %d out of range", c.ProxyListenPort)
	}
	if err := cloudinit.ValidateBypassCIDRs(c.ProxyBypassCIDRs); err != nil {
		return fmt.Errorf("PROXY_BYPASS_CIDRS: %w", err)
	}
	if c.MaxVCPU < 0 {
		return fmt.Errorf("MAX_VCPU must not be negative")
	}
	if _, err := c.MaxMemoryMB(); err != nil {
		return err
	}
	return nil
}

// MaxMemoryMB parses MaxMemory ("32GB", "512MB") into mebibytes. An empty
// value means unbounded.
func (c *Config) MaxMemoryMB() (int, error) {
	if c.MaxMemory == "" {
		return 0, nil
	}
	var size datasize.ByteSize
	if err := size.UnmarshalText([]byte(c.MaxMemory)); err != nil {
		return 0, fmt.Errorf("invalid MAX_MEMORY %q: %w", c.MaxMemory, err)
	}
	return int(size.MBytes()), nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList reads a comma-separated list. Set the variable to "none" for an
// empty list.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if value == "none" {
		return []string{}
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
