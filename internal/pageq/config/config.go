// Package config handles command-line argument parsing and validation
// for the pageq tool.
package config

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/pageq/pageq/internal/pageq/exit"
)

const (
	// DefaultTimeout is the default timeout for HTTP requests.
	DefaultTimeout = 30 * time.Second
)

var (
	ErrNoArguments  = errors.New("no arguments provided")
	ErrNoCheckFiles = errors.New("no check files specified")
)

// Config represents the complete configuration for the pageq tool.
type Config struct {
	// Check execution
	CheckFiles []string
	Debug      bool
	Repeat     int // Additional iterations after first run (negative = infinite)

	// Document retrieval configuration
	Insecure       bool
	CACertFile     string
	RequestTimeout time.Duration
	RateLimit      float64 // Requests per second (0 = unlimited)
	BaseDir        string  // Base directory for relative document paths
}

// TLSConfig returns a TLS configuration based on the config settings.
func (c *Config) TLSConfig() (*tls.Config, error) {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: c.Insecure,
	}

	if c.CACertFile != "" {
		caCertPool, err := x509.SystemCertPool()
		if err != nil {
			caCertPool = x509.NewCertPool()
		}

		caCert, err := os.ReadFile(c.CACertFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA certificate file %s: %w", c.CACertFile, err)
		}

		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA certificate from %s", c.CACertFile)
		}

		tlsConfig.RootCAs = caCertPool
	}

	return tlsConfig, nil
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if len(c.CheckFiles) == 0 {
		return ErrNoCheckFiles
	}

	for _, file := range c.CheckFiles {
		if _, err := os.Stat(file); err != nil {
			return fmt.Errorf("check file %s not found: %w", file, err)
		}
	}

	if c.CACertFile != "" {
		if _, err := os.Stat(c.CACertFile); err != nil {
			return fmt.Errorf("CA certificate file %s not found: %w", c.CACertFile, err)
		}
	}

	if c.BaseDir != "" {
		info, err := os.Stat(c.BaseDir)
		if err != nil {
			return fmt.Errorf("base directory %s not found: %w", c.BaseDir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("base directory %s is not a directory", c.BaseDir)
		}
	}

	return nil
}

// Parse parses command-line arguments and returns a validated Config.
// If parsing fails or help is requested, returns nil config and exit result.
func Parse(args []string) (*Config, *exit.Result) {
	if len(args) == 0 {
		return nil, exit.Errorf("Error: %v\n\n%s", ErrNoArguments, Usage())
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)

	// Suppress the default usage output since we handle it ourselves
	fs.Usage = func() {}
	// Suppress error output since we handle it ourselves
	fs.SetOutput(io.Discard)

	var (
		debug      = fs.Bool("debug", false, "Enable debug output showing resolved properties and assertion details")
		repeat     = fs.Int("repeat", 0, "Number of additional times to repeat check execution after the first run (negative for infinite loop)")
		insecure   = fs.Bool("insecure", false, "Skip TLS certificate verification")
		caCertFile = fs.String("cacert", "", "Path to CA certificate file for TLS verification")
		timeout    = fs.Duration("timeout", DefaultTimeout, "HTTP request timeout")
		rateLimit  = fs.Float64("rate-limit", 0, "Rate limit in requests per second (0 for unlimited)")
		baseDir    = fs.String("base", "", "Base directory for relative document paths")
	)

	if err := fs.Parse(args[1:]); err != nil {
		if err == flag.ErrHelp {
			return nil, exit.Success(Usage())
		}
		return nil, exit.Errorf("Error: failed to parse arguments: %v\n\n%s", err, Usage())
	}

	// Get remaining positional arguments as check files
	files := fs.Args()
	if len(files) == 0 {
		return nil, exit.Errorf("Error: %v\n\n%s", ErrNoCheckFiles, Usage())
	}

	config := &Config{
		CheckFiles:     files,
		Debug:          *debug,
		Repeat:         *repeat,
		Insecure:       *insecure,
		CACertFile:     *caCertFile,
		RequestTimeout: *timeout,
		RateLimit:      *rateLimit,
		BaseDir:        *baseDir,
	}

	if err := config.Validate(); err != nil {
		return nil, exit.Errorf("Error: %v\n\n%s", err, Usage())
	}

	return config, nil
}

// Usage returns a usage string for the CLI tool.
func Usage() string {
	return `pageq - declarative page checking tool

Usage: pageq [options] <file1> [file2] ...

Options:
  --debug                 Enable debug output showing resolved properties and assertion details
  --repeat N              Number of additional times to repeat after first run (negative for infinite)
  --insecure              Skip TLS certificate verification
  --cacert FILE           Path to CA certificate file for TLS verification
  --timeout DURATION      HTTP request timeout (default: 30s)
  --rate-limit N          Rate limit in requests per second (0 for unlimited)
  --base DIR              Base directory for relative document paths
  -h, --help              Show this help message

Examples:
  pageq check.yaml                       # Run check file once
  pageq check.yaml --debug               # Run with debug output
  pageq check.yaml --rate-limit 5        # Rate limit to 5 requests per second
  pageq check.yaml --repeat 1            # Run check file twice (1 + 1 additional)
  pageq check.yaml --repeat -1           # Run check file infinitely
  pageq file1.yaml file2.yaml            # Run multiple check files in sequence
  pageq check.yaml --base ./pages        # Resolve relative documents under ./pages`
}

// HTTPClient creates an HTTP client configured with the settings from this Config.
func (c *Config) HTTPClient() (*http.Client, error) {
	tlsConfig, err := c.TLSConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create TLS configuration: %w", err)
	}

	return &http.Client{
		Timeout: c.RequestTimeout,
		Transport: &http.Transport{
			TLSClientConfig: tlsConfig,
		},
	}, nil
}
