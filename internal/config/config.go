package config

import (
	_ "embed"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	Store    StoreConfig
	Oracle   OracleConfig
	OpenAI   OpenAIConfig
	Gemini   GeminiConfig
	Ollama   OllamaConfig
	Gate     GateConfig
	Defaults DefaultsConfig
}

type StoreConfig struct {
	Path string // path to the profile store file
}

type OracleConfig struct {
	Provider string        // "gemini" (default), "openai" or "ollama"
	Timeout  time.Duration // upper bound for a single oracle call
}

type OpenAIConfig struct {
	Token string
}

type GeminiConfig struct {
	APIKey string
}

type OllamaConfig struct {
	URL   string // defaults to http://localhost:11434
	Model string // defaults to llama3.2-vision:11b
}

// GateConfig holds the screen-lock passcodes. The gate is a shared-secret
// screen lock for a single-operator terminal, not a credential system.
type GateConfig struct {
	Codes []string
}

// DefaultsConfig is parsed from the embedded defaults.yaml.
type DefaultsConfig struct {
	Departments []string      `yaml:"departments"`
	AccessCodes []string      `yaml:"access_codes"`
	Oracle      OracleDefault `yaml:"oracle"`
}

type OracleDefault struct {
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envList reads a comma-separated environment variable into a slice.
func envList(key string) []string {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	var out []string
	for item := range strings.SplitSeq(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func Load() *Config {
	var defaults DefaultsConfig
	if err := yaml.Unmarshal(defaultsYAML, &defaults); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded defaults.yaml: " + err.Error())
	}

	storePath := os.Getenv("BIOGUARD_STORE_PATH")
	if storePath == "" {
		storePath = "bioguard_profiles.json"
	}

	provider := os.Getenv("BIOGUARD_ORACLE_PROVIDER")
	if provider == "" {
		provider = "gemini"
	}

	codes := envList("BIOGUARD_ACCESS_CODES")
	if len(codes) == 0 {
		codes = defaults.AccessCodes
	}

	timeout := envInt("BIOGUARD_ORACLE_TIMEOUT", defaults.Oracle.TimeoutSeconds)

	return &Config{
		Store: StoreConfig{
			Path: storePath,
		},
		Oracle: OracleConfig{
			Provider: provider,
			Timeout:  time.Duration(timeout) * time.Second,
		},
		OpenAI: OpenAIConfig{
			Token: os.Getenv("OPENAI_TOKEN"),
		},
		Gemini: GeminiConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
		},
		Ollama: OllamaConfig{
			URL:   os.Getenv("OLLAMA_URL"),
			Model: os.Getenv("OLLAMA_MODEL"),
		},
		Gate: GateConfig{
			Codes: codes,
		},
		Defaults: defaults,
	}
}

// DefaultDepartment returns the department preselected on a fresh
// enrollment form.
func (c *Config) DefaultDepartment() string {
	if len(c.Defaults.Departments) == 0 {
		return ""
	}
	return c.Defaults.Departments[0]
}

// GateAccepts reports whether the supplied passcode unlocks the terminal.
func (c *Config) GateAccepts(code string) bool {
	for _, accepted := range c.Gate.Codes {
		if code == accepted {
			return true
		}
	}
	return false
}
