package cmd

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "liquidhire"
)

type Config struct {
	Server *ServerConfig `mapstructure:"server"`
	AI     *AIConfig     `mapstructure:"ai"`
	Jobs   *JobsConfig   `mapstructure:"jobs"`
}

type ServerConfig struct {
	Listen          string        `mapstructure:"listen"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown-timeout"`
	BodyLimit       string        `mapstructure:"body-limit"`
}

type AIConfig struct {
	MaxLogLength int               `mapstructure:"max-log-length"`
	Timeout      time.Duration     `mapstructure:"timeout"`
	Chain        []CandidateConfig `mapstructure:"chain"`
	Gemini       *ProviderConfig   `mapstructure:"gemini"`
	Groq         *ProviderConfig   `mapstructure:"groq"`
	Anthropic    *ProviderConfig   `mapstructure:"anthropic"`
}

// CandidateConfig is one entry of the model fallback chain.
type CandidateConfig struct {
	Provider string `mapstructure:"provider"`
	Model    string `mapstructure:"model"`
}

type ProviderConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	BaseURL    string `mapstructure:"base-url"`
}

type JobsConfig struct {
	Sites            []string          `mapstructure:"sites"`
	MaxResults       int               `mapstructure:"max-results"`
	MaxTerms         int               `mapstructure:"max-terms"`
	ResultsPerSite   int               `mapstructure:"results-per-site"`
	HoursOld         int               `mapstructure:"hours-old"`
	Delay            time.Duration     `mapstructure:"delay"`
	SiteRPS          float64           `mapstructure:"site-rps"`
	ExcludeCompanies []string          `mapstructure:"exclude-companies"`
	Cache            *CacheConfig      `mapstructure:"cache"`
	Headhunter       *HeadhunterConfig `mapstructure:"headhunter"`
}

type CacheConfig struct {
	RedisURL string        `mapstructure:"redis-url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type HeadhunterConfig struct {
	UserAgent string `mapstructure:"user-agent"`
	TokenFile string `mapstructure:"token-file"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "liquidhire is the backend of an interview practice app: mock interviews, résumé tools and internship search",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	setDefaults()
	bindEnv()

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is liquidhire.yaml in current directory, optional)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults() {
	viper.SetDefault("server.listen", ":8000")
	viper.SetDefault("server.shutdown-timeout", 10*time.Second)
	viper.SetDefault("server.body-limit", "10M")

	viper.SetDefault("ai.max-log-length", 200)
	viper.SetDefault("ai.timeout", 60*time.Second)
	viper.SetDefault("ai.chain", []map[string]string{
		{"provider": "gemini", "model": "gemini-2.5-flash"},
		{"provider": "gemini", "model": "gemini-2.0-flash"},
		{"provider": "gemini", "model": "gemma-3-27b-it"},
		{"provider": "groq", "model": "llama-3.3-70b-versatile"},
		{"provider": "anthropic", "model": "claude-3-5-haiku-latest"},
	})

	viper.SetDefault("jobs.sites", []string{"linkedin", "headhunter", "remotive"})
	viper.SetDefault("jobs.max-results", 15)
	viper.SetDefault("jobs.max-terms", 3)
	viper.SetDefault("jobs.results-per-site", 15)
	viper.SetDefault("jobs.hours-old", 168)
	viper.SetDefault("jobs.delay", time.Second)
	viper.SetDefault("jobs.site-rps", 1.0)
	viper.SetDefault("jobs.cache.ttl", 30*time.Minute)
}

func bindEnv() {
	bindings := map[string][]string{
		"ai.gemini.api-key":          {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
		"ai.groq.api-key":            {"GROQ_API_KEY"},
		"ai.anthropic.api-key":       {"ANTHROPIC_API_KEY"},
		"server.listen":              {"LIQUIDHIRE_LISTEN"},
		"jobs.cache.redis-url":       {"LIQUIDHIRE_REDIS_URL"},
		"jobs.headhunter.token-file": {"HH_TOKEN_FILE"},
	}
	for key, envs := range bindings {
		if err := viper.BindEnv(append([]string{key}, envs...)...); err != nil {
			log.Fatalf("binding %s environment variables: %v", strings.Join(envs, ","), err)
		}
	}
	if err := viper.BindEnv("port", "PORT"); err != nil {
		log.Fatalf("binding PORT environment variable: %v", err)
	}
}

func initConfig() {
	// A missing .env is the normal case outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("loading .env: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// The config file is optional unless requested explicitly.
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

// getConfig builds the resolved config. listenChanged reports whether the
// listen address was given on the command line.
func getConfig(listenChanged bool) (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config.Server == nil {
		config.Server = &ServerConfig{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.Jobs == nil {
		config.Jobs = &JobsConfig{}
	}
	if config.Jobs.Cache == nil {
		config.Jobs.Cache = &CacheConfig{}
	}
	if config.Jobs.Headhunter == nil {
		config.Jobs.Headhunter = &HeadhunterConfig{}
	}

	// PORT is honoured when no explicit listen address was configured.
	explicit := viper.InConfig("server.listen") ||
		strings.TrimSpace(os.Getenv("LIQUIDHIRE_LISTEN")) != "" ||
		listenChanged
	if port := strings.TrimSpace(viper.GetString("port")); port != "" && !explicit {
		config.Server.Listen = ":" + port
	}

	return config, nil
}
