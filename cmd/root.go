package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "jobmatcher"
)

type Config struct {
	Seeker *SeekerConfig `mapstructure:"seeker"`
	Search *SearchConfig `mapstructure:"search"`
	AI     *AIConfig     `mapstructure:"ai"`
}

// SeekerConfig is the job seeker profile as written in the config file.
type SeekerConfig struct {
	Skills               []string `mapstructure:"skills"`
	ExperienceYears      int      `mapstructure:"experience-years"`
	EducationLevel       string   `mapstructure:"education-level"`
	PreferredSalaryRange string   `mapstructure:"preferred-salary-range"`
	PreferredLocation    string   `mapstructure:"preferred-location"`
	PreferredJobTypes    []string `mapstructure:"preferred-job-types"`
	CareerGoals          string   `mapstructure:"career-goals"`
}

type SearchConfig struct {
	APIKeyFile string `mapstructure:"api-key-file"`
	MaxResults int    `mapstructure:"max-results"`
}

type AIConfig struct {
	Provider    string        `mapstructure:"provider"`
	Concurrency int           `mapstructure:"concurrency"`
	Gemini      *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "jobmatcher searches for job postings and ranks them against a seeker profile with an LLM",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("search.api-key-file", "TAVILY_API_KEY_FILE"); err != nil {
		log.Fatalf("binding TAVILY_API_KEY_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is jobmatcher.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config is needed only for the match command; other commands run without one.
	if matchCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return config, err
	}

	return config, nil
}
