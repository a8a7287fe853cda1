package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/seekmatch/jobmatcher/internal/ai/gemini"
	"github.com/seekmatch/jobmatcher/internal/logger"
	"github.com/seekmatch/jobmatcher/internal/match"
	"github.com/seekmatch/jobmatcher/internal/model"
	"github.com/seekmatch/jobmatcher/internal/search"
	"github.com/seekmatch/jobmatcher/internal/secrets"
)

const (
	PromptShowReport = "Show ranked report"
	PromptDumpToFile = "Dump results to file"
	PromptExit       = "Exit"
)

var errExit = errors.New("exit requested")

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Search for job postings and rank them against the configured seeker profile",
	Run: func(cmd *cobra.Command, _ []string) {
		runMatch(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().BoolP("yes", "y", false, "print the ranked report without the interactive menu")
	matchCmd.Flags().IntP("top", "t", 0, "limit the report to the top N results (0 = all)")
}

// runMatch is the main pipeline: search, normalize, score, rank, report.
func runMatch(cmd *cobra.Command) {
	ctx := context.Background()

	logg, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logg.Fatal("getting a config", zap.Error(err))
	}

	logg.Info("starting jobmatcher", zap.String("version", version))

	if config == nil || config.Seeker == nil {
		logg.Fatal("a seeker profile is required under the seeker section")
	}
	if config.AI == nil || config.AI.Gemini == nil {
		logg.Fatal("gemini configuration is required under the ai section")
	}
	if provider := strings.TrimSpace(strings.ToLower(config.AI.Provider)); provider != "" && provider != "gemini" {
		logg.Fatal("unsupported ai provider", zap.String("provider", config.AI.Provider))
	}

	seeker, err := model.NewJobSeeker(model.JobSeeker{
		Skills:               config.Seeker.Skills,
		ExperienceYears:      config.Seeker.ExperienceYears,
		EducationLevel:       config.Seeker.EducationLevel,
		PreferredSalaryRange: config.Seeker.PreferredSalaryRange,
		PreferredLocation:    config.Seeker.PreferredLocation,
		PreferredJobTypes:    config.Seeker.PreferredJobTypes,
		CareerGoals:          config.Seeker.CareerGoals,
	})
	if err != nil {
		logg.Fatal("invalid seeker profile", zap.Error(err))
	}

	postings, err := findPostings(ctx, config, seeker, logg)
	if err != nil {
		logg.Fatal("searching job postings", zap.Error(err))
	}

	if postings.Len() == 0 {
		logg.Info("exiting", zap.String("reason", "no job postings found"))
		return
	}

	results, failed, err := rankPostings(ctx, config, seeker, postings, logg)
	if err != nil {
		logg.Fatal("ranking job postings", zap.Error(err))
	}

	if failed > 0 {
		logg.Warn("some pairs could not be scored", zap.Int("failed", failed))
	}

	if len(results) == 0 {
		logg.Info("exiting", zap.String("reason", "no pairs scored successfully"))
		return
	}

	top, _ := cmd.Flags().GetInt("top")

	if cmd.Flag("yes").Value.String() == "true" {
		printReport(logg, results, postings, top)
		return
	}

	menu := promptui.Select{
		Label: fmt.Sprintf("Found %d matches. What next?", len(results)),
		Items: []string{PromptShowReport, PromptDumpToFile, PromptExit},
	}

	for {
		_, action, err := menu.Run()
		if err != nil {
			logg.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, logg, results, postings, top); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logg.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, logg *zap.Logger, results []*model.MatchResult, postings *search.Postings, top int) error {
	switch action {
	case PromptShowReport:
		printReport(logg, results, postings, top)
		return nil
	case PromptDumpToFile:
		filename, err := match.DumpResults(results)
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logg.Info("dumped results to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		logg.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func findPostings(ctx context.Context, config *Config, seeker *model.JobSeeker, logg *zap.Logger) (*search.Postings, error) {
	var keyFile string
	if config.Search != nil {
		keyFile = config.Search.APIKeyFile
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "tavily api key",
		File: keyFile,
		Env:  "TAVILY_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set search.api-key-file or TAVILY_API_KEY)", err)
	}

	provider := search.NewTavilyClient(logg, apiKey)
	if config.Search != nil && config.Search.MaxResults > 0 {
		provider.MaxResults = config.Search.MaxResults
	}

	engine := search.NewEngine(provider, logg)

	postings, skipped, err := engine.FindPostings(ctx, seeker)
	if err != nil {
		return nil, err
	}

	if skipped > 0 {
		logg.Warn("some search records could not be normalized", zap.Int("skipped", skipped))
	}

	return postings, nil
}

func rankPostings(ctx context.Context, config *Config, seeker *model.JobSeeker, postings *search.Postings, logg *zap.Logger) ([]*model.MatchResult, int, error) {
	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: config.AI.Gemini.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, 0, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, config.AI.Gemini.Model)
	if err != nil {
		return nil, 0, fmt.Errorf("building gemini generator: %w", err)
	}

	scorerLogger := logger.WithProviderFields(logg, "gemini", generator.Model())
	engine := match.NewEngine(generator, scorerLogger, config.AI.Gemini.MaxLogLength)
	ranker := match.NewRanker(engine, logg, config.AI.Concurrency)

	return ranker.Rank(ctx, seeker, postings.Items)
}

type reportEntry struct {
	Rank                 int      `json:"rank"`
	Title                string   `json:"title"`
	Company              string   `json:"company"`
	URL                  string   `json:"url,omitempty"`
	CompatibilityScore   float64  `json:"compatibility_score"`
	SkillMatchPercentage float64  `json:"skill_match_percentage"`
	ExperienceFit        string   `json:"experience_fit"`
	SalaryAlignment      string   `json:"salary_alignment"`
	Explanation          string   `json:"explanation"`
	Recommendations      []string `json:"recommendations"`
}

func printReport(logg *zap.Logger, results []*model.MatchResult, postings *search.Postings, top int) {
	if top <= 0 || top > len(results) {
		top = len(results)
	}

	entries := make([]reportEntry, 0, top)
	for i, result := range results[:top] {
		entry := reportEntry{
			Rank:                 i + 1,
			CompatibilityScore:   result.CompatibilityScore,
			SkillMatchPercentage: result.SkillMatchPercentage,
			ExperienceFit:        result.ExperienceFit,
			SalaryAlignment:      result.SalaryAlignment,
			Explanation:          result.Explanation,
			Recommendations:      result.Recommendations,
		}

		if posting := postings.FindByID(result.JobPostingID); posting != nil {
			entry.Title = posting.Title
			entry.Company = posting.Company
			entry.URL = posting.URL
		}

		entries = append(entries, entry)
	}

	// do not bother error since entries are built from validated models
	pretty, _ := json.MarshalIndent(entries, "", "  ")
	logg.Info(string(pretty), zap.Int("results", len(entries)))
}
