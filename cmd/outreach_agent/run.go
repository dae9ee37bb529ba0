package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/agenthub/outreach-agent/internal/campaign"
	"github.com/agenthub/outreach-agent/internal/compose"
	"github.com/agenthub/outreach-agent/internal/config"
	"github.com/agenthub/outreach-agent/internal/contacts"
	"github.com/agenthub/outreach-agent/internal/db"
	"github.com/agenthub/outreach-agent/internal/drafts"
	"github.com/agenthub/outreach-agent/internal/fetch"
	"github.com/agenthub/outreach-agent/internal/googleauth"
	"github.com/agenthub/outreach-agent/internal/llm"
	"github.com/agenthub/outreach-agent/internal/observability"
	sheetlog "github.com/agenthub/outreach-agent/internal/sheets"
	"github.com/agenthub/outreach-agent/internal/summarize"
)

// exitInterrupted is returned when the user aborts a running campaign.
const exitInterrupted = 130

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the outbound campaign end-to-end",
	Long: `Processes every company URL in the input sheet in order: fetch -> extract -> summarize -> contact lookup -> compose -> draft -> log.

Configuration can be loaded from a JSON file using --config. Environment variables (and a .env file) provide defaults; command-line arguments override both.`,
	RunE: runCampaignCmd,
}

var (
	runConfigPath    string
	runSpreadsheetID string
	runGeminiKey     string
	runHunterKey     string
	runCredentials   string
	runToken         string
	runDatabaseURL   string
	runUseBrowser    bool
	runVerbose       bool
)

func init() {
	// Config file flag (processed first)
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	runCommand.Flags().StringVarP(&runSpreadsheetID, "spreadsheet-id", "s", "", "Campaign spreadsheet ID (defaults to GOOGLE_SPREADSHEET_ID env var)")
	runCommand.Flags().StringVar(&runGeminiKey, "api-key", "", "Gemini API key (defaults to GEMINI_API_KEY env var)")
	runCommand.Flags().StringVar(&runHunterKey, "hunter-api-key", "", "Hunter.io API key (defaults to HUNTER_API_KEY env var)")
	runCommand.Flags().StringVar(&runCredentials, "credentials", "", "Path to OAuth client credentials file (default credentials.json)")
	runCommand.Flags().StringVar(&runToken, "token", "", "Path to cached OAuth token file (default token.json)")
	runCommand.Flags().StringVar(&runDatabaseURL, "db-url", "", "PostgreSQL connection URL for run history (optional, defaults to DATABASE_URL env var)")
	runCommand.Flags().BoolVar(&runUseBrowser, "use-browser", false, "Use headless browser for SPA sites (requires Chrome)")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(runCommand)
}

func runCampaignCmd(cmd *cobra.Command, _ []string) error {
	// Step 1: Load config file if provided
	var cfg config.Config
	if runConfigPath != "" {
		loadedCfg, err := config.LoadConfig(runConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loadedCfg
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	if cmd.Flags().Changed("spreadsheet-id") {
		cfg.SpreadsheetID = runSpreadsheetID
	}
	if cmd.Flags().Changed("api-key") {
		cfg.GeminiAPIKey = runGeminiKey
	}
	if cmd.Flags().Changed("hunter-api-key") {
		cfg.HunterAPIKey = runHunterKey
	}
	if cmd.Flags().Changed("credentials") {
		cfg.CredentialsFile = runCredentials
	}
	if cmd.Flags().Changed("token") {
		cfg.TokenFile = runToken
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = runDatabaseURL
	}
	if cmd.Flags().Changed("use-browser") {
		cfg.UseBrowser = runUseBrowser
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = runVerbose
	}

	// Step 3: Fill remaining gaps from the environment, then defaults
	cfg = cfg.MergeWithDefaults(config.FromEnv())
	cfg = cfg.MergeWithDefaults(config.Defaults())

	// Step 4: Validate required fields
	if err := cfg.Validate(); err != nil {
		return err
	}

	return runCampaign(cfg)
}

func runCampaign(cfg config.Config) error {
	logger, err := observability.NewLogger(cfg.Verbose)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Google API clients share one authenticated HTTP client
	httpClient, err := googleauth.Client(ctx, cfg.CredentialsFile, cfg.TokenFile)
	if err != nil {
		return fmt.Errorf("google authentication failed: %w", err)
	}

	sheetsService, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return fmt.Errorf("failed to create Sheets client: %w", err)
	}
	gmailService, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return fmt.Errorf("failed to create Gmail client: %w", err)
	}

	llmClient, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.GeminiAPIKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = llmClient.Close() }()

	sheet := sheetlog.NewLog(sheetsService, cfg.SpreadsheetID, sheetlog.Ranges{
		Input:   cfg.InputRange,
		Success: cfg.SuccessRange,
		Failure: cfg.FailureRange,
	}, logger)

	logger.Info("reading company URLs", zap.String("spreadsheet_id", cfg.SpreadsheetID))
	companyURLs, err := sheet.CompanyURLs(ctx)
	if err != nil {
		return fmt.Errorf("failed to read company URLs: %w", err)
	}
	if len(companyURLs) == 0 {
		return fmt.Errorf("no company URLs found in %s; add URLs below the header row", cfg.InputRange)
	}

	// Optional run history: warn and continue without it
	var history campaign.RunHistory
	var database *db.DB
	var runID uuid.UUID
	if cfg.DatabaseURL != "" {
		database, err = db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Warn("failed to connect to database, continuing without run history", zap.Error(err))
		} else {
			defer database.Close()
			if err := database.EnsureSchema(ctx); err != nil {
				logger.Warn("failed to ensure schema, continuing without run history", zap.Error(err))
				database = nil
			}
		}
		if database != nil {
			runID, err = database.CreateCampaignRun(ctx, cfg.SpreadsheetID, len(companyURLs))
			if err != nil {
				logger.Warn("failed to create campaign run, continuing without run history", zap.Error(err))
				database = nil
			} else {
				history = &runHistory{db: database}
				logger.Info("recording run history", zap.String("run_id", runID.String()))
			}
		}
	}

	runner := &campaign.Runner{
		Fetcher:    fetch.NewFetcher(nil, cfg.UseBrowser, logger),
		Extractor:  fetch.PageExtractor{},
		Summarizer: summarize.New(llmClient, logger),
		Contacts:   contacts.NewClient(cfg.HunterAPIKey, logger, nil),
		Composer:   compose.New(llmClient, logger),
		Publisher:  drafts.NewPublisher(gmailService, logger),
		Log:        sheet,
		History:    history,
		RunID:      runID,
		Logger:     logger,
	}

	tally, runErr := runner.Run(ctx, companyURLs)

	if database != nil {
		status := "completed"
		if runErr != nil {
			status = "interrupted"
		}
		// Completion record survives interruption; use a fresh context
		if err := database.CompleteCampaignRun(context.Background(), runID, status, db.RunCounts{
			Processed: tally.Processed,
			Successes: tally.Successes,
			Failures:  tally.Failures,
			Errors:    tally.Errors,
		}); err != nil {
			logger.Warn("failed to complete campaign run record", zap.Error(err))
		}
	}

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			logger.Warn("campaign interrupted by user")
			return &exitError{code: exitInterrupted, msg: "campaign interrupted"}
		}
		return runErr
	}

	if tally.Processed == 0 || tally.Errors >= len(companyURLs) {
		return fmt.Errorf("campaign failed: %d/%d companies errored, %d processed",
			tally.Errors, len(companyURLs), tally.Processed)
	}

	return nil
}

// runHistory adapts the database store to the runner's history interface.
type runHistory struct {
	db *db.DB
}

func (h *runHistory) RecordOutcome(ctx context.Context, runID uuid.UUID, res campaign.CompanyResult) error {
	return h.db.RecordOutcome(ctx, runID, db.OutcomeRecord{
		CompanyURL:   res.CompanyURL,
		Domain:       res.Domain,
		Outcome:      string(res.Outcome),
		Stage:        string(res.Stage),
		Reason:       res.Reason,
		ContactEmail: res.ContactEmail,
		DraftID:      res.DraftID,
	})
}
