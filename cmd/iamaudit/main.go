package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"iamaudit/internal/analysis"
	"iamaudit/internal/app"
	"iamaudit/internal/aws"
	appconfig "iamaudit/internal/config"
	"iamaudit/internal/directory"
	"iamaudit/internal/domain"
	"iamaudit/internal/logging"
	"iamaudit/internal/report"
	"iamaudit/internal/store"
)

func main() {
	var (
		kind            string
		debug           bool
		noAnalysis      bool
		analyzePolicies bool
		configPath      string
		statePath       string
		outputPath      string
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := &cobra.Command{
		Use:   "iamaudit",
		Short: "IAM Audit - AWS principal enrichment pipeline",
		Long:  "Enumerates IAM principals, collects their policy documents and enriches each one with an automated security analysis",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(ctx, auditFlags{
				kind:            kind,
				debug:           debug,
				noAnalysis:      noAnalysis,
				analyzePolicies: analyzePolicies,
				configPath:      configPath,
				statePath:       statePath,
				outputPath:      outputPath,
			})
		},
		SilenceUsage: true,
	}

	rootCmd.Flags().StringVar(&kind, "kind", "roles", "Principal kind to audit: roles, users, groups or identity-providers")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging (verbose output)")
	rootCmd.Flags().BoolVar(&noAnalysis, "no-analysis", false, "Skip the analysis stage, list and collect only")
	rootCmd.Flags().BoolVar(&analyzePolicies, "analyze-policies", false, "Also summarize every collected policy document")
	rootCmd.Flags().StringVar(&configPath, "config", "", "Optional YAML config file")
	rootCmd.Flags().StringVar(&statePath, "state", "iamaudit-state.json", "State file for listing and analysis caches")
	rootCmd.Flags().StringVar(&outputPath, "output", "", "Write the batch as JSON to this path")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

type auditFlags struct {
	kind            string
	debug           bool
	noAnalysis      bool
	analyzePolicies bool
	configPath      string
	statePath       string
	outputPath      string
}

func runAudit(ctx context.Context, flags auditFlags) error {
	// .env is optional, environment variables win either way
	_ = godotenv.Load()

	if flags.debug {
		logging.SetLogLevel(logging.LogLevelDebug)
	}

	kind, ok := domain.ValidKind(flags.kind)
	if !ok {
		return fmt.Errorf("unsupported principal kind %q", flags.kind)
	}

	settings, err := appconfig.Load(flags.configPath)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}
	if err := settings.Validate(!flags.noAnalysis); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Initialize all clients early - fail fast before any listing starts
	awsCfg, err := aws.NewConfig(ctx, settings)
	if err != nil {
		return fmt.Errorf("error initializing AWS config: %w", err)
	}

	callerARN, accountID, err := aws.CallerIdentity(ctx, aws.NewSTSClient(awsCfg))
	if err != nil {
		return fmt.Errorf("credential check failed: %w", err)
	}
	logging.LogInfo("Authenticated", map[string]interface{}{
		"caller":  callerARN,
		"account": accountID,
	})

	state, err := store.OpenFile(flags.statePath)
	if err != nil {
		return fmt.Errorf("error opening state file: %w", err)
	}
	if err := state.Set(store.KeyCallerARN, callerARN); err != nil {
		logging.LogWarn("Failed to record caller identity", map[string]interface{}{"error": err.Error()})
	}

	enumerator := directory.NewEnumerator(aws.NewIAMClient(awsCfg), settings.Region, settings.MaxConcurrent)
	analyzer := analysis.NewClient(analysis.ClientConfig{
		APIKey:        settings.OpenAIAPIKey,
		OverviewModel: settings.OverviewModel,
		PolicyModel:   settings.PolicyModel,
	})
	cache := analysis.NewResultCache(settings.CacheTTL)

	auditor := app.NewAuditor(enumerator, analyzer, cache, state, app.Options{
		MaxConcurrent:   settings.MaxConcurrent,
		SkipAnalysis:    flags.noAnalysis,
		AnalyzePolicies: flags.analyzePolicies,
		CacheTTL:        settings.CacheTTL,
	})

	batch, err := auditor.Run(ctx, kind)
	if err != nil {
		return fmt.Errorf("audit failed: %w", err)
	}

	report.Render(batch)

	if flags.outputPath != "" {
		if err := report.WriteJSON(batch, flags.outputPath); err != nil {
			return err
		}
		logging.LogInfo("Batch exported", map[string]interface{}{"path": flags.outputPath})
	}
	return nil
}
