package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"datalens/adapters/excel"
	"datalens/adapters/llm"
	"datalens/domain/configuration"
	"datalens/domain/dataset"
	"datalens/internal/assembler"
	"datalens/internal/config"
	"datalens/internal/narrative"
	"datalens/internal/render"
	"datalens/ports"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "datalens",
		Short: "Profile a tabular dataset and print a configurable analysis report",
	}

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newPresetsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type analyzeOptions struct {
	target     string
	preset     string
	configPath string
	format     string
	output     string
	dataDir    string
	sheet      string
	maxRows    int
	timeout    time.Duration
	noLLM      bool
}

func newAnalyzeCmd() *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze [file|handle]",
		Short: "Analyze a CSV, TSV or XLSX file",
		Long: `Analyze a dataset and render the report.

A path to an existing file is read directly. Anything else is treated as a
handle and looked up in --data-dir.

Example: datalens analyze ./data/sales.csv --target revenue --preset quick --format markdown`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.target, "target", "", "Target column for model and feature advice")
	cmd.Flags().StringVar(&opts.preset, "preset", "", "Preset name (default, quick, comprehensive, minimal)")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "JSON or YAML file with an analysis configuration")
	cmd.Flags().StringVar(&opts.format, "format", "markdown", "Output format: json, markdown or html")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write the report to a file instead of stdout")
	cmd.Flags().StringVar(&opts.dataDir, "data-dir", "", "Directory holding datasets (defaults to DATA_DIR)")
	cmd.Flags().StringVar(&opts.sheet, "sheet", "", "Worksheet to read from XLSX files")
	cmd.Flags().IntVar(&opts.maxRows, "max-rows", 0, "Refuse datasets with more data rows (0 means no limit)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 2*time.Minute, "Abort the analysis after this long")
	cmd.Flags().BoolVar(&opts.noLLM, "no-llm", false, "Use the rule-based narrator even when OPENAI_API_KEY is set")
	cmd.MarkFlagsMutuallyExclusive("preset", "config")

	return cmd
}

func runAnalyze(ctx context.Context, stdout io.Writer, arg string, opts analyzeOptions) error {
	appConfig, err := config.Load()
	if err != nil {
		return err
	}

	format, err := render.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	cfg, err := loadConfiguration(opts)
	if err != nil {
		return err
	}

	dataDir := opts.dataDir
	if dataDir == "" {
		dataDir = appConfig.Data.Dir
	}
	handle := dataset.Handle(arg)
	if info, statErr := os.Stat(arg); statErr == nil && !info.IsDir() {
		dataDir = filepath.Dir(arg)
		handle = dataset.Handle(filepath.Base(arg))
	}

	locator := excel.NewDirectoryLocator(excel.Config{DataDir: dataDir, DefaultSheet: opts.sheet})
	resolver := excel.NewResolver(locator, opts.maxRows)

	narrator, err := newNarrator(appConfig, opts.noLLM)
	if err != nil {
		return err
	}
	a := assembler.New(resolver, assembler.WithNarrator(narrator), assembler.WithWorkers(appConfig.Analysis.Workers))

	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	res, err := a.Assemble(ctx, handle, cfg, opts.target)
	if err != nil {
		return err
	}
	for _, f := range res.Failures {
		fmt.Fprintf(os.Stderr, "warning: %s failed: %s\n", f.Section, f.Error)
	}

	body, err := render.Encode(res, format)
	if err != nil {
		return err
	}
	if opts.output == "" {
		_, err = stdout.Write(body)
		return err
	}
	if err := os.WriteFile(opts.output, body, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Report written to %s (%s, state %s)\n", opts.output, format, res.State)
	return nil
}

// loadConfiguration picks the preset or decodes --config (JSON or YAML) over
// the defaults.
func loadConfiguration(opts analyzeOptions) (*configuration.AnalysisConfiguration, error) {
	if opts.preset != "" {
		cfg, ok := configuration.Preset(opts.preset)
		if !ok {
			return nil, fmt.Errorf("unknown preset %q (have %s)", opts.preset, strings.Join(configuration.PresetNames(), ", "))
		}
		return cfg, nil
	}

	cfg := configuration.Default()
	if opts.configPath == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("read configuration: %w", err)
	}
	switch strings.ToLower(filepath.Ext(opts.configPath)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, cfg)
	default:
		err = json.Unmarshal(raw, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse configuration %s: %w", opts.configPath, err)
	}
	if err := assembler.CheckConfiguration(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newNarrator(appConfig *config.Config, noLLM bool) (ports.Narrator, error) {
	if noLLM || !appConfig.HasLLM() {
		return narrative.NewRuleBased(), nil
	}
	return llm.NewNarrator(llm.Config{
		Model:       appConfig.AI.Model,
		APIKey:      appConfig.AI.OpenAIKey,
		BaseURL:     appConfig.AI.BaseURL,
		Temperature: appConfig.AI.Temperature,
		MaxTokens:   appConfig.AI.MaxTokens,
		Timeout:     appConfig.AI.Timeout,
		MaxRetries:  appConfig.AI.MaxRetries,
	})
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the built-in configuration presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := configuration.PresetNames()
			sort.Strings(names)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSECTIONS\tOUTLIERS\tPAIRS\tMODELS")
			for _, name := range names {
				cfg, _ := configuration.Preset(name)
				var on []string
				for _, s := range configuration.Sections {
					if cfg.Enabled(s) {
						on = append(on, string(s))
					}
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n", name, strings.Join(on, ","), cfg.OutlierMethod, cfg.MaxCorrelationPairs, cfg.MaxModelRecommendations)
			}
			return w.Flush()
		},
	}
}
