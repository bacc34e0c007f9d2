package main

import (
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/viant/afs"
	"github.com/viant/remedy/engine"
	"github.com/viant/remedy/finding"
	"github.com/viant/remedy/logging"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func newRootCmd() *cobra.Command {
	v := viper.New()
	fs := afs.New()
	root := &cobra.Command{
		Use:           "remedy",
		Short:         "Remedy rewrites Java sources to fix reported security findings.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	flags := root.PersistentFlags()
	flags.StringP("config", "c", "", "config file URL (yaml)")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: console or json")
	_ = v.BindPFlag("config", flags.Lookup("config"))
	_ = v.BindPFlag("logger.level", flags.Lookup("log-level"))
	_ = v.BindPFlag("logger.format", flags.Lookup("log-format"))

	v.SetEnvPrefix("REMEDY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	root.AddCommand(newFixCmd(v, fs), newRulesCmd(v, fs))
	return root
}

// loadConfig reads the optional config file, then applies environment and
// flag overrides.
func loadConfig(cmd *cobra.Command, v *viper.Viper, fs afs.Service) (*engine.Config, error) {
	cfg := &engine.Config{}
	if URL := v.GetString("config"); URL != "" {
		loaded, err := engine.LoadConfig(cmd.Context(), fs, URL)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if v.IsSet("root") {
		cfg.Root = v.GetString("root")
	}
	if v.IsSet("dry_run") {
		cfg.DryRun = v.GetBool("dry_run")
	}
	if v.IsSet("logger.level") {
		cfg.Logger.Level = v.GetString("logger.level")
	}
	if v.IsSet("logger.format") {
		cfg.Logger.Format = v.GetString("logger.format")
	}
	if cfg.Logger.Name == "" {
		cfg.Logger.Name = "remedy"
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg *engine.Config) (*zap.Logger, error) {
	logger, err := logging.New(cfg.Logger, zapcore.AddSync(cmd.ErrOrStderr()))
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

func newFixCmd(v *viper.Viper, fs afs.Service) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fix",
		Short: "Remediate the findings of a findings document",
		Long: `Reads a findings document (yaml or json), applies the registered
remediation of each finding's rule to its source file and prints a JSON
summary of fixed and unfixed findings.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, v, fs)
			if err != nil {
				return err
			}
			logger, err := newLogger(cmd, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			return runFix(cmd, fs, logger, cfg, v.GetString("findings"), v.GetString("report"))
		},
	}
	flags := cmd.Flags()
	flags.StringP("findings", "f", "", "findings document URL (required)")
	flags.StringP("root", "r", "", "base URL relative finding paths resolve against")
	flags.Bool("dry-run", false, "report fixes without writing files")
	flags.StringP("output", "o", "", "summary output URL; stdout when empty")
	_ = cmd.MarkFlagRequired("findings")
	_ = v.BindPFlag("findings", flags.Lookup("findings"))
	_ = v.BindPFlag("root", flags.Lookup("root"))
	_ = v.BindPFlag("dry_run", flags.Lookup("dry-run"))
	_ = v.BindPFlag("report", flags.Lookup("output"))
	return cmd
}

func runFix(cmd *cobra.Command, fs afs.Service, logger *zap.Logger, cfg *engine.Config, findingsURL, reportURL string) error {
	ctx := cmd.Context()
	findings, err := finding.Load(ctx, fs, findingsURL)
	if err != nil {
		return err
	}
	options, err := cfg.Options()
	if err != nil {
		return err
	}
	options = append(options, engine.WithFS(fs), engine.WithLogger(logger))
	summary, err := engine.New(options...).Run(ctx, findings)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	if reportURL == "" {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}
	if err = fs.Upload(ctx, reportURL, 0644, strings.NewReader(string(data))); err != nil {
		return fmt.Errorf("failed to write summary %s: %w", reportURL, err)
	}
	logger.Info("summary written", zap.String("url", reportURL))
	return nil
}

func newRulesCmd(v *viper.Viper, fs afs.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the rules and aliases remedy can fix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, v, fs)
			if err != nil {
				return err
			}
			registry, err := cfg.Registry()
			if err != nil {
				return err
			}
			for _, rule := range registry.Rules() {
				fmt.Fprintln(cmd.OutOrStdout(), rule)
			}
			return nil
		},
	}
}
