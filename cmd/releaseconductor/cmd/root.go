package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/grokify/releaseconductor/internal/config"
	"github.com/grokify/releaseconductor/internal/console"
	"github.com/grokify/releaseconductor/internal/prompt"
	"github.com/grokify/releaseconductor/internal/release"
	"github.com/grokify/releaseconductor/internal/releaser"
	"github.com/grokify/releaseconductor/internal/report"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "releaseconductor [release-type]",
	Short: "Release npm packages to git, npm and GitHub",
	Long: `ReleaseConductor bumps the package version, writes the changelog from
conventional commits, then commits, tags and pushes, publishes to npm and
creates a GitHub release.

The release type is one of major, minor, patch, premajor, preminor, prepatch,
prerelease or an explicit version. Without it you are asked, or a patch
release is made in CI.

Examples:
  # Interactive release
  releaseconductor

  # Preview a minor release; every change is rolled back at the end
  releaseconductor minor --dry-run

  # Release one package of a monorepo from CI
  releaseconductor patch --ci --package core

  # Print the next changelog section and exit
  releaseconductor --show-changelog`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRelease,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		console.Stderr().Error(err)
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.Flags()
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "release config file (default is ./release.config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")
	flags.BoolP("dry-run", "n", false, "Run without making changes; everything is rolled back at the end")
	flags.StringP("package", "p", "", "Monorepo package to release (required in CI)")
	flags.String("otp", "", "npm one-time password")
	flags.Bool("prepare", false, "Stop after the git stage")
	flags.Bool("ci", false, "CI mode: no prompts")
	flags.Bool("show-changelog", false, "Print the changelog for the next release and exit")
	flags.Bool("show-release", false, "Print the next version and exit")
	flags.String("format", "none", "Run summary format: table, json, markdown, csv, none")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	for _, name := range []string{"dry-run", "package", "otp", "prepare", "ci", "show-changelog", "show-release", "format"} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}
}

// initConfig wires flags to RELEASECONDUCTOR_* environment variables.
func initConfig() {
	viper.SetEnvPrefix("RELEASECONDUCTOR")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// newLogger writes diagnostics to stderr, at debug level when verbose.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

// loadConfig reads the release config from --config or the working directory.
func loadConfig(workDir string) (*config.UserConfig, string, error) {
	if cfgFile != "" {
		user, err := config.LoadFromFile(cfgFile)
		return user, cfgFile, err
	}
	return config.Load(workDir)
}

func runRelease(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, err := newLogger(viper.GetBool("verbose"))
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	opts := release.Options{
		DryRun:        viper.GetBool("dry-run"),
		CI:            viper.GetBool("ci"),
		ShowChangelog: viper.GetBool("show-changelog"),
		ShowRelease:   viper.GetBool("show-release"),
		Prepare:       viper.GetBool("prepare"),
		Package:       viper.GetString("package"),
		OTP:           viper.GetString("otp"),
		WorkDir:       workDir,
	}
	if len(args) > 0 {
		opts.Increment = args[0]
	}

	format := strings.ToLower(viper.GetString("format"))
	var formatter report.Formatter
	if format != "none" {
		if formatter, err = report.New(format); err != nil {
			return err
		}
	}

	user, path, err := loadConfig(workDir)
	if err != nil {
		return err
	}
	opts.ConfigFileExists = path != ""
	if path != "" {
		logger.Debug("using config file", zap.String("path", path))
	}

	ci := release.DetectCI(opts, os.Getenv)
	opts.CI = ci
	cfg := config.Merge(config.Default(ci), user)

	out := console.Stderr()
	runner := release.New(cfg, opts, release.Deps{
		StoredToken: releaser.StoredToken,
		Console:     out,
		Logger:      logger,
	})

	summary, err := runner.Run(ctx)
	if formatter != nil && summary != nil {
		text, ferr := formatter.FormatRunSummary(summary)
		if ferr != nil {
			return fmt.Errorf("failed to format output: %w", ferr)
		}
		fmt.Print(text)
	}
	if errors.Is(err, prompt.ErrCancelled) {
		out.Cancel("Operation cancelled")
		return nil
	}
	return err
}
