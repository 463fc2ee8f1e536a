package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"ecg-annotator/internal/config"
	"ecg-annotator/internal/logger"
)

const (
	AppName    = "ECG Scan Annotator"
	AppID      = "com.ecg.annotator"
	AppVersion = "1.0.0"
)

var (
	configFile    string
	envFile       string
	dataDir       string
	storePath     string
	unlabeledOnly bool
	autosave      bool
	logLevel      string
)

var rootCmd = &cobra.Command{
	Use:   "ecg-annotator",
	Short: "Label ECG scan images with quality tags",
	Long: `ECG Scan Annotator shows the images of a directory one at a time and records
quality labels for each of them in a label store next to the images.

Labels are saved when moving between images and when the window is closed.
Running the tool again on the same directory resumes where it left off.`,
	Version:       AppVersion,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runGUI,
}

// Execute runs the command line
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configFile, "config", "c", "", "config file (default ./ecg-annotator.yaml or the user config directory)")
	pf.StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading ECG_ANNOTATOR_* variables")
	pf.StringVarP(&dataDir, "data-dir", "d", "", "directory containing the ECG scans")
	pf.StringVarP(&storePath, "store", "s", "", "label store file, relative to the data directory unless absolute")
	pf.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.Flags().BoolVar(&unlabeledOnly, "unlabeled-only", false, "start in unlabeled-only mode")
	rootCmd.Flags().BoolVar(&autosave, "autosave", true, "save whenever the displayed image changes")
	rootCmd.Flags().Bool("open", false, "open the data directory immediately instead of showing the start screen")

	rootCmd.SetVersionTemplate(`ECG Scan Annotator {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// loadConfig reads the configuration with this command's flags layered on top
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	bindings := map[string]string{
		"data_dir":                  "data-dir",
		"store.path":                "store",
		"logging.level":             "log-level",
		"navigation.unlabeled_only": "unlabeled-only",
		"navigation.autosave":       "autosave",
	}
	flags := make(map[string]*pflag.Flag, len(bindings))
	for key, name := range bindings {
		if f := cmd.Flags().Lookup(name); f != nil {
			flags[key] = f
		}
	}

	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: configFile,
		EnvFile:    envFile,
		Flags:      flags,
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the logger described by cfg. LOG_LEVEL and DEBUG=1 in the
// environment take precedence over the configured level.
func newLogger(cfg *config.Config) (*logger.ZerologAdapter, error) {
	level := determineLogLevel(cfg.Logging.Level)
	switch {
	case cfg.Logging.File != "":
		return logger.NewFileLogger(level, cfg.Logging.File)
	case cfg.Logging.JSON:
		return logger.NewZerolog(os.Stderr, level), nil
	default:
		return logger.NewConsoleLogger(level), nil
	}
}

func determineLogLevel(configured string) logger.LogLevel {
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		if level, err := logger.ParseLevel(env); err == nil {
			return level
		}
	}
	if os.Getenv("DEBUG") == "1" {
		return logger.DebugLevel
	}
	level, err := logger.ParseLevel(configured)
	if err != nil {
		return logger.InfoLevel
	}
	return level
}
