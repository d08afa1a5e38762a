package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/verimodel/desktop/internal/backend"
	"github.com/verimodel/desktop/internal/bridge"
	"github.com/verimodel/desktop/internal/shell"
	"github.com/verimodel/desktop/internal/utils"
	"github.com/verimodel/desktop/internal/version"
)

var (
	home, _            = os.UserHomeDir()
	defaultConfigDir   = filepath.Join(home, ".verimodel")
	defaultConfigPath  = filepath.Join(defaultConfigDir, "config.json")
	defaultLogFilePath = filepath.Join(defaultConfigDir, "logs", "desktop.log")
	configFileName     = "config"
	envPrefix          = "VERIMODEL"
)

// viper key -> flag name
var flagKeys = map[string]string{
	"backend_url":     "backend",
	"backend_timeout": "timeout",
	"startup_delay":   "delay",
	"start_hint":      "hint",
	"http_addr":       "http-addr",
	"http_token":      "http-token",
}

var rootCmd = &cobra.Command{
	Use:     "verimodel",
	Short:   "VeriModel desktop shell",
	Version: version.Detailed(),
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		// New validates cfg
		sh, err := shell.New(cfg, shell.Options{
			Stdout: cmd.OutOrStdout(),
			Stderr: cmd.ErrOrStderr(),
		})
		if err != nil {
			return err
		}

		cmd.SilenceUsage = true
		showHeader(cmd.OutOrStdout())

		defer slog.Info("Bye!")
		if err := sh.Start(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	addConfigFlags(rootCmd)
	rootCmd.Flags().SortFlags = false
	rootCmd.Flags().Duration("delay", shell.DefaultStartupDelay, "Wait before the startup backend probe")
	rootCmd.Flags().String("hint", shell.DefaultStartHint, "Command suggested when the backend is not running")
	rootCmd.Flags().StringP("http-addr", "a", bridge.DefaultAddr, "Address to bind the GUI bridge")
	rootCmd.Flags().StringP("http-token", "t", "", "Access token for the GUI bridge (random when empty)")
}

// addConfigFlags registers the flags shared by every command that reads the
// config file.
func addConfigFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().SortFlags = false
	cmd.PersistentFlags().StringP("config", "c", defaultConfigPath, "VeriModel config file")
	cmd.PersistentFlags().StringP("backend", "b", backend.DefaultURL, "Backend health endpoint")
	cmd.PersistentFlags().Duration("timeout", backend.DefaultTimeout, "Backend health request timeout")
}

func main() {
	logFile, closeLog, err := openLogFile(defaultLogFilePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	slog.SetDefault(newLogger(os.Stdout, logFile))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		closeLog()
		os.Exit(1)
	}
}

// openLogFile truncates the log for this launch. Lines are numbered and
// timestamped by the interceptor.
func openLogFile(path string) (io.Writer, func(), error) {
	if err := utils.EnsureParent(path); err != nil {
		return nil, nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, nil, err
	}
	interceptor := utils.NewLogInterceptor(file)
	return interceptor, func() {
		interceptor.Close()
		file.Close()
	}, nil
}

func newLogger(console *os.File, file io.Writer) *slog.Logger {
	consoleHandler := tint.NewHandler(console, &tint.Options{
		Level:      slog.LevelDebug,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		NoColor:    !isatty.IsTerminal(console.Fd()),
	})
	fileHandler := slog.NewTextHandler(file, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		// the interceptor stamps each line
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			return a
		},
	})
	return slog.New(utils.NewFanoutHandler(consoleHandler, fileHandler))
}

// loadConfig merges, lowest to highest: config file, .env, environment,
// explicitly set flags. Flag defaults sit below everything else.
func loadConfig(cmd *cobra.Command) (*shell.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	if f := cmd.Flag("config"); f != nil && f.Changed {
		v.SetConfigFile(f.Value.String())
	} else {
		v.AddConfigPath(defaultConfigDir)
		v.SetConfigName(configFileName)
		v.SetConfigType("json")
	}

	configPath := ""
	if err := v.ReadInConfig(); err != nil {
		enoent := errors.Is(err, os.ErrNotExist)
		_, ok := err.(viper.ConfigFileNotFoundError)
		if !enoent && !ok {
			return nil, fmt.Errorf("config read '%s': %w", v.ConfigFileUsed(), err)
		}
	} else {
		configPath = v.ConfigFileUsed()
	}

	for key, name := range flagKeys {
		if f := cmd.Flag(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	return &shell.Config{
		BackendURL:     v.GetString("backend_url"),
		BackendTimeout: v.GetDuration("backend_timeout"),
		StartupDelay:   v.GetDuration("startup_delay"),
		StartHint:      v.GetString("start_hint"),
		HTTPAddr:       v.GetString("http_addr"),
		HTTPToken:      v.GetString("http_token"),
		RateLimit:      v.GetInt64("rate_limit"),
		Path:           configPath,
	}, nil
}
