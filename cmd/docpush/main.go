package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/docpush/docpush/internal/config"
	"github.com/docpush/docpush/internal/docstore"
	"github.com/docpush/docpush/internal/sync"
	"github.com/docpush/docpush/internal/version"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"
)

var (
	red   = color.New(color.FgHiRed, color.Bold).SprintFunc()
	green = color.New(color.FgHiGreen).SprintFunc()
	cyan  = color.New(color.FgHiCyan).SprintFunc()
)

var rootCmd = &cobra.Command{
	Use:           "docpush <local-dir> <folder-link>",
	Short:         "Push a local markdown tree to a remote document store",
	Long:          "docpush mirrors a local directory of markdown documents into a remote document-store folder: one-way, create/update/delete, resumable via a local cache.",
	Version:       version.Detailed(),
	Args:          cobra.ExactArgs(2),
	SilenceErrors: true,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := &config.Config{
			Dir:        args[0],
			FolderLink: args[1],
			Token:      viper.GetString("token"),
			CacheFile:  viper.GetString("cache_file"),
			Include:    viper.GetStringSlice("include"),
			Clean:      viper.GetBool("clean"),
			RateLimit:  viper.GetFloat64("rate"),
			Burst:      viper.GetInt("burst"),
			MaxRetries: viper.GetInt("retries"),
			Path:       viper.ConfigFileUsed(),
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		cmd.SilenceUsage = true
		return run(cmd.Context(), cfg)
	},
}

func run(ctx context.Context, cfg *config.Config) error {
	ref, err := docstore.ParseFolderLink(cfg.FolderLink)
	if err != nil {
		return err
	}

	fmt.Printf("%s %s\n", cyan("docpush"), version.Short())
	fmt.Printf("  local:  %s\n", cfg.Dir)
	fmt.Printf("  remote: %s (folder %s)\n", ref.Domain, ref.FolderID)

	client, err := docstore.New(ref.APIBaseURL)
	if err != nil {
		return err
	}
	defer client.Close()
	client.SetAuth(cfg.Token)

	scanner := &sync.Scanner{
		Root:      cfg.Dir,
		Include:   cfg.Include,
		CacheFile: cfg.CacheFile,
	}
	cache := sync.NewCache(filepath.Join(cfg.Dir, cfg.CacheFile))
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst)
	mutator := sync.NewMutator(client, limiter, sync.DefaultBackoff, cfg.MaxRetries)

	reconciler := sync.NewReconciler(scanner, cache, mutator, ref.FolderID, cfg.Clean)
	summary, err := reconciler.Run(ctx)
	if err != nil {
		return err
	}

	if summary.Ok() {
		fmt.Printf("%s %s\n", green("synced:"), summary)
		return nil
	}

	fmt.Printf("%s %s\n", red("sync finished with failures:"), summary)
	return fmt.Errorf("%d operation(s) failed", summary.Failed)
}

func init() {
	rootCmd.Flags().SortFlags = false
	rootCmd.Flags().StringP("token", "t", "", "Document-store access token")
	rootCmd.Flags().Bool("clean", false, "Delete all remote content under the folder and re-sync from scratch")
	rootCmd.Flags().Float64("rate", config.DefaultRateLimit, "Max API calls per second")
	rootCmd.Flags().Int("burst", config.DefaultBurst, "Rate limiter burst size")
	rootCmd.Flags().Int("retries", config.DefaultMaxRetries, "Max attempts per API call")
	rootCmd.Flags().String("cache-file", sync.DefaultCacheFile, "Sync cache file name inside the local dir")
	rootCmd.Flags().StringSlice("include", sync.DefaultInclude, "Glob patterns of documents to push")
	rootCmd.Flags().BoolP("verbose", "v", false, "Debug logging")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file")
}

func loadConfig(cmd *cobra.Command) error {
	// a .env next to the invocation may carry DOCPUSH_TOKEN
	_ = godotenv.Load()

	if cmd.Flag("config").Changed {
		configFilePath, _ := cmd.Flags().GetString("config")
		viper.SetConfigFile(configFilePath)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("config read '%s': %w", configFilePath, err)
		}
	}

	viper.BindPFlag("token", cmd.Flags().Lookup("token"))
	viper.BindPFlag("clean", cmd.Flags().Lookup("clean"))
	viper.BindPFlag("rate", cmd.Flags().Lookup("rate"))
	viper.BindPFlag("burst", cmd.Flags().Lookup("burst"))
	viper.BindPFlag("retries", cmd.Flags().Lookup("retries"))
	viper.BindPFlag("cache_file", cmd.Flags().Lookup("cache-file"))
	viper.BindPFlag("include", cmd.Flags().Lookup("include"))

	viper.SetEnvPrefix("DOCPUSH")
	viper.AutomaticEnv()

	return nil
}

func main() {
	level := slog.LevelInfo
	for _, arg := range os.Args[1:] {
		if arg == "-v" || arg == "--verbose" {
			level = slog.LevelDebug
		}
	}

	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})
	slog.SetDefault(slog.New(handler))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "%s %v\n", red("error:"), err)
		}
		os.Exit(1)
	}
}
