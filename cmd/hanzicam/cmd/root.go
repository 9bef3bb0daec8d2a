// Package cmd contains all CLI commands for hanzicam.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/f3rmion/hanzicam/internal/config"
	"github.com/f3rmion/hanzicam/internal/dictionary"
	"github.com/f3rmion/hanzicam/internal/hanzi"
	"github.com/f3rmion/hanzicam/internal/history"
	"github.com/f3rmion/hanzicam/internal/llm"
	"github.com/f3rmion/hanzicam/internal/logger"
	"github.com/f3rmion/hanzicam/internal/pinyin"
	"github.com/f3rmion/hanzicam/internal/prompt"
	"github.com/f3rmion/hanzicam/internal/session"
	"github.com/spf13/cobra"
)

var (
	cfgDir  string
	verbose bool
)

// errReported marks failures already shown to the user as a notification.
var errReported = errors.New("reported")

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hanzicam",
	Short: "Point at Chinese text, get characters, pinyin and meanings",
	Long: `hanzicam sends photos of Chinese text to a multimodal model and shows
each recognized character with its tone-marked pinyin and a short meaning.

Images come from a file (hanzicam scan) or from a directory a camera tool
keeps writing frames into (hanzicam live). Recognized results are kept in a
short history.

Running 'hanzicam' without arguments launches the interactive TUI.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runInteractive,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errReported) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", "", "config directory (default is $HOME/.config/hanzicam)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "debug logging")
}

// configDir returns the --config directory or the default one.
func configDir() (string, error) {
	if cfgDir != "" {
		return cfgDir, nil
	}
	dir, err := config.DefaultDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return dir, nil
}

// app bundles what the capture commands share.
type app struct {
	cfg   *config.Config
	log   *slog.Logger
	kv    *history.SQLiteKV
	store *history.Store
	dict  *dictionary.Dictionary
}

// setup loads config, logging, history and the optional dictionary.
// logOut receives log records; the TUI passes io.Discard.
func setup(logOut io.Writer) (*app, error) {
	dir, err := configDir()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	log := logger.New(cfg.Log, logOut)

	kv, err := history.OpenSQLite(cfg.History.Path)
	if err != nil {
		return nil, err
	}
	a := &app{
		cfg:   cfg,
		log:   log,
		kv:    kv,
		store: history.NewStore(kv, history.WithLogger(log)),
	}

	if cfg.Enrich.Dictionary != "" {
		dict, err := dictionary.Load(cfg.Enrich.Dictionary)
		if err != nil {
			log.Warn("dictionary not loaded", slog.String("path", cfg.Enrich.Dictionary), slog.Any("error", err))
		} else {
			log.Debug("dictionary loaded", slog.Int("entries", dict.Size()), slog.Int("skipped", dict.Skipped()))
			a.dict = dict
		}
	}
	return a, nil
}

// Close releases the history database.
func (a *app) Close() error {
	return a.kv.Close()
}

// recognizer builds the service client wrapped in the local fallbacks.
func (a *app) recognizer() (hanzi.Recognizer, error) {
	client, err := llm.NewClient(llm.Config{
		APIKey:    a.cfg.LLM.APIKey,
		Model:     a.cfg.LLM.Model,
		BaseURL:   a.cfg.LLM.BaseURL,
		MaxTokens: a.cfg.LLM.MaxTokens,
		Timeout:   a.cfg.LLM.Timeout,
		Prompt:    prompt.DefaultOptions(),
	}, a.log)
	if err != nil {
		return nil, err
	}

	var gloss pinyin.Glosser
	if a.dict != nil {
		gloss = a.dict
	}
	if !a.cfg.Enrich.PinyinFallback && gloss == nil {
		return client, nil
	}
	return pinyin.NewFallback(client, a.cfg.Enrich.PinyinFallback, gloss), nil
}

// controller builds a capture controller that records into history.
func (a *app) controller(n session.Notifier) (*session.Controller, error) {
	rec, err := a.recognizer()
	if err != nil {
		return nil, err
	}
	return session.NewController(rec, a.store, n, session.WithLogger(a.log)), nil
}

// stderrNotifier prints each notification as one line.
func stderrNotifier(w io.Writer) session.Notifier {
	return session.NotifierFunc(func(n session.Notification) {
		fmt.Fprintln(w, n.String())
	})
}
