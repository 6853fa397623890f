// wordle-engine: guess-evaluation and game-state engine with an HTTP adapter.
//
// Commands:
//   - serve  → run the HTTP API (default when no subcommand is given)
//   - score  → print the feedback code for a guess against a secret
//   - words  → report the sizes of the configured word lists
//
// Settings come from flags, environment variables and an optional .env file
// (see internal/config).

package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/shash-786/wordle-engine/internal/config"
)

var (
	v   = config.New()
	cfg *config.Config
)

// rootCmd loads configuration before any subcommand runs.
var rootCmd = &cobra.Command{
	Use:           "wordle-engine",
	Short:         "Wordle guess evaluation and game sessions",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(); err != nil {
			return err
		}
		if err := config.BindFlags(v, cmd.Flags()); err != nil {
			return err
		}
		c, err := config.Load(v)
		if err != nil {
			return err
		}
		cfg = c
		setupLogging(cfg.LogLevel, cfg.Production())
		return nil
	},
	RunE: runServe,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String(config.FlagName("log_level"), "", "log level (debug, info, warn, error)")
	pf.Int(config.FlagName("word_length"), 0, "letters per word")
	pf.String(config.FlagName("answers_file"), "", "answers list file (one word per line)")
	pf.String(config.FlagName("allowed_file"), "", "valid-guess list file (one word per line)")

	rootCmd.AddCommand(serveCmd, scoreCmd, wordsCmd)
}

// setupLogging applies the global level; development gets console output.
func setupLogging(level string, production bool) {
	if lvl, err := zerolog.ParseLevel(level); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if !production {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
