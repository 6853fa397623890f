package main

import (
	"fmt"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/shash-786/wordle-engine/internal/game"
	"github.com/shash-786/wordle-engine/internal/words"
)

var scoreCmd = &cobra.Command{
	Use:   "score <guess> <secret>",
	Short: "Print the G/Y/R feedback code for a guess",
	Example: `  wordle-engine score speed erase   # YRYYR
  wordle-engine score angle angle   # GGGGG`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		guess, secret := words.Normalize(args[0]), words.Normalize(args[1])
		if utf8.RuneCountInString(guess) != utf8.RuneCountInString(secret) {
			return fmt.Errorf("%q and %q differ in length", guess, secret)
		}
		fmt.Fprintln(cmd.OutOrStdout(), game.Score(guess, secret))
		return nil
	},
}

var wordsCmd = &cobra.Command{
	Use:   "words",
	Short: "Load the configured word lists and print their sizes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := words.LoadFrom(cmd.Context(), cfg.Source(), cfg.WordLength)
		if err != nil {
			return err
		}
		answers, allowed := c.Stats()
		fmt.Fprintf(cmd.OutOrStdout(), "answers: %d\nallowed: %d\n", answers, allowed)
		return nil
	},
}
