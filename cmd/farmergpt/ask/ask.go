// Package askcmder provides the ask command, which answers one question and
// exits.
package askcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/farmergpt/farmergpt/advisor"
	"github.com/farmergpt/farmergpt/cmd/farmergpt/stack"
	"github.com/farmergpt/farmergpt/pkg/cliui"
	"github.com/farmergpt/farmergpt/pkg/logger"
)

// persistTimeout bounds the wait for the exchange to be stored before exit.
const persistTimeout = 10 * time.Second

type asker interface {
	Ask(ctx context.Context, in advisor.Input) (*advisor.Reply, error)
}

type askCommander struct {
	flags     stack.Flags
	language  string
	audioPath string
	sessionID string
	raw       bool
	debug     bool
	configDir string

	viper  *viper.Viper
	logger *slog.Logger
	out    io.Writer
}

const askLongDesc string = `Ask the farming advisor a single question.

The question is given as arguments, or recorded audio is given with --audio
(requires transcriber.base_url). The answer is printed to stdout and the
exchange is stored with the configured storage driver before exiting.

Examples:
  farmergpt ask "How do I treat aphids on tomato plants?"
  farmergpt ask -l Telugu "When should I sow groundnut?"
  farmergpt ask --audio question.ogg -l hi`

const askShortDesc string = "Ask a single farming question"

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: askShortDesc,
		Long:  askLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			v, err := stack.LoadViper(cmd, stack.FlagKeys...)
			if err != nil {
				return err
			}
			cmder.viper = v
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			cmder.out = cmd.OutOrStdout()

			return cmder.run(cmd.Context(), strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVarP(&cmder.language, "language", "l", "auto", "Answer language (English, Telugu, Malayalam, Kannada, Hindi, Tenglish, auto)")
	cmd.Flags().StringVar(&cmder.audioPath, "audio", "", "Path to a recorded question")
	cmd.Flags().StringVar(&cmder.sessionID, "session", "", "Session id for follow-up questions")
	cmd.Flags().BoolVar(&cmder.raw, "raw", false, "Print the answer without markdown rendering")
	cmder.flags.AddFlags(cmd)

	return cmd
}

func (c *askCommander) run(ctx context.Context, question string) error {
	// Logs go to stderr so the answer can be piped.
	c.logger = logger.New(logger.WithDebug(c.debug), logger.WithPretty(true), logger.WithWriter(os.Stderr))

	s, err := stack.Build(ctx, c.viper, c.configDir, c.logger)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			c.logger.Warn("exchange may not have been stored", "error", err)
		}
	}()

	return c.ask(ctx, s.Advisor, question)
}

// ask runs one question through asker and prints the answer.
func (c *askCommander) ask(ctx context.Context, a asker, question string) error {
	reply, err := a.Ask(ctx, advisor.Input{
		SessionID: c.sessionID,
		Question:  question,
		AudioPath: c.audioPath,
		Language:  c.language,
	})
	if errors.Is(err, advisor.ErrInvalidInput) {
		return errors.New("provide either a question or --audio, not both")
	}
	if err != nil {
		return err
	}

	if c.audioPath != "" {
		fmt.Fprintf(c.out, "%s %s\n\n", cliui.DimStyle.Render("Heard:"), reply.Question)
	}

	if c.raw {
		_, err = fmt.Fprintln(c.out, reply.Answer)
		return err
	}
	_, err = fmt.Fprint(c.out, cliui.RenderAnswer(reply.Answer, reply.Degraded))
	return err
}
