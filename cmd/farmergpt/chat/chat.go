// Package chatcmder provides the chat command for an interactive
// conversation with the farming advisor.
package chatcmder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/farmergpt/farmergpt/advisor"
	"github.com/farmergpt/farmergpt/cmd/farmergpt/stack"
	"github.com/farmergpt/farmergpt/pkg/cliui"
	"github.com/farmergpt/farmergpt/pkg/dotdir"
	"github.com/farmergpt/farmergpt/pkg/language"
	"github.com/farmergpt/farmergpt/pkg/logger"
)

const persistTimeout = 10 * time.Second

type asker interface {
	Ask(ctx context.Context, in advisor.Input) (*advisor.Reply, error)
}

type chatCommander struct {
	flags     stack.Flags
	language  string
	newChat   bool
	debug     bool
	configDir string

	viper  *viper.Viper
	logger *slog.Logger
	dirs   *dotdir.Manager
	state  *dotdir.SessionState
}

const chatLongDesc string = `Start an interactive conversation with the farming advisor.

Type a question and press Enter. To choose the answer language, append it
after a pipe:
  How do I control stem borer in paddy? | Telugu

The chosen language is remembered for the rest of the conversation. Type
"exit" or "quit" (or press Ctrl+D) to leave.

The conversation id is kept in .farmergpt/session.json so the next
"farmergpt chat" continues where you left off. Use --new to start over.`

const chatShortDesc string = "Chat with the farming advisor"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{dirs: dotdir.NewManager()}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			v, err := stack.LoadViper(cmd, stack.FlagKeys...)
			if err != nil {
				return err
			}
			cmder.viper = v
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			if !cmd.Flags().Changed("language") {
				cmder.language = ""
			}

			return cmder.run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&cmder.language, "language", "l", "auto", "Answer language for this conversation")
	cmd.Flags().BoolVar(&cmder.newChat, "new", false, "Start a new conversation instead of resuming")
	cmder.flags.AddFlags(cmd)

	return cmd
}

func (c *chatCommander) run(ctx context.Context, in io.Reader, out io.Writer) error {
	c.logger = logger.New(logger.WithDebug(c.debug), logger.WithPretty(true), logger.WithWriter(os.Stderr))

	if err := c.resume(out); err != nil {
		return err
	}

	s, err := stack.Build(ctx, c.viper, c.configDir, c.logger)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			c.logger.Warn("some exchanges may not have been stored", "error", err)
		}
	}()

	return c.loop(ctx, s.Advisor, in, out)
}

// resume loads or starts the session and prints the conversation header.
func (c *chatCommander) resume(out io.Writer) error {
	if c.newChat {
		if err := c.dirs.ClearSession(c.configDir); err != nil {
			return fmt.Errorf("clearing session state: %w", err)
		}
	}

	state, err := c.dirs.LoadSession(c.configDir)
	if err != nil {
		return fmt.Errorf("loading session state: %w", err)
	}

	fmt.Fprintln(out)
	if state != nil {
		fmt.Fprintf(out, "  %s Resuming conversation %s\n",
			cliui.SuccessMark,
			cliui.DimStyle.Render(state.ID),
		)
	} else {
		state = &dotdir.SessionState{
			ID:        uuid.NewString(),
			StartedAt: time.Now().UTC(),
		}
		fmt.Fprintf(out, "  %s New conversation\n", cliui.DimStyle.Render("●"))
	}

	if c.language != "" {
		state.Language = string(language.Normalize(c.language))
	}
	if state.Language == "" {
		state.Language = string(language.Auto)
	}
	c.state = state

	fmt.Fprintf(out, "  %s %s\n\n",
		cliui.KeyStyle.Render("Language:"),
		cliui.ValueStyle.Render(state.Language),
	)
	fmt.Fprintf(out, "  %s\n\n", cliui.DimStyle.Render("Ask a question, optionally as 'question | language'. Type exit to quit."))

	return c.dirs.SaveSession(state, c.configDir)
}

// loop reads questions from in until exit, quit or EOF.
func (c *chatCommander) loop(ctx context.Context, a asker, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, cliui.PromptStyle.Render("farmer> "))
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if isExit(line) {
			break
		}

		question, lang := splitInput(line)
		if lang != "" {
			c.state.Language = string(language.Normalize(lang))
			if err := c.dirs.SaveSession(c.state, c.configDir); err != nil {
				c.logger.Warn("could not save session language", "error", err)
			}
		}
		if question == "" {
			fmt.Fprintf(out, "  %s %s\n\n", cliui.KeyStyle.Render("Language:"), c.state.Language)
			continue
		}

		reply, err := a.Ask(ctx, advisor.Input{
			SessionID: c.state.ID,
			Question:  question,
			Language:  c.state.Language,
		})
		if err != nil {
			if errors.Is(err, advisor.ErrPipelineFault) {
				c.logger.Error("advisor fault", "error", err)
			}
			fmt.Fprintf(out, "  %s %v\n\n", cliui.FailMark, err)
			continue
		}

		fmt.Fprintln(out)
		fmt.Fprint(out, cliui.RenderAnswer(reply.Answer, reply.Degraded))
		fmt.Fprintln(out)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Fprintf(out, "\n  %s\n\n", cliui.DimStyle.Render("Goodbye, farmer!"))
	return nil
}

func isExit(line string) bool {
	switch strings.ToLower(line) {
	case "exit", "quit", "/exit":
		return true
	}
	return false
}

// splitInput separates "question | language". The language is empty when
// no pipe is present.
func splitInput(line string) (question, lang string) {
	q, l, found := strings.Cut(line, "|")
	if !found {
		return strings.TrimSpace(line), ""
	}
	return strings.TrimSpace(q), strings.TrimSpace(l)
}
