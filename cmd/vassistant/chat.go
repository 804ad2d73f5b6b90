package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/FanchonSora/V-Assistant/internal/dialogue"
	"github.com/FanchonSora/V-Assistant/internal/logging"
	"github.com/FanchonSora/V-Assistant/internal/notification"
	"github.com/FanchonSora/V-Assistant/internal/scheduler"
	"github.com/FanchonSora/V-Assistant/internal/store"
	"github.com/FanchonSora/V-Assistant/internal/task"
)

const replUserID = "local"

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Talk to the assistant in a local REPL (in-memory, no server)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat()
		},
	}
}

func runChat() error {
	db, err := store.Open(":memory:")
	if err != nil {
		return err
	}
	defer db.Close()

	reminderColor := color.New(color.FgYellow)
	notifier := notifierFunc(func(_ context.Context, msg notification.Message) error {
		reminderColor.Printf("\n[reminder] %s\n", msg.Subject)
		return nil
	})
	recipient := func(context.Context, string) (string, error) {
		return replUserID, nil
	}
	sched := scheduler.New(scheduler.Config{Enabled: true}, notifier, recipient, logging.Nop())
	ctx := context.Background()
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer sched.Stop()

	taskSvc := task.NewService(db.Tasks(), task.WithReminders(sched))
	engine := dialogue.NewEngine(taskSvc)

	fmt.Println("V-Assistant (local mode)")
	fmt.Println("Type a command and press Enter. Type 'exit' or 'quit' to quit.")
	fmt.Println()

	homeDir, _ := os.UserHomeDir()
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            "> ",
		HistoryFile:       filepath.Join(homeDir, ".vassistant-history"),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
		Stdin:             readline.NewCancelableStdin(os.Stdin),
		Stdout:            os.Stdout,
		Stderr:            os.Stderr,
	})
	if err != nil {
		return fmt.Errorf("initialize readline: %w", err)
	}
	defer rl.Close()

	replyColor := color.New(color.FgCyan)
	promptColor := color.New(color.FgMagenta)
	errorColor := color.New(color.FgRed)

	for {
		input, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(input) == 0 {
				fmt.Println("Goodbye!")
				break
			}
			continue
		} else if err == io.EOF {
			fmt.Println("Goodbye!")
			break
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" || input == "q" {
			fmt.Println("Goodbye!")
			break
		}

		result, err := engine.Handle(ctx, replUserID, input)
		if err != nil {
			errorColor.Printf("error: %v\n", err)
			continue
		}
		switch result.Kind {
		case dialogue.ResultConfirmationRequested:
			promptColor.Println(result.Reply)
		case dialogue.ResultParseError:
			errorColor.Println(result.Reply)
		default:
			replyColor.Println(result.Reply)
		}
	}
	return nil
}

// notifierFunc adapts a function to the notification.Notifier interface.
type notifierFunc func(ctx context.Context, msg notification.Message) error

func (f notifierFunc) Notify(ctx context.Context, msg notification.Message) error {
	return f(ctx, msg)
}
