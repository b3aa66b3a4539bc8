package cliagent

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/scheduleragent/internal/chatlog"
	"github.com/javiermolinar/scheduleragent/internal/llm"
	"github.com/javiermolinar/scheduleragent/internal/orchestrate"
	"github.com/javiermolinar/scheduleragent/internal/reply"
)

const transcriptWindow = 20

func (a *App) chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session with the scheduler",
		RunE: func(_ *cobra.Command, _ []string) error {
			return a.runChat()
		},
	}
}

func (a *App) runChat() error {
	client, err := a.client()
	if err != nil {
		return err
	}

	fmt.Println(formatSystem("scheduleragent へようこそ。入力して Enter で送信、Ctrl+D か 'exit' で終了します。"))

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(formatUser("> "))
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		if err := a.handleTurn(context.Background(), client, line); err != nil {
			fmt.Println(formatError(fmt.Sprintf("エラー: %v", err)))
		}
	}
}

func (a *App) handleTurn(ctx context.Context, client llm.Client, userMessage string) error {
	if err := chatlog.RecordUser(ctx, a.store, userMessage); err != nil {
		return fmt.Errorf("recording user message: %w", err)
	}

	entries, err := chatlog.Recent(ctx, a.store, transcriptWindow)
	if err != nil {
		return fmt.Errorf("loading recent history: %w", err)
	}
	messages := chatlog.ToMessages(entries)

	today := time.Now()
	result := orchestrate.Run(ctx, orchestrate.Deps{
		Store:                   a.store,
		LLM:                     client,
		MaxRounds:               a.config.Agent.MaxActionRounds,
		MaxSameReadActionStreak: a.config.Agent.MaxSameReadActionStreak,
	}, messages, today)

	final := reply.BuildFinalReply(ctx, client, userMessage, result.ReplyText, result.Results, result.Errors)

	if err := chatlog.RecordAssistant(ctx, a.store, final, result.ExecutionTrace); err != nil {
		return fmt.Errorf("recording assistant reply: %w", err)
	}

	for _, line := range wrapToWidth(final, termWidth()) {
		fmt.Println(formatAssistant(line))
	}
	return nil
}
