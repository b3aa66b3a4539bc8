package cliagent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/scheduleragent/internal/chatlog"
)

func (a *App) historyCmd() *cobra.Command {
	var (
		limit     int
		clear     bool
		withTrace bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print or clear the stored chat transcript",
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx := context.Background()
			if clear {
				if err := chatlog.Clear(ctx, a.store); err != nil {
					return fmt.Errorf("clearing chat history: %w", err)
				}
				fmt.Println(formatSystem("履歴を消去しました。"))
				return nil
			}

			entries, err := chatlog.Recent(ctx, a.store, limit)
			if err != nil {
				return fmt.Errorf("loading chat history: %w", err)
			}
			if len(entries) == 0 {
				fmt.Println(formatSystem("履歴はありません。"))
				return nil
			}

			for _, entry := range entries {
				label := formatSystem(string(entry.Role))
				switch entry.Role {
				case "user":
					label = formatUser(string(entry.Role))
				case "assistant":
					label = formatAssistant(string(entry.Role))
				}
				fmt.Printf("[%s] %s: %s\n", entry.Timestamp, label, entry.Content)

				if withTrace && len(entry.Trace) > 0 {
					raw, err := json.MarshalIndent(entry.Trace, "", "  ")
					if err == nil {
						fmt.Println(formatSystem(string(raw)))
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of entries to print")
	cmd.Flags().BoolVar(&clear, "clear", false, "Clear the stored transcript instead of printing it")
	cmd.Flags().BoolVar(&withTrace, "trace", false, "Also print each assistant turn's execution trace")

	return cmd
}
