package reply

import (
	"context"
	"log"
	"strings"

	"github.com/javiermolinar/scheduleragent/internal/llm"
	"github.com/javiermolinar/scheduleragent/internal/orchestrate"
)

// isVisibleError reports whether err is something the user should see,
// rather than one of the orchestration loop's own guard/termination
// messages.
func isVisibleError(err string) bool {
	return !orchestrate.IsInternalControlError(err)
}

const summarySystemPrompt = "あなたはユーザーのスケジュール管理をサポートする親しみやすいAIパートナーです。\n" +
	"ユーザーの要望に対してシステムがアクションを実行しました。\n" +
	"その「実行結果」をもとに、ユーザーへの最終的な回答を作成してください。\n" +
	"\n" +
	"## ガイドライン\n" +
	"1. **フレンドリーに**: 絵文字（📅、✅、✨、👍など）を適度に使用し、硬すぎない丁寧語（です・ます）で話してください。\n" +
	"2. **分かりやすく**: 実行結果の羅列（「カスタムタスク[2]...」のような形式）は避け、人間が読みやすい文章に整形してください。\n" +
	"   - 例: 「12月10日の9時から『カラオケ』の予定が入っていますね！楽しんできてください🎤」\n" +
	"   - 予定がない日は「予定なし」と書かず、その行自体を省略してください。\n" +
	"   - expression=... や計算結果(...) のような内部表現はそのまま出力しないでください。\n" +
	"3. **エラーへの対応**: エラーがある場合は、優しくその旨を伝え、どうすればよいか分かれば示唆してください。\n" +
	"   - 重複停止や上限到達などの内部制御メッセージは、必要な時だけ「一部を安全のためスキップしました」程度に言い換えてください。\n" +
	"4. **元の文脈を維持**: ユーザーの元の発言に対する返答として自然になるようにしてください。"

// BuildFinalReply turns a completed orchestration run into the text shown
// to the user. When the run produced no dispatch results or visible errors
// it passes the model's own closing reply through unchanged; otherwise it
// asks client for a conversational summary of the results/errors, falling
// back to a fixed template if that call fails or reads as mechanical.
func BuildFinalReply(ctx context.Context, client llm.Client, userMessage, replyText string, results, errors []string) string {
	var visibleErrors []string
	for _, err := range errors {
		if isVisibleError(err) {
			visibleErrors = append(visibleErrors, err)
		}
	}

	if len(results) == 0 && len(visibleErrors) == 0 {
		final := replyText
		if final == "" {
			final = "了解しました。"
		}
		return removeNoScheduleLines(final)
	}

	var resultText strings.Builder
	if len(results) > 0 {
		resultText.WriteString("【実行結果】\n")
		for _, item := range results {
			resultText.WriteString("- " + item + "\n")
		}
	}
	if len(visibleErrors) > 0 {
		resultText.WriteString("【エラー】\n")
		for _, err := range visibleErrors {
			resultText.WriteString("- " + err + "\n")
		}
	}

	messages := []llm.Message{
		{Role: "system", Content: summarySystemPrompt},
		{Role: "user", Content: "ユーザーの発言: " + userMessage + "\n\n" + resultText.String()},
	}

	final, err := client.Chat(ctx, messages)
	if err != nil || looksMechanicalReply(final) {
		if err != nil {
			log.Printf("reply: summary LLM call failed, falling back to template: %v", err)
		}
		final = buildPopFriendlyReply(userMessage, results, visibleErrors)
	}

	return removeNoScheduleLines(final)
}
