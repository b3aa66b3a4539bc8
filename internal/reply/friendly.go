package reply

import (
	"regexp"
	"strings"
)

var noScheduleLinePattern = regexp.MustCompile(`予定\s*(?:な\s*し|無し)`)

var blankLineRunPattern = regexp.MustCompile(`\n{3,}`)

// removeNoScheduleLines drops any line reporting an empty schedule ("予定な
// し"/"予定無し") so a friendly reply doesn't dwell on what's absent.
func removeNoScheduleLines(text string) string {
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if noScheduleLinePattern.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}
	cleaned := strings.Join(kept, "\n")
	cleaned = blankLineRunPattern.ReplaceAllString(cleaned, "\n\n")
	return strings.TrimSpace(cleaned)
}

var mechanicalReplyMarkers = []string{"【実行結果】", "計算結果(", "expression", "カスタムタスク [", "ルーチンステップ ["}

// looksMechanicalReply reports whether text still carries a raw internal
// result marker, meaning the summarizer's output shouldn't be trusted as the
// final reply.
func looksMechanicalReply(text string) bool {
	for _, marker := range mechanicalReplyMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

var (
	addCustomTaskPattern = regexp.MustCompile(
		`^カスタムタスク「(.+?)」\(ID: \d+\) を (\d{4}-\d{2}-\d{2}) の (\d{2}:\d{2}) に追加しました。$`)
	toggleCustomTaskPattern = regexp.MustCompile(
		`^カスタムタスク「(.+?)」を (完了|未完了) に更新しました。$`)
	deleteCustomTaskPattern = regexp.MustCompile(
		`^カスタムタスク「(.+?)」を削除しました。$`)
	dailySummaryPattern = regexp.MustCompile(
		`^(\d{4}-\d{2}-\d{2}) の活動概要:`)
	dailySummaryEntryPattern = regexp.MustCompile(
		`^- (\d{2}:\d{2}) (.+?) \((完了|未完了)\)`)
)

// friendlyResultLines renders one dispatch result string as one or more
// emoji-prefixed, conversational lines for the no-LLM fallback reply.
func friendlyResultLines(result string) []string {
	text := strings.TrimSpace(result)
	if text == "" {
		return nil
	}

	if m := addCustomTaskPattern.FindStringSubmatch(text); m != nil {
		return []string{"📅 " + m[2] + " " + m[3] + " に「" + m[1] + "」を追加しました！"}
	}
	if m := toggleCustomTaskPattern.FindStringSubmatch(text); m != nil {
		return []string{"✅ 「" + m[1] + "」を" + m[2] + "にしました。"}
	}
	if m := deleteCustomTaskPattern.FindStringSubmatch(text); m != nil {
		return []string{"🗑️ 「" + m[1] + "」を削除しました。"}
	}
	if m := dailySummaryPattern.FindStringSubmatch(text); m != nil {
		lines := []string{"📋 " + m[1] + " の予定を確認しました！"}
		var details []string
		for _, line := range strings.Split(text, "\n") {
			line = strings.TrimSpace(line)
			if entry := dailySummaryEntryPattern.FindStringSubmatch(line); entry != nil {
				details = append(details, "・"+entry[1]+" "+entry[2]+"（"+entry[3]+"）")
			}
		}
		if len(details) > 0 {
			if len(details) > 5 {
				details = details[:5]
			}
			lines = append(lines, details...)
		} else {
			lines = append(lines, "・いまのところ目立った予定はありません。")
		}
		return lines
	}

	return []string{"・" + text}
}

// buildPopFriendlyReply is the no-LLM fallback: a fixed, emoji-led template
// built directly from results/errors, used when the summarizer call fails
// or produces a mechanical-looking reply.
func buildPopFriendlyReply(userMessage string, results, errors []string) string {
	lines := []string{"✨ 実行しました！"}

	for _, result := range results {
		lines = append(lines, friendlyResultLines(result)...)
	}

	var visibleErrors []string
	for _, err := range errors {
		if !isVisibleError(err) {
			continue
		}
		visibleErrors = append(visibleErrors, err)
	}
	if len(visibleErrors) > 0 {
		lines = append(lines, "⚠️ いくつか確認が必要な点があります。")
		limit := visibleErrors
		if len(limit) > 3 {
			limit = limit[:3]
		}
		for _, err := range limit {
			lines = append(lines, "・"+err)
		}
	}

	if len(results) == 0 && len(visibleErrors) == 0 {
		if strings.TrimSpace(userMessage) != "" {
			lines = append(lines, "内容を確認しました。必要なら次の操作もすぐ進められます。")
		} else {
			lines = append(lines, "内容を確認しました。")
		}
	}

	lines = append(lines, "🌈 ほかにもやりたい操作があれば続けて教えてください！")
	return removeNoScheduleLines(strings.Join(lines, "\n"))
}
