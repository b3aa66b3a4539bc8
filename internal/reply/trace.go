// Package reply turns a round of dispatch results/errors and the run's
// execution trace into the text actually shown to the user, and carries
// the execution trace through stored chat history via an inline marker.
package reply

import (
	"encoding/base64"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/javiermolinar/scheduleragent/internal/orchestrate"
)

const (
	execTraceMarkerPrefix = "[[EXEC_TRACE_B64:"
	execTraceMarkerSuffix = "]]"
)

var execTraceMarkerPattern = regexp.MustCompile(
	`\n?` + regexp.QuoteMeta(execTraceMarkerPrefix) + `([A-Za-z0-9+/=]+)` + regexp.QuoteMeta(execTraceMarkerSuffix) + `\s*$`,
)

// AttachExecutionTrace appends a base64-encoded JSON blob of trace to
// content, so the round's full execution trace survives a round-trip
// through plain-text chat history storage. Returns content unchanged if
// trace is empty.
func AttachExecutionTrace(content string, trace []orchestrate.TraceRound) string {
	if len(trace) == 0 {
		return content
	}
	encoded, err := json.Marshal(trace)
	if err != nil {
		return content
	}
	b64 := base64.StdEncoding.EncodeToString(encoded)
	return content + "\n" + execTraceMarkerPrefix + b64 + execTraceMarkerSuffix
}

// ExtractExecutionTrace splits a stored content string back into its
// user-visible body and the execution trace attached by AttachExecutionTrace,
// if any. Returns the trimmed body and a nil trace when no marker is present
// or it fails to decode.
func ExtractExecutionTrace(content string) (string, []orchestrate.TraceRound) {
	match := execTraceMarkerPattern.FindStringSubmatchIndex(content)
	if match == nil {
		return content, nil
	}
	body := strings.TrimRight(content[:match[0]], "\n \t")
	encoded := content[match[2]:match[3]]

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return body, nil
	}
	var trace []orchestrate.TraceRound
	if err := json.Unmarshal(decoded, &trace); err != nil {
		return body, nil
	}
	return body, trace
}
