// Package orchestrate drives the bounded multi-round tool-calling loop
// between the LLM and the schedule store: build context, call the model,
// normalize/dedupe its proposed tool calls, dispatch them, and feed the
// results back as the next round's context until the model stops proposing
// actions or a guard terminates the run.
package orchestrate

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	schedulectx "github.com/javiermolinar/scheduleragent/internal/context"
	"github.com/javiermolinar/scheduleragent/internal/dispatch"
	"github.com/javiermolinar/scheduleragent/internal/llm"
	"github.com/javiermolinar/scheduleragent/internal/store"
	"github.com/javiermolinar/scheduleragent/internal/tools"
)

// Deps are the collaborators one orchestration run needs.
type Deps struct {
	Store                   *store.Store
	LLM                     llm.Client
	MaxRounds               int
	MaxSameReadActionStreak int
}

// TraceAction is one action's record inside a round's execution trace.
type TraceAction struct {
	Type   string         `json:"type"`
	Params map[string]any `json:"params"`
}

// TraceRound is one round's full record: what was proposed, what ran, and
// what came back.
type TraceRound struct {
	Round   int           `json:"round"`
	Actions []TraceAction `json:"actions"`
	Results []string      `json:"results"`
	Errors  []string      `json:"errors"`
	Skipped bool          `json:"skipped,omitempty"`
}

// RunResult is the full outcome of one chat turn's orchestration run.
type RunResult struct {
	ReplyText      string
	RawReplies     []string
	Actions        []dispatch.Action
	Results        []string
	Errors         []string
	ModifiedIDs    []string
	ExecutionTrace []TraceRound
}

// Run drives one orchestration run to completion: up to deps.MaxRounds
// rounds of (context → LLM → normalize → dedupe → dispatch → feedback).
func Run(ctx context.Context, deps Deps, messages []llm.Message, today time.Time) RunResult {
	roundsLimit := deps.MaxRounds
	if roundsLimit <= 0 {
		roundsLimit = 10
	}
	maxSameReadStreak := deps.MaxSameReadActionStreak
	if maxSameReadStreak <= 0 {
		maxSameReadStreak = 10
	}

	working := append([]llm.Message(nil), messages...)
	userMessage := lastUserMessage(messages)
	steps := inferRequestedSteps(userMessage)

	var result RunResult
	var resolvedMemory []resolvedEntry
	executedWriteFingerprints := make(map[string]bool)

	previousSignature := ""
	previousRoundHadWrite := false
	staleReadRepeatCount := 0
	noProgressRounds := 0
	completedSteps := 0

	if len(steps) > 0 {
		planningMessage := "requested_steps_plan:\n" + formatStepProgress(steps, completedSteps) +
			"\nこの順序を意識して実行してください。"
		working = append(working, llm.Message{Role: "system", Content: planningMessage})
	}

	builder := schedulectx.New(deps.Store)

	hitRoundLimit := true
	for round := 1; round <= roundsLimit; round++ {
		worldState, err := builder.Build(ctx, today)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("コンテキストの構築に失敗しました: %v", err))
			hitRoundLimit = false
			break
		}

		roundMessages := append([]llm.Message{
			{Role: "system", Content: systemPrompt(time.Now())},
			{Role: "system", Content: worldState},
		}, working...)

		chatResult, err := deps.LLM.ChatWithTools(ctx, roundMessages, tools.Scheduler(), llm.ToolChoiceAuto)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("LLM 呼び出しに失敗しました: %v", err))
			hitRoundLimit = false
			break
		}

		replyText := chatResult.Content
		result.RawReplies = append(result.RawReplies, replyText)

		currentActions := toolCallsToActions(chatResult.ToolCalls)
		currentActions = normalizeActionsForWeekScopeConfirmation(currentActions, userMessage)
		currentActions = injectBaseDateForReferenceResolves(currentActions, resolvedMemory)
		if len(currentActions) == 0 {
			hitRoundLimit = false
			break
		}

		allReadOnly := len(currentActions) > 0
		for _, a := range currentActions {
			if !dispatch.ReadOnly(a.Type) && !tools.ReadOnly[a.Type] {
				allReadOnly = false
				break
			}
		}
		signature := actionSignature(currentActions)
		if signature != "" && signature == previousSignature {
			if allReadOnly && !previousRoundHadWrite {
				staleReadRepeatCount++
				if staleReadRepeatCount >= maxSameReadStreak {
					result.Errors = append(result.Errors, fmt.Sprintf(
						"同じ参照/計算アクションが%d回連続したため処理を終了しました。", maxSameReadStreak))
					hitRoundLimit = false
					break
				}
			} else {
				result.Errors = append(result.Errors, "同一アクションが連続して提案されたため、重複実行を停止しました。")
				hitRoundLimit = false
				break
			}
		} else {
			staleReadRepeatCount = 0
		}
		previousSignature = signature

		var actionsToExecute []dispatch.Action
		var skippedWriteDuplicates []dispatch.Action
		for _, action := range currentActions {
			if dispatch.ReadOnly(action.Type) {
				actionsToExecute = append(actionsToExecute, action)
				continue
			}
			fingerprint := actionFingerprint(action)
			if fingerprint != "" && executedWriteFingerprints[fingerprint] {
				skippedWriteDuplicates = append(skippedWriteDuplicates, action)
				continue
			}
			if fingerprint != "" {
				executedWriteFingerprints[fingerprint] = true
			}
			actionsToExecute = append(actionsToExecute, action)
		}

		duplicateWarning := ""
		if len(skippedWriteDuplicates) > 0 {
			duplicateWarning = "同一の更新アクションが再提案されたため再実行をスキップしました。"
		}

		if len(actionsToExecute) == 0 {
			noProgressRounds++
			result.ExecutionTrace = append(result.ExecutionTrace, TraceRound{
				Round:   round,
				Actions: toTraceActions(currentActions),
				Results: []string{},
				Errors:  stringsOrEmpty(duplicateWarning),
				Skipped: true,
			})
			feedback := buildRoundFeedback(round, currentActions, nil, nil, steps, completedSteps, resolvedMemory, duplicateWarning)
			assistantFeedback := replyText
			if assistantFeedback == "" {
				assistantFeedback = "了解しました。"
			}
			working = append(working,
				llm.Message{Role: "assistant", Content: assistantFeedback},
				llm.Message{Role: "system", Content: feedback},
			)
			if noProgressRounds >= 2 {
				result.Errors = append(result.Errors, "進捗が得られない状態が続いたため処理を終了しました。")
				hitRoundLimit = false
				break
			}
			continue
		}

		actionResults, actionErrs, modifiedIDs, applyErr := dispatch.Apply(ctx, deps.Store, actionsToExecute, today)
		if applyErr != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("操作の適用に失敗しました: %v", applyErr))
			hitRoundLimit = false
			break
		}
		result.Actions = append(result.Actions, actionsToExecute...)
		result.Results = append(result.Results, actionResults...)
		result.Errors = append(result.Errors, actionErrs...)
		result.ModifiedIDs = append(result.ModifiedIDs, modifiedIDs...)

		beforeCompletedSteps := completedSteps
		for _, action := range actionsToExecute {
			if completedSteps >= len(steps) {
				break
			}
			if steps[completedSteps].ActionTypes[action.Type] {
				completedSteps++
			}
		}

		freshResolved := extractResolvedMemoryFromActions(actionsToExecute, today)
		resolvedMemory = mergeResolvedMemory(resolvedMemory, freshResolved)

		result.ExecutionTrace = append(result.ExecutionTrace, TraceRound{
			Round:   round,
			Actions: toTraceActions(actionsToExecute),
			Results: append([]string(nil), actionResults...),
			Errors:  append([]string(nil), actionErrs...),
		})

		hasProgress := len(modifiedIDs) > 0 || len(actionResults) > 0 || completedSteps > beforeCompletedSteps
		if hasProgress {
			noProgressRounds = 0
		} else {
			noProgressRounds++
		}

		previousRoundHadWrite = false
		for _, action := range actionsToExecute {
			if !dispatch.ReadOnly(action.Type) {
				previousRoundHadWrite = true
				break
			}
		}

		feedback := buildRoundFeedback(round, actionsToExecute, actionResults, actionErrs, steps, completedSteps, resolvedMemory, duplicateWarning)
		assistantFeedback := replyText
		if assistantFeedback == "" {
			assistantFeedback = "了解しました。"
		}
		working = append(working,
			llm.Message{Role: "assistant", Content: assistantFeedback},
			llm.Message{Role: "system", Content: feedback},
		)

		if noProgressRounds >= 2 {
			result.Errors = append(result.Errors, "進捗が得られない状態が続いたため処理を終了しました。")
			hitRoundLimit = false
			break
		}
		hitRoundLimit = round == roundsLimit
	}

	if hitRoundLimit {
		result.Errors = append(result.Errors, fmt.Sprintf(
			"複数ステップ実行の上限（%dラウンド）に達したため処理を終了しました。", roundsLimit))
	}

	if len(result.RawReplies) > 0 {
		result.ReplyText = result.RawReplies[len(result.RawReplies)-1]
	}
	result.ModifiedIDs = dedupeStrings(result.ModifiedIDs)

	return result
}

func lastUserMessage(messages []llm.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Content
		}
	}
	return ""
}

func toolCallsToActions(calls []llm.ToolCall) []dispatch.Action {
	var actions []dispatch.Action
	for _, call := range calls {
		if call.Name == "" || call.Name == tools.ReviewDecisionToolName {
			continue
		}
		var args map[string]any
		if call.Arguments != "" {
			_ = json.Unmarshal([]byte(call.Arguments), &args)
		}
		if args == nil {
			args = map[string]any{}
		}
		actions = append(actions, dispatch.Action{Type: call.Name, Args: args})
	}
	return actions
}

func toTraceActions(actions []dispatch.Action) []TraceAction {
	out := make([]TraceAction, len(actions))
	for i, a := range actions {
		out[i] = TraceAction{Type: a.Type, Params: a.Args}
	}
	return out
}

func stringsOrEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}

func dedupeStrings(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}
