package orchestrate

import (
	"encoding/json"
	"sort"

	"github.com/javiermolinar/scheduleragent/internal/dispatch"
)

// canonicalJSON renders action as a sorted-keys JSON object so that two
// actions proposed with the same type/args in a different key order compare
// equal.
func canonicalJSON(action dispatch.Action) string {
	obj := map[string]any{"type": action.Type}
	for k, v := range action.Args {
		obj[k] = v
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ordered := make([]byte, 0, 128)
	ordered = append(ordered, '{')
	for i, k := range keys {
		if i > 0 {
			ordered = append(ordered, ',')
		}
		kb, _ := json.Marshal(k)
		ordered = append(ordered, kb...)
		ordered = append(ordered, ':')
		vb, err := json.Marshal(obj[k])
		if err != nil {
			vb = []byte(`null`)
		}
		ordered = append(ordered, vb...)
	}
	ordered = append(ordered, '}')
	return string(ordered)
}

// actionSignature is the canonical signature of a round's whole proposed
// action list, used to detect the LLM repeating itself verbatim.
func actionSignature(actions []dispatch.Action) string {
	parts := make([]string, len(actions))
	for i, a := range actions {
		parts[i] = canonicalJSON(a)
	}
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "|"
		}
		out += p
	}
	return out
}

// actionFingerprint is the dedup key for a single write action.
func actionFingerprint(action dispatch.Action) string {
	return canonicalJSON(action)
}
