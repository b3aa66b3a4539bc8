package dispatch

import (
	"sort"
	"strings"

	"github.com/javiermolinar/scheduleragent/internal/dateresolve"
	"github.com/javiermolinar/scheduleragent/internal/model"
)

var deleteAllRoutineTokens = map[string]bool{
	"all": true, "allroutine": true, "allroutines": true,
	"全部": true, "すべて": true, "全て": true, "全件": true,
	"全ルーチン": true, "全ルーティン": true,
	"すべてのルーチン": true, "すべてのルーティン": true,
	"全部のルーチン": true, "全部のルーティン": true,
}

var routineNameSuffixes = []string{"ルーチン", "ルーティン", "routine", "routines"}

// normalizeRoutineNameKey folds a raw routine-name argument into a
// comparison key: trims quotes/whitespace, collapses internal spaces,
// casefolds.
func normalizeRoutineNameKey(value string) string {
	text := strings.Trim(strings.TrimSpace(value), "「」『』\"'`")
	text = strings.ReplaceAll(text, "　", " ")
	text = strings.Join(strings.Fields(text), "")
	return strings.ToLower(text)
}

func routineNameCandidates(value string) []string {
	base := normalizeRoutineNameKey(value)
	if base == "" {
		return nil
	}
	seen := map[string]bool{base: true}
	for _, suffix := range routineNameSuffixes {
		if strings.HasSuffix(base, suffix) && len(base) > len(suffix) {
			seen[base[:len(base)-len(suffix)]] = true
		}
		withNo := "の" + suffix
		if strings.HasSuffix(base, withNo) && len(base) > len(withNo) {
			seen[base[:len(base)-len(withNo)]] = true
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}

func isDeleteAllRoutineRequest(action Action, routineName string) bool {
	if dateresolve.BoolFromValue(action.Args["all"], false) {
		return true
	}
	scopeKey := normalizeRoutineNameKey(argString(action.Args, "scope"))
	if scopeKey != "" && deleteAllRoutineTokens[scopeKey] {
		return true
	}
	nameKey := normalizeRoutineNameKey(routineName)
	return nameKey != "" && deleteAllRoutineTokens[nameKey]
}

// matchRoutinesByName finds routines matching name, preferring exact
// (post-normalization) matches over suffix-stripped partial matches.
func matchRoutinesByName(routines []*model.Routine, routineName string) ([]*model.Routine, string) {
	candidates := routineNameCandidates(routineName)
	if len(candidates) == 0 {
		return nil, "none"
	}

	type pair struct {
		routine *model.Routine
		nameKey string
	}
	pairs := make([]pair, len(routines))
	for i, r := range routines {
		pairs[i] = pair{routine: r, nameKey: normalizeRoutineNameKey(r.Name)}
	}

	exactByID := map[int64]*model.Routine{}
	for _, candidate := range candidates {
		for _, p := range pairs {
			if p.nameKey == candidate {
				exactByID[p.routine.ID] = p.routine
			}
		}
	}
	if len(exactByID) > 0 {
		return mapValues(exactByID), "exact"
	}

	partialByID := map[int64]*model.Routine{}
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		for _, p := range pairs {
			if strings.Contains(p.nameKey, candidate) {
				partialByID[p.routine.ID] = p.routine
			}
		}
	}
	if len(partialByID) > 0 {
		return mapValues(partialByID), "partial"
	}

	return nil, "none"
}

func mapValues(m map[int64]*model.Routine) []*model.Routine {
	out := make([]*model.Routine, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
