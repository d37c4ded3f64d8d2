package chat

import (
	"regexp"
	"sort"
	"strings"

	"boardbot/domain"
)

// maxCandidates caps the disambiguation list offered back to the user.
const maxCandidates = 5

// MatchOutcome tags the result of resolving a free-text task reference.
type MatchOutcome int

const (
	// MatchNone means no task plausibly matched the reference.
	MatchNone MatchOutcome = iota
	// MatchResolved means exactly one task matched with enough confidence.
	MatchResolved
	// MatchAmbiguous means several tasks matched; Candidates holds up to
	// five of them, highest confidence first.
	MatchAmbiguous
)

// MatchResult is the outcome of MatchTask.
type MatchResult struct {
	Outcome    MatchOutcome
	Task       *domain.Task
	Candidates []domain.Task
}

func resolved(t domain.Task) MatchResult {
	return MatchResult{Outcome: MatchResolved, Task: &t}
}

func ambiguous(cands []domain.Task) MatchResult {
	if len(cands) > maxCandidates {
		cands = cands[:maxCandidates]
	}
	return MatchResult{Outcome: MatchAmbiguous, Candidates: cands}
}

var quotedRe = regexp.MustCompile(`"([^"]+)"|'([^']+)'`)

// matchStopWords are stripped from the reference text before word-overlap
// scoring: command verbs, articles, prepositions, field names and the
// column/priority vocabulary.
var matchStopWords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"create", "add", "make", "new", "delete", "remove", "move", "put",
		"complete", "finish", "finished", "start", "begin", "mark", "set",
		"change", "update", "edit", "modify", "rename", "show", "list",
		"a", "an", "the", "to", "from", "for", "of", "on", "in", "at", "as",
		"with", "please", "my", "is", "it", "and", "this", "that",
		"task", "tasks", "card", "item",
		"priority", "due", "date", "deadline", "title", "name",
		"description", "tag", "tags", "label", "labels",
		"todo", "to-do", "backlog", "progress", "doing", "working",
		"active", "started", "wip", "done", "completed",
		"high", "medium", "low", "urgent", "critical", "important",
		"normal", "moderate", "med", "minor", "trivial",
	} {
		matchStopWords[w] = struct{}{}
	}
}

// MatchTask finds the task a free-text reference points at. Three passes run
// in order, short-circuiting at the first that yields a decision: quoted
// title comparison, exact substring containment (longest title first), then
// word-overlap scoring with ambiguity thresholds.
func MatchTask(reference string, tasks []domain.Task) MatchResult {
	if len(tasks) == 0 {
		return MatchResult{Outcome: MatchNone}
	}
	lowerRef := strings.ToLower(reference)

	if m := quotedRe.FindStringSubmatch(reference); m != nil {
		quoted := m[1]
		if quoted == "" {
			quoted = m[2]
		}
		if res, decided := matchQuoted(strings.ToLower(quoted), tasks); decided {
			return res
		}
	}

	if res, decided := matchSubstring(lowerRef, tasks); decided {
		return res
	}

	return matchByOverlap(lowerRef, tasks)
}

func matchQuoted(quoted string, tasks []domain.Task) (MatchResult, bool) {
	var partial []domain.Task
	for _, t := range tasks {
		title := strings.ToLower(t.Title)
		if title == quoted {
			return resolved(t), true
		}
		if strings.Contains(title, quoted) || strings.Contains(quoted, title) {
			partial = append(partial, t)
		}
	}
	switch len(partial) {
	case 0:
		return MatchResult{}, false
	case 1:
		return resolved(partial[0]), true
	default:
		return ambiguous(partial), true
	}
}

// matchSubstring resolves when a task title appears verbatim inside the
// reference. Longest titles win so the most specific match beats a title
// that is a prefix of another. When the reference itself is a prefix of a
// longer title, the shorter exact hit does NOT win outright: the user may
// have meant the longer task, so both are offered as candidates.
func matchSubstring(lowerRef string, tasks []domain.Task) (MatchResult, bool) {
	ref := strings.TrimSpace(lowerRef)
	var contained []domain.Task // title appears inside the reference
	var extending []domain.Task // reference appears inside a longer title
	for _, t := range tasks {
		title := strings.ToLower(t.Title)
		if len(title) >= 3 && strings.Contains(ref, title) {
			contained = append(contained, t)
			continue
		}
		if len(ref) >= 3 && strings.Contains(title, ref) {
			extending = append(extending, t)
		}
	}
	if len(contained)+len(extending) == 0 {
		return MatchResult{}, false
	}
	sort.SliceStable(contained, func(i, j int) bool {
		return len(contained[i].Title) > len(contained[j].Title)
	})
	if len(extending) == 0 {
		return resolved(contained[0]), true
	}
	if len(contained) == 0 && len(extending) == 1 {
		return resolved(extending[0]), true
	}
	return ambiguous(append(contained, extending...)), true
}

type scoredTask struct {
	task    domain.Task
	score   float64
	matched int
}

func matchByOverlap(lowerRef string, tasks []domain.Task) MatchResult {
	var content []string
	for _, w := range strings.Fields(lowerRef) {
		w = strings.Trim(w, `"'.,!?:;`)
		if w == "" {
			continue
		}
		if _, stop := matchStopWords[w]; stop {
			continue
		}
		content = append(content, w)
	}
	if len(content) == 0 {
		return MatchResult{Outcome: MatchNone}
	}

	var kept []scoredTask
	for _, t := range tasks {
		var titleWords []string
		for _, w := range strings.Fields(strings.ToLower(t.Title)) {
			if len(w) > 1 {
				titleWords = append(titleWords, w)
			}
		}
		if len(titleWords) == 0 {
			continue
		}
		matched := 0
		for _, tw := range titleWords {
			for _, cw := range content {
				if tw == cw || strings.Contains(tw, cw) || strings.Contains(cw, tw) {
					matched++
					break
				}
			}
		}
		score := float64(matched) / float64(len(titleWords))
		if score > 0.3 || matched >= 2 {
			kept = append(kept, scoredTask{task: t, score: score, matched: matched})
		}
	}

	switch len(kept) {
	case 0:
		return MatchResult{Outcome: MatchNone}
	case 1:
		return resolved(kept[0].task)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].score != kept[j].score {
			return kept[i].score > kept[j].score
		}
		return kept[i].matched > kept[j].matched
	})
	top, second := kept[0], kept[1]
	if top.score >= 0.6 && top.score > second.score*1.2 {
		return resolved(top.task)
	}
	cands := make([]domain.Task, 0, len(kept))
	for _, s := range kept {
		cands = append(cands, s.task)
	}
	return ambiguous(cands)
}
