package chat

import (
	"math/rand"
	"regexp"
	"strings"
	"time"

	"boardbot/domain"
)

// Engine converts free-text messages plus the current board state into a
// reply and an optional board action. Process is a pure function of its
// inputs apart from the randomized tips intent; it never mutates the board
// and never fails.
type Engine struct {
	now func() time.Time
	rng *rand.Rand
}

// NewEngine returns an engine using the wall clock and a time-seeded random
// source for tips selection.
func NewEngine() *Engine {
	return &Engine{
		now: time.Now,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Reply is the outcome of processing one message. Action is nil for
// informational replies and for every failure mode.
type Reply struct {
	Text   string
	Action domain.Action
}

var (
	preambleRe = regexp.MustCompile(`(?i)^(?:please|can you|could you|would you|will you|i want to|i'd like to|i would like to|i need to|hey|hi|hello)[,!]?\s+`)

	// The tag gates require the full tag-op shape (verb … tag keyword …
	// task separator). A bare tag keyword is not enough: "add a task …
	// tags: x, y" is a create with a tags clause, not a tag operation.
	tagAddGateRe    = regexp.MustCompile(`^(?:add|attach|apply|put)\b.*\b(?:tags?|labels?)\b.*\s(?:to|onto|on|for)\s|^tag\s`)
	tagRemoveGateRe = regexp.MustCompile(`^(?:remove|delete|clear|strip)\b.*\b(?:tags?|labels?)\b.*\s(?:from|off|of)\s|^untag\s`)
	createGateRe    = regexp.MustCompile(`^(?:create|add|make)\b|^new\s+(?:task|card|item)\b`)
	moveGateRe      = regexp.MustCompile(`^(?:move|put|shift|drag|send)\b|^(?:complete|finish)\b|\bdone with\b|\bmark\b.*\bas\s+(?:done|complete|completed|finished)\b|^(?:start|begin)\b`)
	editGateRe      = regexp.MustCompile(`^(?:change|update|set|edit|modify|rename)\b`)
	deleteGateRe    = regexp.MustCompile(`^(?:delete|remove|trash|drop|discard)\b|\bget rid of\b`)
	questionGateRe  = regexp.MustCompile(`^(?:how|what|when|where|why|who|can i)\b`)
)

// normalizeMessage strips leading politeness preambles and a trailing
// question mark.
func normalizeMessage(msg string) string {
	s := strings.TrimSpace(msg)
	for {
		next := preambleRe.ReplaceAllString(s, "")
		if next == s {
			break
		}
		s = next
	}
	s = strings.TrimSuffix(s, "?")
	return strings.TrimSpace(s)
}

// Process classifies one message against the board snapshot. Intent
// categories are checked in a fixed priority order; only the first match is
// handled. Tag operations run before create and delete so "remove tag x
// from y" is never treated as a task deletion.
func (e *Engine) Process(message string, b *domain.Board) Reply {
	msg := normalizeMessage(message)
	lower := strings.ToLower(msg)

	switch {
	case tagAddGateRe.MatchString(lower):
		return e.tagAdd(msg, b)
	case tagRemoveGateRe.MatchString(lower):
		return e.tagRemove(msg, b)
	case createGateRe.MatchString(lower) && !questionGateRe.MatchString(lower):
		return e.create(msg, lower, b)
	case moveGateRe.MatchString(lower):
		return e.move(msg, lower, b)
	case editGateRe.MatchString(lower):
		return e.edit(msg, lower, b)
	case deleteGateRe.MatchString(lower):
		return e.deleteTask(msg, lower, b)
	}
	return e.query(lower, b)
}

// resolveRef runs the task matcher and renders the two failure replies
// shared by every write intent. ok is true only when a single task resolved.
func resolveRef(ref string, b *domain.Board) (domain.Task, Reply, bool) {
	res := MatchTask(ref, b.TaskList())
	switch res.Outcome {
	case MatchResolved:
		return *res.Task, Reply{}, true
	case MatchAmbiguous:
		return domain.Task{}, disambiguationReply(res.Candidates), false
	default:
		return domain.Task{}, notFoundReply(ref, b), false
	}
}

func disambiguationReply(cands []domain.Task) Reply {
	var sb strings.Builder
	sb.WriteString("I found several tasks that could match. Which one did you mean?\n")
	for _, c := range cands {
		sb.WriteString("• " + c.Title + "\n")
	}
	sb.WriteString("Try quoting the exact title.")
	return Reply{Text: sb.String()}
}

func notFoundReply(ref string, b *domain.Board) Reply {
	ref = strings.TrimSpace(ref)
	text := "I couldn't find a task matching \"" + ref + "\"."
	tasks := b.TaskList()
	if len(tasks) > 0 {
		titles := make([]string, 0, len(tasks))
		for _, t := range tasks {
			titles = append(titles, t.Title)
		}
		text += " Current tasks: " + strings.Join(titles, ", ") + "."
	}
	return Reply{Text: text}
}
