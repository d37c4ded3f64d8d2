package chat

import (
	"regexp"
	"strings"

	"boardbot/domain"
)

var columnPatterns = []struct {
	re *regexp.Regexp
	id domain.ColumnID
}{
	{regexp.MustCompile(`\b(?:to-do|todo|backlog)\b`), domain.ColumnTodo},
	{regexp.MustCompile(`\b(?:in-progress|in progress|doing|working|active|started|wip)\b`), domain.ColumnInProgress},
	{regexp.MustCompile(`\b(?:done|completed|finished)\b`), domain.ColumnDone},
}

var priorityPatterns = []struct {
	re *regexp.Regexp
	p  domain.Priority
}{
	{regexp.MustCompile(`\b(?:high|urgent|critical|important)\b`), domain.PriorityHigh},
	{regexp.MustCompile(`\b(?:medium|normal|moderate|med)\b`), domain.PriorityMedium},
	{regexp.MustCompile(`\b(?:low|minor|trivial)\b`), domain.PriorityLow},
}

// ResolveColumn maps loose column vocabulary anywhere in text to a column id.
// The first pattern that matches wins.
func ResolveColumn(text string) (domain.ColumnID, bool) {
	text = strings.ToLower(text)
	for _, cp := range columnPatterns {
		if cp.re.MatchString(text) {
			return cp.id, true
		}
	}
	return "", false
}

// ResolvePriority maps loose priority vocabulary anywhere in text to a
// priority level.
func ResolvePriority(text string) (domain.Priority, bool) {
	text = strings.ToLower(text)
	for _, pp := range priorityPatterns {
		if pp.re.MatchString(text) {
			return pp.p, true
		}
	}
	return "", false
}
