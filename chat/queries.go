package chat

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"boardbot/domain"
)

var (
	greetingRe   = regexp.MustCompile(`^(?:hi|hello|hey|yo|howdy|good (?:morning|afternoon|evening))\b`)
	helpRe       = regexp.MustCompile(`\bhelp\b|what can you do|how do(?:es)? (?:this|you) work`)
	summaryRe    = regexp.MustCompile(`\bsummary\b|\boverview\b|\bstatus\b`)
	overdueRe    = regexp.MustCompile(`\boverdue\b|\blate\b|\bpast due\b`)
	prioritizeRe = regexp.MustCompile(`prioriti|what should i (?:do|work on)|\bfocus\b`)
	workloadRe   = regexp.MustCompile(`\bworkload\b|how busy|too much on my plate|\bbandwidth\b`)
	tagQueryRe   = regexp.MustCompile(`\btags?\b|\blabels?\b`)
	listRe       = regexp.MustCompile(`\b(?:list|show|display)\b|\ball tasks\b|\bmy tasks\b|what(?:'s| is) on (?:the|my) board`)
	tipsRe       = regexp.MustCompile(`\btips?\b|\badvice\b|productiv`)
	statsRe      = regexp.MustCompile(`\bstats\b|\bstatistics\b|\bmetrics\b|\bnumbers\b`)
	thanksRe     = regexp.MustCompile(`^(?:thanks|thank you|thx|ty|cheers)\b`)
)

const helpText = `Here's what I can do:
• create tasks — create task "Fix login bug" due tomorrow priority high tags: bug, auth
• move them — move Fix login bug to done · start Fix login bug
• edit them — change priority of Fix login bug to high · rename it · set a due date
• tag them — add tags frontend, urgent to Fix login bug
• delete them — delete Fix login bug
• and report — summary, overdue, workload, stats, list tasks`

const fallbackText = `I didn't quite get that. I can create, move, edit, tag and delete tasks, or give you a summary, overdue list, workload check and stats. Say "help" for examples.`

// query handles the read-only intents. Checks run in a fixed priority order
// and only inspect the board snapshot; no action is ever emitted.
func (e *Engine) query(lower string, b *domain.Board) Reply {
	switch {
	case greetingRe.MatchString(lower):
		return Reply{Text: "Hi! I'm your board assistant. Ask me to create, move, edit or delete tasks — or say \"help\" for examples."}
	case helpRe.MatchString(lower):
		return Reply{Text: helpText}
	case summaryRe.MatchString(lower):
		return Reply{Text: e.summary(b)}
	case overdueRe.MatchString(lower):
		return Reply{Text: e.overdueReport(b)}
	case prioritizeRe.MatchString(lower):
		return Reply{Text: e.prioritize(b)}
	case workloadRe.MatchString(lower):
		return Reply{Text: workload(b)}
	case tagQueryRe.MatchString(lower):
		return Reply{Text: tagDistribution(b)}
	case listRe.MatchString(lower):
		return Reply{Text: e.listTasks(b)}
	case tipsRe.MatchString(lower):
		return Reply{Text: e.tips()}
	case statsRe.MatchString(lower):
		return Reply{Text: e.stats(b)}
	case thanksRe.MatchString(lower):
		return Reply{Text: "You're welcome! Anything else I can do for your board?"}
	}
	return Reply{Text: fallbackText}
}

func (e *Engine) today() string {
	return e.now().Format(DateLayout)
}

// isOverdue reports whether a task's due day has passed (the due day itself
// counts, since the deadline is end of that day) and the task is not done.
func isOverdue(t domain.Task, today string) bool {
	return t.ColumnID != domain.ColumnDone && t.DueDate != "" && t.DueDate <= today
}

func (e *Engine) overdueTasks(b *domain.Board) []domain.Task {
	today := e.today()
	var out []domain.Task
	for _, t := range b.TaskList() {
		if isOverdue(t, today) {
			out = append(out, t)
		}
	}
	return out
}

func (e *Engine) summary(b *domain.Board) string {
	tasks := b.TaskList()
	total := len(tasks)
	if total == 0 {
		return "Your board is empty. Say something like: create task \"Plan the week\" to get started."
	}

	counts := map[domain.ColumnID]int{}
	highPending := 0
	done := 0
	for _, t := range tasks {
		counts[t.ColumnID]++
		if t.ColumnID == domain.ColumnDone {
			done++
		} else if t.Priority == domain.PriorityHigh {
			highPending++
		}
	}
	overdue := len(e.overdueTasks(b))
	completion := int(float64(done)/float64(total)*100 + 0.5)

	var sb strings.Builder
	sb.WriteString("Board summary:\n")
	for _, col := range b.ColumnOrder {
		fmt.Fprintf(&sb, "• %s: %d\n", domain.ColumnTitle(col), counts[col])
	}
	fmt.Fprintf(&sb, "Overdue: %d · High priority pending: %d · %d%% complete", overdue, highPending, completion)
	return sb.String()
}

func (e *Engine) overdueReport(b *domain.Board) string {
	overdue := e.overdueTasks(b)
	if len(overdue) == 0 {
		return "Nothing is overdue. Nice work staying on top of things!"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "You have %d overdue task%s:\n", len(overdue), plural(len(overdue)))
	for _, t := range overdue {
		fmt.Fprintf(&sb, "• %s (due %s)\n", t.Title, t.DueDate)
	}
	sb.WriteString("Want me to move any of them along?")
	return sb.String()
}

func (e *Engine) prioritize(b *domain.Board) string {
	today := e.today()
	var overdue, high []domain.Task
	for _, t := range b.TaskList() {
		switch {
		case isOverdue(t, today):
			overdue = append(overdue, t)
		case t.ColumnID != domain.ColumnDone && t.Priority == domain.PriorityHigh:
			high = append(high, t)
		}
	}
	if len(overdue) == 0 && len(high) == 0 {
		return "Nothing urgent right now. Pick whatever you're most excited about!"
	}
	var sb strings.Builder
	sb.WriteString("Here's what I'd tackle first:\n")
	for i, t := range overdue {
		if i == 3 {
			break
		}
		fmt.Fprintf(&sb, "• %s — overdue (due %s)\n", t.Title, t.DueDate)
	}
	for i, t := range high {
		if i == 3 {
			break
		}
		fmt.Fprintf(&sb, "• %s — high priority\n", t.Title)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func workload(b *domain.Board) string {
	active := len(b.Columns[domain.ColumnTodo].TaskIDs) + len(b.Columns[domain.ColumnInProgress].TaskIDs)
	var assessment string
	switch {
	case active <= 3:
		assessment = "a light load — you have room to take on more"
	case active <= 7:
		assessment = "a moderate load — looks manageable"
	case active <= 12:
		assessment = "a heavy load — consider finishing a few before adding more"
	default:
		assessment = "a very heavy load — time to ruthlessly prioritize"
	}
	return fmt.Sprintf("You have %d active task%s. That's %s.", active, plural(active), assessment)
}

func tagDistribution(b *domain.Board) string {
	counts := map[string]int{}
	for _, t := range b.Tasks {
		for _, tag := range t.Tags {
			counts[tag]++
		}
	}
	if len(counts) == 0 {
		return `No tags in use yet. Add some with "add tag frontend to Fix login bug".`
	}
	type tagCount struct {
		tag string
		n   int
	}
	ordered := make([]tagCount, 0, len(counts))
	for tag, n := range counts {
		ordered = append(ordered, tagCount{tag, n})
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].n != ordered[j].n {
			return ordered[i].n > ordered[j].n
		}
		return ordered[i].tag < ordered[j].tag
	})
	var sb strings.Builder
	sb.WriteString("Tags in use:\n")
	for _, tc := range ordered {
		fmt.Fprintf(&sb, "• %s: %d\n", tc.tag, tc.n)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (e *Engine) listTasks(b *domain.Board) string {
	if len(b.Tasks) == 0 {
		return "Your board is empty. Say something like: create task \"Plan the week\" to get started."
	}
	today := e.today()
	var sb strings.Builder
	for _, col := range b.ColumnOrder {
		column := b.Columns[col]
		fmt.Fprintf(&sb, "%s (%d):\n", domain.ColumnTitle(col), len(column.TaskIDs))
		for _, id := range column.TaskIDs {
			t, ok := b.Tasks[id]
			if !ok {
				continue
			}
			line := "• " + t.Title
			if isOverdue(t, today) {
				line += " ⚠ overdue"
			}
			sb.WriteString(line + "\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// tipsPool is the fixed set the tips intent draws three random entries from.
var tipsPool = []string{
	"Break big tasks into pieces you can finish in one sitting.",
	"Limit work in progress — two or three tasks at a time keeps focus sharp.",
	"Do the most important task first thing, before the day fills up.",
	"Give every task a due date, even a rough one. Deadlines drive decisions.",
	"Review the Done column at the end of the week — momentum is motivating.",
	"If a task takes under two minutes, do it now instead of tracking it.",
	"Batch similar small tasks together and clear them in one pass.",
	"An overdue task you'll never do is a candidate for deletion, not guilt.",
	"Use tags to group related work so you can see themes at a glance.",
	"Plan tomorrow's top three tasks before you stop for the day.",
}

func (e *Engine) tips() string {
	idx := e.rng.Perm(len(tipsPool))
	var sb strings.Builder
	sb.WriteString("A few productivity tips:\n")
	for _, i := range idx[:3] {
		sb.WriteString("• " + tipsPool[i] + "\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (e *Engine) stats(b *domain.Board) string {
	tasks := b.TaskList()
	total := len(tasks)
	if total == 0 {
		return "No stats yet — the board is empty."
	}
	done := 0
	withDue := 0
	tagTotal := 0
	priCounts := map[domain.Priority]int{}
	for _, t := range tasks {
		if t.ColumnID == domain.ColumnDone {
			done++
		}
		if t.DueDate != "" {
			withDue++
		}
		tagTotal += len(t.Tags)
		priCounts[t.Priority]++
	}
	completion := int(float64(done)/float64(total)*100 + 0.5)
	avgTags := fmt.Sprintf("%.1f", float64(tagTotal)/float64(total))

	var sb strings.Builder
	sb.WriteString("Board statistics:\n")
	fmt.Fprintf(&sb, "• Total tasks: %d (%d%% complete)\n", total, completion)
	fmt.Fprintf(&sb, "• Priority: %d high, %d medium, %d low\n",
		priCounts[domain.PriorityHigh], priCounts[domain.PriorityMedium], priCounts[domain.PriorityLow])
	fmt.Fprintf(&sb, "• With due dates: %d\n", withDue)
	fmt.Fprintf(&sb, "• Overdue: %d\n", len(e.overdueTasks(b)))
	fmt.Fprintf(&sb, "• Average tags per task: %s", avgTags)
	return sb.String()
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
