package chat

import (
	"regexp"
	"strings"

	"boardbot/domain"
)

var (
	tagAddShapeRe    = regexp.MustCompile(`(?i)^(?:add|attach|apply|put|tag)\s+(?:the\s+)?(?:tags?\s+|labels?\s+)?(.+?)\s+(?:to|onto|on|for)\s+(.+)$`)
	tagRemoveShapeRe = regexp.MustCompile(`(?i)^(?:remove|delete|clear|strip|untag)\s+(?:the\s+)?(?:tags?\s+|labels?\s+)?(.+?)\s+(?:from|off|of)\s+(.+)$`)
	tagSplitRe       = regexp.MustCompile(`[,;&]+|\s+and\s+`)
	tagNounTrailRe   = regexp.MustCompile(`(?i)\s+(?:tags?|labels?)$`)

	calledRe       = regexp.MustCompile(`(?i)\b(?:called|titled|named)\s+(.+)$`)
	nounColonRe    = regexp.MustCompile(`(?i)\b(?:task|item|card|todo)\s*:\s*(.+)$`)
	afterNounRe    = regexp.MustCompile(`(?i)\b(?:task|item|card)\s+(.+)$`)
	leadVerbRe     = regexp.MustCompile(`(?i)^(?:create|add|make|new)\s+(.+)$`)
	titleBoundary  = regexp.MustCompile(`(?i)\s+(?:due\b|by\b|deadline\b|with\s+priority\b|priority\b|tags?\b|tagged\b|labels?\b|description\b|desc\b|details\b|(?:in|to)\s+(?:the\s+)?(?:todo|to-do|backlog|in-progress|in\s+progress|doing|done)\b)`)
	dueClauseRe    = regexp.MustCompile(`(?i)\b(?:due|by|deadline)\s+(?:on\s+)?(.+)$`)
	tagsClauseRe   = regexp.MustCompile(`(?i)\b(?:tags?|tagged|labels?)\s*:?\s+(.+)$`)
	descClauseRe   = regexp.MustCompile(`(?i)\b(?:description|desc|details)\s*:?\s+(.+)$`)
	clauseTrailing = regexp.MustCompile(`(?i)\s+(?:tags?\b|tagged\b|labels?\b|description\b|desc\b|details\b|due\b|by\b|deadline\b|priority\b|with\b).*$`)

	completeVerbRe  = regexp.MustCompile(`^(?:complete|finish)\b|\bdone with\b|\bmark\b.*\bas\s+(?:done|complete|completed|finished)\b`)
	startVerbRe     = regexp.MustCompile(`^(?:start|begin)\b`)
	moveLeadRe      = regexp.MustCompile(`(?i)^(?:move|put|shift|drag|send|complete|finish|start|begin|mark)\s+(?:the\s+)?(?:task\s+)?`)
	doneWithLeadRe  = regexp.MustCompile(`(?i)^done with\s+`)
	moveDestTrailRe = regexp.MustCompile(`(?i)\s+(?:to|into|in|onto)\s+(?:the\s+)?(?:todo|to-do|backlog|in-progress|in\s+progress|doing|done|completed|finished)(?:\s+(?:column|list))?$`)
	markAsTrailRe   = regexp.MustCompile(`(?i)\s+as\s+(?:done|complete|completed|finished)$`)

	priorityFieldRe = regexp.MustCompile(`\bpriority\b|\bpri\b`)
	titleFieldRe    = regexp.MustCompile(`\btitle\b|\bname\b|^rename\b`)
	dueFieldRe      = regexp.MustCompile(`\bdue\b|\bdeadline\b|\bdate\b`)
	descFieldRe     = regexp.MustCompile(`\bdescription\b|\bdesc\b|\bdetails\b`)

	trailingToRe  = regexp.MustCompile(`(?i)^(.*)\s+(?:to|as)\s+(.+)$`)
	editLeadRe    = regexp.MustCompile(`(?i)^(?:change|update|set|edit|modify|rename)\s+(?:the\s+)?`)
	ofForRe       = regexp.MustCompile(`(?i)^(?:of|for|on)\s+`)
	renameRe      = regexp.MustCompile(`(?i)^rename\s+(.+?)\s+(?:to|as)\s+(.+)$`)
	dueEditRe     = regexp.MustCompile(`(?i)^(?:change|update|set|edit|modify)\s+(?:the\s+)?(?:due(?:\s+date)?|deadline|date)\s+(?:of|for|on)\s+(.+?)(?:\s+to\s+(.+))?$`)
	dueInlineRe   = regexp.MustCompile(`(?i)^(?:change|update|set|edit|modify)\s+(?:the\s+)?(.+?)\s+(?:due(?:\s+date)?|deadline)\s+(?:to\s+)?(.+)$`)
	descEditRe    = regexp.MustCompile(`(?i)^(?:change|update|set|edit|modify)\s+(?:the\s+)?(?:description|desc|details)\s+(?:of|for|on)\s+(.+?)\s+to\s+(.+)$`)
	clearDueRe    = regexp.MustCompile(`(?i)^(?:none|clear|cleared|remove|removed|unset|null|no date)$`)
	deleteLeadRe  = regexp.MustCompile(`(?i)^(?:delete|remove|trash|drop|discard|get rid of)\s+(?:the\s+)?`)
	trailNounRe   = regexp.MustCompile(`(?i)\s+(?:task|card|item)$`)
	leadArticleRe = regexp.MustCompile(`(?i)^(?:a|an|the)\s+`)
)

// splitTags turns a spoken tag list into normalized tags. A trailing
// "tag"/"label" noun ("the urgent tag") is part of the phrasing, not the tag.
func splitTags(list string) []string {
	list = tagNounTrailRe.ReplaceAllString(list, "")
	parts := tagSplitRe.Split(strings.ToLower(list), -1)
	return domain.NormalizeTags(parts)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func joinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

func tagWord(tags []string) string {
	if len(tags) == 1 {
		return "tag"
	}
	return "tags"
}

func (e *Engine) tagAdd(msg string, b *domain.Board) Reply {
	m := tagAddShapeRe.FindStringSubmatch(msg)
	if m == nil {
		return Reply{Text: `To tag a task, say something like "add tags frontend, urgent to Fix login bug".`}
	}
	tags := splitTags(m[1])
	if len(tags) == 0 {
		return Reply{Text: `Which tags should I add? Try "add tags frontend, urgent to Fix login bug".`}
	}
	task, fail, ok := resolveRef(m[2], b)
	if !ok {
		return fail
	}

	merged := append([]string(nil), task.Tags...)
	var added []string
	for _, tg := range tags {
		if !containsString(merged, tg) {
			merged = append(merged, tg)
			added = append(added, tg)
		}
	}
	if len(added) == 0 {
		return Reply{Text: `"` + task.Title + `" already has the ` + tagWord(tags) + ` ` + joinTags(tags) + `.`}
	}
	return Reply{
		Text:   `Added ` + tagWord(added) + ` ` + joinTags(added) + ` to "` + task.Title + `".`,
		Action: domain.UpdateAction{TaskID: task.ID, Patch: domain.TaskPatch{Tags: &merged}},
	}
}

func (e *Engine) tagRemove(msg string, b *domain.Board) Reply {
	m := tagRemoveShapeRe.FindStringSubmatch(msg)
	if m == nil {
		return Reply{Text: `To remove a tag, say something like "remove tag urgent from Fix login bug".`}
	}
	tags := splitTags(m[1])
	if len(tags) == 0 {
		return Reply{Text: `Which tags should I remove? Try "remove tag urgent from Fix login bug".`}
	}
	task, fail, ok := resolveRef(m[2], b)
	if !ok {
		return fail
	}

	remaining := make([]string, 0, len(task.Tags))
	var removed []string
	for _, tg := range task.Tags {
		if containsString(tags, tg) {
			removed = append(removed, tg)
			continue
		}
		remaining = append(remaining, tg)
	}
	if len(removed) == 0 {
		return Reply{Text: `"` + task.Title + `" doesn't have the ` + tagWord(tags) + ` ` + joinTags(tags) + `.`}
	}
	return Reply{
		Text:   `Removed ` + tagWord(removed) + ` ` + joinTags(removed) + ` from "` + task.Title + `".`,
		Action: domain.UpdateAction{TaskID: task.ID, Patch: domain.TaskPatch{Tags: &remaining}},
	}
}

// cutAtBoundary trims a captured title at the first trailing clause keyword
// (due/priority/tags/description/column phrases).
func cutAtBoundary(s string) string {
	if loc := titleBoundary.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	return strings.TrimSpace(s)
}

func trimArticles(s string) string {
	return strings.TrimSpace(leadArticleRe.ReplaceAllString(s, ""))
}

func trimQuotes(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}

func degenerateTitle(s string) bool {
	switch strings.ToLower(s) {
	case "", "task", "item", "card", "a", "an", "the":
		return true
	}
	return len(s) <= 1
}

func extractTitle(msg string) string {
	if m := quotedRe.FindStringSubmatch(msg); m != nil {
		if m[1] != "" {
			return strings.TrimSpace(m[1])
		}
		return strings.TrimSpace(m[2])
	}
	if m := calledRe.FindStringSubmatch(msg); m != nil {
		if t := trimQuotes(cutAtBoundary(m[1])); t != "" {
			return t
		}
	}
	if m := nounColonRe.FindStringSubmatch(msg); m != nil {
		if t := trimQuotes(cutAtBoundary(m[1])); t != "" {
			return t
		}
	}
	if m := afterNounRe.FindStringSubmatch(msg); m != nil {
		if t := trimArticles(trimQuotes(cutAtBoundary(m[1]))); !degenerateTitle(t) {
			return t
		}
	}
	if m := leadVerbRe.FindStringSubmatch(msg); m != nil {
		if t := trimArticles(trimQuotes(cutAtBoundary(m[1]))); !degenerateTitle(t) {
			return t
		}
	}
	return ""
}

const createUsage = `I can create that for you, but I need a title. Try: create task "Fix login bug" due tomorrow priority high`

func (e *Engine) create(msg, lower string, b *domain.Board) Reply {
	title := extractTitle(msg)
	if title == "" {
		return Reply{Text: createUsage}
	}

	priority := domain.PriorityMedium
	if p, ok := ResolvePriority(lower); ok {
		priority = p
	}
	column := domain.ColumnTodo
	if c, ok := ResolveColumn(lower); ok {
		column = c
	}

	due := ""
	if m := dueClauseRe.FindStringSubmatch(msg); m != nil {
		clause := clauseTrailing.ReplaceAllString(m[1], "")
		if d, ok := ResolveDate(clause, e.now()); ok {
			due = d
		}
	}

	var tags []string
	if m := tagsClauseRe.FindStringSubmatch(msg); m != nil {
		clause := m[1]
		if loc := descClauseRe.FindStringIndex(clause); loc != nil {
			clause = clause[:loc[0]]
		}
		tags = splitTags(clause)
	}

	description := ""
	if m := descClauseRe.FindStringSubmatch(msg); m != nil {
		description = trimQuotes(m[1])
	}

	// A keyword clause can leak into the captured title; strip it again.
	title = trimQuotes(cutAtBoundary(title))
	if title == "" {
		return Reply{Text: createUsage}
	}

	text := `Created "` + title + `" in ` + domain.ColumnTitle(column) + ` with ` + string(priority) + ` priority`
	if due != "" {
		text += `, due ` + due
	}
	if len(tags) > 0 {
		text += `, tagged ` + joinTags(tags)
	}
	if description != "" {
		text += `, with a description`
	}
	text += `.`

	return Reply{
		Text: text,
		Action: domain.CreateAction{
			ColumnID:    column,
			Title:       title,
			Description: description,
			Priority:    priority,
			DueDate:     due,
			Tags:        tags,
		},
	}
}

func (e *Engine) move(msg, lower string, b *domain.Board) Reply {
	var dest domain.ColumnID
	switch {
	case completeVerbRe.MatchString(lower):
		dest = domain.ColumnDone
	case startVerbRe.MatchString(lower):
		dest = domain.ColumnInProgress
	default:
		c, ok := ResolveColumn(lower)
		if !ok {
			return Reply{Text: "Which column should it go to? You can say todo, in progress, or done."}
		}
		dest = c
	}

	if len(b.Tasks) == 0 {
		return Reply{Text: "Your board is empty — there's nothing to move yet."}
	}

	ref := doneWithLeadRe.ReplaceAllString(msg, "")
	ref = moveLeadRe.ReplaceAllString(ref, "")
	ref = moveDestTrailRe.ReplaceAllString(ref, "")
	ref = markAsTrailRe.ReplaceAllString(ref, "")
	ref = trimArticles(strings.TrimSpace(ref))

	task, fail, ok := resolveRef(ref, b)
	if !ok {
		return fail
	}
	if task.ColumnID == dest {
		return Reply{Text: `"` + task.Title + `" is already in ` + domain.ColumnTitle(dest) + `.`}
	}
	return Reply{
		Text:   `Moved "` + task.Title + `" from ` + domain.ColumnTitle(task.ColumnID) + ` to ` + domain.ColumnTitle(dest) + `.`,
		Action: domain.MoveAction{TaskID: task.ID, Source: task.ColumnID, Dest: dest},
	}
}

// splitTrailingTo splits a message at its last " to " (or " as ") so edits
// shaped "change <field> of <task> to <value>" separate cleanly even when
// the task title itself contains "to".
func splitTrailingTo(msg string) (head, value string) {
	if m := trailingToRe.FindStringSubmatch(msg); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	}
	return strings.TrimSpace(msg), ""
}

func stripFieldNoise(s string, fieldRe *regexp.Regexp) string {
	s = editLeadRe.ReplaceAllString(s, "")
	s = fieldRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(strings.Join(strings.Fields(s), " "))
	s = ofForRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

var (
	priorityNoiseRe = regexp.MustCompile(`(?i)\b(?:priority|pri)\b\s*(?:of|for|on)?\s*`)
	titleNoiseRe    = regexp.MustCompile(`(?i)\b(?:title|name)\b\s*(?:of|for|on)?\s*`)
	descNoiseRe     = regexp.MustCompile(`(?i)\b(?:description|desc|details)\b\s*(?:of|for|on)?\s*`)
)

func (e *Engine) edit(msg, lower string, b *domain.Board) Reply {
	switch {
	case priorityFieldRe.MatchString(lower):
		return e.editPriority(msg, lower, b)
	case titleFieldRe.MatchString(lower):
		return e.editTitle(msg, b)
	case dueFieldRe.MatchString(lower):
		return e.editDue(msg, b)
	case descFieldRe.MatchString(lower):
		return e.editDescription(msg, b)
	}

	// No field keyword. Resolve the task anyway so the menu can be specific.
	ref := editLeadRe.ReplaceAllString(msg, "")
	res := MatchTask(ref, b.TaskList())
	switch res.Outcome {
	case MatchResolved:
		return Reply{Text: `What would you like to change on "` + res.Task.Title + `"? I can update the priority, title, due date, or description.`}
	case MatchAmbiguous:
		return disambiguationReply(res.Candidates)
	default:
		return Reply{Text: `Tell me what to change, e.g. "change priority of Fix login bug to high" or "rename Fix login bug to Fix signup bug".`}
	}
}

func (e *Engine) editPriority(msg, lower string, b *domain.Board) Reply {
	head, value := splitTrailingTo(msg)
	ref := stripFieldNoise(head, priorityNoiseRe)

	task, fail, ok := resolveRef(ref, b)
	if !ok {
		return fail
	}

	newP, found := ResolvePriority(value)
	if !found {
		// The level may be stated inline ("set Review PR priority high").
		newP, found = ResolvePriority(lower)
	}
	if !found {
		return Reply{Text: `"` + task.Title + `" is currently ` + string(task.Priority) + ` priority. Tell me the new level: high, medium, or low.`}
	}
	if newP == task.Priority {
		return Reply{Text: `"` + task.Title + `" is already ` + string(newP) + ` priority.`}
	}
	p := newP
	return Reply{
		Text:   `Set "` + task.Title + `" to ` + string(p) + ` priority.`,
		Action: domain.UpdateAction{TaskID: task.ID, Patch: domain.TaskPatch{Priority: &p}},
	}
}

func (e *Engine) editTitle(msg string, b *domain.Board) Reply {
	var ref, newTitle string
	if m := renameRe.FindStringSubmatch(msg); m != nil {
		ref, newTitle = m[1], trimQuotes(m[2])
	} else {
		head, value := splitTrailingTo(msg)
		ref = stripFieldNoise(head, titleNoiseRe)
		newTitle = trimQuotes(value)
	}

	task, fail, ok := resolveRef(ref, b)
	if !ok {
		return fail
	}
	if newTitle == "" {
		return Reply{Text: `What should "` + task.Title + `" be renamed to?`}
	}
	t := newTitle
	return Reply{
		Text:   `Renamed "` + task.Title + `" to "` + t + `".`,
		Action: domain.UpdateAction{TaskID: task.ID, Patch: domain.TaskPatch{Title: &t}},
	}
}

func (e *Engine) editDue(msg string, b *domain.Board) Reply {
	var ref, value string
	if m := dueEditRe.FindStringSubmatch(msg); m != nil {
		ref, value = m[1], strings.TrimSpace(m[2])
	} else if m := dueInlineRe.FindStringSubmatch(msg); m != nil {
		ref, value = m[1], strings.TrimSpace(m[2])
	} else {
		head, v := splitTrailingTo(msg)
		ref = stripFieldNoise(head, regexp.MustCompile(`(?i)\b(?:due(?:\s+date)?|deadline|date)\b\s*(?:of|for|on)?\s*`))
		value = v
	}

	task, fail, ok := resolveRef(ref, b)
	if !ok {
		return fail
	}
	if value == "" {
		return Reply{Text: `When should "` + task.Title + `" be due? You can also say "none" to clear it.`}
	}
	if clearDueRe.MatchString(value) {
		cleared := ""
		return Reply{
			Text:   `Cleared the due date on "` + task.Title + `".`,
			Action: domain.UpdateAction{TaskID: task.ID, Patch: domain.TaskPatch{DueDate: &cleared}},
		}
	}
	d, ok := ResolveDate(value, e.now())
	if !ok {
		return Reply{Text: `I couldn't read that date. Try "tomorrow", "next friday", "in 3 days", or a date like 2026-09-01.`}
	}
	return Reply{
		Text:   `Set "` + task.Title + `" due ` + d + `.`,
		Action: domain.UpdateAction{TaskID: task.ID, Patch: domain.TaskPatch{DueDate: &d}},
	}
}

func (e *Engine) editDescription(msg string, b *domain.Board) Reply {
	var ref, value string
	if m := descEditRe.FindStringSubmatch(msg); m != nil {
		ref, value = m[1], trimQuotes(m[2])
	} else {
		head, v := splitTrailingTo(msg)
		ref = stripFieldNoise(head, descNoiseRe)
		value = trimQuotes(v)
	}

	task, fail, ok := resolveRef(ref, b)
	if !ok {
		return fail
	}
	if value == "" {
		return Reply{Text: `What should the description of "` + task.Title + `" say?`}
	}
	v := value
	return Reply{
		Text:   `Updated the description of "` + task.Title + `".`,
		Action: domain.UpdateAction{TaskID: task.ID, Patch: domain.TaskPatch{Description: &v}},
	}
}

func (e *Engine) deleteTask(msg, lower string, b *domain.Board) Reply {
	// Tag removals can look like deletions; re-check before destroying a task.
	if tagRemoveGateRe.MatchString(lower) {
		return e.tagRemove(msg, b)
	}
	if len(b.Tasks) == 0 {
		return Reply{Text: "Your board is empty — there's nothing to delete."}
	}

	ref := deleteLeadRe.ReplaceAllString(msg, "")
	ref = strings.TrimSpace(trailNounRe.ReplaceAllString(ref, ""))

	task, fail, ok := resolveRef(ref, b)
	if !ok {
		return fail
	}
	return Reply{
		Text:   `Deleted "` + task.Title + `". Undo is available if that was a mistake.`,
		Action: domain.DeleteAction{TaskID: task.ID},
	}
}
