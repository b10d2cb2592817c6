// Package commitlog parses raw git commit messages into structured,
// conventional-commit aware records.
package commitlog

import (
	"regexp"
	"strconv"
	"strings"
)

// RecordSeparator terminates each commit record produced by the git log
// format used in gitcmd.
const RecordSeparator = "\x1e"

const gitmojiPattern = `[\x{1F300}-\x{1FAFF}\x{2600}-\x{27BF}]|:[a-z0-9+_\-]+:`

var headerPattern = regexp.MustCompile(`^\s*` +
	`(?:(?P<gitmoji1>` + gitmojiPattern + `))?\s*` +
	`(?P<type>\w+)(?:\((?P<scope>[^)]+)\))?(?P<breaking>!)?:\s*` +
	`(?:(?P<gitmoji2>` + gitmojiPattern + `))?\s*` +
	`(?P<description>.+?)\s*` +
	`(?:\(#(?P<pr>\d+)\))?\s*$`)

var (
	breaksPattern = regexp.MustCompile(`(?i)BREAKING CHANGE:\s*(.+)`)

	footerBreaking = regexp.MustCompile(`^BREAKING CHANGE:`)
	footerToken    = regexp.MustCompile(`^[A-Za-z-]+(-[A-Za-z]+)*:\s+.+`)
	footerIssue    = regexp.MustCompile(`^[A-Za-z-]+\s+#\d+`)

	issueNumber = regexp.MustCompile(`#(\d+)`)
)

// issue verbs are checked in this order; a line may match more than one.
var issueVerbs = []struct {
	pattern *regexp.Regexp
	pick    func(*IssueRefs) *[]int
}{
	{regexp.MustCompile(`(?i)^fixes`), func(r *IssueRefs) *[]int { return &r.Fixes }},
	{regexp.MustCompile(`(?i)^closes`), func(r *IssueRefs) *[]int { return &r.Closes }},
	{regexp.MustCompile(`(?i)^resolves`), func(r *IssueRefs) *[]int { return &r.Resolves }},
	{regexp.MustCompile(`(?i)^related( to)?`), func(r *IssueRefs) *[]int { return &r.Related }},
	{regexp.MustCompile(`(?i)^refs?`), func(r *IssueRefs) *[]int { return &r.Refs }},
}

// ParseCommit parses one commit. A header that does not follow the
// conventional shape yields an Unclassified commit that still carries the
// header, body, footer and hashes.
func ParseCommit(header, body, footer, shortHash, fullHash string) Commit {
	c := Commit{
		Kind:      Unclassified,
		Header:    header,
		Body:      body,
		Footer:    footer,
		ShortHash: shortHash,
		FullHash:  fullHash,
	}

	m := headerPattern.FindStringSubmatch(header)
	if m == nil {
		return c
	}
	group := func(name string) string {
		return m[headerPattern.SubexpIndex(name)]
	}

	c.Kind = Conventional
	c.Type = group("type")
	c.Scope = group("scope")
	c.Description = strings.TrimSpace(group("description"))
	c.PR = group("pr")
	for _, g := range []string{group("gitmoji1"), group("gitmoji2")} {
		if g != "" {
			c.Gitmoji = append(c.Gitmoji, g)
		}
	}

	if bm := breaksPattern.FindStringSubmatch(footer); bm != nil {
		c.Breaks = strings.TrimSpace(bm[1])
	}
	c.Breaking = group("breaking") != "" || c.Breaks != ""
	c.Issues = ParseIssueRefs(footer)

	return c
}

// ParseIssueRefs extracts issue numbers from footer lines grouped by verb.
func ParseIssueRefs(footer string) IssueRefs {
	var refs IssueRefs
	seen := make(map[*[]int]map[int]bool)

	for _, line := range strings.Split(footer, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, verb := range issueVerbs {
			if !verb.pattern.MatchString(line) {
				continue
			}
			list := verb.pick(&refs)
			if seen[list] == nil {
				seen[list] = make(map[int]bool)
			}
			for _, m := range issueNumber.FindAllStringSubmatch(line, -1) {
				n, err := strconv.Atoi(m[1])
				if err != nil || seen[list][n] {
					continue
				}
				seen[list][n] = true
				*list = append(*list, n)
			}
		}
	}

	return refs
}

// IsFooterLine reports whether a trimmed line looks like a git trailer.
func IsFooterLine(line string) bool {
	if line == "" {
		return false
	}
	return footerBreaking.MatchString(line) ||
		footerToken.MatchString(line) ||
		footerIssue.MatchString(line)
}

// SplitBodyFooter separates the trailing footer block from the body. The
// footer block must end at the last line of the message; lines inside it that
// are not trailers are treated as continuations, and the first blank line
// above it ends the scan.
func SplitBodyFooter(raw string) (body, footer string) {
	message := strings.TrimSpace(strings.ReplaceAll(raw, "\r\n", "\n"))
	if message == "" {
		return "", ""
	}
	lines := strings.Split(message, "\n")

	if !IsFooterLine(strings.TrimSpace(lines[len(lines)-1])) {
		return message, ""
	}

	start := len(lines) - 1
	for i := len(lines) - 2; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			break
		}
		if IsFooterLine(line) {
			start = i
		}
	}

	body = strings.TrimSpace(strings.Join(lines[:start], "\n"))
	footer = strings.TrimSpace(strings.Join(lines[start:], "\n"))
	return body, footer
}

// ParseRecord parses one log record in the form
// "<full hash>\n<short hash>\n<subject>\n<body and footer>".
func ParseRecord(raw string) Commit {
	lines := strings.Split(strings.TrimSpace(strings.ReplaceAll(raw, "\r\n", "\n")), "\n")
	field := func(i int) string {
		if i < len(lines) {
			return strings.TrimSpace(lines[i])
		}
		return ""
	}

	var rest string
	if len(lines) > 3 {
		rest = strings.Join(lines[3:], "\n")
	}
	body, footer := SplitBodyFooter(rest)

	return ParseCommit(field(2), body, footer, field(1), field(0))
}

// ParseLog parses every non-empty record, keeping their order.
func ParseLog(records []string) []Commit {
	commits := make([]Commit, 0, len(records))
	for _, raw := range records {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		commits = append(commits, ParseRecord(raw))
	}
	return commits
}

// SplitRecords splits raw git log output on the record separator.
func SplitRecords(output string) []string {
	var records []string
	for _, rec := range strings.Split(output, RecordSeparator) {
		if rec = strings.TrimSpace(rec); rec != "" {
			records = append(records, rec)
		}
	}
	return records
}
