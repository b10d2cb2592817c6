// Package changelog classifies parsed commits and renders markdown changelog
// sections with links back to the repository host.
package changelog

import (
	"fmt"
	"strings"
)

// DefaultHost is used when RenderOptions.Host is empty.
const DefaultHost = "https://github.com"

// RenderOptions controls the header and links of a rendered section.
type RenderOptions struct {
	Version     string
	CurrentTag  string
	PreviousTag string
	Host        string
	Owner       string
	Repo        string
	Date        string // YYYY-MM-DD
	Types       Types
}

func (o RenderOptions) host() string {
	if o.Host == "" {
		return DefaultHost
	}
	return strings.TrimSuffix(o.Host, "/")
}

func (o RenderOptions) repoURL() string {
	return fmt.Sprintf("%s/%s/%s", o.host(), o.Owner, o.Repo)
}

// CompareURL returns the compare link between the previous and current tag,
// or an empty string when there is no previous tag.
func (o RenderOptions) CompareURL() string {
	if o.PreviousTag == "" {
		return ""
	}
	current := o.CurrentTag
	if current == "" {
		current = o.Version
	}
	return fmt.Sprintf("%s/compare/%s...%s", o.repoURL(), o.PreviousTag, current)
}

// CommitURL returns the link for a full commit hash.
func (o RenderOptions) CommitURL(fullHash string) string {
	return fmt.Sprintf("%s/commit/%s", o.repoURL(), fullHash)
}

// Render produces a markdown section for one release. Output depends only on
// its inputs.
func Render(sections []Section, opts RenderOptions) string {
	types := opts.Types
	if types == nil {
		types = DefaultTypes()
	}

	var sb strings.Builder
	sb.WriteString(renderHeader(opts))
	sb.WriteString("\n")

	var breaking []Entry
	for _, s := range sections {
		for _, e := range s.Entries {
			if e.Breaking {
				breaking = append(breaking, e)
			}
		}
	}
	if len(breaking) > 0 {
		sb.WriteString("\n### ⚠ BREAKING CHANGES\n\n")
		for _, e := range breaking {
			note := e.Breaks
			if note == "" {
				note = e.Description
			}
			sb.WriteString("* ")
			if e.Scope != "" {
				sb.WriteString(fmt.Sprintf("**%s:** ", e.Scope))
			}
			sb.WriteString(fmt.Sprintf("%s ([%s](%s))\n", note, e.ShortHash, opts.CommitURL(e.FullHash)))
		}
	}

	for _, s := range sections {
		sb.WriteString(fmt.Sprintf("\n### %s\n\n", types.Title(s.Type)))
		for _, e := range s.Entries {
			sb.WriteString(renderEntry(e, opts))
		}
	}

	if compare := opts.CompareURL(); compare != "" {
		sb.WriteString(fmt.Sprintf("\n**Full Changelog**: %s\n", compare))
	}

	return sb.String()
}

func renderHeader(opts RenderOptions) string {
	title := opts.Version
	if compare := opts.CompareURL(); compare != "" {
		title = fmt.Sprintf("[%s](%s)", opts.Version, compare)
	}
	if opts.Date != "" {
		return fmt.Sprintf("## %s (%s)", title, opts.Date)
	}
	return "## " + title
}

func renderEntry(e Entry, opts RenderOptions) string {
	var sb strings.Builder
	sb.WriteString("* ")
	if e.Type != "" {
		sb.WriteString(fmt.Sprintf("**%s** ", e.Type))
	}
	sb.WriteString(e.Description)
	if e.ShortHash != "" {
		sb.WriteString(fmt.Sprintf(" [%s](%s)", e.ShortHash, opts.CommitURL(e.FullHash)))
	}
	sb.WriteString("\n")
	return sb.String()
}
