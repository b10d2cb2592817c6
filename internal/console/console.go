// Package console prints styled, user-facing release output.
package console

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/grokify/releaseconductor/internal/version"
)

// Question kinds pick the color of the "?" marker.
const (
	KindPackage = "package"
	KindVersion = "version"
	KindGit     = "git"
	KindNpm     = "npm"
	KindGitHub  = "github"
)

var errorPrefix = regexp.MustCompile(`^\[(github|npm|git)\]`)

// Printer writes styled lines to Out. Styles degrade to plain text when Out
// is not a terminal.
type Printer struct {
	Out io.Writer

	info     lipgloss.Style
	success  lipgloss.Style
	dryRun   lipgloss.Style
	dim      lipgloss.Style
	danger   lipgloss.Style
	changed  lipgloss.Style
	question map[string]lipgloss.Style
}

// New creates a Printer for out.
func New(out io.Writer) *Printer {
	r := lipgloss.NewRenderer(out)
	green := r.NewStyle().Foreground(lipgloss.Color("#22C55E"))
	return &Printer{
		Out:     out,
		info:    r.NewStyle().Foreground(lipgloss.Color("#215BB8")),
		success: green,
		dryRun:  r.NewStyle().Foreground(lipgloss.Color("#7B7342")),
		dim:     r.NewStyle().Faint(true),
		danger:  r.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true),
		changed: green,
		question: map[string]lipgloss.Style{
			KindPackage: r.NewStyle().Foreground(lipgloss.Color("#EAB308")),
			KindVersion: green,
			KindGit:     r.NewStyle().Foreground(lipgloss.Color("#DC5E3E")),
			KindNpm:     r.NewStyle().Foreground(lipgloss.Color("#BA463D")),
			KindGitHub:  r.NewStyle().Foreground(lipgloss.Color("#406EE4")),
		},
	}
}

// Stderr returns a Printer writing to standard error.
func Stderr() *Printer {
	return New(os.Stderr)
}

func (p *Printer) println(s string) {
	_, _ = fmt.Fprintln(p.Out, s)
}

// Success prints a check mark line. Dry-run lines use a muted color.
func (p *Printer) Success(msg string, dryRun bool) {
	style := p.success
	if dryRun {
		style = p.dryRun
	}
	p.println(style.Render("✔") + " " + msg)
}

// Info prints an informational line.
func (p *Printer) Info(msg string) {
	p.println(p.info.Render("i") + " " + msg)
}

// Message prints a dimmed line tagged with [prefix].
func (p *Printer) Message(prefix, msg string) {
	p.println(p.info.Render("["+prefix+"]") + " " + p.dim.Render(msg))
}

// Step prints a stage heading.
func (p *Printer) Step(msg string) {
	p.println("◇ " + msg)
}

// Plain prints text as is.
func (p *Printer) Plain(text string) {
	p.println(text)
}

// Cancel prints an abort line.
func (p *Printer) Cancel(msg string) {
	p.println(p.danger.Render("✕") + " " + msg)
}

// Error prints err with its subsystem prefix highlighted.
func (p *Printer) Error(err error) {
	p.println("\n" + p.FormatError(err) + "\n")
}

// FormatError highlights a leading [git], [npm] or [github] tag.
func (p *Printer) FormatError(err error) string {
	if err == nil {
		return ""
	}
	return errorPrefix.ReplaceAllStringFunc(err.Error(), func(s string) string { return p.danger.Render(s) })
}

// Question formats a prompt title with a "?" colored by kind.
func (p *Printer) Question(kind, title string) string {
	style, ok := p.question[kind]
	if !ok {
		style = p.info
	}
	return style.Render("?") + " " + title
}

// Dim renders s faint, for inline values.
func (p *Printer) Dim(s string) string {
	return p.dim.Render(s)
}

// Diff renders to with the components that differ from from highlighted.
func (p *Printer) Diff(from, to string) string {
	changes := version.Diff(from, to)
	parts := make([]string, len(changes))
	for i, c := range changes {
		if c.Changed {
			parts[i] = p.changed.Render(c.Part)
		} else {
			parts[i] = p.dim.Render(c.Part)
		}
	}
	return strings.Join(parts, ".")
}

// DryRunSuffix returns " (dry run)" when dryRun is set.
func DryRunSuffix(dryRun bool) string {
	if dryRun {
		return " (dry run)"
	}
	return ""
}
