package app

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/corejs-upgrade/internal/core/domain"
	"go.trai.ch/corejs-upgrade/internal/core/ports"
	"go.trai.ch/corejs-upgrade/internal/engine/rewriter"
	"go.trai.ch/corejs-upgrade/internal/ui/style"
)

// printer renders reports with colours matching the writer's terminal.
type printer struct {
	w       io.Writer
	ok      lipgloss.Style
	warn    lipgloss.Style
	fail    lipgloss.Style
	subtle  lipgloss.Style
	heading lipgloss.Style
}

func newPrinter(w io.Writer) *printer {
	r := lipgloss.NewRenderer(w)
	return &printer{
		w:       w,
		ok:      r.NewStyle().Foreground(style.Green),
		warn:    r.NewStyle().Foreground(style.Yellow),
		fail:    r.NewStyle().Foreground(style.Red),
		subtle:  r.NewStyle().Foreground(style.Slate),
		heading: r.NewStyle().Bold(true).Foreground(style.Iris),
	}
}

func (p *printer) line(format string, args ...any) error {
	_, err := fmt.Fprintf(p.w, format+"\n", args...)
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *App) printRewrites(results []RewriteResult) error {
	if a.jsonOutput {
		return writeJSON(a.out, results)
	}
	p := newPrinter(a.out)
	for _, r := range results {
		var err error
		switch r.Outcome {
		case rewriter.Rewritten.String():
			err = p.line("%s %s %s %s", p.ok.Render(style.Check), r.Request, style.Arrow, r.Result+p.subtle.Render(" ("+r.Rule+")"))
		case rewriter.Unsupported.String():
			err = p.line("%s %s %s %s", p.fail.Render(style.Cross), r.Request, style.Arrow, p.fail.Render("unsupported")+p.subtle.Render(" ("+r.Rule+")"))
		default:
			err = p.line("%s %s %s", p.subtle.Render(style.Dot), r.Request, p.subtle.Render("unchanged"))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *App) printScan(root string, imports []domain.LegacyImport) error {
	if a.jsonOutput {
		if imports == nil {
			imports = []domain.LegacyImport{}
		}
		return writeJSON(a.out, imports)
	}
	p := newPrinter(a.out)
	if len(imports) == 0 {
		return p.line("%s no legacy core-js imports found", p.ok.Render(style.Check))
	}

	var unsupported int
	last := ""
	for _, li := range imports {
		if li.Importer != last {
			if err := p.line("%s", p.heading.Render(relative(root, li.Importer))); err != nil {
				return err
			}
			last = li.Importer
		}
		var err error
		if li.Supported {
			err = p.line("  %s %s %s %s", p.warn.Render(style.Warning), li.Request, style.Arrow, li.Rewritten)
		} else {
			unsupported++
			err = p.line("  %s %s %s", p.fail.Render(style.Cross), li.Request, p.fail.Render("unsupported"))
		}
		if err != nil {
			return err
		}
	}
	return p.line("%d legacy imports, %d unsupported", len(imports), unsupported)
}

func (a *App) printBuild(root string, report *ports.BuildReport) error {
	for _, w := range report.Warnings {
		a.logger.Warn(w)
	}
	if a.jsonOutput {
		return writeJSON(a.out, buildSummary{
			OutputFiles: report.OutputFiles,
			Upgraded:    report.Upgraded,
		})
	}
	p := newPrinter(a.out)
	for _, li := range report.Upgraded {
		if err := p.line("%s %s %s %s %s", p.warn.Render(style.Warning), li.Request, style.Arrow, li.Rewritten,
			p.subtle.Render("("+relative(root, li.Importer)+")")); err != nil {
			return err
		}
	}
	for _, f := range report.OutputFiles {
		if err := p.line("%s wrote %s", p.ok.Render(style.Check), relative(root, f)); err != nil {
			return err
		}
	}
	return nil
}

type buildSummary struct {
	OutputFiles []string              `json:"outputFiles"`
	Upgraded    []domain.LegacyImport `json:"upgraded"`
}

func relative(root, p string) string {
	if root == "" {
		return p
	}
	if rel, err := filepath.Rel(root, p); err == nil {
		return filepath.ToSlash(rel)
	}
	return p
}
