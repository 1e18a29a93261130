// Package presentation renders session output for terminals.
package presentation

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/aretw0/buildsync/pkg/domain"
	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Renderer writes markdown reports, styled when the destination is a terminal.
type Renderer struct {
	w        io.Writer
	markdown func(string) (string, error)
	profile  termenv.Profile
}

// NewRenderer creates a Renderer for w. Styling is enabled only when w is a
// terminal; anything else receives the raw markdown.
func NewRenderer(w io.Writer) *Renderer {
	r := &Renderer{w: w, profile: termenv.Ascii}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		r.profile = termenv.ColorProfile()
		if tr, err := glamour.NewTermRenderer(glamour.WithAutoStyle()); err == nil {
			r.markdown = tr.Render
		}
	}
	return r
}

// Styled reports whether output is rendered through glamour.
func (r *Renderer) Styled() bool {
	return r.markdown != nil
}

// Outputs writes a report of out.
func (r *Renderer) Outputs(out domain.Outputs) error {
	return r.write(Report(out))
}

// Info writes a report of the module and engine versions.
func (r *Renderer) Info(info domain.BuildInfo) error {
	var b strings.Builder
	b.WriteString("# buildsync\n\n")
	fmt.Fprintf(&b, "- **Version:** %s\n", info.Version)
	fmt.Fprintf(&b, "- **Data version:** %s\n", info.DataVersion)
	fmt.Fprintf(&b, "- **Lifecycle:** %s\n", info.Lifecycle)
	if len(info.Engine) > 0 {
		b.WriteString("\n## Engine\n\n")
		writeTable(&b, stringMap(info.Engine))
	}
	return r.write(b.String())
}

// Heading writes a single colored line, plain when the writer is not a terminal.
func (r *Renderer) Heading(text string) {
	if r.profile == termenv.Ascii {
		fmt.Fprintln(r.w, text)
		return
	}
	fmt.Fprintln(r.w, r.profile.String(text).Foreground(r.profile.Color("#a78bfa")).Bold())
}

func (r *Renderer) write(md string) error {
	if r.markdown != nil {
		styled, err := r.markdown(md)
		if err != nil {
			return fmt.Errorf("failed to render markdown: %w", err)
		}
		md = styled
	}
	_, err := io.WriteString(r.w, md)
	return err
}

// Report formats out as a markdown document.
func Report(out domain.Outputs) string {
	var b strings.Builder
	b.WriteString("# Build output\n\n")

	if len(out.Output) == 0 {
		b.WriteString("_No output._\n")
	} else {
		writeTable(&b, out.Output)
	}

	if flags := enabledFlags(out.SkillFlags); len(flags) > 0 {
		b.WriteString("\n## Skill flags\n\n")
		for _, flag := range flags {
			fmt.Fprintf(&b, "- %s\n", flag)
		}
	}

	if len(out.OutputTable) > 0 {
		b.WriteString("\n## Tables\n")
		for _, name := range sortedKeys(out.OutputTable) {
			fmt.Fprintf(&b, "\n### %s\n\n", name)
			if table, ok := out.OutputTable[name].(map[string]any); ok && len(table) > 0 {
				writeTable(&b, table)
			} else {
				fmt.Fprintf(&b, "%s\n", formatValue(out.OutputTable[name]))
			}
		}
	}
	return b.String()
}

func writeTable(b *strings.Builder, values map[string]any) {
	b.WriteString("| Key | Value |\n|---|---|\n")
	for _, key := range sortedKeys(values) {
		fmt.Fprintf(b, "| %s | %s |\n", key, formatValue(values[key]))
	}
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case []string:
		return strings.Join(val, ", ")
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = formatValue(item)
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		parts := make([]string, 0, len(val))
		for _, key := range sortedKeys(val) {
			parts = append(parts, key+"="+formatValue(val[key]))
		}
		return strings.Join(parts, ", ")
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%.2f", val)
	default:
		return strings.ReplaceAll(fmt.Sprint(val), "|", "\\|")
	}
}

func enabledFlags(flags map[string]bool) []string {
	var out []string
	for name, on := range flags {
		if on {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func stringMap(m map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
