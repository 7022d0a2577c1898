// Package output renders list results and store statistics for the terminal
// and for other programs.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/andrewferrier/memy/internal/list"
	"github.com/andrewferrier/memy/internal/pathutil"
	"github.com/andrewferrier/memy/internal/store"
	"github.com/andrewferrier/memy/internal/timeutil"
)

// Format selects an output encoding.
type Format string

const (
	Plain Format = "plain"
	CSV   Format = "csv"
	JSON  Format = "json"
)

// ListFormats and StatsFormats are the encodings each command accepts.
var (
	ListFormats  = []Format{Plain, CSV, JSON}
	StatsFormats = []Format{Plain, JSON}
)

// ParseFormat validates s against allowed.
func ParseFormat(s string, allowed []Format) (Format, error) {
	for _, f := range allowed {
		if string(f) == s {
			return f, nil
		}
	}
	names := make([]string, len(allowed))
	for i, f := range allowed {
		names[i] = string(f)
	}
	return "", fmt.Errorf("invalid format %q: must be one of %s", s, strings.Join(names, ", "))
}

// ColorMode controls colored plain output.
type ColorMode string

const (
	ColorAlways    ColorMode = "always"
	ColorNever     ColorMode = "never"
	ColorAutomatic ColorMode = "automatic"
)

// ParseColorMode validates a --color value.
func ParseColorMode(s string) (ColorMode, error) {
	switch m := ColorMode(s); m {
	case ColorAlways, ColorNever, ColorAutomatic:
		return m, nil
	}
	return "", fmt.Errorf("invalid color mode %q: must be one of always, automatic, never", s)
}

// UseColor resolves mode for w. Automatic enables color only when w is a
// terminal.
func UseColor(mode ColorMode, w io.Writer) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// PlainOptions adjust plain list output.
type PlainOptions struct {
	Color bool
	Tilde bool
}

// WriteList renders results in format. PlainOptions only affect Plain.
func WriteList(w io.Writer, results []list.Result, format Format, opts PlainOptions) error {
	switch format {
	case CSV:
		return writeCSV(w, results)
	case JSON:
		if results == nil {
			results = []list.Result{}
		}
		return writeJSON(w, results)
	default:
		return writePlain(w, results, opts)
	}
}

func writePlain(w io.Writer, results []list.Result, opts PlainOptions) error {
	var dirStyle, fileStyle lipgloss.Style
	if opts.Color {
		r := lipgloss.NewRenderer(w)
		r.SetColorProfile(termenv.ANSI)
		dirStyle = r.NewStyle().Foreground(lipgloss.Color("4")).TabWidth(lipgloss.NoTabConversion)
		fileStyle = r.NewStyle().Foreground(lipgloss.Color("2")).TabWidth(lipgloss.NoTabConversion)
	}

	for _, res := range results {
		path := res.Path
		if opts.Tilde {
			path = pathutil.CollapseTilde(path)
		}

		if opts.Color {
			switch res.FileType {
			case list.Dir:
				path = colorBase(path, dirStyle)
			case list.File:
				path = colorBase(path, fileStyle)
			}
		}

		if _, err := fmt.Fprintln(w, path); err != nil {
			return err
		}
	}
	return nil
}

// colorBase styles the final path component only.
func colorBase(path string, style lipgloss.Style) string {
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return style.Render(path)
	}
	return path[:i+1] + style.Render(path[i+1:])
}

var csvHeader = []string{"path", "frecency", "count", "last_noted", "file_type"}

func writeCSV(w io.Writer, results []list.Result) error {
	if len(results) == 0 {
		return nil
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range results {
		record := []string{
			r.Path,
			strconv.FormatFloat(r.Frecency, 'f', -1, 64),
			strconv.FormatInt(r.Count, 10),
			r.LastNoted,
			string(r.FileType),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteStats renders store statistics as Plain or JSON.
func WriteStats(w io.Writer, stats store.Stats, format Format) error {
	if format == JSON {
		return writeJSON(w, stats)
	}

	lines := []string{fmt.Sprintf("Total Paths: %d", stats.TotalPaths)}
	if n := stats.OldestNote; n != nil {
		lines = append(lines, fmt.Sprintf("Oldest Note: %s, path=%s", timeutil.ISO8601(n.Timestamp), n.Path))
	}
	if n := stats.NewestNote; n != nil {
		lines = append(lines, fmt.Sprintf("Newest Note: %s, path=%s", timeutil.ISO8601(n.Timestamp), n.Path))
	}
	if c := stats.HighestCount; c != nil {
		lines = append(lines, fmt.Sprintf("Highest Count: %d, path=%s", c.Count, c.Path))
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
