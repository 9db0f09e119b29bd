package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/meigma/jarscan"
)

// Output formats.
const (
	formatText = "text"
	formatJSON = "json"
	formatOCI  = "oci"
)

var (
	styleHeader  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("36"))
	styleDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("35"))
	styleWarning = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

func validFormat(f string) bool {
	switch f {
	case formatText, formatJSON, formatOCI:
		return true
	default:
		return false
	}
}

// render writes res to w in the given format.
func render(w io.Writer, format string, res *jarscan.Result) error {
	switch format {
	case formatJSON:
		return writeJSON(w, newReport(res))
	case formatOCI:
		return writeJSON(w, res.Descriptors())
	default:
		return renderText(w, res)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// report is the JSON form of a result.
type report struct {
	Archives []archiveReport `json:"archives"`
	Problems []string        `json:"problems,omitempty"`
}

type archiveReport struct {
	Name      string   `json:"name"`
	Size      int64    `json:"size"`
	Digest    string   `json:"digest"`
	Releases  []int    `json:"releases,omitempty"`
	Module    string   `json:"module,omitempty"`
	Classes   []string `json:"classes"`
	Resources []string `json:"resources"`
}

func newReport(res *jarscan.Result) report {
	r := report{Archives: make([]archiveReport, 0, len(res.Archives))}
	for _, a := range res.Archives {
		ar := archiveReport{
			Name:      a.Name,
			Size:      a.Size,
			Digest:    a.Digest.String(),
			Releases:  a.Releases,
			Classes:   make([]string, len(a.Classes)),
			Resources: make([]string, len(a.Resources)),
		}
		if a.Module != nil {
			ar.Module = a.Module.Name
		}
		for i, c := range a.Classes {
			ar.Classes[i] = c.ClassName
		}
		for i, rr := range a.Resources {
			ar.Resources[i] = rr.Name
		}
		r.Archives = append(r.Archives, ar)
	}
	for _, p := range res.Problems {
		r.Problems = append(r.Problems, p.Error())
	}
	return r
}

func renderText(w io.Writer, res *jarscan.Result) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styleDim).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers("ARCHIVE", "SIZE", "CLASSES", "RESOURCES", "RELEASES", "MODULE", "DIGEST")

	for _, a := range res.Archives {
		module := ""
		if a.Module != nil {
			module = a.Module.Name
		}
		t.Row(
			a.Name,
			formatBytes(a.Size),
			strconv.Itoa(len(a.Classes)),
			strconv.Itoa(len(a.Resources)),
			formatReleases(a.Releases),
			module,
			shortDigest(a.Digest.String()),
		)
	}
	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}
	for _, p := range res.Problems {
		if _, err := fmt.Fprintf(w, "%s %s\n", styleWarning.Render("!"), p.Error()); err != nil {
			return err
		}
	}
	return nil
}

func formatReleases(releases []int) string {
	parts := make([]string, len(releases))
	for i, r := range releases {
		parts[i] = strconv.Itoa(r)
	}
	return strings.Join(parts, ",")
}

// shortDigest trims the encoded part of a digest to 12 characters.
func shortDigest(d string) string {
	alg, enc, ok := strings.Cut(d, ":")
	if !ok || len(enc) <= 12 {
		return d
	}
	return alg + ":" + enc[:12]
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
