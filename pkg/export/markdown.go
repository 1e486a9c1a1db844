package export

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
)

var slugNonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9]+`)

// sanitizeMermaidText prepares text for use in Mermaid node labels.
func sanitizeMermaidText(text string) string {
	replacer := strings.NewReplacer(
		"\"", "'",
		"[", "(",
		"]", ")",
		"{", "(",
		"}", ")",
		"<", "&lt;",
		">", "&gt;",
		"|", "/",
		"`", "'",
		"\n", " ",
		"\r", "",
	)
	result := replacer.Replace(text)

	result = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, result)

	result = strings.TrimSpace(result)

	runes := []rune(result)
	if len(runes) > 40 {
		result = string(runes[:37]) + "..."
	}
	return result
}

// escapeTableCell keeps a value inside one Markdown table cell.
func escapeTableCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\r", "")
	return strings.ReplaceAll(s, "\n", "<br>")
}

func uniqueSlug(base string, counts map[string]int) string {
	if base == "" {
		base = "component"
	}
	n := counts[base]
	counts[base] = n + 1
	if n == 0 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, n)
}

// createSlug creates a URL-friendly slug from heading text.
func createSlug(text string) string {
	slug := strings.ToLower(text)
	slug = slugNonAlphanumericRegex.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// GenerateMarkdown creates a report of the whole forest: summary counts,
// a Mermaid structure graph, and per root the function and failure mode
// relation tables.
func GenerateMarkdown(records []Record, title string, now time.Time) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	sb.WriteString(fmt.Sprintf("*Generated: %s*\n\n", now.Format(time.RFC1123)))

	groups := rootGroups(records)

	functions, failureModes, relations := 0, 0, 0
	for _, rec := range records {
		functions += len(rec.Functions)
		failureModes += len(rec.FailureModes)
		for _, v := range rec.Matrix {
			if v {
				relations++
			}
		}
	}

	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Count |\n|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| **Components** | %d |\n", len(records)))
	sb.WriteString(fmt.Sprintf("| Root components | %d |\n", len(groups)))
	sb.WriteString(fmt.Sprintf("| Functions | %d |\n", functions))
	sb.WriteString(fmt.Sprintf("| Failure modes | %d |\n", failureModes))
	sb.WriteString(fmt.Sprintf("| Relations | %d |\n\n", relations))

	if len(records) == 0 {
		sb.WriteString("_No components._\n")
		return sb.String()
	}

	slugCounts := make(map[string]int, len(groups))
	slugs := make([]string, len(groups))
	for i, g := range groups {
		slugs[i] = uniqueSlug(createSlug(g[0].Name), slugCounts)
	}

	sb.WriteString("## Table of Contents\n\n")
	for i, g := range groups {
		sb.WriteString(fmt.Sprintf("- [%s](#%s) (%d components)\n", g[0].Name, slugs[i], len(g)))
	}
	sb.WriteString("\n")

	sb.WriteString("## Structure\n\n")
	sb.WriteString("```mermaid\ngraph TD\n")
	var stack []int
	for i, rec := range records {
		sb.WriteString(fmt.Sprintf("    n%d[\"%s\"]\n", i, sanitizeMermaidText(rec.Component)))
		if rec.Depth < len(stack) {
			stack = stack[:rec.Depth]
		}
		if len(stack) > 0 {
			sb.WriteString(fmt.Sprintf("    n%d --> n%d\n", stack[len(stack)-1], i))
		}
		stack = append(stack, i)
	}
	sb.WriteString("```\n\n---\n\n")

	for _, g := range groups {
		root := g[0]
		sb.WriteString(fmt.Sprintf("## %s\n\n", root.Name))

		sb.WriteString("### Components\n\n")
		for _, rec := range g {
			sb.WriteString(fmt.Sprintf("%s- **%s**", strings.Repeat("  ", rec.Depth), rec.Component))
			if n := len(rec.Functions) + len(rec.FailureModes); n > 0 {
				sb.WriteString(fmt.Sprintf(" (%d functions, %d failure modes)", len(rec.Functions), len(rec.FailureModes)))
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")

		writeRelationTable(&sb, "Functions", root.Functions, g)
		writeRelationTable(&sb, "Failure Modes", root.FailureModes, g)
		sb.WriteString("---\n\n")
	}

	return sb.String()
}

func writeRelationTable(sb *strings.Builder, heading string, columns []string, rows []Record) {
	sb.WriteString(fmt.Sprintf("### %s\n\n", heading))
	if len(columns) == 0 {
		sb.WriteString("_None defined._\n\n")
		return
	}
	sb.WriteString("| Component |")
	for _, c := range columns {
		sb.WriteString(" " + escapeTableCell(c) + " |")
	}
	sb.WriteString("\n|---|")
	sb.WriteString(strings.Repeat("---|", len(columns)))
	sb.WriteString("\n")
	for _, rec := range rows {
		sb.WriteString("| " + escapeTableCell(rec.Name) + " |")
		for _, c := range columns {
			mark := " "
			if rec.Matrix[c] {
				mark = "✓"
			}
			sb.WriteString(" " + mark + " |")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

func encodeMarkdown(records []Record, opts Options) ([]byte, error) {
	return []byte(GenerateMarkdown(records, opts.Title, opts.Now())), nil
}
