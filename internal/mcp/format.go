package mcp

import (
	"fmt"
	"strings"
)

// FormatStatus renders kb_status output as Markdown.
func FormatStatus(st StatusOutput) string {
	var sb strings.Builder
	sb.WriteString("## Knowledge Base Status\n\n")
	fmt.Fprintf(&sb, "- **Corpus:** %s\n", st.CorpusDir)
	fmt.Fprintf(&sb, "- **Documents:** %d", st.Documents)
	if st.Unreadable > 0 {
		fmt.Fprintf(&sb, " (%d unreadable)", st.Unreadable)
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "- **Chunks:** %d\n", st.Chunks)
	fmt.Fprintf(&sb, "- **Vocabulary:** %d terms\n", st.VocabularySize)
	if st.BuiltAt != "" {
		fmt.Fprintf(&sb, "- **Built:** %s in %dms\n", st.BuiltAt, st.BuildDurationMS)
	}
	if len(st.Extensions) > 0 {
		fmt.Fprintf(&sb, "- **Formats:** %s\n", strings.Join(st.Extensions, ", "))
	}
	fmt.Fprintf(&sb, "- **Order lookup:** %s\n", orderLookupLabel(st.Shopify))
	if st.TotalQueries > 0 {
		fmt.Fprintf(&sb, "- **Queries served:** %d (%.1f%% with no results)\n", st.TotalQueries, st.ZeroResultPct)
	}
	return sb.String()
}

func orderLookupLabel(shopify string) string {
	if shopify == "configured" {
		return "available"
	}
	return "unavailable (Shopify not configured)"
}
