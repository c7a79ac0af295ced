package analysis

import "strings"

const promptHeader = `You are a PC health expert. Analyze this system report and provide:

1. Overall Status (one word: Good/Warning/Critical)
2. Main Issues (if any)
3. Top Recommendation (one action to take)

Keep it brief and clear.

REPORT:
`

const promptFooter = `

FORMAT:
Status: [Good/Warning/Critical]
Issues: [list or "None"]
Action: [one recommendation]`

// BuildPrompt returns the single user message sent for a report.
// The report is embedded verbatim.
func BuildPrompt(report string) string {
	var b strings.Builder
	b.Grow(len(promptHeader) + len(report) + len(promptFooter))
	b.WriteString(promptHeader)
	b.WriteString(report)
	b.WriteString(promptFooter)
	return b.String()
}
