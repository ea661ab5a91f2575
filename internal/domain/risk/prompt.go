package risk

import (
	"regexp"
	"sort"
	"strings"

	"github.com/drivefit/riskd/internal/domain/model"
)

// promptHeader encodes the classification rules handed to the delegate. The
// rule text is authoritative; the delegate only makes the call.
const promptHeader = "You are a driving fitness risk classifier. Based on the user's health vitals, " +
	"respond with only one of the following risk levels: normal, moderate, or high.\n\n" +
	"Classification Rules:\n" +
	"- HIGH RISK if: HR > 120 OR HRV < 30 OR SpO2 < 93 OR RR > 24\n" +
	"- MODERATE RISK if: 101 ≤ HR ≤ 120 OR 30 ≤ HRV ≤ 49 OR 93 ≤ SpO2 ≤ 94 OR 21 ≤ RR ≤ 24\n" +
	"- NORMAL RISK if: HR ≤ 100 and no known risks are present\n" +
	"Important:\n" +
	"- Return only one of: normal, moderate, high\n" +
	"- Respond with a single word label only — no explanations\n\n" +
	"Health Data:\n"

// labelPattern matches the first whole-word risk label in delegate output.
var labelPattern = regexp.MustCompile(`\b(normal|moderate|high)\b`)

// BuildPrompt renders the rule set plus every listed metric with its value
// and timestamp. Metrics are rendered in sorted name order so the prompt is
// deterministic. Entries without a parseable value render as "n/a".
func BuildPrompt(sample model.Sample) string {
	metrics := make([]string, 0, len(sample))
	for metric := range sample {
		metrics = append(metrics, metric)
	}
	sort.Strings(metrics)

	var b strings.Builder
	b.WriteString(promptHeader)
	for _, metric := range metrics {
		r := sample[metric]
		value := "n/a"
		if !r.Unparsed {
			value = r.Value.String()
		}
		b.WriteString("- ")
		b.WriteString(metric)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString(" at ")
		b.WriteString(r.Timestamp)
		b.WriteString("\n")
	}
	return b.String()
}

// ExtractLabel pulls the first whole-word, case-insensitive occurrence of
// normal/moderate/high out of free text. Anything else is unknown.
func ExtractLabel(output string) model.Label {
	match := labelPattern.FindString(strings.ToLower(output))
	if match == "" {
		return model.LabelUnknown
	}
	return model.Label(match)
}
