package generator

import "strings"

// EnforceLimit truncates text to at most maxChars, preferring to cut at
// the last sentence boundary when one lands close enough to the ceiling.
// Text already under the ceiling is returned unchanged.
func EnforceLimit(text string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}

	cut := runes[:maxChars]

	// Prefer ending at a complete sentence when one is near the ceiling.
	// Tracked in runes so multibyte text doesn't skew the window.
	best := -1
	for i, r := range cut {
		if r == '.' || r == '?' || r == '!' {
			best = i
		}
	}
	if best > maxChars-200 {
		cut = cut[:best+1]
	}
	truncated := string(cut)

	// Drop a trailing incomplete hashtag left by the cut.
	lines := strings.Split(truncated, "\n")
	for len(lines) > 0 {
		last := strings.TrimSpace(lines[len(lines)-1])
		if strings.HasPrefix(last, "#") && len(last) < 3 {
			lines = lines[:len(lines)-1]
			continue
		}
		break
	}

	return strings.TrimRight(strings.Join(lines, "\n"), " \n")
}

// instructionPhrases are prompt fragments that models sometimes echo back
// into the generated post.
var instructionPhrases = []string{
	"here's a linkedin post about",
	"here's a professional linkedin post",
	"linkedin post:",
	"content requirements:",
	"requirements:",
	"instructions:",
	"write the linkedin post:",
	"generate the post content now:",
	"post content:",
	"critical:",
	"target audience:",
	"end with:",
	"include 3-4",
}

// CleanResponse strips instruction leakage from generated text: lines
// echoing the prompt template and stray bullet fragments.
func CleanResponse(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		lower := strings.ToLower(trimmed)

		leaked := false
		for _, phrase := range instructionPhrases {
			if strings.Contains(lower, phrase) {
				leaked = true
				break
			}
		}
		if leaked {
			continue
		}

		// Leading blank lines
		if trimmed == "" && len(cleaned) == 0 {
			continue
		}

		// Short dash bullets are almost always echoed prompt items.
		if strings.HasPrefix(trimmed, "-") && len(strings.Fields(trimmed)) < 8 {
			continue
		}

		cleaned = append(cleaned, trimmed)
	}

	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}
