package generator

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/postforge/postforge/internal/domain"
)

// SystemPrompt is sent as the system/role instruction on every
// generation call.
const SystemPrompt = "You are an expert LinkedIn content creator who writes engaging, professional posts that drive meaningful conversations and engagement. Always keep posts under 2900 characters for LinkedIn compatibility."

// topicGuidance maps topic keywords to expert-level focus instructions.
// Matched by substring against the lowercased topic.
var topicGuidance = map[string]string{
	"ai agent":                "Discuss different types of AI agents (reactive, deliberative, learning, collaborative), specific platforms, real business applications, implementation strategies, and measurable ROI",
	"artificial intelligence": "Cover current AI trends, specific technologies, real company case studies, practical applications across industries, ethical considerations, and future predictions",
	"machine learning":        "Explain ML types (supervised, unsupervised, reinforcement), specific tools, real-world applications, data requirements, career paths, and business impact",
	"programming":             "Discuss modern frameworks, specific languages and their use cases, development best practices, emerging trends, career advice, and productivity tools",
	"data science":            "Cover the full data science pipeline, specific tools and platforms, real project examples, business impact measurement, career paths, and industry applications",
}

const defaultGuidance = "Provide detailed, expert-level insights with specific examples, tools, companies, and actionable advice"

var lengthSpecs = map[domain.Length]string{
	domain.LengthShort:  "1-2 concise paragraphs (aim for 400-800 characters total)",
	domain.LengthMedium: "2-3 focused paragraphs (aim for 1500-2500 characters total)",
	domain.LengthLong:   "3-4 detailed paragraphs (aim for 2500-2800 characters total)",
}

var toneSpecs = map[domain.Tone]string{
	domain.ToneProfessional:  "authoritative and expert-level",
	domain.ToneCasual:        "conversational but knowledgeable",
	domain.ToneInspirational: "motivating and forward-thinking",
	domain.ToneEducational:   "informative and teaching-focused",
	domain.TonePromotional:   "persuasive and benefit-focused",
}

// BuildPrompt renders the user prompt for a content spec. Tone and
// length default to professional/medium when unset.
func BuildPrompt(spec *domain.ContentSpec) string {
	tone := spec.Tone
	if _, ok := toneSpecs[tone]; !ok {
		tone = domain.ToneProfessional
	}
	length := spec.Length
	if _, ok := lengthSpecs[length]; !ok {
		length = domain.LengthMedium
	}
	maxChars := spec.MaxChars
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	guidance := defaultGuidance
	topicLower := strings.ToLower(spec.Topic)
	for key, g := range topicGuidance {
		if strings.Contains(topicLower, key) {
			guidance = g
			break
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are a recognized expert writing a LinkedIn post about %q.\n\n", spec.Topic)
	fmt.Fprintf(&b, "CRITICAL REQUIREMENTS:\n")
	fmt.Fprintf(&b, "- MAXIMUM %d characters total (LinkedIn limit is 3000, stay under for safety)\n", maxChars)
	fmt.Fprintf(&b, "- Length: %s\n", lengthSpecs[length])
	fmt.Fprintf(&b, "- Tone: %s\n", toneSpecs[tone])
	fmt.Fprintf(&b, "- Focus: %s\n", guidance)
	b.WriteString("- Include specific company names, tools, statistics, or real examples\n")
	b.WriteString("- Provide actionable insights professionals can immediately use\n")
	b.WriteString("- Use professional LinkedIn formatting with line breaks\n")
	b.WriteString("- Sound like a subject matter expert who has deep hands-on experience\n")

	if spec.TargetAudience != "" {
		fmt.Fprintf(&b, "- Target audience: %s\n", spec.TargetAudience)
	}

	if spec.CallToAction != "" {
		fmt.Fprintf(&b, "- End with: %s\n", spec.CallToAction)
	} else {
		fmt.Fprintf(&b, "- End with this question: %s\n", pickCallToAction(spec.Topic))
	}

	if spec.IncludeHashtags {
		fmt.Fprintf(&b, "- Include 3-4 specific hashtags related to %s (keep hashtags short)\n", spec.Topic)
	}

	fmt.Fprintf(&b, "\nWrite a compelling LinkedIn post that stays under %d characters:", maxChars)
	return b.String()
}

func pickCallToAction(topic string) string {
	options := []string{
		fmt.Sprintf("What's your experience with %s?", topic),
		fmt.Sprintf("How are you implementing %s in your work?", topic),
		fmt.Sprintf("What challenges have you faced with %s?", topic),
		fmt.Sprintf("Which %s tools have you found most effective?", topic),
	}
	return options[rand.Intn(len(options))]
}
