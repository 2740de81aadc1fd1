// Package graph provides candidate graph mutation and the skill verification
// engine that derives each claim's verified flag from evidence edges.
package graph

import "strings"

// skillNormalizations maps common skill name variants to canonical names
var skillNormalizations = map[string]string{
	"golang":     "Go",
	"go lang":    "Go",
	"javascript": "JavaScript",
	"js":         "JavaScript",
	"typescript": "TypeScript",
	"ts":         "TypeScript",
	"k8s":        "Kubernetes",
	"kubernetes": "Kubernetes",
	"postgres":   "PostgreSQL",
	"postgresql": "PostgreSQL",
	"react.js":   "React",
	"reactjs":    "React",
	"vue.js":     "Vue",
	"vuejs":      "Vue",
	"node.js":    "Node.js",
	"nodejs":     "Node.js",
}

// NormalizeSkillName normalizes a skill name to its canonical form.
// Evidence edges and requirements are matched on the normalized form.
func NormalizeSkillName(skillName string) string {
	normalized := strings.TrimSpace(skillName)
	if normalized == "" {
		return ""
	}

	lower := strings.ToLower(normalized)
	if canonical, ok := skillNormalizations[lower]; ok {
		return canonical
	}

	// Mixed case is assumed intentional (e.g. PyTorch, iOS)
	if normalized != strings.ToUpper(normalized) && normalized != strings.ToLower(normalized) {
		return normalized
	}

	// All-caps multi-character names are kept as acronyms (SQL, AWS)
	if normalized == strings.ToUpper(normalized) && len(normalized) > 1 && !strings.Contains(normalized, " ") {
		return normalized
	}

	// All-lowercase single words get their first letter capitalized
	if !strings.Contains(normalized, " ") {
		return strings.ToUpper(normalized[:1]) + normalized[1:]
	}

	return normalized
}

// SameSkill reports whether two skill names refer to the same skill after
// normalization. The comparison is case-insensitive.
func SameSkill(a, b string) bool {
	return strings.EqualFold(NormalizeSkillName(a), NormalizeSkillName(b))
}
