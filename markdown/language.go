package markdown

import "strings"

// DefaultLanguage is used for fences without a tag.
const DefaultLanguage = "text"

var languageAliases = map[string]string{
	"js":   "javascript",
	"ts":   "typescript",
	"py":   "python",
	"rb":   "ruby",
	"sh":   "bash",
	"yml":  "yaml",
	"md":   "markdown",
	"html": "markup",
}

// NormalizeLanguage lowercases a fence tag and resolves the short aliases.
// Unknown tags pass through lowercased.
func NormalizeLanguage(tag string) string {
	if tag == "" {
		return DefaultLanguage
	}
	tag = strings.ToLower(tag)
	if full, ok := languageAliases[tag]; ok {
		return full
	}
	return tag
}
