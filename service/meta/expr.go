package meta

import (
	"os"
	"strings"
	"unicode"
)

const envPrefix = "${env."

// expandEnv substitutes every ${env.KEY} with the value of KEY, or "" when the
// variable is unset. An expression with an invalid key is left untouched
// while nested expressions are still expanded.
func expandEnv(text string) string {
	if !strings.Contains(text, envPrefix) {
		return text
	}
	var out strings.Builder
	for {
		start := strings.Index(text, envPrefix)
		if start < 0 {
			break
		}
		out.WriteString(text[:start])
		rest := text[start+len(envPrefix):]
		end := strings.IndexByte(rest, '}')
		if end < 0 {
			out.WriteString(text[start:])
			return out.String()
		}
		key := rest[:end]
		if !isEnvKey(key) {
			out.WriteString(envPrefix)
			text = rest
			continue
		}
		out.WriteString(os.Getenv(key))
		text = rest[end+1:]
	}
	out.WriteString(text)
	return out.String()
}

func isEnvKey(key string) bool {
	for _, r := range key {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}
