// Package safety scrubs secrets from text that leaves the process (logs,
// the history journal) and checks generated commands against the binary
// the user expects to run.
package safety

import "regexp"

type redactionRule struct {
	pattern     *regexp.Regexp
	replacement string
}

var secretRedactionRules = []redactionRule{
	{
		pattern:     regexp.MustCompile(`\bsk-(?:or-)?(?:v1-)?[A-Za-z0-9_-]{16,}`),
		replacement: `<redacted>`,
	},
	{
		pattern:     regexp.MustCompile(`(?i)\b([a-z][a-z0-9+.-]*://[^\s/:@"']+):([^\s/@"']+)@`),
		replacement: `$1:<redacted>@`,
	},
	{
		pattern:     regexp.MustCompile(`(?i)\b(rtmps?://[^\s"']+/)([A-Za-z0-9_-]{16,})`),
		replacement: `$1<redacted>`,
	},
	{
		pattern:     regexp.MustCompile(`(?i)([?&](?:token|key|sig|signature|auth|access_token|api_key)=)([^&\s"']+)`),
		replacement: `$1<redacted>`,
	},
	{
		pattern:     regexp.MustCompile(`(?i)\b([a-z0-9_]*(?:token|secret|password|passwd|api[_-]?key|access[_-]?key)[a-z0-9_]*)\s*=\s*([^\s"'&]+|"[^"]*"|'[^']*')`),
		replacement: `$1=<redacted>`,
	},
	{
		pattern:     regexp.MustCompile(`(?i)\b(authorization\s*:\s*bearer)\s+([^\s"'\\]+)`),
		replacement: `$1 <redacted>`,
	},
	{
		pattern:     regexp.MustCompile(`(?i)(--?[a-z0-9_-]*(?:token|secret|password|passwd|api[_-]?key|access[_-]?key)[a-z0-9_-]*)\s+([^\s"'-][^\s"']*|"[^"]*"|'[^']*')`),
		replacement: `$1 <redacted>`,
	},
}

// RedactText scrubs API keys, URL credentials, stream keys and
// secret-looking assignments or flags from free-form text.
func RedactText(input string) string {
	redacted := input
	for _, rule := range secretRedactionRules {
		redacted = rule.pattern.ReplaceAllString(redacted, rule.replacement)
	}
	return redacted
}
