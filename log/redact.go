package log

import (
	"fmt"
	"regexp"

	logrus "github.com/sirupsen/logrus"
)

var redactions = []struct {
	pattern     *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`(?i)(bearer\s+)[^\s"',;]+`), "${1}[REDACTED]"},
	{regexp.MustCompile(`(?i)((?:access_token|refresh_token|client_secret|password|token)=)[^&\s"]+`), "${1}[REDACTED]"},
	{regexp.MustCompile(`(?i)("(?:session|refresh|password|token|access_token|refresh_token|client_secret)"\s*:\s*)"[^"]*"`), `${1}"[REDACTED]"`},
}

// Redact masks bearer tokens, credential query values and credential JSON fields.
func Redact(s string) string {
	for _, r := range redactions {
		s = r.pattern.ReplaceAllString(s, r.replacement)
	}
	return s
}

// redactHook scrubs every message and string field before it reaches the formatter.
type redactHook struct{}

func (redactHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (redactHook) Fire(entry *logrus.Entry) error {
	entry.Message = Redact(entry.Message)
	for k, v := range entry.Data {
		switch value := v.(type) {
		case string:
			entry.Data[k] = Redact(value)
		case fmt.Stringer:
			entry.Data[k] = Redact(value.String())
		}
	}
	return nil
}
