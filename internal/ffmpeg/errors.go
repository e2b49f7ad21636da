package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Pre-compiled regexes for classifying ffmpeg stderr. A failure is treated
// as transient only when a transient pattern matches and no permanent one
// does; everything else fails the chunk on the first attempt.
var (
	reTransient = regexp.MustCompile(
		`(?i)Resource temporarily unavailable|` +
			`Cannot allocate memory|` +
			`Device or resource busy|` +
			`Too many open files|` +
			`Interrupted system call`)

	rePermanent = regexp.MustCompile(
		`(?i)Invalid data found when processing input|` +
			`No such file or directory|` +
			`Unknown encoder|` +
			`Unrecognized option|` +
			`Error parsing (filterchain|options)|` +
			`Permission denied|` +
			`No space left on device`)
)

// MatchTransient reports whether stderr looks like a resource hiccup worth
// retrying.
func MatchTransient(stderr string) bool {
	return reTransient.MatchString(stderr) && !rePermanent.MatchString(stderr)
}

// MatchPermanent reports whether stderr names a failure that a retry cannot
// fix.
func MatchPermanent(stderr string) bool {
	return rePermanent.MatchString(stderr)
}

// ExecError is returned when an ffmpeg invocation exits unsuccessfully.
type ExecError struct {
	Op     string // "clip" or "concat".
	Output string // File ffmpeg was writing.
	Stderr string
	Err    error
}

func (e *ExecError) Error() string {
	msg := fmt.Sprintf("ffmpeg %s %s: %v", e.Op, e.Output, e.Err)
	if line := lastLine(e.Stderr); line != "" {
		msg += ": " + line
	}
	return msg
}

func (e *ExecError) Unwrap() error { return e.Err }

// Transient reports whether the failure is worth retrying. A process killed
// by a signal outside of cancellation (the OOM killer, typically) counts.
func (e *ExecError) Transient() bool {
	if errors.Is(e.Err, context.Canceled) || errors.Is(e.Err, context.DeadlineExceeded) {
		return false
	}
	if MatchTransient(e.Stderr) {
		return true
	}
	return e.Err != nil && strings.Contains(e.Err.Error(), "signal: killed") && !MatchPermanent(e.Stderr)
}

// IsTransient reports whether err wraps a transient [ExecError].
func IsTransient(err error) bool {
	var ee *ExecError
	return errors.As(err, &ee) && ee.Transient()
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(s)
}
