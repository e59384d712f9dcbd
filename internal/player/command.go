package player

import (
	"encoding/json"
	"fmt"
)

// Command is one of the closed set of player commands. Variants are
// immutable values; the serializer is exhaustive, so a new variant that
// lacks tokens() fails to compile rather than falling through at runtime.
type Command interface {
	tokens() []any
}

// Stop halts playback and unloads the current file.
type Stop struct{}

// Play resumes playback.
type Play struct{}

// Pause suspends playback.
type Pause struct{}

// Loop toggles whole-file looping.
type Loop struct {
	Enabled bool
}

// Load replaces the current file with the one at Path. The player
// acknowledges the command immediately; loading completes asynchronously
// and is signaled by a separate event.
type Load struct {
	Path string
}

// Seek repositions playback according to Mode.
type Seek struct {
	Mode SeekMode
}

// SeekMode selects how a Seek target is interpreted.
type SeekMode interface {
	seekArgs() (target string, mode string)
}

// AbsoluteSeconds seeks to an absolute offset in seconds.
type AbsoluteSeconds int

// RelativeSeconds seeks by a signed offset in seconds.
type RelativeSeconds int

// AbsolutePercent seeks to an absolute position as a percentage.
type AbsolutePercent float64

// RelativePercent seeks by a signed percentage offset.
type RelativePercent float64

func (Stop) tokens() []any  { return []any{"stop"} }
func (Play) tokens() []any  { return []any{"set_property", "pause", false} }
func (Pause) tokens() []any { return []any{"set_property", "pause", true} }

func (l Loop) tokens() []any { return []any{"set_property", "loop", l.Enabled} }
func (l Load) tokens() []any { return []any{"loadfile", l.Path} }

func (s Seek) tokens() []any {
	target, mode := s.Mode.seekArgs()
	return []any{"seek", target, mode}
}

func (s AbsoluteSeconds) seekArgs() (string, string) { return clock(int(s)), "absolute" }
func (s RelativeSeconds) seekArgs() (string, string) { return clock(int(s)), "relative" }

func (p AbsolutePercent) seekArgs() (string, string) {
	return formatPercent(float64(p)), "absolute-percent"
}

func (p RelativePercent) seekArgs() (string, string) {
	return formatPercent(float64(p)), "relative-percent"
}

// clock renders a seconds count as zero-padded MM:SS. Minutes are
// unbounded, not wrapped at 60.
func clock(seconds int) string {
	sign := ""
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}
	return fmt.Sprintf("%s%02d:%02d", sign, seconds/60, seconds%60)
}

func formatPercent(p float64) string {
	b, _ := json.Marshal(p)
	return string(b)
}

// request mirrors the player's JSON IPC request envelope: a single line
// holding a command array of string/boolean/number tokens.
type request struct {
	Command []any `json:"command"`
}

// Serialize renders a command as its wire line, without the terminator.
// The mapping is deterministic: the same command always yields a
// byte-identical line.
func Serialize(cmd Command) (string, error) {
	b, err := json.Marshal(request{Command: cmd.tokens()})
	if err != nil {
		return "", fmt.Errorf("failed to serialize command: %w", err)
	}
	return string(b), nil
}
