package summarizer

import (
	"fmt"
	"math"
	"strings"
)

// Level selects how verbose a summary is.
type Level int

const (
	Student Level = iota
	Professor
)

// levelPolicy holds the sizing parameters for one level.
type levelPolicy struct {
	ratio    float64
	min, max int
}

var policies = map[Level]levelPolicy{
	Student:   {ratio: 0.15, min: 3, max: 8},
	Professor: {ratio: 0.20, min: 4, max: 12},
}

// ParseLevel converts "student" or "professor" (any case) into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "student":
		return Student, nil
	case "professor":
		return Professor, nil
	}
	return Student, fmt.Errorf("unknown summary level %q (want student or professor)", s)
}

func (l Level) String() string {
	if l == Professor {
		return "professor"
	}
	return "student"
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(b []byte) error {
	parsed, err := ParseLevel(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// MaxSentences returns how many sentences a summary at this level may keep
// out of n qualifying sentences.
func (l Level) MaxSentences(n int) int {
	p, ok := policies[l]
	if !ok {
		p = policies[Student]
	}
	want := int(math.Floor(float64(n) * p.ratio))
	return min(p.max, max(p.min, want))
}
