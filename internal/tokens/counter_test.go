package tokens

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCounter(t *testing.T) *Counter {
	t.Helper()
	c, err := NewCounter("cl100k_base")
	require.NoError(t, err)
	return c
}

func TestNewCounter(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"cl100k_base", false},
		{"p50k_base", false},
		{"gpt-4", false},
		{"no-such-encoding-or-model", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCounter(tt.name)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewCounter() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCounter_Count(t *testing.T) {
	counter := newTestCounter(t)

	tests := []struct {
		name string
		text string
		want int
	}{
		{"Empty string", "", 0},
		{"Simple sentence", "Hello, world!", 4},
		{"Repeated text", "test test test", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, counter.Count(tt.text))
		})
	}
}

func TestCounter_Compare(t *testing.T) {
	counter := newTestCounter(t)

	s := counter.Compare("test test test test", "test test")
	assert.Equal(t, 4, s.SourceTokens)
	assert.Equal(t, 2, s.SummaryTokens)
	assert.InDelta(t, 0.5, s.Ratio, 1e-9)
}

func TestCounter_NilIsZero(t *testing.T) {
	var c *Counter
	assert.Equal(t, 0, c.Count("anything at all"))
	assert.Equal(t, Stats{}, c.Compare("source", "summary"))
}
