package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSegments(t *testing.T) {
	tests := []struct {
		name    string
		command string
		want    []string
	}{
		{"no operators", "ls -la", []string{"ls -la"}},
		{"pipe", "ls | grep x", []string{"ls ", " grep x"}},
		{"and", "ls && pwd", []string{"ls ", " pwd"}},
		{"or", "ls || pwd", []string{"ls ", " pwd"}},
		{"background", "ls & pwd", []string{"ls ", " pwd"}},
		{"mixed", "a | b && c", []string{"a ", " b ", " c"}},
		{"pipe inside double quotes", `echo "a|b"`, []string{`echo "a|b"`}},
		{"pipe inside single quotes", `grep 'x && y' f`, []string{`grep 'x && y' f`}},
		{"escaped pipe", `echo a\|b`, []string{`echo a\|b`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitSegments(tt.command))
		})
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name    string
		segment string
		want    []string
	}{
		{"plain words", "ls -la /tmp", []string{"ls", "-la", "/tmp"}},
		{"double quoted", `grep "two words" f`, []string{"grep", "two words", "f"}},
		{"single quoted", `sed 's/a b/c/' f`, []string{"sed", "s/a b/c/", "f"}},
		{"escaped space", `cat my\ file`, []string{"cat", "my file"}},
		{"empty quoted token", `echo ""`, []string{"echo", ""}},
		{"adjacent quoting", `echo a"b c"d`, []string{"echo", "ab cd"}},
		{"backslash in single quotes", `grep 'a\b' f`, []string{"grep", `a\b`, "f"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tokenize(tt.segment)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTokenizeUnterminated(t *testing.T) {
	for _, segment := range []string{`echo "abc`, `echo 'abc`, `echo abc\`} {
		_, err := tokenize(segment)
		assert.ErrorIs(t, err, ErrUnterminated, "segment: %s", segment)
	}
}
