package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesPrefixedLines(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)
	l.Printf("loaded %d characters", 3)

	assert.Equal(t, "[Roster] loaded 3 characters\n", buf.String())
}

func TestOrDiscard(t *testing.T) {
	l := OrDiscard(nil)
	require.NotNil(t, l)
	l.Println("dropped")

	var buf bytes.Buffer
	own := New(&buf)
	assert.Same(t, own, OrDiscard(own))
}
