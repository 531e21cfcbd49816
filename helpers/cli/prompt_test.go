package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadLines(t *testing.T) {
	t.Parallel()

	lines := []string{}
	err := ReadLines(strings.NewReader("on\n\n  text=hi  \r\nloop=2 s10\n"), func(line string) {
		lines = append(lines, line)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"on", "text=hi", "loop=2 s10"}, lines)
}
