package htmlx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	out := Sanitize(`  <p>Cuero <b>vegano</b></p><script>alert(1)</script><a href="javascript:x()">x</a> `)
	require.Contains(t, out, "<b>vegano</b>")
	require.NotContains(t, out, "<script>")
	require.NotContains(t, out, "javascript:")
}
