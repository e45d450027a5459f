package wa

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"081234567890", "6281234567890@s.whatsapp.net"},
		{"+62 812-3456-7890", "6281234567890@s.whatsapp.net"},
		{"6281234567890", "6281234567890@s.whatsapp.net"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, JID(tt.in).String(), tt.in)
	}
}

func TestRenderQR(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "wa-qrcode.png")
	var term bytes.Buffer

	require.NoError(t, RenderQR("2@abcdef,ghijkl,mnopqr", path, &term))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), b[:4])
	assert.NotZero(t, term.Len())
}
