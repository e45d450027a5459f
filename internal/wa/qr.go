package wa

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mdp/qrterminal"
	"github.com/skip2/go-qrcode"
	"go.mau.fi/whatsmeow/types"
)

const countryCode = "62"

// RenderQR writes the pairing code as a PNG for the admin page and mirrors
// it to the terminal.
func RenderQR(code, path string, term io.Writer) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := qrcode.WriteFile(code, qrcode.Medium, 256, path); err != nil {
		return err
	}
	if term != nil {
		qrterminal.GenerateHalfBlock(code, qrterminal.L, term)
	}
	return nil
}

// JID turns a local or international number into a user JID.
// "0812..." and "+62 812..." both become 62812...@s.whatsapp.net.
func JID(number string) types.JID {
	var b strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	d := b.String()
	if strings.HasPrefix(d, "0") {
		d = countryCode + d[1:]
	}
	return types.NewJID(d, types.DefaultUserServer)
}
