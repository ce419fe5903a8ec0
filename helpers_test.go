package folio

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
}

func writeStyle(t *testing.T, dir, name, css string) {
	t.Helper()
	styles := filepath.Join(dir, "styles")
	if err := os.MkdirAll(styles, 0o750); err != nil {
		t.Fatal(err)
	}
	writeFile(t, styles, name+".css", css)
}
