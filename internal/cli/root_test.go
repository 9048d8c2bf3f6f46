package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"alphaquant-console/internal/config"
)

func TestStoreLivesInTheChosenConfigDir(t *testing.T) {
	dir := t.TempDir()

	cmd := NewRootCmd(&config.Config{}, zerolog.Nop(), dir)
	if cmd == nil {
		t.Fatal("NewRootCmd returned nil")
	}

	if _, err := os.Stat(filepath.Join(dir, "console.db")); err != nil {
		t.Fatalf("store not created under the config dir: %v", err)
	}
}
