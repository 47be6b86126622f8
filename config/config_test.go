package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInitConfigDefaults(t *testing.T) {
	if err := InitConfig("", false); err != nil {
		t.Fatalf("InitConfig: %v", err)
	}
	if Configuration.Render.TileSize != 256 {
		t.Errorf("expected default TileSize 256, got %d", Configuration.Render.TileSize)
	}
	if Configuration.Render.DefaultDPI != 300.0 {
		t.Errorf("expected default DPI 300, got %v", Configuration.Render.DefaultDPI)
	}
}

func TestInitConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "toolkit.toml")
	content := "[Render]\nTileSize = 512\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := InitConfig(path, false); err != nil {
		t.Fatalf("InitConfig: %v", err)
	}
	if Configuration.Render.TileSize != 512 {
		t.Errorf("expected TileSize 512 from file, got %d", Configuration.Render.TileSize)
	}
}

func TestInitConfigEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "toolkit.toml")
	content := "[Render]\nTileSize = 512\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	os.Setenv("VMAP2TOOLKIT_RENDER_TILESIZE", "1024")
	defer os.Unsetenv("VMAP2TOOLKIT_RENDER_TILESIZE")

	if err := InitConfig(path, false); err != nil {
		t.Fatalf("InitConfig: %v", err)
	}
	if Configuration.Render.TileSize != 1024 {
		t.Errorf("expected env override TileSize 1024, got %d", Configuration.Render.TileSize)
	}
}
