package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"MODE", "HTTP_ADDR", "PUBLIC_URL", "CORS_ORIGINS", "GENERATOR_TIMEOUT_SEC", "PLAY_TTL_MIN", "GRADING_MAX_EDIT", "SEED_GAME_TYPES"} {
		t.Setenv(k, "")
	}
	c := FromEnv()
	if c.Mode != ModeOffline || c.HTTPAddr != ":8080" || c.DBDriver != "sqlite" {
		t.Errorf("defaults = %+v", c)
	}
	if c.GeneratorTimeout != time.Minute || c.PlayTTL != time.Hour || c.GradingMaxEdit != 0 || !c.SeedTypes {
		t.Errorf("numeric defaults = %+v", c)
	}
	if len(c.CORSOrigins) != 2 {
		t.Errorf("offline origins = %v", c.CORSOrigins)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("MODE", "online")
	t.Setenv("PUBLIC_URL", "https://jeux.example.org/")
	t.Setenv("CORS_ORIGINS", "")
	t.Setenv("GRADING_MAX_EDIT", "2")
	t.Setenv("IMAGE_MAX_DIM", "oops")
	t.Setenv("SEED_GAME_TYPES", "no")
	c := FromEnv()
	if c.PublicURL != "https://jeux.example.org" {
		t.Errorf("public url = %q", c.PublicURL)
	}
	if !reflect.DeepEqual(c.CORSOrigins, []string{"https://jeux.example.org"}) {
		t.Errorf("online origins = %v", c.CORSOrigins)
	}
	if c.GradingMaxEdit != 2 || c.ImageMaxDim != 2048 || c.SeedTypes {
		t.Errorf("overrides = %+v", c)
	}
}

func TestCSV(t *testing.T) {
	t.Setenv("X_LIST", " a, ,b ,")
	if got := csvOr("X_LIST", ""); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("csv = %v", got)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, ".env")
	if err := os.WriteFile(f, []byte("GAMES_TEST_KEY=from-file\nGAMES_TEST_SET=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GAMES_TEST_SET", "from-env")
	t.Setenv("GAMES_TEST_KEY", "")
	os.Unsetenv("GAMES_TEST_KEY")

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), f); err != nil {
		t.Fatal(err)
	}
	if v := os.Getenv("GAMES_TEST_KEY"); v != "from-file" {
		t.Errorf("GAMES_TEST_KEY = %q", v)
	}
	if v := os.Getenv("GAMES_TEST_SET"); v != "from-env" {
		t.Errorf("existing variable overwritten: %q", v)
	}
	os.Unsetenv("GAMES_TEST_KEY")
}
