package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	root := t.TempDir()
	cfg, err := Load([]string{"--anki-root", root})
	require.NoError(t, err)

	assert.Equal(t, DefaultProfile, cfg.Name)
	assert.Equal(t, root, cfg.AnkiRoot)
	assert.Equal(t, 1, cfg.Days)
	assert.False(t, cfg.All)
	assert.False(t, cfg.Forgotten)
	assert.Equal(t, "worksheet.html", cfg.Output)
	assert.Equal(t, "abort", cfg.MissingMedia)
	assert.True(t, cfg.Open)
	assert.False(t, cfg.Verbose)
}

func TestLoadShortFlags(t *testing.T) {
	cfg, err := Load([]string{"--anki-root", t.TempDir(), "-n", "Robert", "-d", "3", "-f", "-o", "out.html", "-v"})
	require.NoError(t, err)

	assert.Equal(t, "Robert", cfg.Name)
	assert.Equal(t, 3, cfg.Days)
	assert.True(t, cfg.Forgotten)
	assert.Equal(t, "out.html", cfg.Output)
	assert.True(t, cfg.Verbose)
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "kanjisheet.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(
		"name: Taro\ndays: 4\noutput: from-file.html\nmissing_media: skip\nanki_root: "+dir+"\n"), 0o644))

	t.Run("file over defaults", func(t *testing.T) {
		cfg, err := Load([]string{"-c", configPath})
		require.NoError(t, err)
		assert.Equal(t, "Taro", cfg.Name)
		assert.Equal(t, 4, cfg.Days)
		assert.Equal(t, "from-file.html", cfg.Output)
		assert.Equal(t, "skip", cfg.MissingMedia)
		assert.True(t, cfg.Open, "keys absent from the file keep their flag default")
	})

	t.Run("environment over file", func(t *testing.T) {
		t.Setenv("KANJISHEET_DAYS", "5")
		t.Setenv("KANJISHEET_OPEN", "false")
		cfg, err := Load([]string{"-c", configPath})
		require.NoError(t, err)
		assert.Equal(t, 5, cfg.Days)
		assert.False(t, cfg.Open)
		assert.Equal(t, "Taro", cfg.Name)
	})

	t.Run("explicit flags over environment", func(t *testing.T) {
		t.Setenv("KANJISHEET_DAYS", "5")
		cfg, err := Load([]string{"-c", configPath, "--days", "2", "--missing-media", "abort"})
		require.NoError(t, err)
		assert.Equal(t, 2, cfg.Days)
		assert.Equal(t, "abort", cfg.MissingMedia)
	})

	t.Run("missing config file", func(t *testing.T) {
		_, err := Load([]string{"-c", filepath.Join(dir, "nope.yaml")})
		assert.Error(t, err)
	})
}

func TestLoadValidation(t *testing.T) {
	root := t.TempDir()

	testCases := []struct {
		name     string
		args     []string
		expected string
	}{
		{name: "Zero days", args: []string{"-d", "0"}, expected: "days must be at least 1"},
		{name: "Unknown policy", args: []string{"--missing-media", "ignore"}, expected: "missing_media must be one of [abort skip]"},
		{name: "Empty output", args: []string{"-o", ""}, expected: "output is required"},
		{name: "Empty profile", args: []string{"-n", ""}, expected: "name is required"},
		{name: "Missing template", args: []string{"--template", filepath.Join(root, "none.html")}, expected: "template"},
		{name: "Repo without cache", args: []string{"--media-repo", "https://github.com/KanjiVG/kanjivg.git", "--cache-dir", ""}, expected: "cache_dir is required"},
		{name: "Positional argument", args: []string{"extra"}, expected: "unexpected arguments: extra"},
		{name: "Unknown flag", args: []string{"--nope"}, expected: "unknown flag"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(append([]string{"--anki-root", root}, tc.args...))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.expected)
		})
	}
}

func TestLoadHelp(t *testing.T) {
	_, err := Load([]string{"--help"})
	assert.ErrorIs(t, err, pflag.ErrHelp)
}

func TestProfilePaths(t *testing.T) {
	cfg := Config{AnkiRoot: filepath.Join("home", "Anki2"), Name: "User 1"}
	assert.Equal(t, filepath.Join("home", "Anki2", "User 1", "collection.anki2"), cfg.CollectionPath())
	assert.Equal(t, filepath.Join("home", "Anki2", "User 1", "collection.media"), cfg.MediaDir())
}

func TestAnkiRoot(t *testing.T) {
	home := filepath.Join("home", "robert")
	noEnv := func(string) string { return "" }
	env := func(vals map[string]string) func(string) string {
		return func(k string) string { return vals[k] }
	}

	testCases := []struct {
		name     string
		goos     string
		getenv   func(string) string
		expected string
	}{
		{name: "macOS", goos: "darwin", getenv: noEnv, expected: filepath.Join(home, "Library", "Application Support", "Anki2")},
		{name: "Linux", goos: "linux", getenv: noEnv, expected: filepath.Join(home, ".local", "share", "Anki2")},
		{name: "Linux XDG", goos: "linux", getenv: env(map[string]string{"XDG_DATA_HOME": "xdg"}), expected: filepath.Join("xdg", "Anki2")},
		{name: "Windows", goos: "windows", getenv: env(map[string]string{"APPDATA": "roaming"}), expected: filepath.Join("roaming", "Anki2")},
		{name: "Windows without APPDATA", goos: "windows", getenv: noEnv, expected: filepath.Join(home, "AppData", "Roaming", "Anki2")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ankiRoot(tc.goos, home, tc.getenv))
		})
	}
}
