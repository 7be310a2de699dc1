package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadOrCreate_WritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan", DefaultConfigFileName)

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)
	require.FileExists(t, path)
	require.Equal(t, DefaultMaxLevel, cfg.MaxLevel)
	require.Equal(t, filepath.Join(filepath.Dir(path), DefaultDBName), cfg.DBPath)

	again, err := LoadOrCreate(path)
	require.NoError(t, err)
	require.Equal(t, cfg, again)
}

func TestLoadOrCreate_ReadsOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFileName)
	body := `
db_path = "/tmp/elsewhere.sqlite"
max_level = 6

[[tags]]
id = "t1"
name = "errand"

[keys]
quit = "ctrl+c"
save = "ctrl+w"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)
	require.Equal(t, "/tmp/elsewhere.sqlite", cfg.DBPath)
	require.Equal(t, 6, cfg.MaxLevel)
	require.Len(t, cfg.Tags, 1)
	require.Equal(t, []string{"ctrl+w"}, Keys(cfg.Keys.Save))
	require.Equal(t, DefaultIndentWidth, cfg.IndentWidth)
}

func TestLoadOrCreate_RejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"level":    "max_level = 0\n",
		"loglevel": "log_level = \"loud\"\n",
		"dup-tag":  "[[tags]]\nid = \"a\"\nname = \"a\"\n[[tags]]\nid = \"a\"\nname = \"b\"\n",
		"syntax":   "max_level = \n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), DefaultConfigFileName)
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, err := LoadOrCreate(path)
			require.Error(t, err)
		})
	}
}

func TestKeys(t *testing.T) {
	require.Equal(t, []string{"ctrl+c", "ctrl+q"}, Keys(" ctrl+c, ,ctrl+q "))
	require.Nil(t, Keys(""))
}
