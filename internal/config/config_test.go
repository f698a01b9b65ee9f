package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ItsNotGoodName/x-tabstack/internal/mosaic"
	"github.com/ItsNotGoodName/x-tabstack/internal/render"
	"github.com/stretchr/testify/require"
)

func TestNewStoreWritesDefaults(t *testing.T) {
	driver := &Memory{}

	store, err := NewStore(driver)
	require.NoError(t, err)
	require.Equal(t, 1, driver.writes)

	cfg, err := store.GetConfig()
	require.NoError(t, err)
	require.Equal(t, defaultConfig, cfg)

	_, err = NewStore(driver)
	require.NoError(t, err)
	require.Equal(t, 1, driver.writes)
}

func TestNormalize(t *testing.T) {
	driver := &Memory{}
	require.NoError(t, driver.Write(Config{
		Streams: []Stream{{Main: "rtsp://a"}, {UUID: "keep", Main: "rtsp://b"}},
	}))
	store, err := NewStore(driver)
	require.NoError(t, err)

	require.NoError(t, Normalize(&store))

	cfg, err := store.GetConfig()
	require.NoError(t, err)
	require.NotEmpty(t, cfg.Streams[0].UUID)
	require.Equal(t, "keep", cfg.Streams[1].UUID)
	require.Equal(t, defaultConfig.Accent, cfg.Accent)
	require.Equal(t, LayoutAuto, cfg.Layout.Type)

	id := cfg.Streams[0].UUID
	require.NoError(t, Normalize(&store))
	cfg, err = store.GetConfig()
	require.NoError(t, err)
	require.Equal(t, id, cfg.Streams[0].UUID)
}

func TestMemoryIsolatesCopies(t *testing.T) {
	driver := &Memory{}
	cfg := Config{Streams: []Stream{{UUID: "a", Flags: []string{"x"}}}}
	require.NoError(t, driver.Write(cfg))

	cfg.Streams[0].Flags[0] = "changed"

	got, err := driver.Read()
	require.NoError(t, err)
	require.Equal(t, []string{"x"}, got.Streams[0].Flags)
}

func TestDriversRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		Accent: "#ff0000",
		Layout: Layout{Type: LayoutManual, Manual: []mosaic.Ratio{{X: 0, Y: 0, W: 1, H: 1}}},
		Streams: []Stream{
			{UUID: "a", Name: "Front", Main: "rtsp://a/main", Sub: "rtsp://a/sub", Flags: []string{"mute=yes"}},
		},
		Stacks: [][]string{{"a"}},
	}

	for _, driver := range []Driver{
		NewYAML(filepath.Join(dir, "config.yaml")),
		NewJSON(filepath.Join(dir, "config.json")),
	} {
		exists, err := driver.Exists()
		require.NoError(t, err)
		require.False(t, exists)

		got, err := driver.Read()
		require.NoError(t, err)
		require.Equal(t, defaultConfig, got)

		require.NoError(t, driver.Write(cfg))

		exists, err = driver.Exists()
		require.NoError(t, err)
		require.True(t, exists)

		got, err = driver.Read()
		require.NoError(t, err)
		require.Equal(t, cfg, got)
	}

	_, err := os.Stat(filepath.Join(dir, "config.yaml.tmp"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestYAMLReadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("streams: {"), 0600))

	_, err := NewYAML(path).Read()
	require.Error(t, err)
}

func TestGroups(t *testing.T) {
	cfg := Config{
		Streams: []Stream{{UUID: "a"}, {UUID: "b"}, {UUID: "c"}, {UUID: "d"}},
		Stacks:  [][]string{{"c", "a"}, {"missing"}, {"a", "b"}},
	}

	groups := cfg.Groups()

	require.Equal(t, [][]Stream{
		{{UUID: "c"}, {UUID: "a"}},
		{{UUID: "b"}},
		{{UUID: "d"}},
	}, groups)

	require.Empty(t, Config{}.Groups())
}

func TestAccentColor(t *testing.T) {
	color, err := Config{Accent: "#94ebeb"}.AccentColor()
	require.NoError(t, err)
	require.Equal(t, render.Color{R: 0x94, G: 0xeb, B: 0xeb, A: 0xff}, color)

	_, err = Config{Accent: "teal"}.AccentColor()
	require.Error(t, err)
}

func TestMosaic(t *testing.T) {
	layout, err := Config{}.Mosaic()
	require.NoError(t, err)
	require.Equal(t, mosaic.LayoutGrid{}, layout)

	ratios := []mosaic.Ratio{{W: 1, H: 1}}
	layout, err = Config{Layout: Layout{Type: LayoutManual, Manual: ratios}}.Mosaic()
	require.NoError(t, err)
	require.Equal(t, mosaic.LayoutManual{Ratios: ratios}, layout)

	_, err = Config{Layout: Layout{Type: "spiral"}}.Mosaic()
	require.Error(t, err)
}

func TestStreamTitle(t *testing.T) {
	require.Equal(t, "Front", Stream{UUID: "a", Name: "Front"}.Title())
	require.Equal(t, "a", Stream{UUID: "a"}.Title())
}
