package output

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewferrier/memy/internal/list"
	"github.com/andrewferrier/memy/internal/store"
)

var sampleResults = []list.Result{
	{Path: "/home/u/notes.md", Frecency: 0.25, Count: 1, LastNoted: "2024-01-01T00:00:00Z", FileType: list.File},
	{Path: "/home/u/src", Frecency: 1, Count: 4, LastNoted: "2024-01-02T12:30:00Z", FileType: list.Dir},
}

var sampleStats = store.Stats{
	TotalPaths:   3,
	OldestNote:   &store.NotedAt{Path: "/a", Timestamp: 1_704_067_200},
	NewestNote:   &store.NotedAt{Path: "/b", Timestamp: 1_704_153_600},
	HighestCount: &store.CountOf{Path: "/c", Count: 7},
}

func assertGolden(t *testing.T, name string, got []byte) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, got)
}

func utc(t *testing.T) {
	t.Helper()
	prev := time.Local
	time.Local = time.UTC
	t.Cleanup(func() { time.Local = prev })
}

func TestWriteList_Golden(t *testing.T) {
	for _, format := range ListFormats {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteList(&buf, sampleResults, format, PlainOptions{}))
			assertGolden(t, "list_"+string(format), buf.Bytes())
		})
	}
}

func TestWriteList_Empty(t *testing.T) {
	tests := map[Format]string{
		Plain: "",
		CSV:   "",
		JSON:  "[]\n",
	}
	for format, want := range tests {
		var buf bytes.Buffer
		require.NoError(t, WriteList(&buf, nil, format, PlainOptions{}))
		assert.Equal(t, want, buf.String(), format)
	}
}

func TestWriteList_CSVQuoting(t *testing.T) {
	var buf bytes.Buffer
	results := []list.Result{{Path: "/a,b", Frecency: 0.5, Count: 2, LastNoted: "x", FileType: list.File}}
	require.NoError(t, WriteList(&buf, results, CSV, PlainOptions{}))
	assert.Contains(t, buf.String(), "\"/a,b\",0.5,2,x,file\n")
}

func TestWriteList_JSONNoHTMLEscape(t *testing.T) {
	var buf bytes.Buffer
	results := []list.Result{{Path: "/a&b", FileType: list.File}}
	require.NoError(t, WriteList(&buf, results, JSON, PlainOptions{}))
	assert.Contains(t, buf.String(), `"path": "/a&b"`)
}

func TestWriteList_Tilde(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	homedir.Reset()
	t.Cleanup(homedir.Reset)

	var buf bytes.Buffer
	results := []list.Result{
		{Path: home + "/proj", FileType: list.Dir},
		{Path: "/etc/hosts", FileType: list.File},
	}
	require.NoError(t, WriteList(&buf, results, Plain, PlainOptions{Tilde: true}))
	assert.Equal(t, "~/proj\n/etc/hosts\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteList(&buf, results, CSV, PlainOptions{Tilde: true}))
	assert.Contains(t, buf.String(), home+"/proj")
}

func TestWriteList_Color(t *testing.T) {
	var buf bytes.Buffer
	results := []list.Result{
		{Path: "/srv/www", FileType: list.Dir},
		{Path: "/srv/index.html", FileType: list.File},
		{Path: "/srv/fifo", FileType: list.Other},
	}
	require.NoError(t, WriteList(&buf, results, Plain, PlainOptions{Color: true}))

	out := buf.String()
	assert.Contains(t, out, "/srv/\x1b[34mwww\x1b[0m\n")
	assert.Contains(t, out, "/srv/\x1b[32mindex.html\x1b[0m\n")
	assert.Contains(t, out, "/srv/fifo\n")
}

func TestWriteStats_Golden(t *testing.T) {
	utc(t)

	for _, format := range StatsFormats {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteStats(&buf, sampleStats, format))
			assertGolden(t, "stats_"+string(format), buf.Bytes())
		})
	}
}

func TestWriteStats_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteStats(&buf, store.Stats{}, Plain))
	assert.Equal(t, "Total Paths: 0\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteStats(&buf, store.Stats{}, JSON))
	assertGolden(t, "stats_empty_json", buf.Bytes())
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("csv", ListFormats)
	require.NoError(t, err)
	assert.Equal(t, CSV, f)

	_, err = ParseFormat("csv", StatsFormats)
	assert.EqualError(t, err, `invalid format "csv": must be one of plain, json`)
}

func TestParseColorMode(t *testing.T) {
	for _, s := range []string{"always", "never", "automatic"} {
		m, err := ParseColorMode(s)
		require.NoError(t, err)
		assert.Equal(t, ColorMode(s), m)
	}
	_, err := ParseColorMode("sometimes")
	assert.Error(t, err)
}

func TestUseColor(t *testing.T) {
	var buf bytes.Buffer
	assert.True(t, UseColor(ColorAlways, &buf))
	assert.False(t, UseColor(ColorNever, &buf))
	assert.False(t, UseColor(ColorAutomatic, &buf))

	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, UseColor(ColorAutomatic, f))
}
