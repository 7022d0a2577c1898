package config

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func overrides(t *testing.T, args ...string) []Override {
	t.Helper()
	out := make([]Override, 0, len(args))
	for _, a := range args {
		o, err := ParseOverride(a)
		require.NoError(t, err)
		out = append(out, o)
	}
	return out
}

func TestLoad_NoFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), FileName), nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_EmptyPathGivesDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
import_on_first_use = false
denylist = ["*.log", "/tmp/"]
normalize_symlinks_on_note = false
missing_files_warn_on_note = false
denied_files_warn_on_note = false
denied_files_on_list = "warn"
recency_bias = 0.25
missing_files_delete_from_db_after = -1
use_tilde_on_list = true
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, &Config{
		ImportOnFirstUse:              false,
		Denylist:                      []string{"*.log", "/tmp/"},
		NormalizeSymlinksOnNote:       false,
		MissingFilesWarnOnNote:        false,
		DeniedFilesWarnOnNote:         false,
		DeniedFilesOnList:             DeniedWarn,
		RecencyBias:                   0.25,
		MissingFilesDeleteFromDBAfter: -1,
		UseTildeOnList:                true,
	}, cfg)
	assert.False(t, cfg.MissingDeletionEnabled())
}

func TestLoad_PartialFileKeepsOtherDefaults(t *testing.T) {
	path := writeConfig(t, "recency_bias = 1\n")

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	want := Default()
	want.RecencyBias = 1
	assert.Equal(t, want, cfg)
}

func TestLoad_UnknownKey(t *testing.T) {
	path := writeConfig(t, "recency_bais = 0.2\n")

	_, err := Load(path, nil)
	require.Error(t, err)

	var cfgErr *Error
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "recency_bais", cfgErr.Field)
	assert.Contains(t, err.Error(), "unknown configuration key")
}

func TestLoad_SyntaxError(t *testing.T) {
	path := writeConfig(t, "recency_bias = = 0.2\n")

	_, err := Load(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse configuration file")
}

func TestLoad_WrongType(t *testing.T) {
	path := writeConfig(t, "use_tilde_on_list = \"sometimes\"\n")

	_, err := Load(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse configuration file")
}

func TestLoad_RecencyBiasOutOfRange(t *testing.T) {
	for _, value := range []string{"1.5", "-0.1", "nan"} {
		t.Run(value, func(t *testing.T) {
			_, err := Load("", overrides(t, "recency_bias="+value))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "recency_bias")
		})
	}
}

func TestLoad_RecencyBiasOutOfRangeInFile(t *testing.T) {
	path := writeConfig(t, "recency_bias = 2.0\n")

	_, err := Load(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recency_bias")
}

func TestLoad_RecencyBiasBounds(t *testing.T) {
	for _, value := range []string{"0", "1", "0.0", "1.0"} {
		t.Run(value, func(t *testing.T) {
			_, err := Load("", overrides(t, "recency_bias="+value))
			require.NoError(t, err)
		})
	}
}

func TestLoad_InvalidDeniedPolicy(t *testing.T) {
	_, err := Load("", overrides(t, "denied_files_on_list=explode"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "denied_files_on_list")
}

func TestLoad_OverridesBeatFile(t *testing.T) {
	path := writeConfig(t, "recency_bias = 0.2\ndenylist = [\"*.log\"]\n")

	cfg, err := Load(path, overrides(t,
		"recency_bias=0.8",
		`denylist=["*.tmp", "/var/"]`,
		"use_tilde_on_list='true'",
		`missing_files_delete_from_db_after="-5"`,
		"import_on_first_use=false",
	))
	require.NoError(t, err)

	assert.Equal(t, 0.8, cfg.RecencyBias)
	assert.Equal(t, []string{"*.tmp", "/var/"}, cfg.Denylist)
	assert.True(t, cfg.UseTildeOnList)
	assert.Equal(t, int64(-5), cfg.MissingFilesDeleteFromDBAfter)
	assert.False(t, cfg.ImportOnFirstUse)
}

func TestLoad_LaterOverrideWins(t *testing.T) {
	cfg, err := Load("", overrides(t, "recency_bias=0.1", "recency_bias=0.9"))
	require.NoError(t, err)
	assert.Equal(t, 0.9, cfg.RecencyBias)
}

func TestLoad_EmptyDenylistOverride(t *testing.T) {
	cfg, err := Load("", overrides(t, "denylist=[]"))
	require.NoError(t, err)
	assert.Equal(t, []string{}, cfg.Denylist)
}

func TestLoad_BadDenylistOverride(t *testing.T) {
	_, err := Load("", overrides(t, "denylist=*.log"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TOML array")
}

func TestLoad_BadBoolOverride(t *testing.T) {
	_, err := Load("", overrides(t, "use_tilde_on_list=perhaps"))
	require.Error(t, err)
}

func TestParseOverride(t *testing.T) {
	o, err := ParseOverride(`recency_bias="0.3"`)
	require.NoError(t, err)
	assert.Equal(t, Override{Key: "recency_bias", Value: "0.3"}, o)

	o, err = ParseOverride(`denylist=["a=b"]`)
	require.NoError(t, err)
	assert.Equal(t, Override{Key: "denylist", Value: `["a=b"]`}, o)

	_, err = ParseOverride("recency_bias")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected key=value")

	_, err = ParseOverride("=0.3")
	require.Error(t, err)

	_, err = ParseOverride("no_such_key=1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown configuration key")
}

func TestTemplate_ParsesToDefaults(t *testing.T) {
	text, err := Template()
	require.NoError(t, err)

	cfg, err := Load(writeConfig(t, text), nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestTemplate_UncommentedParsesToDefaults(t *testing.T) {
	text, err := Template()
	require.NoError(t, err)

	setting := regexp.MustCompile(`(?m)^# ([a-z_]+ = .*)$`)
	uncommented := setting.ReplaceAllString(text, "$1")
	require.Len(t, setting.FindAllString(text, -1), len(Keys), "every key appears once")

	cfg, err := Load(writeConfig(t, uncommented), nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestTemplate_MentionsBuiltins(t *testing.T) {
	text, err := Template()
	require.NoError(t, err)
	assert.Contains(t, text, "/dev/, /proc/, /sys/")
}

func TestFilePath_Env(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvConfigDir, dir)
	assert.Equal(t, filepath.Join(dir, FileName), FilePath())
}

func TestDBDir_Env(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvDBDir, dir)

	got, fromEnv := DBDir()
	assert.Equal(t, dir, got)
	assert.True(t, fromEnv)
}

func TestDBDir_Default(t *testing.T) {
	t.Setenv(EnvDBDir, "")

	got, fromEnv := DBDir()
	assert.False(t, fromEnv)
	assert.Equal(t, AppName, filepath.Base(got))
}

func TestError_Format(t *testing.T) {
	assert.Equal(t, "config: recency_bias: invalid value", (&Error{Field: "recency_bias", Message: "invalid value"}).Error())
	wrapped := &Error{Message: "failed", Err: os.ErrNotExist}
	assert.Equal(t, "config: failed: file does not exist", wrapped.Error())
	assert.True(t, errors.Is(wrapped, os.ErrNotExist))
}
