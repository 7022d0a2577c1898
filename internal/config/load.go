package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
	gotoml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

// Load builds the effective configuration: defaults, then the TOML file at
// path if it exists, then overrides in order. The result is validated before
// it is returned. An empty path skips the file.
func Load(path string, overrides []Override) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")
	for key, value := range defaults() {
		v.SetDefault(key, value)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := checkFile(path, data); err != nil {
				return nil, err
			}
			if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
				return nil, &Error{Message: fmt.Sprintf("failed to parse configuration file %s", path), Err: err}
			}
		case errors.Is(err, fs.ErrNotExist):
			// No file, defaults apply
		default:
			return nil, &Error{Message: "failed to read configuration file", Err: err}
		}
	}

	for _, o := range overrides {
		if err := applyOverride(v, o); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, &Error{Message: "failed to decode configuration", Err: err}
	}
	if cfg.Denylist == nil {
		cfg.Denylist = []string{}
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// checkFile decodes the file strictly so that syntax errors, wrongly typed
// values and unknown keys are reported instead of silently ignored.
func checkFile(path string, data []byte) error {
	var fileCfg Config
	md, err := toml.Decode(string(data), &fileCfg)
	if err != nil {
		return &Error{Message: fmt.Sprintf("failed to parse configuration file %s", path), Err: err}
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return &Error{Field: undecoded[0].String(), Message: fmt.Sprintf("unknown configuration key in %s", path)}
	}
	return nil
}

func applyOverride(v *viper.Viper, o Override) error {
	if !IsKnownKey(o.Key) {
		return &Error{Field: o.Key, Message: "unknown configuration key"}
	}
	if o.Key != "denylist" {
		v.Set(o.Key, o.Value)
		return nil
	}

	list, err := parseList(o.Value)
	if err != nil {
		return &Error{Field: o.Key, Message: "override must be a TOML array of strings", Err: err}
	}
	v.Set(o.Key, list)
	return nil
}

// parseList reads a TOML array literal such as ["*.log", "/tmp/"].
func parseList(s string) ([]string, error) {
	var doc struct {
		Value []string `toml:"value"`
	}
	if err := gotoml.Unmarshal([]byte("value = "+s), &doc); err != nil {
		return nil, err
	}
	if doc.Value == nil {
		doc.Value = []string{}
	}
	return doc.Value, nil
}
