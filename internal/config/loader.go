package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Laisky/errors/v2"
	"gopkg.in/yaml.v3"
)

// LoadFromFiles merges files without built-in defaults.
func LoadFromFiles(files []string) (Config, error) {
	return LoadDefaultsAndFiles(nil, files)
}

// LoadDefaultsAndFiles parses defaultsYAML, then overlays every YAML file in
// lexical order. Later scalar keys win; exclude lists are concatenated.
func LoadDefaultsAndFiles(defaultsYAML []byte, files []string) (Config, error) {
	var base Config
	if len(defaultsYAML) > 0 {
		if err := decode(defaultsYAML, &base); err != nil {
			return Config{}, errors.Wrap(err, "defaults")
		}
	}
	merged := base
	seen := map[string]string{}
	for _, e := range base.Exclude {
		seen[e] = "defaults"
	}
	for _, f := range sortedYAML(files) {
		b, err := os.ReadFile(f)
		if err != nil {
			return Config{}, errors.Wrap(err, "read config")
		}
		var part Config
		if err := decode(b, &part); err != nil {
			return Config{}, errors.Wrap(err, f)
		}
		if err := checkExcludeDuplicatesWithFiles(seen, part, f); err != nil {
			return Config{}, err
		}
		merged = mergeConfig(merged, part)
	}
	return merged, nil
}

// FilesInDir lists the YAML files directly inside dir. A missing dir has none.
func FilesInDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "read config dir")
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return sortedYAML(files), nil
}

func decode(b []byte, into *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(into); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func sortedYAML(files []string) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		lf := strings.ToLower(f)
		if strings.HasSuffix(lf, ".yaml") || strings.HasSuffix(lf, ".yml") {
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}

func mergeConfig(base, overlay Config) Config {
	out := base
	if overlay.StreamURL != "" {
		out.StreamURL = overlay.StreamURL
	}
	if overlay.ResultsURL != "" {
		out.ResultsURL = overlay.ResultsURL
	}
	if overlay.MaxPages != nil {
		out.MaxPages = overlay.MaxPages
	}
	if overlay.RateLimit != nil {
		out.RateLimit = overlay.RateLimit
	}
	if overlay.HTTPTimeout != "" {
		out.HTTPTimeout = overlay.HTTPTimeout
	}
	if overlay.UserAgent != "" {
		out.UserAgent = overlay.UserAgent
	}
	if overlay.Color != nil {
		out.Color = overlay.Color
	}
	if overlay.LogFile != "" {
		out.LogFile = overlay.LogFile
	}
	exclude := make([]string, 0, len(base.Exclude)+len(overlay.Exclude))
	exclude = append(exclude, base.Exclude...)
	exclude = append(exclude, overlay.Exclude...)
	out.Exclude = exclude
	return out
}

func checkExcludeDuplicatesWithFiles(seen map[string]string, part Config, file string) error {
	local := map[string]struct{}{}
	for _, e := range part.Exclude {
		if _, ok := local[e]; ok {
			return errors.Errorf("duplicate exclude '%s' found in %s", e, file)
		}
		local[e] = struct{}{}
	}
	for _, e := range part.Exclude {
		if prev, ok := seen[e]; ok {
			return errors.Errorf("duplicate exclude '%s' found in %s and %s", e, prev, file)
		}
	}
	for _, e := range part.Exclude {
		seen[e] = file
	}
	return nil
}
