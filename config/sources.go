package config

import (
	"fmt"
	"os"

	"searchbot/types"

	"gopkg.in/yaml.v3"
)

// DefaultSources are the three result pages queried for every message, in join order
var DefaultSources = []types.Source{
	{Name: "google", URLTemplate: "https://www.google.com/search?q={query}", Selector: ResultSnippetSelector, Kind: types.KindHTML},
	{Name: "bing", URLTemplate: "https://www.bing.com/search?q={query}", Selector: ResultSnippetSelector, Kind: types.KindHTML},
	{Name: "duckduckgo", URLTemplate: "https://duckduckgo.com/?q={query}", Selector: ResultSnippetSelector, Kind: types.KindHTML},
}

type sourcesFile struct {
	Sources []types.Source `yaml:"sources"`
}

// LoadSources reads a YAML source list from path.
// An empty path returns a copy of DefaultSources.
func LoadSources(path string) ([]types.Source, error) {
	if path == "" {
		return append([]types.Source(nil), DefaultSources...), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}
	return ParseSources(data)
}

// ParseSources decodes and validates a YAML source list
func ParseSources(data []byte) ([]types.Source, error) {
	var f sourcesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse sources: %w", err)
	}
	if len(f.Sources) == 0 {
		return nil, fmt.Errorf("sources file lists no sources")
	}

	for i, s := range f.Sources {
		if s.URLTemplate == "" {
			return nil, fmt.Errorf("source %d: url is required", i)
		}
		switch s.EffectiveKind() {
		case types.KindHTML:
			if s.Selector == "" {
				f.Sources[i].Selector = ResultSnippetSelector
			}
		case types.KindFeed, types.KindReadability:
		default:
			return nil, fmt.Errorf("source %d: unknown kind %q", i, s.Kind)
		}
		if s.Name == "" {
			f.Sources[i].Name = fmt.Sprintf("source-%d", i+1)
		}
	}
	return f.Sources, nil
}
