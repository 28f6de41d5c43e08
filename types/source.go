package types

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// QueryPlaceholder is substituted with the URL-escaped query in a Source's URLTemplate
const QueryPlaceholder = "{query}"

// SourceKind selects how a source's markup is turned into fragments
type SourceKind string

const (
	// KindHTML selects elements with a CSS selector (search result pages)
	KindHTML SourceKind = "html"
	// KindFeed parses the body as RSS/Atom and uses item titles and descriptions
	KindFeed SourceKind = "feed"
	// KindReadability extracts the readable article text and splits it into paragraphs
	KindReadability SourceKind = "readability"
)

// Source describes one search endpoint queried for snippet text.
// Sources are built at startup and shared read-only by every request.
type Source struct {
	Name        string     `json:"name" yaml:"name"`
	URLTemplate string     `json:"url_template" yaml:"url"`
	Selector    string     `json:"selector,omitempty" yaml:"selector"`
	Kind        SourceKind `json:"kind,omitempty" yaml:"kind"`
}

// EffectiveKind returns the source kind, defaulting to KindHTML
func (s Source) EffectiveKind() SourceKind {
	if s.Kind == "" {
		return KindHTML
	}
	return s.Kind
}

// FetchResult is the raw outcome of fetching one source for one query
type FetchResult struct {
	SourceIndex int    `json:"source_index"`
	URL         string `json:"url"`
	Markup      string `json:"-"`
	StatusCode  int    `json:"status_code,omitempty"`
	Succeeded   bool   `json:"succeeded"`
}

// ExtractedText is the ordered list of fragments pulled from one source
type ExtractedText []string

// Joined returns the fragments separated by single spaces
func (e ExtractedText) Joined() string {
	return strings.Join(e, " ")
}

// GenerateID creates a short, stable ID by hashing the provided string input
func GenerateID(input string) string {
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])[:16]
}
