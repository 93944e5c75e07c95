package urlfilter

import (
	"sort"
	"strings"
	"sync"
	"unicode"
)

// ExtensionSet is the user-managed set of static-asset suffixes.
// Members are stored normalized: trimmed, lowercased and dot-prefixed.
type ExtensionSet struct {
	mu   sync.RWMutex
	exts map[string]struct{}
}

// NewExtensionSet creates a set holding the given extensions, normalized.
func NewExtensionSet(exts ...string) *ExtensionSet {
	s := &ExtensionSet{exts: make(map[string]struct{}, len(exts))}
	for _, ext := range exts {
		if norm, ok := NormalizeExtension(ext); ok {
			s.exts[norm] = struct{}{}
		}
	}
	return s
}

// NormalizeExtension trims, lowercases and dot-prefixes ext.
// It reports false for blank input.
func NormalizeExtension(ext string) (string, bool) {
	ext = strings.TrimSpace(ext)
	if ext == "" {
		return "", false
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return strings.ToLower(ext), true
}

// SplitExtensions splits batch input on any run of whitespace, commas or semicolons.
func SplitExtensions(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ';' || unicode.IsSpace(r)
	})
}

// Add inserts one extension. It reports whether the set changed.
func (s *ExtensionSet) Add(ext string) bool {
	norm, ok := NormalizeExtension(ext)
	if !ok {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.exts[norm]; exists {
		return false
	}
	s.exts[norm] = struct{}{}
	return true
}

// AddBatch inserts every extension found in text and returns how many were new.
func (s *ExtensionSet) AddBatch(text string) int {
	added := 0
	for _, ext := range SplitExtensions(text) {
		if s.Add(ext) {
			added++
		}
	}
	return added
}

// Remove deletes one extension. It reports whether the set changed.
func (s *ExtensionSet) Remove(ext string) bool {
	norm, ok := NormalizeExtension(ext)
	if !ok {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.exts[norm]; !exists {
		return false
	}
	delete(s.exts, norm)
	return true
}

// RemoveBatch deletes every extension found in text and returns how many were present.
func (s *ExtensionSet) RemoveBatch(text string) int {
	removed := 0
	for _, ext := range SplitExtensions(text) {
		if s.Remove(ext) {
			removed++
		}
	}
	return removed
}

// Clear empties the set.
func (s *ExtensionSet) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exts = make(map[string]struct{})
}

// Contains reports whether ext (normalized) is in the set.
func (s *ExtensionSet) Contains(ext string) bool {
	norm, ok := NormalizeExtension(ext)
	if !ok {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.exts[norm]
	return exists
}

// Len returns the number of extensions.
func (s *ExtensionSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.exts)
}

// Sorted returns the extensions in lexical order for display.
func (s *ExtensionSet) Sorted() []string {
	s.mu.RLock()
	out := make([]string, 0, len(s.exts))
	for ext := range s.exts {
		out = append(out, ext)
	}
	s.mu.RUnlock()

	sort.Strings(out)
	return out
}

// Snapshot returns an independent copy. Runs read a snapshot taken at start,
// so later edits do not affect an in-flight run.
func (s *ExtensionSet) Snapshot() *ExtensionSet {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cp := &ExtensionSet{exts: make(map[string]struct{}, len(s.exts))}
	for ext := range s.exts {
		cp.exts[ext] = struct{}{}
	}
	return cp
}

// Check reports whether rawURL should be kept: false iff its lowercased path
// ends with a member of the set. A URL that cannot be parsed returns an error;
// callers drop it.
func (s *ExtensionSet) Check(rawURL string) (bool, error) {
	parsed, err := parseURL(rawURL)
	if err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for ext := range s.exts {
		if strings.HasSuffix(parsed.path, ext) {
			return false, nil
		}
	}
	return true, nil
}

// Keep is Check with parse failures folded into "drop".
func (s *ExtensionSet) Keep(rawURL string) bool {
	keep, err := s.Check(rawURL)
	return err == nil && keep
}
