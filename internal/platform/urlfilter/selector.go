package urlfilter

import "sort"

// Selector picks the representatives of a group.
type Selector struct {
	window    int
	maxShapes int
}

// NewSelector creates a selector ranking at most window members and
// emitting at most maxShapes distinct fingerprints.
func NewSelector(window, maxShapes int) *Selector {
	if window < 1 {
		window = DefaultRankWindow
	}
	if maxShapes < 1 {
		maxShapes = DefaultMaxShapes
	}
	return &Selector{window: window, maxShapes: maxShapes}
}

// Rank orders the first window members by fingerprint size, then score,
// both descending. Ties keep arrival order.
func (s *Selector) Rank(members []Member) []Member {
	if len(members) > s.window {
		members = members[:s.window]
	}

	ranked := make([]Member, len(members))
	copy(ranked, members)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Fingerprint.Len() != ranked[j].Fingerprint.Len() {
			return ranked[i].Fingerprint.Len() > ranked[j].Fingerprint.Len()
		}
		return ranked[i].Score > ranked[j].Score
	})

	return ranked
}

// Select walks the ranked members and keeps the first URL of each new
// fingerprint until maxShapes fingerprints are taken.
func (s *Selector) Select(g *Group) []string {
	ranked := s.Rank(g.Members)

	seen := make(map[string]struct{}, s.maxShapes)
	out := make([]string, 0, min(s.maxShapes, len(ranked)))

	for _, m := range ranked {
		if len(seen) >= s.maxShapes {
			break
		}
		key := m.Fingerprint.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, m.URL)
	}

	return out
}
