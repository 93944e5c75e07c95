package urlfilter

// Member is one URL inside a group.
type Member struct {
	URL         string
	Fingerprint Fingerprint
	Score       float64
}

// Group collects the URLs sharing a signature key.
// Only the first window arrivals are retained; the rest are counted.
type Group struct {
	Key     string
	Members []Member
	Total   int
}

// Overflow returns how many arrivals were counted but not retained.
func (g *Group) Overflow() int {
	return g.Total - len(g.Members)
}

// Grouper buckets URLs by signature key, keeping first-seen group order.
type Grouper struct {
	window int
	order  []*Group
	index  map[string]*Group
}

// NewGrouper creates a grouper retaining at most window members per group.
func NewGrouper(window int) *Grouper {
	if window < 1 {
		window = DefaultRankWindow
	}
	return &Grouper{
		window: window,
		index:  make(map[string]*Group),
	}
}

// Add places url into the group for sig.Key.
func (g *Grouper) Add(url string, sig Signature) {
	grp, ok := g.index[sig.Key]
	if !ok {
		grp = &Group{Key: sig.Key}
		g.index[sig.Key] = grp
		g.order = append(g.order, grp)
	}

	grp.Total++
	if len(grp.Members) < g.window {
		grp.Members = append(grp.Members, Member{
			URL:         url,
			Fingerprint: sig.Fingerprint,
			Score:       sig.Score,
		})
	}
}

// Groups returns groups in the order their first member arrived.
func (g *Grouper) Groups() []*Group {
	return g.order
}

// Len returns the number of groups.
func (g *Grouper) Len() int {
	return len(g.order)
}
