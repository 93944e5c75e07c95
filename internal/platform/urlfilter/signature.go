package urlfilter

import (
	"fmt"
	"net/netip"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// paramSchemes mirrors the schemes whose last path segment may carry ";params".
var paramSchemes = map[string]bool{
	"": true, "ftp": true, "hdl": true, "prospero": true, "http": true,
	"imap": true, "https": true, "shttp": true, "rtsp": true, "rtspu": true,
	"sip": true, "sips": true, "mms": true, "sftp": true, "tel": true,
}

// parsedURL holds the pieces of a URL the filter cares about.
type parsedURL struct {
	host  string // lowercased authority (userinfo@host:port)
	path  string // lowercased, still percent-encoded
	query string // raw query string
}

// parseURL splits rawURL into scheme, authority, path, query and fragment
// on the raw text. Percent escapes are neither
// validated nor decoded: "%2F" stays inside its segment and "50%off" is
// an ordinary path. Text without "//" after the scheme has no authority,
// so "127.0.0.1:8080/admin" is all path. The only error is an authority
// whose IPv6 brackets are unbalanced or enclose something that is not an
// IPv6 address.
func parseURL(rawURL string) (parsedURL, error) {
	rest := strings.TrimLeftFunc(rawURL, isC0OrSpace)
	rest = unsafeURLBytes.Replace(rest)

	var scheme string
	if i := strings.IndexByte(rest, ':'); i > 0 && isScheme(rest[:i]) {
		scheme = strings.ToLower(rest[:i])
		rest = rest[i+1:]
	}

	var authority string
	if strings.HasPrefix(rest, "//") {
		rest = rest[2:]
		end := strings.IndexAny(rest, "/?#")
		if end < 0 {
			end = len(rest)
		}
		authority, rest = rest[:end], rest[end:]
		if err := checkBrackets(authority); err != nil {
			return parsedURL{}, err
		}
	}

	if i := strings.IndexByte(rest, '#'); i >= 0 {
		rest = rest[:i]
	}
	p, query, _ := strings.Cut(rest, "?")
	if paramSchemes[scheme] {
		p = stripParams(p)
	}

	return parsedURL{
		host:  strings.ToLower(authority),
		path:  strings.ToLower(p),
		query: query,
	}, nil
}

// unsafeURLBytes are removed anywhere in the input before splitting.
var unsafeURLBytes = strings.NewReplacer("\t", "", "\r", "", "\n", "")

func isC0OrSpace(r rune) bool { return r <= ' ' }

// isScheme reports whether s is a scheme token: an ASCII letter followed
// by letters, digits, '+', '-' or '.'.
func isScheme(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case i > 0 && ('0' <= c && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return true
}

func checkBrackets(authority string) error {
	open, closing := strings.Contains(authority, "["), strings.Contains(authority, "]")
	if open != closing {
		return fmt.Errorf("invalid IPv6 authority %q", authority)
	}
	if !open {
		return nil
	}

	_, bracketed, _ := strings.Cut(authority, "[")
	host, _, _ := strings.Cut(bracketed, "]")
	if strings.HasPrefix(host, "v") || strings.HasPrefix(host, "V") {
		if !ipvFuture.MatchString(host) {
			return fmt.Errorf("invalid IPvFuture host %q", host)
		}
		return nil
	}
	if addr, err := netip.ParseAddr(host); err != nil || !addr.Is6() {
		return fmt.Errorf("invalid IPv6 host %q", host)
	}
	return nil
}

var ipvFuture = regexp.MustCompile(`^[vV][0-9A-Fa-f]+\.[A-Za-z0-9\-._~!$&'()*+,;=:]+$`)

// Hostname returns the lowercased host of rawURL without userinfo, port or
// IPv6 brackets. ok is false when rawURL has no host or cannot be split.
func Hostname(rawURL string) (string, bool) {
	parsed, err := parseURL(rawURL)
	if err != nil {
		return "", false
	}

	hostinfo := parsed.host
	if i := strings.LastIndexByte(hostinfo, '@'); i >= 0 {
		hostinfo = hostinfo[i+1:]
	}

	var host string
	if _, bracketed, ok := strings.Cut(hostinfo, "["); ok {
		host, _, _ = strings.Cut(bracketed, "]")
	} else {
		host, _, _ = strings.Cut(hostinfo, ":")
	}
	return host, host != ""
}

// stripParams drops a ";params" suffix from the last path segment.
func stripParams(p string) string {
	last := strings.LastIndexByte(p, '/')
	if i := strings.IndexByte(p[last+1:], ';'); i >= 0 {
		return p[:last+1+i]
	}
	return p
}

// Fingerprint is the sorted set of meaningful query keys of a URL.
// The zero value is the empty fingerprint.
type Fingerprint []string

// NewFingerprint builds a fingerprint from keys, deduplicating and sorting them.
func NewFingerprint(keys ...string) Fingerprint {
	if len(keys) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(keys))
	var fp Fingerprint
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		fp = append(fp, k)
	}
	sort.Strings(fp)
	return fp
}

// Key returns a canonical identity usable as a map key.
// Every key is prefixed with '&', which cannot occur inside a parsed key,
// so {} and {""} map to different identities.
func (f Fingerprint) Key() string {
	var b strings.Builder
	for _, k := range f {
		b.WriteByte('&')
		b.WriteString(k)
	}
	return b.String()
}

// Len returns the number of keys.
func (f Fingerprint) Len() int { return len(f) }

// String renders the fingerprint as "{a, b}".
func (f Fingerprint) String() string {
	return "{" + strings.Join(f, ", ") + "}"
}

// Signature is the endpoint identity of a URL together with its query shape.
type Signature struct {
	Key         string
	Fingerprint Fingerprint
	Score       float64
}

// Signer computes URL signatures.
type Signer struct {
	placeholder string
	longSegment int
	noise       map[string]bool
}

// NewSigner creates a signer from the engine configuration.
func NewSigner(cfg Config) *Signer {
	noise := make(map[string]bool, len(cfg.NoiseParams))
	for _, p := range cfg.NoiseParams {
		noise[strings.ToLower(p)] = true
	}

	return &Signer{
		placeholder: cfg.Placeholder,
		longSegment: cfg.LongSegment,
		noise:       noise,
	}
}

// Sign computes the signature of rawURL.
// A URL that fails to parse gets its raw text as key, an empty fingerprint
// and a zero score.
func (s *Signer) Sign(rawURL string) Signature {
	parsed, err := parseURL(rawURL)
	if err != nil {
		return Signature{Key: rawURL}
	}

	fp, score := s.analyzeQuery(parsed.query)
	return Signature{
		Key:         s.endpointKey(parsed),
		Fingerprint: fp,
		Score:       score,
	}
}

// endpointKey joins host and the templated path segments with '/'.
func (s *Signer) endpointKey(p parsedURL) string {
	segments := strings.Split(p.path, "/")
	parts := make([]string, 0, len(segments)+1)
	parts = append(parts, p.host)

	for _, seg := range segments {
		if seg == "" {
			continue
		}
		if s.isDynamic(seg) {
			seg = s.placeholder
		}
		parts = append(parts, seg)
	}

	return strings.Join(parts, "/")
}

// isDynamic reports whether seg looks like an identifier.
func (s *Signer) isDynamic(seg string) bool {
	return isDigits(seg) || utf8.RuneCountInString(seg) >= s.longSegment
}

// analyzeQuery extracts the fingerprint and score from a raw query.
// Pairs without '=' are ignored and the first '=' splits key from value.
func (s *Signer) analyzeQuery(query string) (Fingerprint, float64) {
	if query == "" {
		return nil, 0
	}

	var (
		keys  []string
		score float64
	)
	for _, pair := range strings.Split(query, "&") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key = strings.ToLower(key)
		if s.noise[key] {
			continue
		}
		keys = append(keys, key)
		score += ScoreValue(value)
	}

	return NewFingerprint(keys...), score
}

// ScoreValue weighs a single query value. Values carrying structural
// punctuation score highest since they tend to exercise parsers.
func ScoreValue(value string) float64 {
	switch {
	case value == "":
		return 0
	case isDigits(value):
		return 1
	case strings.ContainsAny(value, "[]{}()|,;"):
		return 2
	case utf8.RuneCountInString(value) > 20:
		return 1.5
	default:
		return 1
	}
}

// digitNumbers holds the code points with Numeric_Type=Digit that are not
// decimal digits (Nd): superscripts, subscripts, circled and parenthesized
// digits and the like.
var digitNumbers = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x00b2, Hi: 0x00b3, Stride: 1},
		{Lo: 0x00b9, Hi: 0x00b9, Stride: 1},
		{Lo: 0x1369, Hi: 0x1371, Stride: 1},
		{Lo: 0x19da, Hi: 0x19da, Stride: 1},
		{Lo: 0x2070, Hi: 0x2070, Stride: 1},
		{Lo: 0x2074, Hi: 0x2079, Stride: 1},
		{Lo: 0x2080, Hi: 0x2089, Stride: 1},
		{Lo: 0x2460, Hi: 0x2468, Stride: 1},
		{Lo: 0x2474, Hi: 0x247c, Stride: 1},
		{Lo: 0x2488, Hi: 0x2490, Stride: 1},
		{Lo: 0x24ea, Hi: 0x24ea, Stride: 1},
		{Lo: 0x24f5, Hi: 0x24fd, Stride: 1},
		{Lo: 0x24ff, Hi: 0x24ff, Stride: 1},
		{Lo: 0x2776, Hi: 0x277e, Stride: 1},
		{Lo: 0x2780, Hi: 0x2788, Stride: 1},
		{Lo: 0x278a, Hi: 0x2792, Stride: 1},
	},
	R32: []unicode.Range32{
		{Lo: 0x10a40, Hi: 0x10a43, Stride: 1},
		{Lo: 0x10e60, Hi: 0x10e68, Stride: 1},
		{Lo: 0x11052, Hi: 0x1105a, Stride: 1},
		{Lo: 0x1e8c7, Hi: 0x1e8cf, Stride: 1},
		{Lo: 0x1f100, Hi: 0x1f10a, Stride: 1},
	},
	LatinOffset: 2,
}

// isDigits reports whether s is non-empty and every rune is a digit,
// decimal or not ("42", "١٢", "²", "①").
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) && !unicode.Is(digitNumbers, r) {
			return false
		}
	}
	return true
}
