package urlfilter

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"urlsift/internal/platform/errors"
	"urlsift/internal/platform/logx"
)

func newTestEngine(mutate func(*Config)) *Engine {
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	return NewEngine(cfg, logx.NewNop())
}

func TestEngine_EndToEnd(t *testing.T) {
	engine := newTestEngine(nil)

	urls := CleanLines(`
https://a.com/user/123
https://a.com/user/456?id=1&name=x

https://a.com/logo.png
https://a.com/user/789?id=2&name=y
`)

	got, stats, err := engine.Run(context.Background(), urls, NewExtensionSet(DefaultStaticExtensions...), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		"https://a.com/user/456?id=1&name=x",
		"https://a.com/user/123",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Run() mismatch (-want +got):\n%s", diff)
	}

	if stats.InputURLs != 4 {
		t.Errorf("expected 4 input URLs, got %d", stats.InputURLs)
	}
	if stats.ExtensionFiltered != 1 {
		t.Errorf("expected 1 extension-filtered URL, got %d", stats.ExtensionFiltered)
	}
	if stats.Grouped != 3 || stats.Groups != 1 {
		t.Errorf("expected 3 URLs in 1 group, got %d in %d", stats.Grouped, stats.Groups)
	}
	if stats.Representatives != 2 {
		t.Errorf("expected 2 representatives, got %d", stats.Representatives)
	}

	t.Logf("Filter Stats: %s", stats.String())
}

func TestEngine_GroupOrder(t *testing.T) {
	engine := newTestEngine(nil)

	urls := []string{
		"https://b.com/x/1",
		"https://a.com/y",
		"https://b.com/x/2?q=1",
		"https://c.com/",
	}

	got, _, err := engine.Run(context.Background(), urls, NewExtensionSet(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		"https://b.com/x/2?q=1",
		"https://b.com/x/1",
		"https://a.com/y",
		"https://c.com/",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Run() mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_Progress(t *testing.T) {
	engine := newTestEngine(func(c *Config) { c.BatchSize = 2 })

	urls := []string{
		"https://a.com/1",
		"https://a.com/2",
		"https://b.com/",
		"https://c.com/",
		"https://a.com/logo.png",
	}

	var got []Progress
	_, _, err := engine.Run(context.Background(), urls, NewExtensionSet(".png"), func(p Progress) {
		got = append(got, p)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []Progress{
		{Stage: StageFilter, Processed: 2, Total: 5},
		{Stage: StageFilter, Processed: 4, Total: 5},
		{Stage: StageFilter, Processed: 5, Total: 5},
		{Stage: StageSelect, Processed: 1, Total: 3},
		{Stage: StageSelect, Processed: 2, Total: 3},
		{Stage: StageSelect, Processed: 3, Total: 3},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("progress mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_CancelledBeforeStart(t *testing.T) {
	engine := newTestEngine(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, _, err := engine.Run(ctx, []string{"https://a.com/"}, nil, nil)
	if !errors.IsCancelled(err) {
		t.Fatalf("expected cancellation error, got %v", err)
	}
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("error should also match context.Canceled, got %v", err)
	}
	if got != nil {
		t.Errorf("cancelled run must not return URLs, got %v", got)
	}
}

func TestEngine_CancelledBetweenBatches(t *testing.T) {
	engine := newTestEngine(func(c *Config) { c.BatchSize = 10 })

	urls := make([]string, 100)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://example.com/page%d", i)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reports := 0
	got, stats, err := engine.Run(ctx, urls, nil, func(p Progress) {
		reports++
		cancel()
	})

	if !errors.IsCancelled(err) {
		t.Fatalf("expected cancellation error, got %v", err)
	}
	if got != nil {
		t.Errorf("cancelled run must not return URLs, got %d", len(got))
	}
	if reports != 1 {
		t.Errorf("expected exactly 1 progress report before cancellation, got %d", reports)
	}
	if stats.Grouped != 10 {
		t.Errorf("expected the first batch to be processed, got %d", stats.Grouped)
	}
}

func TestEngine_CancelledDuringSelection(t *testing.T) {
	engine := newTestEngine(nil)

	urls := []string{"https://a.com/", "https://b.com/", "https://c.com/"}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, _, err := engine.Run(ctx, urls, nil, func(p Progress) {
		if p.Stage == StageSelect {
			cancel()
		}
	})
	if !errors.IsCancelled(err) {
		t.Fatalf("expected cancellation error, got %v", err)
	}
}

func TestEngine_UnparseableURLs(t *testing.T) {
	engine := newTestEngine(nil)

	urls := []string{
		"http://[::1/x",
		"https://a.com/ok",
		"http://[not-ipv6]/",
	}

	got, stats, err := engine.Run(context.Background(), urls, NewExtensionSet(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if diff := cmp.Diff([]string{"https://a.com/ok"}, got); diff != "" {
		t.Errorf("Run() mismatch (-want +got):\n%s", diff)
	}
	if stats.Unparseable != 2 {
		t.Errorf("expected 2 unparseable URLs, got %d", stats.Unparseable)
	}
}

func TestEngine_LenientURLsAreKept(t *testing.T) {
	engine := newTestEngine(nil)

	urls := []string{
		"https://a.com/sale/50%off?id=1",
		"https://a.com/search?q=100%",
		"https://a.com/a b/c?x=1",
		"127.0.0.1:8080/admin?id=1",
		"http://a.com/%zz/x",
	}

	got, stats, err := engine.Run(context.Background(), urls, NewExtensionSet(DefaultStaticExtensions...), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if diff := cmp.Diff(urls, got); diff != "" {
		t.Errorf("Run() mismatch (-want +got):\n%s", diff)
	}
	if stats.Unparseable != 0 {
		t.Errorf("expected no unparseable URLs, got %d", stats.Unparseable)
	}
	if stats.Groups != len(urls) {
		t.Errorf("expected %d groups, got %d", len(urls), stats.Groups)
	}
}

func TestEngine_EmptyInput(t *testing.T) {
	engine := newTestEngine(nil)

	calls := 0
	got, stats, err := engine.Run(context.Background(), nil, nil, func(Progress) { calls++ })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 || stats.Groups != 0 || calls != 0 {
		t.Errorf("expected empty result without progress, got %v groups=%d calls=%d", got, stats.Groups, calls)
	}
}

func TestEngine_OverflowMembersAreCounted(t *testing.T) {
	engine := newTestEngine(func(c *Config) { c.RankWindow = 3 })

	urls := make([]string, 0, 5)
	for i := 0; i < 4; i++ {
		urls = append(urls, fmt.Sprintf("https://a.com/item/%d", i))
	}
	// Arrives after the window is full, so its richer shape is never ranked.
	urls = append(urls, "https://a.com/item/9?a=1&b=2")

	got, stats, err := engine.Run(context.Background(), urls, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if diff := cmp.Diff([]string{"https://a.com/item/0"}, got); diff != "" {
		t.Errorf("Run() mismatch (-want +got):\n%s", diff)
	}
	if stats.RankedMembers != 3 || stats.OverflowMembers != 2 {
		t.Errorf("expected 3 ranked and 2 overflow, got %d and %d", stats.RankedMembers, stats.OverflowMembers)
	}
}

func TestEngine_InvalidConfigFallsBack(t *testing.T) {
	engine := NewEngine(Config{}, nil)

	if diff := cmp.Diff(DefaultConfig(), engine.Config()); diff != "" {
		t.Errorf("expected default config (-want +got):\n%s", diff)
	}
}

func TestEngine_LargeDataset(t *testing.T) {
	engine := newTestEngine(nil)

	urls := make([]string, 0, 5000)
	for i := 0; i < 5000; i++ {
		urls = append(urls, fmt.Sprintf("https://example.com/api/users/%d?page=%d", i, i%7))
	}

	got, stats, err := engine.Run(context.Background(), urls, NewExtensionSet(DefaultStaticExtensions...), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got) != 1 {
		t.Errorf("expected one representative for one shape, got %d", len(got))
	}
	if stats.ReductionRatio() < 99 {
		t.Errorf("expected >99%% reduction, got %.2f", stats.ReductionRatio())
	}
}

func TestProgress_Percent(t *testing.T) {
	tests := []struct {
		p    Progress
		want float64
	}{
		{Progress{Processed: 1, Total: 4}, 25},
		{Progress{Processed: 4, Total: 4}, 100},
		{Progress{}, 100},
	}

	for _, tt := range tests {
		if got := tt.p.Percent(); got != tt.want {
			t.Errorf("Percent(%+v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestCleanLines(t *testing.T) {
	got := CleanLines("  https://a.com \r\n\n\thttps://b.com\n   \n")
	want := []string{"https://a.com", "https://b.com"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CleanLines() mismatch (-want +got):\n%s", diff)
	}

	if CleanLines(" \n\n ") != nil {
		t.Error("blank text should produce no lines")
	}
}

func TestEngine_CollapsesIdenticalShapes(t *testing.T) {
	engine := newTestEngine(nil)

	urls := []string{
		"http://a.com/user/123?x=1",
		"http://a.com/user/456?x=2",
		"http://a.com/logo.png",
	}

	got, _, err := engine.Run(context.Background(), urls, NewExtensionSet(".png"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if diff := cmp.Diff([]string{"http://a.com/user/123?x=1"}, got); diff != "" {
		t.Errorf("Run() mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_SingleShapeManyURLs(t *testing.T) {
	engine := newTestEngine(nil)

	urls := make([]string, 0, 50)
	for i := 0; i < 50; i++ {
		urls = append(urls, fmt.Sprintf("https://a.com/post/%d?lang=en", i))
	}

	got, _, err := engine.Run(context.Background(), urls, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected 1 representative, got %d: %v", len(got), got)
	}
}

func TestEngine_SignatureIsStable(t *testing.T) {
	signer := NewSigner(DefaultConfig())

	for _, u := range []string{
		"https://a.com/user/123?id=1&name=x",
		"http://x.com/%zz",
		"http://[::1",
		"https://a.com/a/b.JPG",
	} {
		if diff := cmp.Diff(signer.Sign(u), signer.Sign(u)); diff != "" {
			t.Errorf("Sign(%q) not idempotent:\n%s", u, diff)
		}
	}
}
