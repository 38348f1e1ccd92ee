package cache

import (
	"context"
	"strings"
	"testing"
)

func TestKeyDeterministic(t *testing.T) {
	k1 := Key("embedding", "some text")
	k2 := Key("embedding", "some text")
	if k1 != k2 {
		t.Errorf("same payload produced different keys: %q vs %q", k1, k2)
	}
	if !strings.HasPrefix(k1, "embedding:") {
		t.Errorf("expected 'embedding:' prefix, got %q", k1)
	}
}

func TestKeyDistinguishesPurpose(t *testing.T) {
	if Key("embedding", "x") == Key("report", "x") {
		t.Error("different purposes must produce different keys")
	}
}

func TestReportPayloadSortsURLs(t *testing.T) {
	a := reportPayload("q", []string{"https://b.com", "https://a.com"})
	b := reportPayload("q", []string{"https://a.com", "https://b.com"})
	if a != b {
		t.Errorf("URL order should not affect the payload: %q vs %q", a, b)
	}
}

func TestReportPayloadDoesNotMutateInput(t *testing.T) {
	urls := []string{"https://b.com", "https://a.com"}
	reportPayload("q", urls)
	if urls[0] != "https://b.com" {
		t.Error("reportPayload must not reorder the caller's slice")
	}
}

func TestNoopCacheAlwaysMisses(t *testing.T) {
	var c Cache = NoopCache{}
	ctx := context.Background()

	if err := c.SetEmbedding(ctx, "text", []float32{1, 2}); err != nil {
		t.Fatalf("SetEmbedding: %v", err)
	}
	_, ok, err := c.GetEmbedding(ctx, "text")
	if err != nil {
		t.Fatalf("GetEmbedding: %v", err)
	}
	if ok {
		t.Error("noop cache should never report a hit")
	}

	if err := c.SetReport(ctx, "q", []string{"u"}, "report"); err != nil {
		t.Fatalf("SetReport: %v", err)
	}
	_, ok, err = c.GetReport(ctx, "q", []string{"u"})
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if ok {
		t.Error("noop cache should never report a hit")
	}
}
