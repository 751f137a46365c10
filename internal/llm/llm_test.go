package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"

	"github.com/cesargomez89/scoutfeed/internal/logger"
)

func TestHashInputDeterministic(t *testing.T) {
	in := DNAInput{LabelName: "Night Bloom", GenreTags: []string{"ambient", "idm"}}
	if HashInput(in) != HashInput(in) {
		t.Error("same input should hash identically")
	}
	other := in
	other.LabelName = "Day Bloom"
	if HashInput(in) == HashInput(other) {
		t.Error("different inputs should hash differently")
	}
}

func TestFallbackDNA(t *testing.T) {
	dna := FallbackDNA("Night Bloom", 3)
	if len(dna.ClusterNames) != 3 {
		t.Fatalf("cluster names = %v, want 3", dna.ClusterNames)
	}
	if dna.ClusterNames[0] != "Cluster 1" || dna.ClusterNames[2] != "Cluster 3" {
		t.Errorf("cluster names = %v", dna.ClusterNames)
	}
	if len(dna.SeedQueries) == 0 {
		t.Error("fallback should include a seed query")
	}
}

func TestDisabledReturnsUnavailable(t *testing.T) {
	var svc Service = Disabled{}
	if _, err := svc.GenerateLabelDNA(context.Background(), DNAInput{}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
	if _, err := svc.GenerateBrief(context.Background(), BriefInput{}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestStripFences(t *testing.T) {
	fenced := "```json\n{\"a\":1}\n```"
	if got := stripFences(fenced); got != "{\"a\":1}" {
		t.Errorf("stripFences = %q", got)
	}
	plain := "{\"a\":1}"
	if got := stripFences(plain); got != plain {
		t.Errorf("stripFences altered plain content: %q", got)
	}
}

func chatReply(t *testing.T, content string) []byte {
	t.Helper()
	reply := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
	data, err := json.Marshal(reply)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestOpenAIClientGenerateLabelDNA(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("auth header = %q", auth)
		}
		w.Write(chatReply(t, `{"cluster_names":["Hazy Bedroom Pop"],"label_thesis_bullets":["lo-fi first"],"search_seed_queries":["bedroom pop 2026"]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(srv.URL, "test-key", "test-model", logger.Default())
	dna, err := c.GenerateLabelDNA(context.Background(), DNAInput{LabelName: "Night Bloom"})
	if err != nil {
		t.Fatalf("GenerateLabelDNA: %v", err)
	}
	if len(dna.ClusterNames) != 1 || dna.ClusterNames[0] != "Hazy Bedroom Pop" {
		t.Errorf("cluster names = %v", dna.ClusterNames)
	}
	if len(dna.SeedQueries) != 1 {
		t.Errorf("seed queries = %v", dna.SeedQueries)
	}
}

func TestOpenAIClientUnavailableOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewOpenAIClient(srv.URL, "test-key", "test-model", logger.Default())
	if _, err := c.GenerateBrief(context.Background(), BriefInput{ArtistName: "x"}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestOpenAIClientFencedReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(chatReply(t, "```json\n{\"queries\":[\"emerging ambient live session\"]}\n```"))
	}))
	defer srv.Close()

	c := NewOpenAIClient(srv.URL, "test-key", "test-model", logger.Default())
	queries, err := c.ExpandQueries(context.Background(), FallbackDNA("Night Bloom", 2), "Night Bloom")
	if err != nil {
		t.Fatalf("ExpandQueries: %v", err)
	}
	if len(queries) != 1 || queries[0] != "emerging ambient live session" {
		t.Errorf("queries = %v", queries)
	}
}
