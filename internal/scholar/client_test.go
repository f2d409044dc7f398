package scholar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearchPapers(t *testing.T) {
	var gotQuery, gotLimit, gotFields string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/paper/search" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		gotQuery, gotLimit, gotFields = q.Get("query"), q.Get("limit"), q.Get("fields")
		w.Write([]byte(`{"data": [
			{"title": "BERT", "year": 2018, "authors": [{"name": "Devlin"}], "venue": "NAACL"},
			{"title": "GPT", "year": 2018}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, RequestsPerSecond: 100}, nil)
	papers, err := c.SearchPapers(context.Background(), "attention", 8)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if gotQuery != "attention" || gotLimit != "8" {
		t.Errorf("query params = %q %q", gotQuery, gotLimit)
	}
	if gotFields != searchFields {
		t.Errorf("fields = %q", gotFields)
	}
	if len(papers) != 2 {
		t.Fatalf("papers = %d, want 2", len(papers))
	}
	if papers[0].Title != "BERT" || papers[0].Authors[0].Name != "Devlin" {
		t.Errorf("paper = %+v", papers[0])
	}
}

func TestSearchPapersError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "rate limit exceeded"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, RequestsPerSecond: 100}, nil)
	if _, err := c.SearchPapers(context.Background(), "attention", 8); err == nil {
		t.Fatal("expected error on 429")
	}
}

func TestPaperByID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/paper/abc123" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("fields"); got != searchFields {
			t.Errorf("fields = %q", got)
		}
		w.Write([]byte(`{"title": "BERT", "year": 2019, "venue": "NAACL", "citationCount": 90000}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, RequestsPerSecond: 100}, nil)
	p, err := c.Paper(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("paper: %v", err)
	}
	if p.Title != "BERT" || p.CitationCount != 90000 {
		t.Errorf("paper = %+v", p)
	}
}

func TestCitationsUnwrap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/paper/abc123/citations" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"data": [
			{"citingPaper": {"title": "RoBERTa", "year": 2019}},
			{"citingPaper": {"title": "ALBERT", "year": 2019}}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, RequestsPerSecond: 100}, nil)
	papers, err := c.Citations(context.Background(), "abc123", 10)
	if err != nil {
		t.Fatalf("citations: %v", err)
	}
	if len(papers) != 2 || papers[0].Title != "RoBERTa" {
		t.Errorf("papers = %+v", papers)
	}
}

func TestCancelledContext(t *testing.T) {
	c := NewClient(Config{RequestsPerSecond: 0.001}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.SearchPapers(ctx, "attention", 1); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
