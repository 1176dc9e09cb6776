package entrez

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, retries int, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(Config{
		BaseURL: srv.URL,
		Email:   "dev@example.org",
		Retries: retries,
	})
	return client, srv
}

func TestSearch_ParsesCountAndHistoryHandle(t *testing.T) {
	client, _ := newTestClient(t, 3, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/esearch.fcgi" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("email") != "dev@example.org" {
			t.Errorf("expected contact email on request, got %q", q.Get("email"))
		}
		if q.Get("tool") == "" {
			t.Error("expected tool name on request")
		}
		if q.Get("usehistory") != "y" {
			t.Errorf("expected usehistory=y, got %q", q.Get("usehistory"))
		}
		fmt.Fprint(w, `{"esearchresult":{"count":"3","webenv":"WE1","querykey":"1","idlist":["101","102","103"]}}`)
	})

	res, err := client.Search("assembly", "txid203804[Organism:exp]")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if res.Count != 3 || res.WebEnv != "WE1" || res.QueryKey != "1" {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(res.IDs) != 3 {
		t.Fatalf("expected 3 ids, got %d", len(res.IDs))
	}
}

func TestWithRetry_RecoversFromTransientFailure(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, 5, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"esearchresult":{"count":"0","webenv":"WE","querykey":"1","idlist":[]}}`)
	})

	if _, err := client.Search("assembly", "txid1[Organism:exp]"); err != nil {
		t.Fatalf("expected recovery on third attempt: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestWithRetry_ExhaustionIsFatal(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, 4, func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "down", http.StatusInternalServerError)
	})

	_, err := client.Search("assembly", "txid1[Organism:exp]")
	if err == nil {
		t.Fatal("expected fatal error after exhaustion")
	}
	if !IsFatal(err) {
		t.Fatalf("expected FatalError, got %T: %v", err, err)
	}
	if calls != 4 {
		t.Fatalf("expected exactly 4 attempts, got %d", calls)
	}
}

func TestWithRetry_MalformedResponseRetriedLikeNetworkError(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, 2, func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"truncated`)
	})

	if _, err := client.Search("assembly", "txid1[Organism:exp]"); !IsFatal(err) {
		t.Fatalf("expected fatal after malformed responses, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls)
	}
}

func TestLinks_ParsesCategories(t *testing.T) {
	client, _ := newTestClient(t, 1, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/elink.fcgi" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"linksets":[{"dbfrom":"assembly","ids":["440"],"linksetdbs":[
			{"dbto":"nuccore","linkname":"assembly_nuccore_insdc","links":["1","2","3"]},
			{"dbto":"nuccore","linkname":"assembly_nuccore_wgsmaster","links":["9"]}]}]}`)
	})

	sets, err := client.Links("assembly", "nuccore", "440")
	if err != nil {
		t.Fatalf("links: %v", err)
	}
	if len(sets) != 2 {
		t.Fatalf("expected 2 link categories, got %d", len(sets))
	}
	if sets[0].LinkName != "assembly_nuccore_insdc" || len(sets[0].Links) != 3 {
		t.Fatalf("unexpected first category %+v", sets[0])
	}
}

func TestFetchAssemblySummary_StrainFallsBackToEmpty(t *testing.T) {
	client, _ := newTestClient(t, 1, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"result":{"uids":["440"],"440":{
			"assemblyaccession":"GCA_000011605.1",
			"assemblyname":"ASM1160v1",
			"speciesname":"Pectobacterium atrosepticum",
			"speciestaxid":"29471",
			"biosource":{"infraspecieslist":[]}}}}`)
	})

	s, err := client.FetchAssemblySummary("440")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if s.AssemblyAccession != "GCA_000011605.1" {
		t.Fatalf("unexpected accession %q", s.AssemblyAccession)
	}
	if s.Strain() != "" {
		t.Fatalf("expected empty strain, got %q", s.Strain())
	}
}

func TestFetchFASTA_PostsLargeIDListInBody(t *testing.T) {
	ids := make([]string, 50000)
	for i := range ids {
		ids[i] = strconv.Itoa(i + 1)
	}

	client, _ := newTestClient(t, 1, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/efetch.fcgi" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("bulk id list must be posted, got %s", r.Method)
		}
		if r.URL.RawQuery != "" {
			t.Errorf("id list leaked into query string: %d bytes", len(r.URL.RawQuery))
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		got := strings.Split(r.PostForm.Get("id"), ",")
		if len(got) != len(ids) {
			t.Errorf("expected %d posted ids, got %d", len(ids), len(got))
		}
		if r.PostForm.Get("email") != "dev@example.org" || r.PostForm.Get("tool") == "" {
			t.Error("expected identifying email and tool in posted form")
		}
		if r.PostForm.Get("rettype") != "fasta" || r.PostForm.Get("retmax") != "10000" {
			t.Errorf("unexpected fetch parameters %v", r.PostForm)
		}
		fmt.Fprint(w, ">SEQ1 contig\nACGT\n")
	})

	body, err := client.FetchFASTA("nuccore", ids, 0, 10000)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !strings.HasPrefix(string(body), ">SEQ1") {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestFetchNuccoreSummary_CarriesExtra(t *testing.T) {
	client, _ := newTestClient(t, 1, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"result":{"uids":["9"],"9":{"caption":"ABCD01000000","extra":"gi|555|emb|ABCD01000000.4|ABCD01000000"}}}`)
	})

	s, err := client.FetchNuccoreSummary("9")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if s.Extra != "gi|555|emb|ABCD01000000.4|ABCD01000000" {
		t.Fatalf("unexpected extra %q", s.Extra)
	}
}
