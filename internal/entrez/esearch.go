package entrez

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// SearchResult is the outcome of an initial history-backed esearch: the total
// hit count plus the server-side result handle for paging.
type SearchResult struct {
	Count    int
	WebEnv   string
	QueryKey string
	IDs      []string
}

type esearchEnvelope struct {
	Result esearchResult `json:"esearchresult"`
}

type esearchResult struct {
	Count     string   `json:"count"`
	WebEnv    string   `json:"webenv"`
	QueryKey  string   `json:"querykey"`
	IDList    []string `json:"idlist"`
	ErrorList *struct {
		PhraseNotFound []string `json:"phrasesnotfound"`
	} `json:"errorlist"`
}

// Search issues the initial esearch for term against db with usehistory=y.
func (c *Client) Search(db, term string) (SearchResult, error) {
	var out SearchResult
	err := c.withRetry("esearch", func() error {
		params := url.Values{}
		params.Set("db", db)
		params.Set("term", term)
		params.Set("usehistory", "y")
		params.Set("retmode", "json")

		body, err := c.get("esearch.fcgi", params)
		if err != nil {
			return err
		}
		var env esearchEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			return fmt.Errorf("parse esearch response: %w", err)
		}
		if strings.TrimSpace(env.Result.Count) == "" {
			return fmt.Errorf("esearch response missing count")
		}
		count, err := strconv.Atoi(env.Result.Count)
		if err != nil {
			return fmt.Errorf("esearch count %q: %w", env.Result.Count, err)
		}
		out = SearchResult{
			Count:    count,
			WebEnv:   env.Result.WebEnv,
			QueryKey: env.Result.QueryKey,
			IDs:      env.Result.IDList,
		}
		return nil
	})
	if err != nil {
		return SearchResult{}, err
	}
	return out, nil
}

// SearchPage fetches one fixed-size page of UIDs from a prior history-backed
// search.
func (c *Client) SearchPage(db, term, webEnv, queryKey string, retStart, retMax int) ([]string, error) {
	var ids []string
	err := c.withRetry("esearch.page", func() error {
		params := url.Values{}
		params.Set("db", db)
		params.Set("term", term)
		params.Set("WebEnv", webEnv)
		params.Set("query_key", queryKey)
		params.Set("retstart", strconv.Itoa(retStart))
		params.Set("retmax", strconv.Itoa(retMax))
		params.Set("retmode", "json")

		body, err := c.get("esearch.fcgi", params)
		if err != nil {
			return err
		}
		var env esearchEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			return fmt.Errorf("parse esearch page: %w", err)
		}
		ids = env.Result.IDList
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}
