package entrez

import (
	"encoding/json"
	"fmt"
	"net/url"
)

// AssemblySummary is the subset of an assembly-db esummary record the
// pipeline consumes.
type AssemblySummary struct {
	AssemblyAccession string `json:"assemblyaccession"`
	AssemblyName      string `json:"assemblyname"`
	SpeciesName       string `json:"speciesname"`
	Organism          string `json:"organism"`
	SpeciesTaxid      string `json:"speciestaxid"`
	Biosource         struct {
		InfraspeciesList []struct {
			SubType  string `json:"sub_type"`
			SubValue string `json:"sub_value"`
		} `json:"infraspecieslist"`
	} `json:"biosource"`
}

// Strain returns the first infraspecies sub-value, or "" when absent.
func (s AssemblySummary) Strain() string {
	if len(s.Biosource.InfraspeciesList) == 0 {
		return ""
	}
	return s.Biosource.InfraspeciesList[0].SubValue
}

// NuccoreSummary is the subset of a nuccore-db esummary record used to derive
// the WGS archive reference. Extra is a semi-structured '|'-separated
// annotation string maintained by the repository.
type NuccoreSummary struct {
	Caption string `json:"caption"`
	Extra   string `json:"extra"`
}

type esummaryEnvelope struct {
	Result map[string]json.RawMessage `json:"result"`
}

func (c *Client) summary(db, uid string, v any) error {
	return c.withRetry("esummary", func() error {
		params := url.Values{}
		params.Set("db", db)
		params.Set("id", uid)
		params.Set("retmode", "json")

		body, err := c.get("esummary.fcgi", params)
		if err != nil {
			return err
		}
		var env esummaryEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			return fmt.Errorf("parse esummary response: %w", err)
		}
		raw, ok := env.Result[uid]
		if !ok {
			return fmt.Errorf("esummary response missing record for uid %s", uid)
		}
		if err := json.Unmarshal(raw, v); err != nil {
			return fmt.Errorf("parse esummary record %s: %w", uid, err)
		}
		return nil
	})
}

func (c *Client) FetchAssemblySummary(uid string) (AssemblySummary, error) {
	var s AssemblySummary
	if err := c.summary("assembly", uid, &s); err != nil {
		return AssemblySummary{}, err
	}
	return s, nil
}

func (c *Client) FetchNuccoreSummary(uid string) (NuccoreSummary, error) {
	var s NuccoreSummary
	if err := c.summary("nuccore", uid, &s); err != nil {
		return NuccoreSummary{}, err
	}
	return s, nil
}
