package entrez

import (
	"encoding/json"
	"fmt"
	"net/url"
)

// LinkSet is one named link category returned by elink for a source record.
type LinkSet struct {
	DBTo     string   `json:"dbto"`
	LinkName string   `json:"linkname"`
	Links    []string `json:"links"`
}

type elinkEnvelope struct {
	LinkSets []struct {
		DBFrom     string    `json:"dbfrom"`
		IDs        []string  `json:"ids"`
		LinkSetDBs []LinkSet `json:"linksetdbs"`
	} `json:"linksets"`
}

// Links queries the cross-reference graph from one uid in dbFrom toward db
// and returns every named link category with its linked UIDs.
func (c *Client) Links(dbFrom, db, uid string) ([]LinkSet, error) {
	var sets []LinkSet
	err := c.withRetry("elink", func() error {
		params := url.Values{}
		params.Set("dbfrom", dbFrom)
		params.Set("db", db)
		params.Set("id", uid)
		params.Set("retmode", "json")

		body, err := c.get("elink.fcgi", params)
		if err != nil {
			return err
		}
		var env elinkEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			return fmt.Errorf("parse elink response: %w", err)
		}
		if len(env.LinkSets) == 0 {
			return fmt.Errorf("elink returned no linksets for uid %s", uid)
		}
		sets = env.LinkSets[0].LinkSetDBs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sets, nil
}
