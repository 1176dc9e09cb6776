// Package resolve turns taxon identifiers into assembly UID sets and picks
// the sequence-access strategy for each assembly.
package resolve

import (
	"fmt"

	"go.uber.org/zap"

	"taxseq/internal/entrez"
)

// SearchPageSize is the fixed esearch page size for assembly UID recovery.
const SearchPageSize = 250

// TaxonQuery builds the assembly query selecting the whole taxonomic subtree
// rooted at taxonID.
func TaxonQuery(taxonID string) string {
	return fmt.Sprintf("txid%s[Organism:exp]", taxonID)
}

// Assemblies returns the unique assembly UIDs for the subtree rooted at
// taxonID, in first-seen page order. The initial search establishes the total
// count and a server-side history handle; follow-up pages cover the count in
// fixed-size windows, with duplicates across pages collapsed.
func Assemblies(client *entrez.Client, taxonID string) ([]string, error) {
	query := TaxonQuery(taxonID)
	log := client.Logger()
	log.Info("esearch for taxon", zap.String("taxon", taxonID), zap.String("query", query))

	res, err := client.Search("assembly", query)
	if err != nil {
		return nil, err
	}
	log.Info("esearch result count", zap.String("taxon", taxonID), zap.Int("count", res.Count))

	seen := make(map[string]bool, res.Count)
	uids := make([]string, 0, res.Count)
	for start := 0; start < res.Count; start += SearchPageSize {
		page, err := client.SearchPage("assembly", query, res.WebEnv, res.QueryKey, start, SearchPageSize)
		if err != nil {
			return nil, err
		}
		for _, uid := range page {
			if seen[uid] {
				continue
			}
			seen[uid] = true
			uids = append(uids, uid)
		}
	}

	log.Info("identified unique assemblies", zap.String("taxon", taxonID), zap.Int("assemblies", len(uids)))
	return uids, nil
}
