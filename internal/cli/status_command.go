package cli

import (
	"errors"
	"flag"
	"fmt"
	"sort"
	"strings"

	"taxseq/internal/runstore"
)

type statusRollup struct {
	OutDir     string         `json:"outdir"`
	TaxonIDs   []string       `json:"taxon_ids"`
	Total      int            `json:"total"`
	Written    int            `json:"written"`
	Skipped    int            `json:"skipped"`
	ByStatus   map[string]int `json:"by_status"`
	ByStrategy map[string]int `json:"by_strategy"`
}

func runStatus(args []string) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	outdir := fs.String("outdir", "", "download directory containing manifest.json")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*outdir) == "" {
		fs.Usage()
		return errors.New("--outdir is required")
	}

	mf, err := runstore.LoadManifest(strings.TrimSpace(*outdir))
	if err != nil {
		return err
	}

	rollup := statusRollup{
		OutDir:     strings.TrimSpace(*outdir),
		TaxonIDs:   mf.TaxonIDs,
		Total:      mf.Total,
		Written:    mf.Written,
		Skipped:    mf.Skipped,
		ByStatus:   map[string]int{},
		ByStrategy: map[string]int{},
	}
	for _, asm := range mf.Assemblies {
		rollup.ByStatus[asm.Status]++
		if asm.Strategy != "" {
			rollup.ByStrategy[asm.Strategy]++
		}
	}

	if *jsonOut {
		return printJSON(rollup)
	}
	fmt.Printf("outdir: %s\n", rollup.OutDir)
	fmt.Printf("taxa: %s\n", strings.Join(rollup.TaxonIDs, ", "))
	fmt.Printf("assemblies: %d (written %d, skipped %d)\n", rollup.Total, rollup.Written, rollup.Skipped)
	for _, key := range sortedKeys(rollup.ByStatus) {
		fmt.Printf("  status %s: %d\n", key, rollup.ByStatus[key])
	}
	for _, key := range sortedKeys(rollup.ByStrategy) {
		fmt.Printf("  strategy %s: %d\n", key, rollup.ByStrategy[key])
	}
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
