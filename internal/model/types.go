package model

// Manifest is the canonical per-run assembly state file, written into the
// output directory alongside the sequence files.
type Manifest struct {
	SchemaVersion int        `json:"schema_version"`
	GeneratedAt   string     `json:"generated_at"`
	TaxonIDs      []string   `json:"taxon_ids"`
	Total         int        `json:"total"`
	Written       int        `json:"written"`
	Skipped       int        `json:"skipped"`
	Assemblies    []Assembly `json:"assemblies"`
}

// Assembly tracks one genome assembly from resolution through download.
type Assembly struct {
	UID          string `json:"uid"`
	TaxonID      string `json:"taxon_id"`
	Accession    string `json:"accession,omitempty"`
	Organism     string `json:"organism,omitempty"`
	Strain       string `json:"strain,omitempty"`
	SpeciesTaxid string `json:"species_taxid,omitempty"`
	Strategy     string `json:"strategy,omitempty"`
	Contigs      int    `json:"contigs,omitempty"`
	Records      int    `json:"records,omitempty"`
	Status       string `json:"status"`
	Reason       string `json:"reason,omitempty"`
	OutputFile   string `json:"output_file,omitempty"`
	SourceURL    string `json:"source_url,omitempty"`
	HashPassed   *bool  `json:"hash_passed,omitempty"`
}

// Sequence access strategies, in selection priority order.
const (
	StrategyINSDC     = "insdc"
	StrategyRefSeq    = "refseq"
	StrategyWGSMaster = "wgsmaster"
)

// Skipped records one assembly for which no sequence data could be acquired.
type Skipped struct {
	TaxonID   string `json:"taxon_id"`
	Accession string `json:"accession"`
	Organism  string `json:"organism"`
	Strain    string `json:"strain,omitempty"`
	URL       string `json:"url"`
}

// ClassRecord and LabelRecord are the tab-separated output lines keyed by
// assembly accession, accumulated in run order.
type ClassRecord struct {
	Accession string
	Organism  string
}

func (c ClassRecord) Line() string {
	return c.Accession + "\t" + c.Organism
}

type LabelRecord struct {
	Accession string
	Label     string
}

func (l LabelRecord) Line() string {
	return l.Accession + "\t" + l.Label
}
