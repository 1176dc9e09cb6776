package pipeline

import (
	"strings"

	"taxseq/internal/model"
)

// splitBinomial separates an organism name into genus and the species
// remainder. Single-token names yield an empty species.
func splitBinomial(organism string) (genus, species string) {
	parts := strings.SplitN(strings.TrimSpace(organism), " ", 2)
	genus = parts[0]
	if len(parts) > 1 {
		species = parts[1]
	}
	return genus, species
}

// classLabel builds the class and label records for one assembly. The label
// abbreviates the genus to its initial: "P. atrosepticum SCRI1043".
func classLabel(accession, organism, strain string) (model.ClassRecord, model.LabelRecord) {
	genus, species := splitBinomial(organism)
	initial := ""
	if genus != "" {
		initial = genus[:1] + "."
	}
	label := strings.TrimSpace(strings.Join([]string{initial, species, strain}, " "))
	return model.ClassRecord{Accession: accession, Organism: organism},
		model.LabelRecord{Accession: accession, Label: label}
}
