// Package pipeline orchestrates a download run: taxon resolution, per-assembly
// strategy selection and acquisition, integrity checks, and the flat class and
// label output artifacts.
package pipeline

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"taxseq/internal/entrez"
	"taxseq/internal/fasta"
	"taxseq/internal/fetch"
	"taxseq/internal/model"
	"taxseq/internal/resolve"
	"taxseq/internal/runstore"
)

// Options configures one run. The caller (CLI layer) is responsible for
// splitting comma-separated taxon lists and for supplying the contact email
// on the client.
type Options struct {
	TaxonIDs   []string
	OutDir     string
	Client     *entrez.Client
	HTTPClient *http.Client
	WGSBaseURL string
	BatchSize  int
	Retries    int
	CountOnly  bool
	Noclobber  bool
}

// TaxonCount reports one taxon's resolved assembly tally in input order.
type TaxonCount struct {
	TaxonID    string `json:"taxon_id"`
	Assemblies int    `json:"assemblies"`
}

type Result struct {
	Counts     []TaxonCount    `json:"counts"`
	Assemblies int             `json:"assemblies"`
	Written    int             `json:"written"`
	Skipped    []model.Skipped `json:"skipped,omitempty"`
	ClassFile  string          `json:"class_file,omitempty"`
	LabelFile  string          `json:"label_file,omitempty"`
}

// Run executes the pipeline: strictly sequential, one taxon at a time, one
// assembly at a time. Assemblies that fail acquisition completely are skipped
// and recorded; structural failures and exhausted retries abort the run.
func Run(opts Options) (Result, error) {
	if len(opts.TaxonIDs) == 0 {
		return Result{}, fmt.Errorf("at least one taxon ID is required")
	}
	if opts.Client == nil {
		return Result{}, fmt.Errorf("entrez client is required")
	}
	log := opts.Client.Logger()

	// Resolve every taxon up front, preserving input order. An assembly
	// appearing under two taxa is deliberately processed twice; the last
	// write wins on the shared output filename.
	type taxonAssemblies struct {
		taxonID string
		uids    []string
	}
	resolved := make([]taxonAssemblies, 0, len(opts.TaxonIDs))
	counts := make([]TaxonCount, 0, len(opts.TaxonIDs))
	total := 0
	for _, tid := range opts.TaxonIDs {
		uids, err := resolve.Assemblies(opts.Client, tid)
		if err != nil {
			return Result{}, err
		}
		log.Info("taxon resolved", zap.String("taxon", tid), zap.Int("assemblies", len(uids)))
		resolved = append(resolved, taxonAssemblies{taxonID: tid, uids: uids})
		counts = append(counts, TaxonCount{TaxonID: tid, Assemblies: len(uids)})
		total += len(uids)
	}

	if opts.CountOnly {
		log.Info("count-only mode, not downloading")
		return Result{Counts: counts, Assemblies: total}, nil
	}

	if opts.OutDir == "" {
		return Result{}, fmt.Errorf("output directory is required")
	}
	lock, err := runstore.AcquireRunLock(opts.OutDir, opts.TaxonIDs)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		_ = lock.Release()
	}()

	mf := model.Manifest{
		SchemaVersion: 1,
		GeneratedAt:   time.Now().UTC().Format(time.RFC3339),
		TaxonIDs:      opts.TaxonIDs,
	}
	saveManifest := func() error {
		mf.Total = len(mf.Assemblies)
		written, skipped := 0, 0
		for _, a := range mf.Assemblies {
			switch a.Status {
			case model.StatusWritten:
				written++
			case model.StatusSkipped:
				skipped++
			}
		}
		mf.Written = written
		mf.Skipped = skipped
		return runstore.SaveManifest(opts.OutDir, mf)
	}

	var classes []model.ClassRecord
	var labels []model.LabelRecord
	var skipped []model.Skipped

	for _, ta := range resolved {
		log.Info("downloading assemblies for taxon", zap.String("taxon", ta.taxonID))
		for _, uid := range ta.uids {
			asm, skip, err := processAssembly(opts, ta.taxonID, uid)
			mf.Assemblies = append(mf.Assemblies, asm)
			if saveErr := saveManifest(); saveErr != nil && err == nil {
				err = saveErr
			}
			if err != nil {
				return Result{}, err
			}
			if skip != nil {
				skipped = append(skipped, *skip)
				continue
			}
			class, label := classLabel(asm.Accession, asm.Organism, asm.Strain)
			classes = append(classes, class)
			labels = append(labels, label)
			log.Info("label and class entries",
				zap.String("label", label.Line()),
				zap.String("class", class.Line()),
			)
		}
	}

	classFile := filepath.Join(opts.OutDir, "classes.txt")
	labelFile := filepath.Join(opts.OutDir, "labels.txt")
	classLines := make([]string, 0, len(classes))
	for _, c := range classes {
		classLines = append(classLines, c.Line())
	}
	labelLines := make([]string, 0, len(labels))
	for _, l := range labels {
		labelLines = append(labelLines, l.Line())
	}
	log.Info("writing classes file", zap.String("path", classFile))
	if err := runstore.WriteLines(classFile, classLines); err != nil {
		return Result{}, err
	}
	log.Info("writing labels file", zap.String("path", labelFile))
	if err := runstore.WriteLines(labelFile, labelLines); err != nil {
		return Result{}, err
	}

	reportSkips(log, skipped)

	return Result{
		Counts:     counts,
		Assemblies: total,
		Written:    mf.Written,
		Skipped:    skipped,
		ClassFile:  classFile,
		LabelFile:  labelFile,
	}, nil
}

// processAssembly drives one assembly through its state machine. A non-nil
// skip means acquisition failed completely; a non-nil error aborts the run.
func processAssembly(opts Options, taxonID, uid string) (model.Assembly, *model.Skipped, error) {
	log := opts.Client.Logger()
	asm := model.Assembly{UID: uid, TaxonID: taxonID, Status: model.StatusPending}

	summary, err := opts.Client.FetchAssemblySummary(uid)
	if err != nil {
		// Metadata failure is fatal for the run, not skip-and-continue.
		return asm, nil, err
	}
	asm.Accession = summary.AssemblyAccession
	asm.Organism = summary.SpeciesName
	asm.Strain = summary.Strain()
	asm.SpeciesTaxid = summary.SpeciesTaxid
	if err := model.TransitionStatus(&asm, model.StatusMetadataFetched, ""); err != nil {
		return asm, nil, err
	}
	log.Info("assembly summary",
		zap.String("uid", uid),
		zap.String("accession", asm.Accession),
		zap.String("organism", asm.Organism),
		zap.String("strain", asm.Strain),
		zap.String("species_taxid", asm.SpeciesTaxid),
	)

	strategy, err := resolve.LinkStrategy(opts.Client, uid)
	if err != nil {
		return asm, nil, err
	}
	asm.Strategy = strategy.Kind
	if err := model.TransitionStatus(&asm, model.StatusStrategyChosen, ""); err != nil {
		return asm, nil, err
	}

	outFile := filepath.Join(opts.OutDir, asm.Accession+".fasta")
	if strategy.Kind == model.StrategyWGSMaster {
		skip, err := fetchArchive(opts, &asm, strategy.WGSMasterUID, outFile)
		if skip != nil || err != nil {
			return asm, skip, err
		}
	} else {
		if err := fetchBatched(opts, &asm, strategy.ContigUIDs, outFile); err != nil {
			return asm, nil, err
		}
	}

	asm.OutputFile = outFile
	if err := model.TransitionStatus(&asm, model.StatusWritten, ""); err != nil {
		return asm, nil, err
	}
	log.Info("wrote assembly",
		zap.String("accession", asm.Accession),
		zap.String("path", outFile),
		zap.Int("records", asm.Records),
	)
	return asm, nil, nil
}

func fetchBatched(opts Options, asm *model.Assembly, contigUIDs []string, outFile string) error {
	asm.Contigs = len(contigUIDs)
	fetcher := &fetch.BatchFetcher{
		Client:    opts.Client,
		BatchSize: opts.BatchSize,
		Retries:   opts.Retries,
	}
	records, err := fetcher.Fetch(asm.UID, contigUIDs)
	if err != nil {
		return err
	}
	if err := model.TransitionStatus(asm, model.StatusBatchFetched, ""); err != nil {
		return err
	}
	n, err := fasta.WriteFile(outFile, records)
	if err != nil {
		return err
	}
	asm.Records = n
	return nil
}

func fetchArchive(opts Options, asm *model.Assembly, wgsUID, outFile string) (*model.Skipped, error) {
	log := opts.Client.Logger()
	fetcher := &fetch.ArchiveFetcher{
		Client:     opts.Client,
		HTTP:       opts.HTTPClient,
		WGSBaseURL: opts.WGSBaseURL,
		OutDir:     opts.OutDir,
	}

	ref, err := fetcher.Resolve(wgsUID)
	if err != nil {
		return nil, err
	}
	outcome, err := fetcher.Download(ref)
	if err != nil {
		return nil, err
	}
	if outcome.Skipped {
		if err := model.TransitionStatus(asm, model.StatusSkipped, "acquisition_failed"); err != nil {
			return nil, err
		}
		asm.SourceURL = outcome.URL
		return &model.Skipped{
			TaxonID:   asm.TaxonID,
			Accession: asm.Accession,
			Organism:  asm.Organism,
			Strain:    asm.Strain,
			URL:       outcome.URL,
		}, nil
	}
	asm.SourceURL = outcome.URL

	if outcome.HashPath != "" {
		status, err := fetch.CheckHash(outcome.LocalPath, outcome.HashPath)
		if err != nil {
			log.Warn("hash check unavailable", zap.String("archive", outcome.LocalPath), zap.Error(err))
		} else {
			asm.HashPassed = &status.Passed
			if status.Passed {
				log.Info("MD5 hash check passed", zap.String("archive", outcome.LocalPath))
			} else {
				// Flag, don't block: extraction proceeds regardless.
				log.Warn("MD5 hash check failed",
					zap.String("archive", outcome.LocalPath),
					zap.String("local", status.LocalHash),
					zap.String("remote", status.RemoteHash),
				)
			}
		}
	}

	if opts.Noclobber {
		if _, err := os.Stat(outFile); err == nil {
			log.Warn("output exists, not extracting", zap.String("path", outFile))
			if err := model.TransitionStatus(asm, model.StatusArchiveFetched, ""); err != nil {
				return nil, err
			}
			return nil, countExtracted(asm, outFile)
		}
	}
	log.Info("extracting archive", zap.String("archive", outcome.LocalPath), zap.String("dest", outFile))
	if err := fetch.ExtractArchive(outcome.LocalPath, outFile); err != nil {
		return nil, err
	}
	if err := model.TransitionStatus(asm, model.StatusArchiveFetched, ""); err != nil {
		return nil, err
	}
	return nil, countExtracted(asm, outFile)
}

func countExtracted(asm *model.Assembly, outFile string) error {
	headers, err := fasta.Headers(outFile)
	if err != nil {
		return err
	}
	asm.Contigs = len(headers)
	asm.Records = len(headers)
	return nil
}

func reportSkips(log *zap.Logger, skipped []model.Skipped) {
	if len(skipped) == 0 {
		return
	}
	log.Warn("genome downloads were skipped", zap.Int("count", len(skipped)))
	for _, s := range skipped {
		log.Warn("skipped genome",
			zap.String("taxon", s.TaxonID),
			zap.String("accession", s.Accession),
			zap.String("organism", s.Organism),
			zap.String("strain", s.Strain),
			zap.String("url", s.URL),
		)
	}
}
