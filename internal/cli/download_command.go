package cli

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"taxseq/internal/entrez"
	"taxseq/internal/fetch"
	"taxseq/internal/logging"
	"taxseq/internal/pipeline"
	"taxseq/internal/runstore"
)

func runDownload(args []string) error {
	fs := flag.NewFlagSet("download", flag.ContinueOnError)
	taxon := fs.String("taxon", "", "NCBI taxonomy ID(s), comma-separated")
	outdir := fs.String("outdir", "", "output directory for sequences and run metadata")
	email := fs.String("email", "", "contact email sent with every NCBI request (required)")
	retries := fs.Int("retries", entrez.DefaultRetries, "attempt ceiling for each remote operation")
	force := fs.Bool("force", false, "allow writing into an existing output directory")
	noclobber := fs.Bool("noclobber", false, "with --force, keep existing files instead of replacing them")
	logfile := fs.String("logfile", "", "write an info-level run log to this file")
	verbose := fs.Bool("verbose", false, "info-level console output")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	taxa := splitTaxa(*taxon)
	if len(taxa) == 0 {
		fs.Usage()
		return errors.New("--taxon is required")
	}
	if strings.TrimSpace(*email) == "" {
		fs.Usage()
		return errors.New("--email is required (NCBI usage policy)")
	}
	if strings.TrimSpace(*outdir) == "" {
		fs.Usage()
		return errors.New("--outdir is required")
	}
	if err := fetch.CheckDependencies(); err != nil {
		return err
	}

	log, closeLog, err := logging.New(logging.Options{Verbose: *verbose, Logfile: *logfile})
	if err != nil {
		return err
	}
	defer closeLog()
	log.Info("download arguments",
		zap.Strings("taxa", taxa),
		zap.String("outdir", strings.TrimSpace(*outdir)),
		zap.Int("retries", *retries),
		zap.Bool("force", *force),
		zap.Bool("noclobber", *noclobber),
	)

	if err := runstore.PrepareOutdir(strings.TrimSpace(*outdir), *force, *noclobber); err != nil {
		return err
	}

	client := entrez.NewClient(entrez.Config{
		Email:   strings.TrimSpace(*email),
		Retries: *retries,
		Logger:  log,
	})
	res, err := pipeline.Run(pipeline.Options{
		TaxonIDs:  taxa,
		OutDir:    strings.TrimSpace(*outdir),
		Client:    client,
		Retries:   *retries,
		Noclobber: *noclobber,
	})
	if err != nil {
		return err
	}

	if *jsonOut {
		return printJSON(res)
	}
	fmt.Printf("assemblies: %d\n", res.Assemblies)
	fmt.Printf("written: %d\n", res.Written)
	fmt.Printf("skipped: %d\n", len(res.Skipped))
	fmt.Printf("classes: %s\n", res.ClassFile)
	fmt.Printf("labels: %s\n", res.LabelFile)
	for _, s := range res.Skipped {
		fmt.Printf("skipped %s (%s %s) from %s\n", s.Accession, s.Organism, s.Strain, s.URL)
	}
	return nil
}

func runCount(args []string) error {
	fs := flag.NewFlagSet("count", flag.ContinueOnError)
	taxon := fs.String("taxon", "", "NCBI taxonomy ID(s), comma-separated")
	email := fs.String("email", "", "contact email sent with every NCBI request (required)")
	retries := fs.Int("retries", entrez.DefaultRetries, "attempt ceiling for each remote operation")
	verbose := fs.Bool("verbose", false, "info-level console output")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	taxa := splitTaxa(*taxon)
	if len(taxa) == 0 {
		fs.Usage()
		return errors.New("--taxon is required")
	}
	if strings.TrimSpace(*email) == "" {
		fs.Usage()
		return errors.New("--email is required (NCBI usage policy)")
	}

	log, closeLog, err := logging.New(logging.Options{Verbose: *verbose})
	if err != nil {
		return err
	}
	defer closeLog()

	client := entrez.NewClient(entrez.Config{
		Email:   strings.TrimSpace(*email),
		Retries: *retries,
		Logger:  log,
	})
	res, err := pipeline.Run(pipeline.Options{
		TaxonIDs:  taxa,
		Client:    client,
		CountOnly: true,
	})
	if err != nil {
		return err
	}

	if *jsonOut {
		return printJSON(res.Counts)
	}
	for _, c := range res.Counts {
		fmt.Printf("taxon %s: %d assemblies\n", c.TaxonID, c.Assemblies)
	}
	fmt.Printf("total: %d\n", res.Assemblies)
	return nil
}

func runDoctor(args []string) error {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	type check struct {
		Name    string `json:"name"`
		OK      bool   `json:"ok"`
		Message string `json:"message"`
	}
	checks := []check{{Name: "gunzip", OK: true, Message: "found on PATH"}}
	if err := fetch.CheckDependencies(); err != nil {
		checks[0].OK = false
		checks[0].Message = err.Error()
	}

	if *jsonOut {
		return printJSON(checks)
	}
	failed := false
	for _, c := range checks {
		status := "ok"
		if !c.OK {
			status = "fail"
			failed = true
		}
		fmt.Printf("%s: %s (%s)\n", c.Name, status, c.Message)
	}
	if failed {
		return errors.New("doctor checks failed")
	}
	return nil
}
