package cli

import "fmt"

func Run(args []string) error {
	if len(args) == 0 {
		printRootUsage()
		return nil
	}

	switch args[0] {
	case "download":
		return runDownload(args[1:])
	case "count":
		return runCount(args[1:])
	case "status":
		return runStatus(args[1:])
	case "review":
		return runReview(args[1:])
	case "doctor":
		return runDoctor(args[1:])
	case "classify", "anim", "anib", "render", "db":
		return fmt.Errorf("command %q is not implemented yet", args[0])
	case "help", "-h", "--help":
		printRootUsage()
		return nil
	default:
		printRootUsage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func printRootUsage() {
	fmt.Println("taxseq: taxon-driven genome sequence downloader")
	fmt.Println()
	fmt.Println("Quick Start:")
	fmt.Println("  taxseq count --taxon 203804 --email you@example.org")
	fmt.Println("  taxseq download --taxon 203804 --email you@example.org --outdir genomes")
	fmt.Println("  taxseq status --outdir genomes")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  download  resolve taxon IDs to assemblies and download their sequences")
	fmt.Println("  count     resolve taxon IDs and report assembly counts without downloading")
	fmt.Println("  status    status rollup for a completed or interrupted download directory")
	fmt.Println("  review    interactive browser over a download directory's assemblies")
	fmt.Println("  doctor    run dependency preflight checks")
	fmt.Println()
	fmt.Println("Planned (not implemented yet):")
	fmt.Println("  classify anim anib render db")
	fmt.Println()
	fmt.Println("Notes:")
	fmt.Println("  - Use --json on commands for machine-readable output")
	fmt.Println("  - NCBI requires a contact email on every request (--email)")
}
