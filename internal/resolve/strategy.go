package resolve

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"taxseq/internal/entrez"
	"taxseq/internal/model"
)

// Link category names exposed by the repository's cross-reference graph.
const (
	LinkINSDC     = "assembly_nuccore_insdc"
	LinkRefSeq    = "assembly_nuccore_refseq"
	LinkWGSMaster = "assembly_nuccore_wgsmaster"
)

// DirectResultCap is the server's elink result ceiling. A direct contig set
// of exactly this size is truncated and therefore unusable.
const DirectResultCap = 100000

// Strategy is the chosen sequence-access path for one assembly: a direct
// contig UID set, or a WGS master archive UID.
type Strategy struct {
	Kind         string
	ContigUIDs   []string
	WGSMasterUID string
}

// UnrecognizedLinkError reports an assembly with no usable link category.
// This is a structural resolution failure and is fatal for the run.
type UnrecognizedLinkError struct {
	AssemblyUID string
	Available   []string
}

func (e *UnrecognizedLinkError) Error() string {
	return fmt.Sprintf("no recognised contig link for assembly %s (available: %s)",
		e.AssemblyUID, strings.Join(e.Available, ", "))
}

// Choose applies the fixed priority insdc > refseq > wgsmaster to the link
// categories of one assembly. A direct result at the server cap is treated as
// truncated and re-resolved through the wgsmaster category, discarding the
// capped set.
func Choose(asmUID string, sets []entrez.LinkSet) (Strategy, error) {
	byName := make(map[string]entrez.LinkSet, len(sets))
	names := make([]string, 0, len(sets))
	for _, s := range sets {
		byName[s.LinkName] = s
		names = append(names, s.LinkName)
	}

	direct := Strategy{}
	switch {
	case len(byName[LinkINSDC].Links) > 0:
		direct = Strategy{Kind: model.StrategyINSDC, ContigUIDs: byName[LinkINSDC].Links}
	case len(byName[LinkRefSeq].Links) > 0:
		direct = Strategy{Kind: model.StrategyRefSeq, ContigUIDs: byName[LinkRefSeq].Links}
	case len(byName[LinkWGSMaster].Links) > 0:
		return Strategy{Kind: model.StrategyWGSMaster, WGSMasterUID: byName[LinkWGSMaster].Links[0]}, nil
	default:
		return Strategy{}, &UnrecognizedLinkError{AssemblyUID: asmUID, Available: names}
	}

	if len(direct.ContigUIDs) == DirectResultCap {
		// Hit the elink retmax ceiling: the set is truncated, fall back to
		// the archive as if no direct link existed.
		wgs, ok := byName[LinkWGSMaster]
		if !ok || len(wgs.Links) == 0 {
			return Strategy{}, fmt.Errorf(
				"assembly %s: direct link result capped at %d and no %s link available",
				asmUID, DirectResultCap, LinkWGSMaster)
		}
		return Strategy{Kind: model.StrategyWGSMaster, WGSMasterUID: wgs.Links[0]}, nil
	}
	return direct, nil
}

// LinkStrategy queries the cross-reference graph for asmUID and chooses its
// sequence-access strategy.
func LinkStrategy(client *entrez.Client, asmUID string) (Strategy, error) {
	log := client.Logger()
	log.Info("finding contig links for assembly", zap.String("assembly", asmUID))

	sets, err := client.Links("assembly", "nuccore", asmUID)
	if err != nil {
		return Strategy{}, err
	}
	strategy, err := Choose(asmUID, sets)
	if err != nil {
		return Strategy{}, err
	}
	switch strategy.Kind {
	case model.StrategyWGSMaster:
		log.Info("using wgsmaster links", zap.String("assembly", asmUID), zap.String("wgs_uid", strategy.WGSMasterUID))
	default:
		log.Info("using direct links",
			zap.String("assembly", asmUID),
			zap.String("strategy", strategy.Kind),
			zap.Int("contigs", len(strategy.ContigUIDs)),
		)
	}
	return strategy, nil
}
