package fetch

import (
	"bytes"

	"go.uber.org/zap"

	"taxseq/internal/entrez"
	"taxseq/internal/fasta"
)

// SequenceBatchSize is the fixed efetch identifier window.
const SequenceBatchSize = 10000

// BatchFetcher retrieves sequence records for a resolved contig UID set in
// fixed-size batches, validating the returned record count against the set
// size.
type BatchFetcher struct {
	Client    *entrez.Client
	BatchSize int
	Retries   int
}

func (f *BatchFetcher) batchSize() int {
	if f.BatchSize > 0 {
		return f.BatchSize
	}
	return SequenceBatchSize
}

func (f *BatchFetcher) retries() int {
	if f.Retries > 0 {
		return f.Retries
	}
	return f.Client.Retries()
}

// Fetch downloads all records for contigUIDs. A full pass that under-returns
// is treated as possibly transient and the entire batched fetch is retried up
// to the attempt ceiling; if it still under-returns, the shortfall is logged
// and whatever was collected is returned. Over-returning is accepted with a
// warning. Only retry-exhausted remote calls propagate an error.
func (f *BatchFetcher) Fetch(asmUID string, contigUIDs []string) ([]fasta.Record, error) {
	log := f.Client.Logger()
	expected := len(contigUIDs)
	size := f.batchSize()

	var records []fasta.Record
	for attempt := 1; attempt <= f.retries(); attempt++ {
		var err error
		records, err = f.fetchOnce(asmUID, contigUIDs, size)
		if err != nil {
			return nil, err
		}

		if len(records) == expected {
			return records, nil
		}
		if len(records) > expected {
			log.Warn("more records returned than contigs expected",
				zap.String("assembly", asmUID),
				zap.Int("expected", expected),
				zap.Int("returned", len(records)),
			)
			return records, nil
		}
		log.Warn("fewer records returned than contigs expected",
			zap.String("assembly", asmUID),
			zap.Int("expected", expected),
			zap.Int("returned", len(records)),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", f.retries()),
		)
	}

	log.Error("sequence download incomplete, continuing with collected records",
		zap.String("assembly", asmUID),
		zap.Int("expected", expected),
		zap.Int("returned", len(records)),
		zap.Int("shortfall", expected-len(records)),
	)
	return records, nil
}

func (f *BatchFetcher) fetchOnce(asmUID string, contigUIDs []string, size int) ([]fasta.Record, error) {
	log := f.Client.Logger()
	var records []fasta.Record
	var totalLen int
	for start := 0; start < len(contigUIDs); start += size {
		log.Info("sequence batch",
			zap.String("assembly", asmUID),
			zap.Int("start", start),
			zap.Int("end", start+size),
		)
		body, err := f.Client.FetchFASTA("nuccore", contigUIDs, start, size)
		if err != nil {
			return nil, err
		}
		recs, err := fasta.Parse(bytes.NewReader(body))
		if err != nil {
			log.Warn("malformed FASTA batch",
				zap.String("assembly", asmUID),
				zap.Int("start", start),
				zap.Error(err),
			)
			continue
		}
		for _, r := range recs {
			totalLen += len(r.Seq)
		}
		records = append(records, recs...)
	}
	log.Info("downloaded genome size", zap.String("assembly", asmUID), zap.Int("bases", totalLen))
	return records, nil
}
