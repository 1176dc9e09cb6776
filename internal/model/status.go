package model

import "fmt"

const (
	StatusPending         = "pending"
	StatusMetadataFetched = "metadata_fetched"
	StatusStrategyChosen  = "strategy_chosen"
	StatusArchiveFetched  = "archive_fetched"
	StatusBatchFetched    = "batch_fetched"
	StatusWritten         = "written"
	StatusSkipped         = "skipped"
)

// An assembly never re-enters its state machine from the top; each state only
// advances, or terminates in written/skipped.
var allowedTransitions = map[string]map[string]bool{
	"": {
		StatusPending: true,
	},
	StatusPending: {
		StatusPending:         true,
		StatusMetadataFetched: true,
	},
	StatusMetadataFetched: {
		StatusMetadataFetched: true,
		StatusStrategyChosen:  true,
	},
	StatusStrategyChosen: {
		StatusStrategyChosen: true,
		StatusArchiveFetched: true,
		StatusBatchFetched:   true,
		StatusSkipped:        true,
	},
	StatusArchiveFetched: {
		StatusArchiveFetched: true,
		StatusWritten:        true,
	},
	StatusBatchFetched: {
		StatusBatchFetched: true,
		StatusWritten:      true,
	},
	StatusWritten: {
		StatusWritten: true,
	},
	StatusSkipped: {
		StatusSkipped: true,
	},
}

func IsKnownStatus(status string) bool {
	_, ok := allowedTransitions[status]
	return ok
}

func IsTerminalStatus(status string) bool {
	return status == StatusWritten || status == StatusSkipped
}

func CanTransition(from, to string) bool {
	next, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return next[to]
}

func TransitionStatus(asm *Assembly, toStatus string, reason string) error {
	from := asm.Status
	if !CanTransition(from, toStatus) {
		return fmt.Errorf("invalid assembly status transition: %q -> %q (uid=%s accession=%s)", from, toStatus, asm.UID, asm.Accession)
	}
	asm.Status = toStatus
	asm.Reason = reason
	return nil
}
