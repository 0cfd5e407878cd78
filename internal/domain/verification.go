package domain

type VerificationOutcome string

const (
	OutcomeNoSnapshotsYet         VerificationOutcome = "no_snapshots_yet"
	OutcomeMissingTenantReference VerificationOutcome = "missing_tenant_reference"
	OutcomeNoEventsForTenant      VerificationOutcome = "no_events_for_tenant"
	OutcomeEmptyChain             VerificationOutcome = "empty_chain_after_normalization"
	OutcomeHashMismatch           VerificationOutcome = "hash_mismatch"
	OutcomeHeightMismatch         VerificationOutcome = "height_mismatch"
	OutcomeVerified               VerificationOutcome = "verified"
)

// VerificationResult is the outcome of comparing a stored chain head with a
// freshly rebuilt chain. Discrepancies are reported here, not as errors.
// Only the fields relevant to Outcome are populated.
type VerificationResult struct {
	Outcome  VerificationOutcome
	TenantID string
	Snapshot *ChainHeadSnapshot

	ExpectedHash string
	ActualHash   string

	ExpectedHeight int
	ActualHeight   int

	BlockHeight int
	RootHash    string
}

func (r *VerificationResult) OK() bool {
	return r.Outcome == OutcomeVerified || r.Outcome == OutcomeNoSnapshotsYet
}

func (r *VerificationResult) IsDiscrepancy() bool {
	return r.Outcome == OutcomeHashMismatch || r.Outcome == OutcomeHeightMismatch
}
