package patient

import "errors"

var (
	// ErrNotFound is returned when an operation targets a missing patient.
	ErrNotFound = errors.New("patient not found")

	// ErrDuplicateNationalID is returned when a create (or national id edit)
	// would violate the uniqueness of the national id natural key. The store
	// must fail rather than silently overwrite the existing record.
	ErrDuplicateNationalID = errors.New("national id already registered")

	// ErrLedgerCorrupt is returned when the stored visit numbers of a patient
	// do not form the contiguous run 1..N in timestamp order, which indicates
	// an out-of-order or partial write.
	ErrLedgerCorrupt = errors.New("visit ledger corrupt")
)
