package entity

import "errors"

var (
	// ErrConfigurationInvalid marks a run configuration rejected before any
	// data is fetched.
	ErrConfigurationInvalid = errors.New("configuration invalid")

	// ErrDataInsufficient marks a symbol with too little history for a
	// method's lookback window. Per-symbol and non-fatal.
	ErrDataInsufficient = errors.New("data insufficient")

	// ErrSourceUnavailable marks an external collaborator failure after its
	// own retries are exhausted. Treated per symbol as ErrDataInsufficient.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrNoTable is returned by the API before the first run completes.
	ErrNoTable = errors.New("no ranking table available yet")
)
