package metering

import (
	"errors"
	"fmt"
	"time"

	"github.com/vietscribe/vietscribe/internal/pkg/plans"
)

// ErrStorageUnavailable signals that ledger or subscription storage could not
// be read or written. Callers must treat it as "deny the action" (fail
// closed); it is the only error in the taxonomy that is safe to retry with
// backoff.
var ErrStorageUnavailable = errors.New("usage storage unavailable")

// DenyReason explains why an invocation was refused.
type DenyReason string

const (
	// DenyNotEntitled: the user's tier grants zero quota for the feature.
	DenyNotEntitled DenyReason = "not_entitled"
	// DenyQuotaExhausted: the period's quota is used up.
	DenyQuotaExhausted DenyReason = "quota_exhausted"
)

// QuotaExceededError is returned by Invoker.Invoke when the entitlement check
// denies the feature. ResetAt is when the current period ends and the counter
// resets; for NotEntitled only an upgrade changes the outcome.
type QuotaExceededError struct {
	Feature plans.FeatureKind
	Reason  DenyReason
	ResetAt time.Time
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("feature %s denied: %s (resets %s)", e.Feature, e.Reason, e.ResetAt.Format(time.RFC3339))
}

// AsQuotaExceeded unwraps a QuotaExceededError from an error chain.
func AsQuotaExceeded(err error) (*QuotaExceededError, bool) {
	var qe *QuotaExceededError
	if errors.As(err, &qe) {
		return qe, true
	}
	return nil, false
}

func storageErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}
