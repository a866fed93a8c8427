package metering

import (
	"context"
	"log"

	"github.com/vietscribe/vietscribe/app/repository"
	"github.com/vietscribe/vietscribe/internal/pkg/plans"
)

// Invoker is the single mandatory entry point for every metered feature:
// check entitlement, perform the action, record usage. Feature components
// must never read quotas or touch the ledger directly.
type Invoker struct {
	eval     *Evaluator
	ledger   *Ledger
	observer func(feature plans.FeatureKind, outcome Outcome)
}

// Outcome classifies how an invocation ended, for metrics only.
type Outcome string

const (
	OutcomeAllowed Outcome = "allowed"
	OutcomeDenied  Outcome = "denied"
	OutcomeFailed  Outcome = "failed"
)

// NewInvoker creates a feature invocation wrapper.
func NewInvoker(eval *Evaluator, ledger *Ledger) *Invoker {
	return &Invoker{eval: eval, ledger: ledger}
}

// SetObserver installs a callback notified about every invocation outcome.
// The observer must be fast and must not panic; it runs on the request path.
func (i *Invoker) SetObserver(fn func(feature plans.FeatureKind, outcome Outcome)) {
	i.observer = fn
}

func (i *Invoker) observe(feature plans.FeatureKind, outcome Outcome) {
	if i.observer != nil {
		i.observer(feature, outcome)
	}
}

// Invoke runs action under the entitlement check for (userID, feature).
//
// Denied checks return a QuotaExceededError and the action never runs. A
// failing action is free: no usage is recorded and its error passes through
// unchanged. Usage is charged only after observed success; if the caller
// abandoned the request (context canceled) before the action finished, the
// result is treated as a failure and nothing is charged. No lock is held
// while the action runs, which may take seconds for LLM calls.
func (i *Invoker) Invoke(ctx context.Context, userID uint, feature plans.FeatureKind, action func(context.Context) error) error {
	decision, err := i.eval.CheckAndReserve(ctx, userID, feature)
	if err != nil {
		// Fail closed: an unreadable ledger denies the action.
		return err
	}
	if !decision.Allowed {
		i.observe(feature, OutcomeDenied)
		return &QuotaExceededError{Feature: feature, Reason: decision.Reason, ResetAt: decision.ResetAt}
	}

	if err := action(ctx); err != nil {
		i.observe(feature, OutcomeFailed)
		return err
	}
	if err := ctx.Err(); err != nil {
		i.observe(feature, OutcomeFailed)
		return err
	}

	if _, err := i.ledger.Increment(ctx, userID, feature); err != nil {
		// The action succeeded but the charge could not be written. Surfacing
		// the storage error keeps the system fail-closed; the caller retries
		// and the user is never under-charged silently.
		log.Printf("metering: increment failed after successful action user=%d feature=%s: %v", userID, feature, err)
		return err
	}
	i.observe(feature, OutcomeAllowed)
	return nil
}

// Meter bundles the ledger, evaluator and invoker behind one constructor so
// wiring stays in one place.
type Meter struct {
	Ledger    *Ledger
	Evaluator *Evaluator
	Invoker   *Invoker
}

// New builds the metering stack from its storage dependencies.
func New(catalog *plans.Catalog, subs SubscriptionSource, usage repository.UsageRepository) *Meter {
	ledger := NewLedger(usage, subs)
	eval := NewEvaluator(catalog, subs, ledger)
	return &Meter{
		Ledger:    ledger,
		Evaluator: eval,
		Invoker:   NewInvoker(eval, ledger),
	}
}
