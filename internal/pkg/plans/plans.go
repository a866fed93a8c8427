package plans

import (
	"fmt"
	"strings"
)

// Tier is a subscription level granting a specific quota table.
type Tier string

const (
	TierFree          Tier = "free"
	TierStudent       Tier = "student"
	TierPremium       Tier = "premium"
	TierInstitutional Tier = "institutional"
)

// Tiers lists all tiers in ascending entitlement order.
var Tiers = []Tier{TierFree, TierStudent, TierPremium, TierInstitutional}

// NormalizeTier maps arbitrary input to a known tier, defaulting to free.
func NormalizeTier(tier string) Tier {
	switch strings.ToLower(strings.TrimSpace(tier)) {
	case string(TierStudent):
		return TierStudent
	case string(TierPremium):
		return TierPremium
	case string(TierInstitutional):
		return TierInstitutional
	default:
		return TierFree
	}
}

// Rank orders tiers by entitlement. Used for monotonicity checks and for
// deciding whether a plan change is an upgrade.
func (t Tier) Rank() int {
	switch t {
	case TierInstitutional:
		return 3
	case TierPremium:
		return 2
	case TierStudent:
		return 1
	default:
		return 0
	}
}

// FeatureKind identifies a meterable capability of the application.
type FeatureKind string

const (
	FeatureOutline         FeatureKind = "outline"
	FeatureWritingProject  FeatureKind = "writing_project"
	FeatureGrammarCheck    FeatureKind = "grammar_check"
	FeatureDocumentSummary FeatureKind = "document_summary"
	FeatureCitation        FeatureKind = "citation"
	FeatureExport          FeatureKind = "export"
	FeatureAIAssistant     FeatureKind = "ai_assistant"
	FeatureTemplate        FeatureKind = "template"
	FeaturePlagiarismCheck FeatureKind = "plagiarism_check"
)

// Features lists every meterable feature.
var Features = []FeatureKind{
	FeatureOutline,
	FeatureWritingProject,
	FeatureGrammarCheck,
	FeatureDocumentSummary,
	FeatureCitation,
	FeatureExport,
	FeatureAIAssistant,
	FeatureTemplate,
	FeaturePlagiarismCheck,
}

// Capability is a boolean-only gating flag, not a counter.
type Capability string

const (
	CapabilityCollaboration   Capability = "collaboration"
	CapabilityPrioritySupport Capability = "priority_support"
)

// Quota is a per-period usage ceiling. Unlimited means no ceiling; zero means
// the feature is not offered to the tier at all.
type Quota int

// Unlimited is the sentinel for features without a ceiling.
const Unlimited Quota = -1

func (q Quota) IsUnlimited() bool { return q == Unlimited }

func (q Quota) String() string {
	if q.IsUnlimited() {
		return "unlimited"
	}
	return fmt.Sprintf("%d", int(q))
}

// Catalog is the single source of quota truth. It is built once and injected
// into every consumer; feature code must never carry its own limit table.
type Catalog struct {
	quotas       map[Tier]map[FeatureKind]Quota
	capabilities map[Tier]map[Capability]bool
}

// QuotaFor returns the per-period quota for a tier/feature pair. Unknown
// combinations yield zero, which the entitlement evaluator treats as
// "not offered".
func (c *Catalog) QuotaFor(tier Tier, feature FeatureKind) Quota {
	byFeature, ok := c.quotas[tier]
	if !ok {
		return 0
	}
	return byFeature[feature]
}

// Allows reports whether a tier grants a boolean capability.
func (c *Catalog) Allows(tier Tier, capability Capability) bool {
	byCap, ok := c.capabilities[tier]
	if !ok {
		return false
	}
	return byCap[capability]
}

// Validate enforces the tier monotonicity invariant: a lower tier's quota for
// a feature must never exceed a higher tier's quota for the same feature.
func (c *Catalog) Validate() error {
	for _, feature := range Features {
		for i := 1; i < len(Tiers); i++ {
			lower := c.QuotaFor(Tiers[i-1], feature)
			higher := c.QuotaFor(Tiers[i], feature)
			if higher.IsUnlimited() {
				continue
			}
			if lower.IsUnlimited() || lower > higher {
				return fmt.Errorf("quota for %s/%s (%s) exceeds %s/%s (%s)",
					Tiers[i-1], feature, lower, Tiers[i], feature, higher)
			}
		}
	}
	return nil
}

// Default returns the canonical catalog.
func Default() *Catalog {
	return &Catalog{
		quotas: map[Tier]map[FeatureKind]Quota{
			TierFree: {
				FeatureOutline:         3,
				FeatureWritingProject:  1,
				FeatureGrammarCheck:    3,
				FeatureDocumentSummary: 1,
				FeatureCitation:        5,
				FeatureExport:          1,
				FeatureAIAssistant:     5,
				FeatureTemplate:        0,
				FeaturePlagiarismCheck: 0,
			},
			TierStudent: {
				FeatureOutline:         15,
				FeatureWritingProject:  5,
				FeatureGrammarCheck:    20,
				FeatureDocumentSummary: 10,
				FeatureCitation:        50,
				FeatureExport:          Unlimited,
				FeatureAIAssistant:     50,
				FeatureTemplate:        10,
				FeaturePlagiarismCheck: 2,
			},
			TierPremium: {
				FeatureOutline:         Unlimited,
				FeatureWritingProject:  Unlimited,
				FeatureGrammarCheck:    Unlimited,
				FeatureDocumentSummary: Unlimited,
				FeatureCitation:        Unlimited,
				FeatureExport:          Unlimited,
				FeatureAIAssistant:     Unlimited,
				FeatureTemplate:        Unlimited,
				FeaturePlagiarismCheck: 10,
			},
			TierInstitutional: {
				FeatureOutline:         Unlimited,
				FeatureWritingProject:  Unlimited,
				FeatureGrammarCheck:    Unlimited,
				FeatureDocumentSummary: Unlimited,
				FeatureCitation:        Unlimited,
				FeatureExport:          Unlimited,
				FeatureAIAssistant:     Unlimited,
				FeatureTemplate:        Unlimited,
				FeaturePlagiarismCheck: Unlimited,
			},
		},
		capabilities: map[Tier]map[Capability]bool{
			TierStudent: {
				CapabilityCollaboration: true,
			},
			TierPremium: {
				CapabilityCollaboration:   true,
				CapabilityPrioritySupport: true,
			},
			TierInstitutional: {
				CapabilityCollaboration:   true,
				CapabilityPrioritySupport: true,
			},
		},
	}
}

// NewCatalog builds a catalog from explicit tables, for tests and for
// deployments that override the defaults.
func NewCatalog(quotas map[Tier]map[FeatureKind]Quota, capabilities map[Tier]map[Capability]bool) *Catalog {
	return &Catalog{quotas: quotas, capabilities: capabilities}
}
