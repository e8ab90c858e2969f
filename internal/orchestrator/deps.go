package orchestrator

import (
	"context"

	"github.com/scamshield/agent/internal/models"
	"github.com/scamshield/agent/internal/tools/domainrep"
	"github.com/scamshield/agent/internal/tools/phonevalidator"
	"github.com/scamshield/agent/internal/tools/websearch"
)

// searchTool, domainTool and phoneTool are narrow interfaces matching
// the real tool singletons' methods, so the orchestrator depends on
// behavior, not concrete packages, and tests can supply stubs.
type searchTool interface {
	Search(ctx context.Context, entityValue, entityType string) websearch.Response
}

type domainTool interface {
	CheckDomain(ctx context.Context, rawURL string) domainrep.Result
}

type phoneTool interface {
	Validate(raw string) phonevalidator.Result
}

// CompanyLookup is the optional, country-dependent company registry
// check (spec §4.7.2). A nil CompanyLookup is valid: the company
// sub-result is marked success=false without failing the entity.
type CompanyLookup interface {
	Lookup(ctx context.Context, name, countryHint string) (models.ScamLookupResult, error)
}

var _ searchTool = (*websearch.Tool)(nil)
var _ domainTool = (*domainrep.Tool)(nil)
var _ phoneTool = (*phonevalidator.Tool)(nil)
