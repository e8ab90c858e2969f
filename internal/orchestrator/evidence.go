package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/scamshield/agent/internal/models"
	"github.com/scamshield/agent/internal/registry"
	"golang.org/x/sync/errgroup"
)

// fanOutAllEntities runs the per-entity fan-out sequentially across
// entities and in parallel across the tools of a single entity (spec
// §4.7.2 step 4), publishing a percent-scaled status after each entity.
func (o *Orchestrator) fanOutAllEntities(ctx context.Context, entities models.ExtractedEntities,
	publish func(models.ProgressMessage), toolsUsed map[string]bool) []models.AgentEvidence {

	var all []models.AgentEvidence

	totalEntities := entities.Count()
	if totalEntities == 0 {
		return all
	}
	processed := 0

	step := func(label string) {
		processed++
		percent := 30 + int(float64(processed)/float64(totalEntities)*50)
		publish(models.ProgressMessage{Step: models.StepToolExecution, Tool: label, Percent: percent})
	}

	for _, p := range entities.Phones {
		all = append(all, o.evidenceForPhone(ctx, p, toolsUsed)...)
		step("phone_validator")
	}
	for _, u := range entities.URLs {
		all = append(all, o.evidenceForURL(ctx, u, toolsUsed)...)
		step("domain_reputation")
	}
	for _, e := range entities.Emails {
		all = append(all, o.evidenceForEmail(ctx, e, toolsUsed)...)
		step("scam_db")
	}
	for _, v := range entities.Payments {
		all = append(all, o.evidenceForPayment(ctx, v, toolsUsed)...)
		step("scam_db")
	}
	for _, c := range entities.Companies {
		all = append(all, o.evidenceForCompany(ctx, c, toolsUsed)...)
		step("company_verification")
	}

	return all
}

// runWithTimeout wraps a single tool call: on panic, exception
// (error), or timeout it produces a success=false AgentEvidence instead
// of propagating, per spec §4.7.4.
func runWithTimeout(ctx context.Context, toolName, entityType, entityValue string, fn func(ctx context.Context) (interface{}, error)) models.AgentEvidence {
	start := time.Now()
	callCtx, cancel := context.WithTimeout(ctx, perToolTimeout)
	defer cancel()

	evidence := models.AgentEvidence{ToolName: toolName, EntityType: entityType, EntityValue: entityValue}

	// The worker goroutine below is the sole writer of `out`; it is only
	// read here after it arrives on the channel, so there is no shared
	// mutable state between this goroutine and the one racing it on
	// timeout. done is buffered so a timed-out worker can still deliver
	// (or panic-recover) without blocking forever.
	type outcome struct {
		payload interface{}
		err     error
	}
	done := make(chan outcome, 1)

	go func() {
		var out outcome
		defer func() {
			if r := recover(); r != nil {
				out = outcome{err: fmt.Errorf("panic in %s: %v", toolName, r)}
			}
			done <- out
		}()
		payload, err := fn(callCtx)
		out = outcome{payload: payload, err: err}
	}()

	var callErr error
	var payload interface{}
	select {
	case out := <-done:
		payload, callErr = out.payload, out.err
	case <-callCtx.Done():
		callErr = fmt.Errorf("%s timed out after %s", toolName, perToolTimeout)
	}

	evidence.ExecutionTimeMS = time.Since(start).Milliseconds()
	if callErr != nil {
		evidence.Success = false
		evidence.ErrorMessage = callErr.Error()
		return evidence
	}

	evidence.Success = true
	evidence.Payload = payload
	return evidence
}

func (o *Orchestrator) evidenceForPhone(ctx context.Context, p models.Phone, toolsUsed map[string]bool) []models.AgentEvidence {
	out := make([]models.AgentEvidence, 3)
	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		out[0] = runWithTimeout(ctx, "scam_db", "phone", p.E164, func(c context.Context) (interface{}, error) {
			return o.registry.CheckPhone(c, p.E164)
		})
		return nil
	})
	g.Go(func() error {
		out[1] = runWithTimeout(ctx, "exa_search", "phone", p.E164, func(c context.Context) (interface{}, error) {
			return o.webSearch.Search(c, p.E164, "phone"), nil
		})
		return nil
	})
	g.Go(func() error {
		out[2] = runWithTimeout(ctx, "phone_validator", "phone", p.E164, func(c context.Context) (interface{}, error) {
			return o.phoneValidator.Validate(p.Raw), nil
		})
		return nil
	})
	_ = g.Wait()

	markUsed(toolsUsed, out)
	return out
}

func (o *Orchestrator) evidenceForURL(ctx context.Context, u models.URL, toolsUsed map[string]bool) []models.AgentEvidence {
	out := make([]models.AgentEvidence, 3)
	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		out[0] = runWithTimeout(ctx, "scam_db", "url", u.Domain, func(c context.Context) (interface{}, error) {
			return o.registry.CheckURL(c, u.Domain)
		})
		return nil
	})
	g.Go(func() error {
		out[1] = runWithTimeout(ctx, "domain_reputation", "url", u.Normalized, func(c context.Context) (interface{}, error) {
			return o.domainRep.CheckDomain(c, u.Normalized), nil
		})
		return nil
	})
	g.Go(func() error {
		out[2] = runWithTimeout(ctx, "exa_search", "url", u.Domain, func(c context.Context) (interface{}, error) {
			return o.webSearch.Search(c, u.Domain, "url"), nil
		})
		return nil
	})
	_ = g.Wait()

	markUsed(toolsUsed, out)
	return out
}

func (o *Orchestrator) evidenceForEmail(ctx context.Context, e models.Email, toolsUsed map[string]bool) []models.AgentEvidence {
	out := make([]models.AgentEvidence, 2)
	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		out[0] = runWithTimeout(ctx, "scam_db", "email", e.Normalized, func(c context.Context) (interface{}, error) {
			return o.registry.CheckEmail(c, e.Normalized)
		})
		return nil
	})
	g.Go(func() error {
		out[1] = runWithTimeout(ctx, "exa_search", "email", e.Normalized, func(c context.Context) (interface{}, error) {
			return o.webSearch.Search(c, e.Normalized, "email"), nil
		})
		return nil
	})
	_ = g.Wait()

	markUsed(toolsUsed, out)
	return out
}

func (o *Orchestrator) evidenceForPayment(ctx context.Context, v models.Payment, toolsUsed map[string]bool) []models.AgentEvidence {
	out := make([]models.AgentEvidence, 2)
	g, _ := errgroup.WithContext(ctx)

	kind := registry.EntityType(v.Kind)
	if v.Kind != models.PaymentKindBitcoin {
		kind = registry.EntityPayment
	}

	g.Go(func() error {
		out[0] = runWithTimeout(ctx, "scam_db", string(v.Kind), v.Value, func(c context.Context) (interface{}, error) {
			return o.registry.CheckPayment(c, v.Value, kind)
		})
		return nil
	})
	g.Go(func() error {
		out[1] = runWithTimeout(ctx, "exa_search", string(v.Kind), v.Value, func(c context.Context) (interface{}, error) {
			return o.webSearch.Search(c, v.Value, string(v.Kind)), nil
		})
		return nil
	})
	_ = g.Wait()

	markUsed(toolsUsed, out)
	return out
}

func (o *Orchestrator) evidenceForCompany(ctx context.Context, c models.Company, toolsUsed map[string]bool) []models.AgentEvidence {
	out := make([]models.AgentEvidence, 3)
	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		if o.companyLookup == nil {
			out[0] = models.AgentEvidence{ToolName: "company_registry", EntityType: "company", EntityValue: c.Normalized,
				Success: false, ErrorMessage: "no company registry configured for this jurisdiction"}
			return nil
		}
		out[0] = runWithTimeout(ctx, "company_registry", "company", c.Normalized, func(ctx context.Context) (interface{}, error) {
			return o.companyLookup.Lookup(ctx, c.Normalized, c.CountryHint)
		})
		return nil
	})
	g.Go(func() error {
		out[1] = runWithTimeout(ctx, "pattern_heuristics", "company", c.Normalized, func(ctx context.Context) (interface{}, error) {
			return companyPatternHeuristic(c), nil
		})
		return nil
	})
	g.Go(func() error {
		out[2] = runWithTimeout(ctx, "exa_search", "company", c.Normalized, func(ctx context.Context) (interface{}, error) {
			return o.webSearch.Search(ctx, c.Normalized, "company"), nil
		})
		return nil
	})
	_ = g.Wait()

	markUsed(toolsUsed, out)
	return out
}

// companyPatternHeuristic flags the "department/division" naming
// pattern scammers use to impersonate a subunit of a real company.
func companyPatternHeuristic(c models.Company) map[string]interface{} {
	return map[string]interface{}{
		"is_department_variant": c.IsDepartmentVariant,
		"suspicious":            c.IsDepartmentVariant,
	}
}

func markUsed(toolsUsed map[string]bool, evidence []models.AgentEvidence) {
	for _, e := range evidence {
		if e.ToolName != "" {
			toolsUsed[e.ToolName] = true
		}
	}
}
