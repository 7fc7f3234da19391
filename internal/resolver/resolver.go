// Package resolver turns a postal code or a free-text address into the best available
// coordinate by cascading through the postal registry, the coordinate registry and the
// generic geocoder, and tags the outcome with a precision tier.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/UnknownOlympus/locus/internal/classifier"
	"github.com/UnknownOlympus/locus/internal/geocoding"
	"github.com/UnknownOlympus/locus/internal/metrics"
	"github.com/UnknownOlympus/locus/internal/models"
)

const (
	// DefaultProviderTimeout bounds every single provider call.
	DefaultProviderTimeout = 10 * time.Second
	// DefaultSearchLimit is the number of candidates requested for free-text searches.
	DefaultSearchLimit = geocoding.DefaultSearchLimit
	// cascadeLimit is the number of candidates requested per cascade step; only the best one is used.
	cascadeLimit = 1
)

// Human-readable warnings attached to every result below EXACT.
const (
	WarningStreet       = "approximate location: matched at street level"
	WarningNeighborhood = "approximate location: matched at neighborhood level"
	WarningCity         = "approximate location: only the city could be located"
	WarningNone         = "address found but its location is unknown"
)

// Options tune a Resolver. Zero values select the defaults.
type Options struct {
	ProviderTimeout time.Duration // per provider call, on top of the HTTP client timeout
	SearchLimit     int           // candidates requested for free-text searches
}

// Resolver is the resolution orchestrator. A Resolver serves one input source at a time:
// a request issued while another is in flight fails with models.ErrAlreadyResolving.
type Resolver struct {
	postal   geocoding.PostalRegistry     // structured address by postal code
	coords   geocoding.CoordinateRegistry // exact coordinate by postal code
	geocoder geocoding.Geocoder           // free-text search
	metrics  *metrics.Metrics
	log      *slog.Logger

	timeout     time.Duration
	searchLimit int

	busy  atomic.Bool
	state atomic.Int32
}

// New creates a Resolver over the three providers.
func New(
	log *slog.Logger,
	postal geocoding.PostalRegistry,
	coords geocoding.CoordinateRegistry,
	geocoder geocoding.Geocoder,
	metrics *metrics.Metrics,
	opts Options,
) *Resolver {
	if opts.ProviderTimeout <= 0 {
		opts.ProviderTimeout = DefaultProviderTimeout
	}
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = DefaultSearchLimit
	}

	return &Resolver{
		postal:      postal,
		coords:      coords,
		geocoder:    geocoder,
		metrics:     metrics,
		log:         log,
		timeout:     opts.ProviderTimeout,
		searchLimit: opts.SearchLimit,
	}
}

// State returns the current state, or the terminal state of the last request.
func (r *Resolver) State() State {
	return State(r.state.Load())
}

// Busy reports whether a resolution is in flight.
func (r *Resolver) Busy() bool {
	return r.busy.Load()
}

// Resolve classifies raw input and runs the postal-code or the free-text path.
func (r *Resolver) Resolve(ctx context.Context, raw string) (*models.ResolutionResult, error) {
	if !r.acquire(ctx) {
		return nil, models.ErrAlreadyResolving
	}
	defer r.release()

	r.transition(ctx, StateClassifying)
	query, err := classifier.Classify(raw)
	if err != nil {
		return r.fail(ctx, err)
	}

	r.log.DebugContext(ctx, "Query classified", "kind", query.Kind, "value", query.Value)

	if query.Kind == models.QueryPostalCode {
		return r.resolvePostalCode(ctx, query.Value)
	}

	return r.searchFreeText(ctx, query.Value)
}

// ResolvePostalCode is the strict entry point for flows where only a CEP is acceptable.
// Input that is not eight digits fails with models.ErrInvalidPostalCodeFormat.
func (r *Resolver) ResolvePostalCode(ctx context.Context, raw string) (*models.ResolutionResult, error) {
	if !r.acquire(ctx) {
		return nil, models.ErrAlreadyResolving
	}
	defer r.release()

	r.transition(ctx, StateClassifying)
	code, err := classifier.NormalizePostalCode(raw)
	if err != nil {
		return r.fail(ctx, err)
	}

	return r.resolvePostalCode(ctx, code)
}

// Search runs a single free-text search without classification or cascade and returns
// every candidate for disambiguation.
func (r *Resolver) Search(ctx context.Context, raw string) (*models.ResolutionResult, error) {
	if !r.acquire(ctx) {
		return nil, models.ErrAlreadyResolving
	}
	defer r.release()

	r.transition(ctx, StateClassifying)
	text := strings.TrimSpace(raw)
	if text == "" {
		return r.fail(ctx, models.ErrEmptyQuery)
	}

	return r.searchFreeText(ctx, text)
}

func (r *Resolver) acquire(ctx context.Context) bool {
	if !r.busy.CompareAndSwap(false, true) {
		r.log.WarnContext(ctx, "Resolution rejected, another one is in flight")
		r.metrics.ResolutionFailures.WithLabelValues(reasonOf(models.ErrAlreadyResolving)).Inc()
		return false
	}
	r.state.Store(int32(StateIdle))

	return true
}

func (r *Resolver) release() {
	r.busy.Store(false)
}

func (r *Resolver) transition(ctx context.Context, next State) {
	prev := State(r.state.Swap(int32(next)))
	r.log.DebugContext(ctx, "Resolver state changed", "from", prev, "to", next)
}

func (r *Resolver) fail(ctx context.Context, err error) (*models.ResolutionResult, error) {
	r.transition(ctx, StateFailed)
	reason := reasonOf(err)
	r.metrics.ResolutionFailures.WithLabelValues(reason).Inc()
	r.log.InfoContext(ctx, "Resolution failed", "reason", reason, "error", err)

	return nil, err
}

func (r *Resolver) resolved(
	ctx context.Context,
	kind models.QueryKind,
	result *models.ResolutionResult,
) (*models.ResolutionResult, error) {
	r.transition(ctx, StateResolved)
	r.metrics.Resolutions.WithLabelValues(kind.String(), result.Tier.String()).Inc()
	r.log.InfoContext(ctx, "Resolution finished",
		"kind", kind,
		"tier", result.Tier,
		"source", result.Source,
		"has_coordinate", result.Coordinate != nil,
	)

	return result, nil
}

// resolvePostalCode drives PostalLookup, CoordinateLookup and the geocoder cascade.
func (r *Resolver) resolvePostalCode(ctx context.Context, code string) (*models.ResolutionResult, error) {
	r.transition(ctx, StatePostalLookup)

	address, err := observe(ctx, r, r.postal.Name(), func(callCtx context.Context) (*models.NormalizedAddress, error) {
		return r.postal.LookupPostalCode(callCtx, code)
	})
	addressSource := r.postal.Name()

	switch {
	case err == nil && address == nil:
		return r.fail(ctx, models.ErrPostalCodeNotFound)
	case err == nil:
		r.log.DebugContext(ctx, "Postal registry returned address", "cep", code, "city", address.City)
	case errors.Is(err, models.ErrProviderUnavailable):
		r.log.WarnContext(ctx, "Postal registry unavailable, falling back to coordinate registry",
			"cep", code, "error", err)
		return r.resolveWithoutPostalRegistry(ctx, code, err)
	default:
		return r.fail(ctx, err)
	}

	r.transition(ctx, StateCoordinateLookup)
	coords, err := observe(ctx, r, r.coords.Name(), func(callCtx context.Context) (*models.GeoCoordinate, error) {
		return r.coords.ResolveCoordinate(callCtx, code)
	})
	if err == nil && coords != nil {
		return r.resolved(ctx, models.QueryPostalCode, &models.ResolutionResult{
			Address:    address,
			Coordinate: coords,
			Tier:       models.TierExact,
			Source:     r.coords.Name(),
		})
	}
	r.log.InfoContext(ctx, "No exact coordinate, starting geocoder cascade", "cep", code, "error", err)

	return r.runCascade(ctx, *address, addressSource)
}

// resolveWithoutPostalRegistry degrades to the coordinate registry, whose answer also
// carries a structured address.
func (r *Resolver) resolveWithoutPostalRegistry(
	ctx context.Context,
	code string,
	postalErr error,
) (*models.ResolutionResult, error) {
	type lookup struct {
		address *models.NormalizedAddress
		coords  *models.GeoCoordinate
	}

	r.transition(ctx, StateCoordinateLookup)
	found, err := observe(ctx, r, r.coords.Name(), func(callCtx context.Context) (lookup, error) {
		address, coords, errLookup := r.coords.Lookup(callCtx, code)
		return lookup{address: address, coords: coords}, errLookup
	})

	switch {
	case err != nil && errors.Is(err, models.ErrPostalCodeNotFound):
		return r.fail(ctx, err)
	case err != nil:
		return r.fail(ctx, errors.Join(postalErr, err))
	case found.address == nil:
		return r.fail(ctx, fmt.Errorf("%w: no structured address for %s", postalErr, code))
	case found.coords != nil:
		return r.resolved(ctx, models.QueryPostalCode, &models.ResolutionResult{
			Address:    found.address,
			Coordinate: found.coords,
			Tier:       models.TierExact,
			Source:     r.coords.Name(),
		})
	}

	return r.runCascade(ctx, *found.address, r.coords.Name())
}

// runCascade tries the cascade steps in order; the first non-empty candidate list wins.
// Exhaustion still returns the structured address, with tier NONE and no coordinate.
func (r *Resolver) runCascade(
	ctx context.Context,
	address models.NormalizedAddress,
	addressSource string,
) (*models.ResolutionResult, error) {
	r.transition(ctx, StateGeocoderCascade)

	for _, step := range BuildCascade(address) {
		stepLabel := strconv.Itoa(step.Number)
		if step.Skipped {
			r.logStep(ctx, step, "skipped", 0, nil)
			r.metrics.CascadeSteps.WithLabelValues(stepLabel, "skipped").Inc()
			continue
		}
		if err := ctx.Err(); err != nil {
			return r.fail(ctx, fmt.Errorf("cascade interrupted at step %d: %w", step.Number, err))
		}

		candidates, err := observe(ctx, r, r.geocoder.Name(), func(callCtx context.Context) ([]models.Candidate, error) {
			return r.geocoder.Search(callCtx, step.Query, cascadeLimit)
		})

		switch {
		case err != nil:
			r.logStep(ctx, step, "error", 0, err)
			r.metrics.CascadeSteps.WithLabelValues(stepLabel, "error").Inc()
			continue
		case len(candidates) == 0:
			r.logStep(ctx, step, "empty", 0, nil)
			r.metrics.CascadeSteps.WithLabelValues(stepLabel, "empty").Inc()
			continue
		}

		r.logStep(ctx, step, "hit", len(candidates), nil)
		r.metrics.CascadeSteps.WithLabelValues(stepLabel, "hit").Inc()

		coords := candidates[0].Coordinate
		return r.resolved(ctx, models.QueryPostalCode, &models.ResolutionResult{
			Address:    &address,
			Coordinate: &coords,
			Tier:       step.Tier,
			Source:     r.geocoder.Name(),
			Warning:    warningFor(step.Tier),
		})
	}

	r.transition(ctx, StateFailed)
	r.log.WarnContext(ctx, "Geocoder cascade exhausted, returning address without location",
		"cep", address.PostalCode, "reason", reasonOf(models.ErrNoCoordinateAvailable))
	r.metrics.Resolutions.WithLabelValues(models.QueryPostalCode.String(), models.TierNone.String()).Inc()

	return &models.ResolutionResult{
		Address: &address,
		Tier:    models.TierNone,
		Source:  addressSource,
		Warning: WarningNone,
	}, nil
}

// searchFreeText issues one search and surfaces every candidate.
func (r *Resolver) searchFreeText(ctx context.Context, text string) (*models.ResolutionResult, error) {
	r.transition(ctx, StateGeocoderCascade)

	candidates, err := observe(ctx, r, r.geocoder.Name(), func(callCtx context.Context) ([]models.Candidate, error) {
		return r.geocoder.Search(callCtx, text, r.searchLimit)
	})
	if err != nil {
		r.log.WarnContext(ctx, "Free-text search failed", "query", text, "error", err)
		return r.fail(ctx, fmt.Errorf("%w: %w", models.ErrNoResults, err))
	}
	if len(candidates) == 0 {
		return r.fail(ctx, fmt.Errorf("%w: %q", models.ErrNoResults, text))
	}

	coords := candidates[0].Coordinate

	return r.resolved(ctx, models.QueryFreeText, &models.ResolutionResult{
		Coordinate: &coords,
		Tier:       models.TierStreet,
		Source:     r.geocoder.Name(),
		Warning:    warningFor(models.TierStreet),
		Candidates: candidates,
	})
}

func (r *Resolver) logStep(ctx context.Context, step CascadeStep, outcome string, found int, err error) {
	attrs := []any{
		"step", step.Number,
		"query", step.Query,
		"tier", step.Tier,
		"outcome", outcome,
		"candidates", found,
	}
	if err != nil {
		attrs = append(attrs, "error", err)
	}
	r.log.InfoContext(ctx, "Cascade step finished", attrs...)
}

// observe runs one provider call under the per-call timeout and records its duration.
func observe[T any](
	ctx context.Context,
	r *Resolver,
	provider string,
	call func(context.Context) (T, error),
) (T, error) {
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	startTime := time.Now()
	out, err := call(callCtx)
	r.metrics.RequestSeconds.WithLabelValues(provider).Observe(time.Since(startTime).Seconds())

	if errors.Is(err, models.ErrProviderUnavailable) {
		r.metrics.ProviderErrors.WithLabelValues(provider).Inc()
	}

	return out, err
}

func warningFor(tier models.PrecisionTier) string {
	switch tier {
	case models.TierExact:
		return ""
	case models.TierStreet:
		return WarningStreet
	case models.TierNeighborhood:
		return WarningNeighborhood
	case models.TierCity:
		return WarningCity
	default:
		return WarningNone
	}
}

// reasonOf maps an error onto a short metrics/log label.
func reasonOf(err error) string {
	switch {
	case errors.Is(err, models.ErrAlreadyResolving):
		return "already_resolving"
	case errors.Is(err, models.ErrEmptyQuery):
		return "empty_query"
	case errors.Is(err, models.ErrInvalidPostalCodeFormat):
		return "invalid_postal_code"
	case errors.Is(err, models.ErrPostalCodeNotFound):
		return "postal_code_not_found"
	case errors.Is(err, models.ErrNoResults):
		return "no_results"
	case errors.Is(err, models.ErrNoCoordinateAvailable):
		return "no_coordinate"
	case errors.Is(err, models.ErrProviderUnavailable):
		return "provider_unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}
