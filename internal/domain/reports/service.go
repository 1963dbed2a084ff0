package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/yemzchef-ui/superchefs/internal/core/apperror"
	"github.com/yemzchef-ui/superchefs/internal/core/id"
	"github.com/yemzchef-ui/superchefs/internal/core/types"
	"github.com/yemzchef-ui/superchefs/internal/domain/ledger"
	"github.com/yemzchef-ui/superchefs/pkg/logger"
)

var tracer = otel.Tracer("superchefs/reports")

// Config tunes the report service.
type Config struct {
	// Location defines day boundaries for date filters.
	Location *time.Location
	// Basis is used when a filter does not name one.
	Basis ledger.Basis
	// RatioThreshold is the percentage above which ratios are flagged.
	RatioThreshold types.Money
	// RatioRule is a CEL expression; see RatioRule.
	RatioRule string
}

// DefaultConfig returns the bakery defaults.
func DefaultConfig() Config {
	return Config{
		Location:       time.UTC,
		Basis:          ledger.BasisSelling,
		RatioThreshold: ledger.DefaultRatioThreshold,
		RatioRule:      DefaultRatioRule,
	}
}

// Service computes ledger reports.
type Service struct {
	repo  Repository
	cache Cache
	rule  *RatioRule
	cfg   Config
}

// NewService wires a Repository with an optional Cache (nil disables caching).
func NewService(repo Repository, cache Cache, cfg Config) (*Service, error) {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Basis == "" {
		cfg.Basis = ledger.BasisSelling
	}
	if cfg.RatioThreshold.IsZero() {
		cfg.RatioThreshold = ledger.DefaultRatioThreshold
	}
	rule, err := NewRatioRule(cfg.RatioRule, cfg.RatioThreshold)
	if err != nil {
		return nil, err
	}
	return &Service{repo: repo, cache: cache, rule: rule, cfg: cfg}, nil
}

// Location returns the zone that defines report day boundaries.
func (s *Service) Location() *time.Location { return s.cfg.Location }

// StockSummary aggregates opening, closing, damages, stock-in and
// transfers-out per (entity, branch) for materials and products.
func (s *Service) StockSummary(ctx context.Context, f Filter) (*StockSummary, error) {
	ctx, span := s.startSpan(ctx, "StockSummary", f)
	defer span.End()

	if err := f.Validate(); err != nil {
		return nil, err
	}
	basis := s.basis(f)
	window, err := ledger.NewWindow(f.rng(), s.cfg.Location)
	if err != nil {
		return nil, apperror.NewValidation(err.Error())
	}

	var out StockSummary
	err = s.cached(ctx, f.cacheParts("stock-summary", basis), &out, func(ctx context.Context) (any, error) {
		return s.computeStockSummary(ctx, f, basis, window)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) computeStockSummary(ctx context.Context, f Filter, basis ledger.Basis, window ledger.Window) (*StockSummary, error) {
	var (
		ref       Reference
		materials []ledger.Record
		products  []ledger.Record
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		ref, err = s.repo.FetchReference(gctx)
		return err
	})
	g.Go(func() (err error) {
		materials, err = s.fetchKind(gctx, ledger.KindMaterial, f.BranchID, nil, window, true)
		return err
	})
	g.Go(func() (err error) {
		products, err = s.fetchKind(gctx, ledger.KindProduct, f.BranchID, nil, window, true)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fetchFailed("stock summary", err)
	}

	catalog := catalogOf(ref)
	branch := f.branch()
	matReport := ledger.NewAggregator(ledger.KindMaterial, catalog, basis).AggregateRange(materials, branch, window)
	prodReport := ledger.NewAggregator(ledger.KindProduct, catalog, basis).AggregateRange(products, branch, window)
	s.logReport(ctx, matReport)
	s.logReport(ctx, prodReport)

	return &StockSummary{
		From:      f.From,
		To:        f.To,
		BranchID:  f.BranchID,
		Basis:     basis,
		Materials: matReport,
		Products:  prodReport,
		Combined:  matReport.Total.Add(prodReport.Total),
	}, nil
}

// costInputs are the fetched inputs of the profit metrics.
type costInputs struct {
	ref             Reference
	sales           []ledger.SaleLine
	complimentary   []ledger.Record
	productDamages  []ledger.Record
	materialDamages []ledger.Record
	materialUsage   []ledger.Record
	imprest         []ledger.Expense
}

func (c costInputs) buckets() []ledger.CostBucket {
	return []ledger.CostBucket{
		ledger.FlowCosts(c.complimentary),
		ledger.FlowCosts(c.productDamages),
		ledger.FlowCosts(c.materialDamages),
		ledger.ExpenseCosts(c.imprest),
		ledger.FlowCosts(c.materialUsage),
	}
}

type flowFetch struct {
	dst  *[]ledger.Record
	kind ledger.EntityKind
	cat  ledger.Category
}

// fetchCostInputs loads sales and every cost bucket concurrently.
func (s *Service) fetchCostInputs(ctx context.Context, f Filter, window ledger.Window, withMaterials bool) (costInputs, error) {
	var in costInputs
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		in.ref, err = s.repo.FetchReference(gctx)
		return err
	})
	g.Go(func() (err error) {
		in.sales, err = s.repo.FetchSales(gctx, SalesQuery{
			BranchID:      f.BranchID,
			ProductID:     f.ProductID,
			CreatedAfter:  window.Start,
			CreatedBefore: window.End,
		})
		return err
	})
	flows := []flowFetch{
		{&in.complimentary, ledger.KindProduct, ledger.CategoryComplimentaryOut},
		{&in.productDamages, ledger.KindProduct, ledger.CategoryDamageOut},
	}
	if withMaterials {
		flows = append(flows,
			flowFetch{&in.materialDamages, ledger.KindMaterial, ledger.CategoryDamageOut},
			flowFetch{&in.materialUsage, ledger.KindMaterial, ledger.CategoryUsageOut},
		)
		g.Go(func() (err error) {
			in.imprest, err = s.repo.FetchExpenses(gctx, ExpenseQuery{
				BranchID:      f.BranchID,
				CreatedAfter:  window.Start,
				CreatedBefore: window.End,
			})
			return err
		})
	}
	for _, fl := range flows {
		q := MovementQuery{
			Kind:          fl.kind,
			Category:      fl.cat,
			BranchID:      f.BranchID,
			CreatedAfter:  window.Start,
			CreatedBefore: window.End,
		}
		if fl.kind == ledger.KindProduct {
			q.EntityID = f.ProductID
		}
		g.Go(func() (err error) {
			*fl.dst, err = s.repo.FetchMovements(gctx, q)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return costInputs{}, err
	}
	return in, nil
}

// AccountMetrics composes revenue, cost, profit and the cost ratio.
func (s *Service) AccountMetrics(ctx context.Context, f Filter) (*AccountMetrics, error) {
	ctx, span := s.startSpan(ctx, "AccountMetrics", f)
	defer span.End()

	if err := f.Validate(); err != nil {
		return nil, err
	}
	window, err := ledger.NewWindow(f.rng(), s.cfg.Location)
	if err != nil {
		return nil, apperror.NewValidation(err.Error())
	}

	var out AccountMetrics
	err = s.cached(ctx, f.cacheParts("metrics", ""), &out, func(ctx context.Context) (any, error) {
		in, err := s.fetchCostInputs(ctx, f, window, f.ProductID == nil)
		if err != nil {
			return nil, fetchFailed("account metrics", err)
		}
		metrics := ledger.ComposeMetrics(in.sales, in.buckets()...)
		status, err := s.rule.Status(metrics.CostToRevenueRatio)
		if err != nil {
			return nil, apperror.NewInternal(err)
		}

		breakdown := CostBreakdown{
			Sales:            types.Zero(),
			Complimentary:    bucketTotal(ledger.FlowCosts(in.complimentary)),
			ProductDamages:   bucketTotal(ledger.FlowCosts(in.productDamages)),
			MaterialDamages:  bucketTotal(ledger.FlowCosts(in.materialDamages)),
			Imprest:          bucketTotal(ledger.ExpenseCosts(in.imprest)),
			IndirectMaterial: bucketTotal(ledger.FlowCosts(in.materialUsage)),
		}
		for _, line := range in.sales {
			breakdown.Sales = breakdown.Sales.Add(line.TotalCost)
		}
		return &AccountMetrics{
			Metrics:       metrics,
			RatioStatus:   status,
			Threshold:     s.rule.Threshold(),
			CostBreakdown: breakdown,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// BranchPerformance ranks branches by profit.
func (s *Service) BranchPerformance(ctx context.Context, f Filter) (*BranchReport, error) {
	ctx, span := s.startSpan(ctx, "BranchPerformance", f)
	defer span.End()

	if err := f.Validate(); err != nil {
		return nil, err
	}
	window, err := ledger.NewWindow(f.rng(), s.cfg.Location)
	if err != nil {
		return nil, apperror.NewValidation(err.Error())
	}

	var out BranchReport
	err = s.cached(ctx, f.cacheParts("branch-performance", ""), &out, func(ctx context.Context) (any, error) {
		in, err := s.fetchCostInputs(ctx, f, window, true)
		if err != nil {
			return nil, fetchFailed("branch performance", err)
		}
		branches := in.ref.Branches
		if f.BranchID != nil {
			branches = nil
			for _, b := range in.ref.Branches {
				if b.ID == *f.BranchID {
					branches = append(branches, b)
				}
			}
		}
		return &BranchReport{
			Branches:  ledger.BranchPerformance(branches, s.rule.Threshold(), in.sales, in.buckets()...),
			Threshold: s.rule.Threshold(),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ProductPerformance lists UCRR/ACRR per product and the sales volume.
func (s *Service) ProductPerformance(ctx context.Context, f Filter) (*ProductReport, error) {
	ctx, span := s.startSpan(ctx, "ProductPerformance", f)
	defer span.End()

	if err := f.Validate(); err != nil {
		return nil, err
	}
	window, err := ledger.NewWindow(f.rng(), s.cfg.Location)
	if err != nil {
		return nil, apperror.NewValidation(err.Error())
	}

	var out ProductReport
	err = s.cached(ctx, f.cacheParts("product-performance", ""), &out, func(ctx context.Context) (any, error) {
		in, err := s.fetchCostInputs(ctx, f, window, false)
		if err != nil {
			return nil, fetchFailed("product performance", err)
		}
		catalog := catalogOf(in.ref)
		return &ProductReport{
			Products: ledger.ProductPerformance(catalog, s.rule.Threshold(), in.sales,
				ledger.FlowCosts(in.complimentary), ledger.FlowCosts(in.productDamages)),
			Volume:    ledger.SalesVolume(catalog, in.sales),
			Threshold: s.rule.Threshold(),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CurrentStock returns the current quantity of every entity of kind.
// Current stock is never cached; it backs usage decisions.
func (s *Service) CurrentStock(ctx context.Context, kind ledger.EntityKind, branchID *id.ID) (*CurrentStock, error) {
	ctx, span := tracer.Start(ctx, "reports.CurrentStock", trace.WithAttributes(
		attribute.String("kind", string(kind)),
		attribute.String("branch", idToken(branchID)),
	))
	defer span.End()

	if !kind.Valid() {
		return nil, apperror.NewValidation(fmt.Sprintf("unknown entity kind %q", kind))
	}

	var (
		ref     Reference
		records []ledger.Record
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		ref, err = s.repo.FetchReference(gctx)
		return err
	})
	g.Go(func() (err error) {
		records, err = s.fetchKind(gctx, kind, branchID, nil, ledger.Unbounded, false)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fetchFailed("current stock", err)
	}

	lines := ledger.StockLevels(kind, ledger.CurrentQuantities(records, ledger.DefaultSigns), catalogOf(ref))
	out := &CurrentStock{Kind: kind, BranchID: branchID, Lines: lines}
	for _, l := range lines {
		if l.LowStock {
			out.LowStock++
		}
	}
	return out, nil
}

// CheckUsage verifies a material usage against the branch's current quantity.
func (s *Service) CheckUsage(ctx context.Context, materialID, branchID id.ID, requested types.Quantity) (*UsageCheck, error) {
	ctx, span := tracer.Start(ctx, "reports.CheckUsage", trace.WithAttributes(
		attribute.String("material", materialID.String()),
		attribute.String("branch", branchID.String()),
	))
	defer span.End()

	if !requested.IsPositive() {
		return nil, ledger.CheckAvailable(0, requested, materialID)
	}

	records, err := s.fetchKind(ctx, ledger.KindMaterial, &branchID, &materialID, ledger.Unbounded, false)
	if err != nil {
		return nil, fetchFailed("usage check", err)
	}
	available := ledger.Accumulate(records, ledger.DefaultSigns)
	if err := ledger.CheckAvailable(available, requested, materialID); err != nil {
		logger.Info(ctx, "usage rejected",
			"material_id", materialID, "branch_id", branchID,
			"requested", requested.String(), "available", available.String())
		return nil, err
	}
	return &UsageCheck{
		MaterialID: materialID,
		BranchID:   branchID,
		Requested:  requested,
		Available:  available,
		Remaining:  available - requested,
	}, nil
}

// fetchKind loads every category of kind concurrently. With withClosing the
// closing snapshots are included. Snapshot categories are read without a
// lower bound so an opening balance can be resolved from history before the
// window; flows are read inside the window only.
func (s *Service) fetchKind(ctx context.Context, kind ledger.EntityKind, branchID, entityID *id.ID, window ledger.Window, withClosing bool) ([]ledger.Record, error) {
	var cats []ledger.Category
	for _, c := range ledger.CategoriesOf(kind) {
		if c == ledger.CategoryClosing && !withClosing {
			continue
		}
		cats = append(cats, c)
	}

	results := make([][]ledger.Record, len(cats))
	g, gctx := errgroup.WithContext(ctx)
	for i, cat := range cats {
		q := MovementQuery{
			Kind:          kind,
			Category:      cat,
			BranchID:      branchID,
			EntityID:      entityID,
			CreatedBefore: window.End,
		}
		if !cat.IsSnapshot() {
			q.CreatedAfter = window.Start
		}
		g.Go(func() (err error) {
			results[i], err = s.repo.FetchMovements(gctx, q)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []ledger.Record
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}

func (s *Service) basis(f Filter) ledger.Basis {
	if f.Basis != "" {
		return f.Basis
	}
	return s.cfg.Basis
}

// cached serves dest from the cache when one is configured.
func (s *Service) cached(ctx context.Context, parts []string, dest any, loader func(context.Context) (any, error)) error {
	if s.cache == nil {
		return decodeInto(ctx, dest, loader)
	}
	key, err := s.cache.BuildKey(ctx, parts...)
	if err != nil {
		logger.Warn(ctx, "report cache unavailable, computing directly", "error", err)
		return decodeInto(ctx, dest, loader)
	}
	return s.cache.FetchJSON(ctx, key, dest, loader)
}

func (s *Service) logReport(ctx context.Context, r ledger.RangeReport) {
	for _, w := range r.Warnings {
		logger.Warn(ctx, "missing reference price",
			"code", w.Code, "kind", w.Kind, "entity_id", w.EntityID, "basis", r.Basis)
	}
	if len(r.Omitted) > 0 {
		logger.Info(ctx, "pairs without opening stock omitted from summary",
			"kind", r.Kind, "count", len(r.Omitted))
	}
}

func (s *Service) startSpan(ctx context.Context, op string, f Filter) (context.Context, trace.Span) {
	ctx = logger.WithFields(ctx, "report", op, "branch", idToken(f.BranchID))
	return tracer.Start(ctx, "reports."+op, trace.WithAttributes(
		attribute.String("branch", idToken(f.BranchID)),
		attribute.String("from", timeToken(f.From)),
		attribute.String("to", timeToken(f.To)),
	))
}

// decodeInto runs loader and stores its result in dest, which must be a
// pointer of the same type as the loader result.
func decodeInto(ctx context.Context, dest any, loader func(context.Context) (any, error)) error {
	v, err := loader(ctx)
	if err != nil {
		return err
	}
	dv, sv := reflect.ValueOf(dest), reflect.ValueOf(v)
	if sv.Kind() == reflect.Pointer && sv.Type() == dv.Type() {
		dv.Elem().Set(sv.Elem())
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

func catalogOf(ref Reference) *ledger.Catalog {
	return ledger.NewCatalog(ref.Materials, ref.Products, ref.Recipes, ref.Branches)
}

func bucketTotal(b ledger.CostBucket) types.Money {
	total := types.Zero()
	for _, c := range b {
		total = total.Add(c.CostValue())
	}
	return total
}

// fetchFailed keeps app errors from the repository and wraps anything else
// so upstream failures never surface as empty data.
func fetchFailed(section string, err error) error {
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewFetchFailed(section, err)
}
