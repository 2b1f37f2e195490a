// Package catalog implements the product listing pipeline: filter options
// are compiled into SQL predicates, matching rows are counted, the
// requested page of ids is fetched and hydrated into full products, and
// pagination metadata is derived from the count.
package catalog

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"productapi/models"
)

type Config struct {
	Search SearchMode
}

type Engine struct {
	db        *sql.DB
	compiler  *Compiler
	assembler *Assembler
	hydrator  *Hydrator
	log       *zap.Logger
}

func New(db *sql.DB, cfg Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Engine{
		db:        db,
		compiler:  NewCompiler(NewResolver(db), cfg.Search),
		assembler: NewAssembler(db),
		hydrator:  NewHydrator(db),
		log:       logger,
	}
}

// rows stay invisible once soft-deleted, whatever the filters say
var notDeleted = Predicate{Clause: "NOT p.deleted"}

// ListProducts runs the whole pipeline for one request. The count runs
// first so an empty result skips the id fetch and hydration entirely.
func (e *Engine) ListProducts(ctx context.Context, filters FilterOptions, sort SortOptions, page PaginationRequest) (*models.ProductPage, error) {
	start := time.Now()
	page = page.normalize()

	compiled, err := e.compiler.Compile(ctx, filters)
	if err != nil {
		return nil, err
	}

	preds := append([]Predicate{notDeleted}, compiled...)

	e.log.Debug("listing products",
		zap.Int("predicates", len(compiled)),
		zap.Int("page", page.Page),
		zap.Int("limit", page.Limit))

	total, err := e.assembler.Count(ctx, preds)
	if err != nil {
		return nil, err
	}

	e.log.Debug("counted products", zap.Int("total", total))

	meta := Paginate(total, page.Page, page.Limit)

	if total == 0 {
		return &models.ProductPage{Data: []models.Product{}, Meta: meta}, nil
	}

	ids, err := e.assembler.FetchIds(ctx, preds, sort, page)
	if err != nil {
		return nil, err
	}

	products, err := e.hydrator.Hydrate(ctx, ids)
	if err != nil {
		return nil, err
	}

	e.log.Info("products listed",
		zap.Int("total", total),
		zap.Int("returned", len(products)),
		zap.Duration("elapsed", time.Since(start)))

	return &models.ProductPage{Data: products, Meta: meta}, nil
}
