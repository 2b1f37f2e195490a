package catalog

import (
	"context"
	"strings"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type SearchMode int

const (
	SearchLike SearchMode = iota
	SearchFullText
)

type FilterOptions struct {
	Search    string
	Category  string
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
	TagIds    []string
	Featured  *bool
	Published *bool
}

// Predicate is one WHERE fragment. Clause is a template whose $%d verbs are
// numbered by the assembler, one verb per parameter; a clause that reuses a
// parameter refers to it by index ($%[1]d).
type Predicate struct {
	Clause string
	Params []interface{}
}

type Compiler struct {
	resolver *Resolver
	search   SearchMode
}

func NewCompiler(resolver *Resolver, search SearchMode) *Compiler {
	return &Compiler{resolver: resolver, search: search}
}

// Compile maps filter options onto an ordered predicate list. Options that
// are absent, unparseable, or resolve to nothing contribute no predicate.
func (cp *Compiler) Compile(ctx context.Context, f FilterOptions) ([]Predicate, error) {
	var preds []Predicate

	if f.Category != "" {
		ids, err := cp.resolver.Resolve(ctx, f.Category)
		if err != nil {
			return nil, err
		}

		if len(ids) > 0 {
			preds = append(preds, categoryPredicate(ids))
		}
	}

	if f.Search != "" {
		preds = append(preds, cp.searchPredicate(f.Search))
	}

	switch {
	case f.MinPrice != nil && f.MaxPrice != nil:
		preds = append(preds, Predicate{
			Clause: "p.price BETWEEN $%d AND $%d",
			Params: []interface{}{*f.MinPrice, *f.MaxPrice},
		})
	case f.MinPrice != nil:
		preds = append(preds, Predicate{
			Clause: "p.price >= $%d",
			Params: []interface{}{*f.MinPrice},
		})
	case f.MaxPrice != nil:
		preds = append(preds, Predicate{
			Clause: "p.price <= $%d",
			Params: []interface{}{*f.MaxPrice},
		})
	}

	if f.Featured != nil {
		preds = append(preds, Predicate{
			Clause: "p.featured = $%d",
			Params: []interface{}{*f.Featured},
		})
	}

	if f.Published != nil {
		preds = append(preds, Predicate{
			Clause: "p.published = $%d",
			Params: []interface{}{*f.Published},
		})
	}

	if len(f.TagIds) > 0 {
		preds = append(preds, Predicate{
			Clause: "p.id IN (SELECT pt.product_id FROM product_tags pt WHERE pt.tag_id = ANY($%d))",
			Params: []interface{}{pq.Array(f.TagIds)},
		})
	}

	return preds, nil
}

func categoryPredicate(ids []string) Predicate {
	terms := make([]string, len(ids))
	params := make([]interface{}, len(ids))

	for i, id := range ids {
		terms[i] = "p.category_id = $%d"
		params[i] = id
	}

	return Predicate{
		Clause: "(" + strings.Join(terms, " OR ") + ")",
		Params: params,
	}
}

func (cp *Compiler) searchPredicate(term string) Predicate {
	if cp.search == SearchFullText {
		return Predicate{
			Clause: "to_tsvector('simple', coalesce(p.name, '') || ' ' || coalesce(p.description, '')) @@ plainto_tsquery('simple', $%d)",
			Params: []interface{}{term},
		}
	}

	return Predicate{
		Clause: "(p.name ILIKE $%[1]d OR p.description ILIKE $%[1]d OR p.slug ILIKE $%[1]d)",
		Params: []interface{}{"%" + term + "%"},
	}
}
