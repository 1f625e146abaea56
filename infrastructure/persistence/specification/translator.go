// Package specification translates shared.Query descriptors into GORM clauses.
// Field and relation names are domain names; only whitelisted names reach SQL.
package specification

import (
	"fmt"

	"storefront/domain/shared"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Schema maps domain names to storage names for one aggregate table.
type Schema struct {
	// Columns maps a filter/sort field to its column.
	Columns map[string]string

	// Relations maps an include name to the GORM association to Preload.
	Relations map[string]string

	// IDColumn is the tie-break column appended to every ordering. Defaults to "id".
	IDColumn string
}

// Translator converts domain specifications to GORM queries
type Translator struct {
	schema Schema
}

func NewTranslator(schema Schema) *Translator {
	if schema.IDColumn == "" {
		schema.IDColumn = "id"
	}
	return &Translator{schema: schema}
}

// Filter applies only the criteria of q. Count queries use it.
func (t *Translator) Filter(db *gorm.DB, q shared.Query) (*gorm.DB, error) {
	if len(q.Criteria) == 0 {
		return db, nil
	}
	exprs := make([]clause.Expression, 0, len(q.Criteria))
	for _, c := range q.Criteria {
		expr, err := t.criterion(c)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
	}
	return db.Clauses(clause.Where{Exprs: exprs}), nil
}

// Validate checks every name in q against the schema, whether or not the
// query later needs it. Count and List reject the same queries.
func (t *Translator) Validate(q shared.Query) error {
	if err := q.Validate(); err != nil {
		return err
	}
	for _, c := range q.Criteria {
		if _, err := t.criterion(c); err != nil {
			return err
		}
	}
	for _, include := range q.Includes {
		if _, err := t.relation(include); err != nil {
			return err
		}
	}
	if q.Sort != nil {
		if _, err := t.column(q.Sort.Field); err != nil {
			return err
		}
	}
	return nil
}

// Apply applies criteria, includes, ordering and the paging window of q.
// Rows are always ordered by the requested sort and then by id ascending.
func (t *Translator) Apply(db *gorm.DB, q shared.Query) (*gorm.DB, error) {
	if err := t.Validate(q); err != nil {
		return nil, err
	}

	db, err := t.Filter(db, q)
	if err != nil {
		return nil, err
	}

	for _, include := range q.Includes {
		assoc, err := t.relation(include)
		if err != nil {
			return nil, err
		}
		db = db.Preload(assoc)
	}

	tieBreak := true
	if q.Sort != nil {
		col, err := t.column(q.Sort.Field)
		if err != nil {
			return nil, err
		}
		db = db.Order(clause.OrderByColumn{Column: t.qualified(col), Desc: q.Sort.Direction == shared.Desc})
		tieBreak = col != t.schema.IDColumn
	}
	if tieBreak {
		db = db.Order(clause.OrderByColumn{Column: t.qualified(t.schema.IDColumn)})
	}

	if q.Window != nil {
		db = db.Offset(q.Window.Skip).Limit(q.Window.Take)
	}
	return db, nil
}

func (t *Translator) criterion(c shared.Criterion) (clause.Expression, error) {
	col, err := t.column(c.Field)
	if err != nil {
		return nil, err
	}
	column := t.qualified(col)

	if c.Op == shared.OpIn {
		values := make([]any, len(c.Values))
		copy(values, c.Values)
		return clause.IN{Column: column, Values: values}, nil
	}

	if len(c.Values) != 1 {
		return nil, shared.NewValidationError("query", c.Field,
			fmt.Sprintf("operator %s on %q needs exactly one value, got %d", c.Op, c.Field, len(c.Values)))
	}
	v := c.Values[0]

	switch c.Op {
	case shared.OpEq:
		return clause.Eq{Column: column, Value: v}, nil
	case shared.OpNeq:
		return clause.Neq{Column: column, Value: v}, nil
	case shared.OpGt:
		return clause.Gt{Column: column, Value: v}, nil
	case shared.OpGte:
		return clause.Gte{Column: column, Value: v}, nil
	case shared.OpLt:
		return clause.Lt{Column: column, Value: v}, nil
	case shared.OpLte:
		return clause.Lte{Column: column, Value: v}, nil
	case shared.OpLike:
		return clause.Like{Column: column, Value: v}, nil
	default:
		return nil, shared.NewValidationError("query", c.Field, fmt.Sprintf("unsupported operator %q", c.Op))
	}
}

func (t *Translator) column(field string) (string, error) {
	col, ok := t.schema.Columns[field]
	if !ok {
		return "", shared.NewValidationError("query", field, fmt.Sprintf("unknown field %q", field))
	}
	return col, nil
}

func (t *Translator) relation(include string) (string, error) {
	assoc, ok := t.schema.Relations[include]
	if !ok {
		return "", shared.NewValidationError("query", include, fmt.Sprintf("unknown include %q", include))
	}
	return assoc, nil
}

func (t *Translator) qualified(col string) clause.Column {
	return clause.Column{Table: clause.CurrentTable, Name: col}
}
