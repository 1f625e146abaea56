package specification

import (
	"testing"

	"storefront/domain/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type widget struct {
	ID    string
	Name  string
	Price int64
	Parts []part `gorm:"foreignKey:WidgetID"`
}

type part struct {
	ID       string
	WidgetID string
}

type aggregate struct{}

func (aggregate) ID() string   { return "" }
func (aggregate) Version() int { return 0 }

func dryRun(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:translator?mode=memory&cache=shared"), &gorm.Config{
		DryRun: true,
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db.Model(&widget{})
}

func newTestTranslator() *Translator {
	return NewTranslator(Schema{
		Columns:   map[string]string{"id": "id", "name": "name", "price": "price"},
		Relations: map[string]string{"parts": "Parts"},
	})
}

func TestApplyBuildsWhereOrderAndWindow(t *testing.T) {
	spec := shared.NewSpecification[aggregate](
		shared.Like("name", "%mug%"),
		shared.Gte("price", 100),
		shared.In("id", "a", "b"),
	).SortBy("price", shared.Desc).Page(20, 10)

	db, err := newTestTranslator().Apply(dryRun(t), spec.Query())
	require.NoError(t, err)

	var out []widget
	stmt := db.Find(&out).Statement
	assert.Equal(t,
		"SELECT * FROM `widgets` WHERE `widgets`.`name` LIKE ? AND `widgets`.`price` >= ? AND `widgets`.`id` IN (?,?) ORDER BY `widgets`.`price` DESC,`widgets`.`id` LIMIT 10 OFFSET 20",
		stmt.SQL.String())
	assert.Equal(t, []any{"%mug%", 100, "a", "b"}, stmt.Vars)
}

func TestApplySortingByIDHasNoDuplicateTieBreak(t *testing.T) {
	spec := shared.NewSpecification[aggregate]().SortBy("id", shared.Asc)

	db, err := newTestTranslator().Apply(dryRun(t), spec.Query())
	require.NoError(t, err)

	var out []widget
	assert.Equal(t, "SELECT * FROM `widgets` ORDER BY `widgets`.`id`", db.Find(&out).Statement.SQL.String())
}

func TestFilterIgnoresSortAndWindow(t *testing.T) {
	spec := shared.NewSpecification[aggregate](shared.Neq("name", "x")).
		SortBy("name", shared.Asc).
		Page(5, 5)

	db, err := newTestTranslator().Filter(dryRun(t), spec.Query())
	require.NoError(t, err)

	var n int64
	assert.Equal(t, "SELECT count(*) FROM `widgets` WHERE `widgets`.`name` <> ?", db.Count(&n).Statement.SQL.String())
}

func TestRejectsUnknownNames(t *testing.T) {
	tr := newTestTranslator()

	cases := map[string]shared.Specification[aggregate]{
		"filter":  shared.NewSpecification[aggregate](shared.Eq("secret", 1)),
		"sort":    shared.NewSpecification[aggregate]().SortBy("secret", shared.Asc),
		"include": shared.NewSpecification[aggregate]().Include("secrets"),
		"arity":   shared.NewSpecification[aggregate](shared.Criterion{Field: "name", Op: shared.OpEq}),
		"op":      shared.NewSpecification[aggregate](shared.Criterion{Field: "name", Op: "regex", Values: []any{"x"}}),
	}
	for name, spec := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := tr.Apply(dryRun(t), spec.Query())
			assert.ErrorIs(t, err, shared.ErrInvalidInput)
			assert.ErrorIs(t, tr.Validate(spec.Query()), shared.ErrInvalidInput)
		})
	}
}

func TestApplyRejectsInvalidWindow(t *testing.T) {
	_, err := newTestTranslator().Apply(dryRun(t), shared.NewSpecification[aggregate]().Page(0, 0).Query())
	var perr *shared.PaginationError
	assert.ErrorAs(t, err, &perr)
}
