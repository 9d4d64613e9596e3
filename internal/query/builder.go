// internal/query/builder.go
package query

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/fiachehr/go-eav/internal/models"
)

// AttributeResolver is the slug/id lookup the builder needs. Satisfied by
// services.AttributeResolver.
type AttributeResolver interface {
	BySlug(slug string) (*models.Attribute, error)
	ByID(id uint) (*models.Attribute, error)
}

// Operators accepted by value predicates.
var allowedOperators = map[string]bool{
	"=": true, "!=": true, "<>": true,
	"<": true, ">": true, "<=": true, ">=": true,
	"LIKE": true,
}

// Condition is one attribute predicate for WhereMultiple / WhereAny.
// Attribute accepts a numeric id (uint) or a slug (string).
type Condition struct {
	Attribute interface{} `json:"attribute"`
	Operator  string      `json:"operator"`
	Value     interface{} `json:"value"`
}

// Builder accumulates attribute predicates over one entity type and compiles
// them lazily at a terminal operation. AND composition works by intersecting
// per-predicate entity id sets: a single fact row holds exactly one
// attribute's value, so row-level conjunction of two attribute predicates can
// never match.
type Builder struct {
	db         *gorm.DB
	entityType string
	resolver   AttributeResolver
	locale     *string
	steps      []step
	order      *ordering
	limit      int
	offset     int
	err        error
}

// ordering sorts the result ids by one attribute's typed column.
type ordering struct {
	attribute interface{}
	desc      bool
}

// step produces the entity id set matching one logical filter.
type step func() (map[uint]bool, error)

func New(db *gorm.DB, entityType string, resolver AttributeResolver) *Builder {
	return &Builder{db: db, entityType: entityType, resolver: resolver}
}

// ForEntity is a convenience constructor taking the discriminator from an
// entity value.
func ForEntity(db *gorm.DB, entity models.Attributable, resolver AttributeResolver) *Builder {
	return New(db, entity.AttributableType(), resolver)
}

// WithLocale restricts every predicate to rows stored under the given
// locale. Without it, predicates match rows in any locale.
func (b *Builder) WithLocale(locale string) *Builder {
	b.locale = &locale
	return b
}

// Where adds one attribute predicate. Operator is one of
// =, !=, <>, <, >, <=, >=, LIKE.
func (b *Builder) Where(attribute interface{}, operator string, value interface{}) *Builder {
	op := strings.ToUpper(strings.TrimSpace(operator))
	if !allowedOperators[op] {
		b.fail(fmt.Errorf("unsupported operator %q", operator))
		return b
	}

	b.addAttributeStep(attribute, func(attr *models.Attribute, q *gorm.DB) *gorm.DB {
		return q.Where(fmt.Sprintf("%s %s ?", attr.ValueColumn(), op), value)
	})
	return b
}

// WhereEquals is shorthand for Where(attribute, "=", value).
func (b *Builder) WhereEquals(attribute interface{}, value interface{}) *Builder {
	return b.Where(attribute, "=", value)
}

// WhereBetween adds a range predicate over the attribute's typed column.
func (b *Builder) WhereBetween(attribute interface{}, low, high interface{}) *Builder {
	b.addAttributeStep(attribute, func(attr *models.Attribute, q *gorm.DB) *gorm.DB {
		return q.Where(fmt.Sprintf("%s BETWEEN ? AND ?", attr.ValueColumn()), low, high)
	})
	return b
}

// WhereIn adds a set membership predicate.
func (b *Builder) WhereIn(attribute interface{}, values []interface{}) *Builder {
	b.addAttributeStep(attribute, func(attr *models.Attribute, q *gorm.DB) *gorm.DB {
		return q.Where(fmt.Sprintf("%s IN ?", attr.ValueColumn()), values)
	})
	return b
}

// WhereNotIn adds a negated set membership predicate.
func (b *Builder) WhereNotIn(attribute interface{}, values []interface{}) *Builder {
	b.addAttributeStep(attribute, func(attr *models.Attribute, q *gorm.DB) *gorm.DB {
		return q.Where(fmt.Sprintf("%s NOT IN ?", attr.ValueColumn()), values)
	})
	return b
}

// WhereNull matches entities whose stored value for the attribute is null.
func (b *Builder) WhereNull(attribute interface{}) *Builder {
	b.addAttributeStep(attribute, func(attr *models.Attribute, q *gorm.DB) *gorm.DB {
		return q.Where(fmt.Sprintf("%s IS NULL", attr.ValueColumn()))
	})
	return b
}

// WhereNotNull matches entities holding a non-null value for the attribute.
func (b *Builder) WhereNotNull(attribute interface{}) *Builder {
	b.addAttributeStep(attribute, func(attr *models.Attribute, q *gorm.DB) *gorm.DB {
		return q.Where(fmt.Sprintf("%s IS NOT NULL", attr.ValueColumn()))
	})
	return b
}

// WhereJSONKey matches entities whose structured value has the given key
// equal to the value ("coordinates.lat = 35.7").
func (b *Builder) WhereJSONKey(attribute interface{}, value interface{}, keys ...string) *Builder {
	b.addAttributeStep(attribute, func(attr *models.Attribute, q *gorm.DB) *gorm.DB {
		return q.Where(datatypes.JSONQuery(models.ColumnJSON).Equals(value, keys...))
	})
	return b
}

// WhereJSONContains matches entities whose structured value, a JSON array,
// contains the given element.
func (b *Builder) WhereJSONContains(attribute interface{}, value interface{}) *Builder {
	b.addAttributeStep(attribute, func(attr *models.Attribute, q *gorm.DB) *gorm.DB {
		return q.Where(datatypes.JSONArrayQuery(models.ColumnJSON).Contains(value))
	})
	return b
}

// WhereMultiple requires every condition to hold, each against its own
// attribute. Compiled as one sub-query per condition, intersecting the
// resulting entity id sets and short-circuiting on an empty intersection.
func (b *Builder) WhereMultiple(conditions []Condition) *Builder {
	for _, cond := range conditions {
		operator := cond.Operator
		if operator == "" {
			operator = "="
		}
		b.Where(cond.Attribute, operator, cond.Value)
	}
	return b
}

// WhereAny requires at least one condition to hold. Compiled as a single
// query whose OR branches each pair an attribute id with its value
// condition; one row satisfying one branch is enough. Unresolvable branches
// are dropped, and a fully unresolvable condition list matches nothing.
func (b *Builder) WhereAny(conditions []Condition) *Builder {
	conds := make([]Condition, len(conditions))
	copy(conds, conditions)

	b.steps = append(b.steps, func() (map[uint]bool, error) {
		branch := b.db.Session(&gorm.Session{NewDB: true})
		var any *gorm.DB

		for _, cond := range conds {
			attr, err := b.resolveAttribute(cond.Attribute)
			if err != nil {
				if errors.Is(err, models.ErrAttributeNotFound) {
					continue
				}
				return nil, err
			}

			operator := strings.ToUpper(strings.TrimSpace(cond.Operator))
			if operator == "" {
				operator = "="
			}
			if !allowedOperators[operator] {
				return nil, fmt.Errorf("unsupported operator %q", cond.Operator)
			}

			clause := branch.Where("attribute_id = ?", attr.ID).
				Where(fmt.Sprintf("%s %s ?", attr.ValueColumn(), operator), cond.Value)
			if any == nil {
				any = clause
			} else {
				any = any.Or(clause)
			}
		}

		if any == nil {
			return map[uint]bool{}, nil
		}
		return b.pluckIDs(b.baseQuery().Where(any))
	})
	return b
}

// OrderBy sorts the resulting entity ids by the attribute's stored value.
// Direction is "asc" or "desc". Entities without a stored value for the sort
// attribute come last, in ascending id order.
func (b *Builder) OrderBy(attribute interface{}, direction string) *Builder {
	switch strings.ToUpper(strings.TrimSpace(direction)) {
	case "", "ASC":
		b.order = &ordering{attribute: attribute}
	case "DESC":
		b.order = &ordering{attribute: attribute, desc: true}
	default:
		b.fail(fmt.Errorf("unsupported sort direction %q", direction))
	}
	return b
}

// Limit caps the number of entity ids the terminal operations return.
func (b *Builder) Limit(n int) *Builder {
	b.limit = n
	return b
}

// Offset skips the first n entity ids of the ordered result.
func (b *Builder) Offset(n int) *Builder {
	b.offset = n
	return b
}

// SearchText matches entities where any searchable text attribute contains
// the term as a substring.
func (b *Builder) SearchText(term string) *Builder {
	b.steps = append(b.steps, func() (map[uint]bool, error) {
		var attrIDs []uint
		searchable := []models.AttributeType{models.TypeText, models.TypeTextarea, models.TypeLocation}
		if err := b.db.Model(&models.Attribute{}).
			Where("type IN ? AND is_active = ?", searchable, true).
			Pluck("id", &attrIDs).Error; err != nil {
			return nil, fmt.Errorf("database error: %w", err)
		}
		if len(attrIDs) == 0 {
			return map[uint]bool{}, nil
		}

		query := b.baseQuery().
			Where("attribute_id IN ?", attrIDs).
			Where("LOWER(value_text) LIKE ?", "%"+strings.ToLower(term)+"%")
		return b.pluckIDs(query)
	})
	return b
}

// AttributableIDs compiles the accumulated predicates and returns the
// distinct ids of matching entities, ascending unless OrderBy is set. Limit
// and Offset window the ordered result.
func (b *Builder) AttributableIDs() ([]uint, error) {
	if b.err != nil {
		return nil, b.err
	}

	var result map[uint]bool
	if len(b.steps) == 0 {
		set, err := b.pluckIDs(b.baseQuery())
		if err != nil {
			return nil, err
		}
		result = set
	}

	for _, run := range b.steps {
		ids, err := run()
		if err != nil {
			return nil, err
		}

		if result == nil {
			result = ids
		} else {
			result = intersect(result, ids)
		}

		// Empty intersection cannot grow back, skip remaining work.
		if len(result) == 0 {
			return []uint{}, nil
		}
	}

	ids, err := b.rankIDs(result)
	if err != nil {
		return nil, err
	}
	return b.window(ids), nil
}

// rankIDs orders the id set by the sort attribute's typed column, falling
// back to ascending id when no OrderBy is set or the sort attribute cannot
// be resolved.
func (b *Builder) rankIDs(set map[uint]bool) ([]uint, error) {
	if b.order == nil || len(set) == 0 {
		return b.sortedIDs(set, nil)
	}

	attr, err := b.resolveAttribute(b.order.attribute)
	if err != nil {
		if errors.Is(err, models.ErrAttributeNotFound) {
			return b.sortedIDs(set, nil)
		}
		return nil, err
	}

	members := make([]uint, 0, len(set))
	for id := range set {
		members = append(members, id)
	}

	direction := "ASC"
	if b.order.desc {
		direction = "DESC"
	}

	var ranked []uint
	if err := b.baseQuery().
		Where("attribute_id = ?", attr.ID).
		Where("attributable_id IN ?", members).
		Order(fmt.Sprintf("%s %s", attr.ValueColumn(), direction)).
		Pluck("attributable_id", &ranked).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	out := make([]uint, 0, len(set))
	seen := make(map[uint]bool, len(set))
	for _, id := range ranked {
		if seen[id] || !set[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}

	// Entities without a value for the sort attribute trail in id order.
	rest, _ := b.sortedIDs(set, nil)
	for _, id := range rest {
		if !seen[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

func (b *Builder) window(ids []uint) []uint {
	if b.offset > 0 {
		if b.offset >= len(ids) {
			return []uint{}
		}
		ids = ids[b.offset:]
	}
	if b.limit > 0 && b.limit < len(ids) {
		ids = ids[:b.limit]
	}
	return ids
}

// Count returns the number of matching entities.
func (b *Builder) Count() (int64, error) {
	ids, err := b.AttributableIDs()
	if err != nil {
		return 0, err
	}
	return int64(len(ids)), nil
}

// Sum totals the attribute's numeric column over matching entities.
// Non-numeric and unresolvable attributes yield 0.
func (b *Builder) Sum(attribute interface{}) (float64, error) {
	return b.aggregate("SUM", attribute)
}

// Avg averages the attribute's numeric column over matching entities.
func (b *Builder) Avg(attribute interface{}) (float64, error) {
	return b.aggregate("AVG", attribute)
}

// Min returns the smallest stored numeric value over matching entities.
func (b *Builder) Min(attribute interface{}) (float64, error) {
	return b.aggregate("MIN", attribute)
}

// Max returns the largest stored numeric value over matching entities.
func (b *Builder) Max(attribute interface{}) (float64, error) {
	return b.aggregate("MAX", attribute)
}

// Values returns the attribute's stored values over matching entities, one
// entry per fact row.
func (b *Builder) Values(attribute interface{}) ([]interface{}, error) {
	return b.pluckValues(attribute, false)
}

// DistinctValues returns the attribute's distinct stored values over matching
// entities.
func (b *Builder) DistinctValues(attribute interface{}) ([]interface{}, error) {
	return b.pluckValues(attribute, true)
}

func (b *Builder) pluckValues(attribute interface{}, distinct bool) ([]interface{}, error) {
	if b.err != nil {
		return nil, b.err
	}

	attr, err := b.resolveAttribute(attribute)
	if err != nil {
		if errors.Is(err, models.ErrAttributeNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var rows []models.AttributeValue
	query := b.baseQuery().Where("attribute_id = ?", attr.ID)

	if len(b.steps) > 0 {
		ids, err := b.AttributableIDs()
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return nil, nil
		}
		query = query.Where("attributable_id IN ?", ids)
	}

	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	seen := make(map[string]bool, len(rows))
	values := make([]interface{}, 0, len(rows))
	for i := range rows {
		value := rows[i].TypedValue(attr.Type)
		if value == nil {
			continue
		}
		if distinct {
			fingerprint := fmt.Sprint(value)
			if seen[fingerprint] {
				continue
			}
			seen[fingerprint] = true
		}
		values = append(values, value)
	}
	return values, nil
}

func (b *Builder) aggregate(fn string, attribute interface{}) (float64, error) {
	if b.err != nil {
		return 0, b.err
	}

	attr, err := b.resolveAttribute(attribute)
	if err != nil {
		if errors.Is(err, models.ErrAttributeNotFound) {
			return 0, nil
		}
		return 0, err
	}
	if !attr.IsNumeric() {
		return 0, nil
	}

	query := b.baseQuery().Where("attribute_id = ?", attr.ID)

	if len(b.steps) > 0 {
		ids, err := b.AttributableIDs()
		if err != nil {
			return 0, err
		}
		if len(ids) == 0 {
			return 0, nil
		}
		query = query.Where("attributable_id IN ?", ids)
	}

	var result float64
	sel := fmt.Sprintf("COALESCE(%s(%s), 0)", fn, attr.ValueColumn())
	if err := query.Select(sel).Scan(&result).Error; err != nil {
		return 0, fmt.Errorf("database error: %w", err)
	}
	return result, nil
}

// addAttributeStep registers a sub-query step for one attribute predicate.
// An unresolvable attribute reference makes the step match nothing, which
// keeps broken search filters from silently widening results.
func (b *Builder) addAttributeStep(attribute interface{}, apply func(*models.Attribute, *gorm.DB) *gorm.DB) {
	b.steps = append(b.steps, func() (map[uint]bool, error) {
		attr, err := b.resolveAttribute(attribute)
		if err != nil {
			if errors.Is(err, models.ErrAttributeNotFound) {
				return map[uint]bool{}, nil
			}
			return nil, err
		}

		query := b.baseQuery().Where("attribute_id = ?", attr.ID)
		return b.pluckIDs(apply(attr, query))
	})
}

func (b *Builder) resolveAttribute(ref interface{}) (*models.Attribute, error) {
	switch v := ref.(type) {
	case *models.Attribute:
		return v, nil
	case models.Attribute:
		return &v, nil
	case uint:
		return b.resolver.ByID(v)
	case int:
		if v <= 0 {
			return nil, models.ErrAttributeNotFound
		}
		return b.resolver.ByID(uint(v))
	case string:
		return b.resolver.BySlug(v)
	}
	return nil, fmt.Errorf("unsupported attribute reference %T", ref)
}

func (b *Builder) baseQuery() *gorm.DB {
	query := b.db.Model(&models.AttributeValue{}).
		Where("attributable_type = ?", b.entityType)
	if b.locale != nil {
		query = query.Where("locale = ?", *b.locale)
	}
	return query
}

func (b *Builder) pluckIDs(query *gorm.DB) (map[uint]bool, error) {
	var ids []uint
	if err := query.Distinct().Pluck("attributable_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func (b *Builder) sortedIDs(set map[uint]bool, err error) ([]uint, error) {
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func intersect(a, b map[uint]bool) map[uint]bool {
	if len(b) < len(a) {
		a, b = b, a
	}
	out := make(map[uint]bool, len(a))
	for id := range a {
		if b[id] {
			out[id] = true
		}
	}
	return out
}
