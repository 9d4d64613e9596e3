// internal/tests/eav_test.go
package tests

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fiachehr/go-eav/internal/models"
	"github.com/fiachehr/go-eav/internal/query"
	"github.com/fiachehr/go-eav/internal/services"
)

type EAVTestSuite struct {
	suite.Suite
	db                 *gorm.DB
	resolver           *services.AttributeResolver
	attributeService   *services.AttributeService
	groupService       *services.GroupService
	valueService       *services.ValueService
	translationService *services.TranslationService
}

func (suite *EAVTestSuite) SetupSuite() {
	// Shared cache keeps every pooled connection on the same in-memory
	// database; without it each new connection starts empty.
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	suite.Require().NoError(err)
	suite.db = db

	err = db.AutoMigrate(
		&models.Attribute{},
		&models.AttributeGroup{},
		&models.AttributableAttributeGroup{},
		&models.AttributeValue{},
		&models.Translation{},
	)
	suite.Require().NoError(err)
}

func (suite *EAVTestSuite) SetupTest() {
	for _, table := range []string{
		"attributable_attributes",
		"attribute_group_attributes",
		"attributable_attribute_groups",
		"eav_translations",
		"attribute_groups",
		"attributes",
	} {
		suite.Require().NoError(suite.db.Exec("DELETE FROM " + table).Error)
	}

	suite.resolver = services.NewAttributeResolver(suite.db, 0)
	suite.attributeService = services.NewAttributeService(suite.db, suite.resolver)
	suite.groupService = services.NewGroupService(suite.db)
	suite.valueService = services.NewValueService(suite.db, suite.resolver)
	suite.translationService = services.NewTranslationService(suite.db)
}

func (suite *EAVTestSuite) createAttribute(title string, attrType models.AttributeType, values ...interface{}) *models.Attribute {
	req := &services.CreateAttributeRequest{
		Title:  title,
		Type:   int(attrType),
		Values: values,
	}
	attr, err := suite.attributeService.CreateAttribute(req)
	suite.Require().NoError(err)
	return attr
}

func (suite *EAVTestSuite) valueRowCount(entity models.EntityRef) int64 {
	var count int64
	suite.Require().NoError(suite.db.Model(&models.AttributeValue{}).
		Where("attributable_type = ? AND attributable_id = ?", entity.Type, entity.ID).
		Count(&count).Error)
	return count
}

func (suite *EAVTestSuite) TestSetIsIdempotentUpsert() {
	attr := suite.createAttribute("Color Name", models.TypeText)
	entity := models.EntityRef{Type: "product", ID: 1}

	suite.Require().NoError(suite.valueService.Set(entity, attr.Slug, "red", nil))
	suite.Require().NoError(suite.valueService.Set(entity, attr.Slug, "blue", nil))

	suite.Equal(int64(1), suite.valueRowCount(entity))

	value, err := suite.valueService.Get(entity, attr.Slug, nil)
	suite.Require().NoError(err)
	suite.Equal("blue", value)
}

func (suite *EAVTestSuite) TestTypedColumnExclusivity() {
	attr := suite.createAttribute("Weight", models.TypeNumber)
	entity := models.EntityRef{Type: "product", ID: 1}

	suite.Require().NoError(suite.valueService.Set(entity, attr.Slug, "42", nil))

	var row models.AttributeValue
	suite.Require().NoError(suite.db.
		Where("attributable_type = ? AND attributable_id = ?", entity.Type, entity.ID).
		First(&row).Error)

	suite.Equal([]string{models.ColumnNumber}, row.TypedColumnsSet())
	suite.Require().NotNil(row.ValueNumber)
	suite.Equal(int64(42), *row.ValueNumber)
	suite.Require().NotNil(row.Value)
	suite.Equal("42", *row.Value)
}

func (suite *EAVTestSuite) TestLocaleIsolation() {
	attr := suite.createAttribute("Display Title", models.TypeText)
	entity := models.EntityRef{Type: "product", ID: 1}

	en := "en"
	fa := "fa"
	suite.Require().NoError(suite.valueService.Set(entity, attr.Slug, "Laptop", &en))
	suite.Require().NoError(suite.valueService.Set(entity, attr.Slug, "لپ‌تاپ", &fa))

	suite.Equal(int64(2), suite.valueRowCount(entity))

	enValue, err := suite.valueService.Get(entity, attr.Slug, &en)
	suite.Require().NoError(err)
	suite.Equal("Laptop", enValue)

	faValue, err := suite.valueService.Get(entity, attr.Slug, &fa)
	suite.Require().NoError(err)
	suite.Equal("لپ‌تاپ", faValue)

	// The locale-less slot is independent of both.
	noLocale, err := suite.valueService.Get(entity, attr.Slug, nil)
	suite.Require().NoError(err)
	suite.Nil(noLocale)
}

func (suite *EAVTestSuite) TestUnknownSlugWriteIsNoOp() {
	entity := models.EntityRef{Type: "product", ID: 1}

	suite.Require().NoError(suite.valueService.Set(entity, "never-defined", "x", nil))
	suite.Equal(int64(0), suite.valueRowCount(entity))

	value, err := suite.valueService.Get(entity, "never-defined", nil)
	suite.Require().NoError(err)
	suite.Nil(value)
}

func (suite *EAVTestSuite) TestSetManyLocaleBatch() {
	attr := suite.createAttribute("Short Description", models.TypeText)
	entity := models.EntityRef{Type: "product", ID: 1}

	err := suite.valueService.SetMany(entity, map[string]interface{}{
		attr.Slug: map[string]interface{}{
			"en": "Fast laptop",
			"fa": "لپ‌تاپ سریع",
		},
	}, nil)
	suite.Require().NoError(err)

	en := "en"
	value, err := suite.valueService.Get(entity, attr.Slug, &en)
	suite.Require().NoError(err)
	suite.Equal("Fast laptop", value)

	fa := "fa"
	value, err = suite.valueService.Get(entity, attr.Slug, &fa)
	suite.Require().NoError(err)
	suite.Equal("لپ‌تاپ سریع", value)
}

func (suite *EAVTestSuite) TestSyncRemovesUnlistedValues() {
	color := suite.createAttribute("Color", models.TypeText)
	weight := suite.createAttribute("Weight Grams", models.TypeNumber)
	entity := models.EntityRef{Type: "product", ID: 1}

	en := "en"
	suite.Require().NoError(suite.valueService.Set(entity, color.Slug, "red", nil))
	suite.Require().NoError(suite.valueService.Set(entity, color.Slug, "قرمز", &en))
	suite.Require().NoError(suite.valueService.Set(entity, weight.Slug, 1200, nil))

	err := suite.valueService.Sync(entity, map[string]interface{}{
		weight.Slug: 900,
	}, nil)
	suite.Require().NoError(err)

	// Unlisted attributes are pruned across every locale.
	value, err := suite.valueService.Get(entity, color.Slug, nil)
	suite.Require().NoError(err)
	suite.Nil(value)

	value, err = suite.valueService.Get(entity, color.Slug, &en)
	suite.Require().NoError(err)
	suite.Nil(value)

	value, err = suite.valueService.Get(entity, weight.Slug, nil)
	suite.Require().NoError(err)
	suite.Equal(int64(900), value)
}

func (suite *EAVTestSuite) TestDeleteAttributeCascades() {
	attr := suite.createAttribute("Doomed", models.TypeText)
	entity := models.EntityRef{Type: "product", ID: 1}

	suite.Require().NoError(suite.valueService.Set(entity, attr.Slug, "x", nil))
	owner := services.TranslatableRef{Type: models.TranslatableAttribute, ID: attr.ID}
	suite.Require().NoError(suite.translationService.Set(owner, "fa", "title", "محکوم"))

	suite.Require().NoError(suite.attributeService.DeleteAttribute(attr.ID))

	suite.Equal(int64(0), suite.valueRowCount(entity))

	translations, err := suite.translationService.GetAll(owner)
	suite.Require().NoError(err)
	suite.Empty(translations)

	_, err = suite.attributeService.GetAttribute(attr.ID)
	suite.ErrorIs(err, models.ErrAttributeNotFound)
}

func (suite *EAVTestSuite) TestTypeLockedOnceValuesExist() {
	attr := suite.createAttribute("Locked Type", models.TypeText)
	entity := models.EntityRef{Type: "product", ID: 1}
	suite.Require().NoError(suite.valueService.Set(entity, attr.Slug, "x", nil))

	newType := int(models.TypeNumber)
	_, err := suite.attributeService.UpdateAttribute(attr.ID, &services.UpdateAttributeRequest{Type: &newType})
	suite.ErrorIs(err, models.ErrTypeImmutable)

	// Without stored values the change is allowed.
	empty := suite.createAttribute("Still Fluid", models.TypeText)
	updated, err := suite.attributeService.UpdateAttribute(empty.ID, &services.UpdateAttributeRequest{Type: &newType})
	suite.Require().NoError(err)
	suite.Equal(models.TypeNumber, updated.Type)
}

func (suite *EAVTestSuite) TestDuplicateSlugRejected() {
	suite.createAttribute("Weight", models.TypeNumber)

	_, err := suite.attributeService.CreateAttribute(&services.CreateAttributeRequest{
		Title: "Weight",
		Type:  int(models.TypeText),
	})
	suite.ErrorIs(err, models.ErrDuplicateSlug)
}

func (suite *EAVTestSuite) TestQueryIntersection() {
	color := suite.createAttribute("Color", models.TypeText)
	weight := suite.createAttribute("Weight Grams", models.TypeNumber)

	seed := []struct {
		id     uint
		color  string
		weight int
	}{
		{1, "red", 900},
		{2, "red", 1600},
		{3, "blue", 800},
	}
	for _, row := range seed {
		entity := models.EntityRef{Type: "product", ID: row.id}
		suite.Require().NoError(suite.valueService.Set(entity, color.Slug, row.color, nil))
		suite.Require().NoError(suite.valueService.Set(entity, weight.Slug, row.weight, nil))
	}

	ids, err := query.New(suite.db, "product", suite.resolver).
		WhereEquals(color.Slug, "red").
		Where(weight.Slug, "<", 1000).
		AttributableIDs()
	suite.Require().NoError(err)
	suite.Equal([]uint{1}, ids)
}

func (suite *EAVTestSuite) TestQueryRange() {
	weight := suite.createAttribute("Weight Grams", models.TypeNumber)
	for id, grams := range map[uint]int{1: 500, 2: 900, 3: 1500} {
		entity := models.EntityRef{Type: "product", ID: id}
		suite.Require().NoError(suite.valueService.Set(entity, weight.Slug, grams, nil))
	}

	ids, err := query.New(suite.db, "product", suite.resolver).
		WhereBetween(weight.Slug, 600, 1000).
		AttributableIDs()
	suite.Require().NoError(err)
	suite.Equal([]uint{2}, ids)
}

func (suite *EAVTestSuite) TestQueryAny() {
	color := suite.createAttribute("Color", models.TypeText)
	weight := suite.createAttribute("Weight Grams", models.TypeNumber)

	e1 := models.EntityRef{Type: "product", ID: 1}
	e2 := models.EntityRef{Type: "product", ID: 2}
	e3 := models.EntityRef{Type: "product", ID: 3}
	suite.Require().NoError(suite.valueService.Set(e1, color.Slug, "red", nil))
	suite.Require().NoError(suite.valueService.Set(e2, weight.Slug, 2000, nil))
	suite.Require().NoError(suite.valueService.Set(e3, color.Slug, "blue", nil))

	ids, err := query.New(suite.db, "product", suite.resolver).
		WhereAny([]query.Condition{
			{Attribute: color.Slug, Operator: "=", Value: "red"},
			{Attribute: weight.Slug, Operator: ">", Value: 1500},
		}).
		AttributableIDs()
	suite.Require().NoError(err)
	suite.Equal([]uint{1, 2}, ids)
}

func (suite *EAVTestSuite) TestQueryUnknownAttributeMatchesNothing() {
	color := suite.createAttribute("Color", models.TypeText)
	entity := models.EntityRef{Type: "product", ID: 1}
	suite.Require().NoError(suite.valueService.Set(entity, color.Slug, "red", nil))

	ids, err := query.New(suite.db, "product", suite.resolver).
		WhereEquals("missing-attribute", "red").
		AttributableIDs()
	suite.Require().NoError(err)
	suite.Empty(ids)

	// An unknown predicate fails the whole conjunction, not just its own step.
	ids, err = query.New(suite.db, "product", suite.resolver).
		WhereEquals(color.Slug, "red").
		WhereEquals("missing-attribute", "red").
		AttributableIDs()
	suite.Require().NoError(err)
	suite.Empty(ids)
}

func (suite *EAVTestSuite) TestAggregates() {
	weight := suite.createAttribute("Weight Grams", models.TypeNumber)
	color := suite.createAttribute("Color", models.TypeText)

	for id, grams := range map[uint]int{1: 100, 2: 300} {
		entity := models.EntityRef{Type: "product", ID: id}
		suite.Require().NoError(suite.valueService.Set(entity, weight.Slug, grams, nil))
		suite.Require().NoError(suite.valueService.Set(entity, color.Slug, "red", nil))
	}

	sum, err := query.New(suite.db, "product", suite.resolver).Sum(weight.Slug)
	suite.Require().NoError(err)
	suite.Equal(float64(400), sum)

	max, err := query.New(suite.db, "product", suite.resolver).Max(weight.Slug)
	suite.Require().NoError(err)
	suite.Equal(float64(300), max)

	// Non-numeric and unresolvable attributes aggregate to zero.
	sum, err = query.New(suite.db, "product", suite.resolver).Sum(color.Slug)
	suite.Require().NoError(err)
	suite.Zero(sum)

	sum, err = query.New(suite.db, "product", suite.resolver).Sum("missing-attribute")
	suite.Require().NoError(err)
	suite.Zero(sum)
}

func (suite *EAVTestSuite) TestAggregateScopedByPredicates() {
	color := suite.createAttribute("Color", models.TypeText)
	weight := suite.createAttribute("Weight Grams", models.TypeNumber)

	seed := []struct {
		id     uint
		color  string
		weight int
	}{
		{1, "red", 100},
		{2, "blue", 900},
	}
	for _, row := range seed {
		entity := models.EntityRef{Type: "product", ID: row.id}
		suite.Require().NoError(suite.valueService.Set(entity, color.Slug, row.color, nil))
		suite.Require().NoError(suite.valueService.Set(entity, weight.Slug, row.weight, nil))
	}

	sum, err := query.New(suite.db, "product", suite.resolver).
		WhereEquals(color.Slug, "red").
		Sum(weight.Slug)
	suite.Require().NoError(err)
	suite.Equal(float64(100), sum)
}

func (suite *EAVTestSuite) TestSearchText() {
	name := suite.createAttribute("Product Name", models.TypeText)
	suite.Require().NoError(suite.valueService.Set(models.EntityRef{Type: "product", ID: 1}, name.Slug, "Gaming Laptop", nil))
	suite.Require().NoError(suite.valueService.Set(models.EntityRef{Type: "product", ID: 2}, name.Slug, "Office Chair", nil))

	ids, err := query.New(suite.db, "product", suite.resolver).
		SearchText("laptop").
		AttributableIDs()
	suite.Require().NoError(err)
	suite.Equal([]uint{1}, ids)
}

func (suite *EAVTestSuite) TestGroupAttachmentAndMembership() {
	color := suite.createAttribute("Color", models.TypeText)
	size := suite.createAttribute("Size", models.TypeSelect, "S", "M", "L")

	group, err := suite.groupService.CreateGroup(&services.CreateGroupRequest{Title: "Variant Fields"})
	suite.Require().NoError(err)

	suite.Require().NoError(suite.groupService.SyncAttributes(group.ID, []uint{color.ID, size.ID}))

	entity := models.EntityRef{Type: "product", ID: 7}
	suite.Require().NoError(suite.groupService.AttachToEntity(entity, group.ID))
	// Repeat attach is a no-op.
	suite.Require().NoError(suite.groupService.AttachToEntity(entity, group.ID))

	attrs, err := suite.groupService.AttributesForEntity(entity)
	suite.Require().NoError(err)
	suite.Len(attrs, 2)

	suite.Require().NoError(suite.groupService.DetachFromEntity(entity, group.ID))
	attrs, err = suite.groupService.AttributesForEntity(entity)
	suite.Require().NoError(err)
	suite.Empty(attrs)
}

func (suite *EAVTestSuite) TestTranslationFallback() {
	attr := suite.createAttribute("Color", models.TypeText)
	owner := services.TranslatableRef{Type: models.TranslatableAttribute, ID: attr.ID}

	suite.Require().NoError(suite.translationService.Set(owner, "en", "title", "Color"))
	suite.Require().NoError(suite.translationService.Set(owner, "fa", "title", "رنگ"))

	value, err := suite.translationService.Get(owner, "fa", "title")
	suite.Require().NoError(err)
	suite.Equal("رنگ", value)

	value, err = suite.translationService.Get(owner, "de", "title", "en")
	suite.Require().NoError(err)
	suite.Equal("Color", value)

	value, err = suite.translationService.Get(owner, "de", "title")
	suite.Require().NoError(err)
	suite.Empty(value)
}

func (suite *EAVTestSuite) TestQueryOrderingAndPaging() {
	weight := suite.createAttribute("Weight Grams", models.TypeNumber)
	for id, grams := range map[uint]int{1: 900, 2: 100, 3: 500} {
		entity := models.EntityRef{Type: "product", ID: id}
		suite.Require().NoError(suite.valueService.Set(entity, weight.Slug, grams, nil))
	}

	ids, err := query.New(suite.db, "product", suite.resolver).
		OrderBy(weight.Slug, "desc").
		AttributableIDs()
	suite.Require().NoError(err)
	suite.Equal([]uint{1, 3, 2}, ids)

	ids, err = query.New(suite.db, "product", suite.resolver).
		OrderBy(weight.Slug, "asc").
		Offset(1).
		Limit(1).
		AttributableIDs()
	suite.Require().NoError(err)
	suite.Equal([]uint{3}, ids)

	// Entities without a value for the sort attribute trail the ranked ones.
	color := suite.createAttribute("Color", models.TypeText)
	suite.Require().NoError(suite.valueService.Set(models.EntityRef{Type: "product", ID: 4}, color.Slug, "red", nil))

	ids, err = query.New(suite.db, "product", suite.resolver).
		OrderBy(weight.Slug, "asc").
		AttributableIDs()
	suite.Require().NoError(err)
	suite.Equal([]uint{2, 3, 1, 4}, ids)
}

func (suite *EAVTestSuite) TestValueRefByNumericID() {
	attr := suite.createAttribute("Color", models.TypeText)
	entity := models.EntityRef{Type: "product", ID: 1}

	suite.Require().NoError(suite.valueService.Set(entity, attr.ID, "red", nil))

	value, err := suite.valueService.Get(entity, attr.Slug, nil)
	suite.Require().NoError(err)
	suite.Equal("red", value)

	value, err = suite.valueService.Get(entity, int(attr.ID), nil)
	suite.Require().NoError(err)
	suite.Equal("red", value)

	suite.Require().NoError(suite.valueService.Remove(entity, attr.ID, nil))
	suite.Equal(int64(0), suite.valueRowCount(entity))
}

func (suite *EAVTestSuite) TestGetAllKeyedAndGrouped() {
	title := suite.createAttribute("Display Title", models.TypeText)
	entity := models.EntityRef{Type: "product", ID: 1}

	en := "en"
	fa := "fa"
	suite.Require().NoError(suite.valueService.Set(entity, title.Slug, "Laptop", &en))
	suite.Require().NoError(suite.valueService.Set(entity, title.Slug, "لپ‌تاپ", &fa))
	suite.Require().NoError(suite.valueService.Set(entity, title.Slug, "fallback", nil))

	byID, err := suite.valueService.GetAll(entity, &en, services.GetAllOptions{KeyBy: services.KeyByID})
	suite.Require().NoError(err)
	suite.Equal("Laptop", byID[strconv.FormatUint(uint64(title.ID), 10)])

	byLogical, err := suite.valueService.GetAll(entity, &en, services.GetAllOptions{KeyBy: services.KeyByLogicalID})
	suite.Require().NoError(err)
	suite.Equal("Laptop", byLogical[title.LogicalID])

	grouped, err := suite.valueService.GetAll(entity, nil, services.GetAllOptions{GroupByLocale: true})
	suite.Require().NoError(err)
	locales, ok := grouped[title.Slug].(map[string]interface{})
	suite.Require().True(ok)
	suite.Equal("Laptop", locales["en"])
	suite.Equal("لپ‌تاپ", locales["fa"])
	suite.Equal("fallback", locales[""])
}

func TestEAVSuite(t *testing.T) {
	suite.Run(t, new(EAVTestSuite))
}
