package repository

import (
	"context"

	"example.com/outcry/internal/models"

	"gorm.io/gorm"
)

// Category operations implementation

func (r *repo) ListCategories(ctx context.Context) ([]*models.ProductCategory, error) {
	return findAll[models.ProductCategory](ctx, r, orderBy("name"))
}

func (r *repo) FindCategoryByID(ctx context.Context, id uint) (*models.ProductCategory, error) {
	return findOne[models.ProductCategory](ctx, r, nil, "product_category_id = ?", id)
}

func (r *repo) CreateCategory(ctx context.Context, category *models.ProductCategory) error {
	return r.create(ctx, category)
}

func (r *repo) UpdateCategory(ctx context.Context, category *models.ProductCategory) error {
	return r.save(ctx, category)
}

func (r *repo) DeleteCategory(ctx context.Context, id uint) error {
	return r.deleteWhere(ctx, &models.ProductCategory{}, "product_category_id = ?", id)
}

func (r *repo) CountProductsInCategory(ctx context.Context, id uint) (int64, error) {
	return r.count(ctx, &models.Product{}, "product_category_id = ?", id)
}

// Measure type operations implementation

func (r *repo) ListMeasureTypes(ctx context.Context) ([]*models.MeasureType, error) {
	return findAll[models.MeasureType](ctx, r, orderBy("measure_type_id"))
}

func (r *repo) FindMeasureTypeByID(ctx context.Context, id uint) (*models.MeasureType, error) {
	return findOne[models.MeasureType](ctx, r, nil, "measure_type_id = ?", id)
}

// Product operations implementation

func withProductLookups(db *gorm.DB) *gorm.DB {
	return db.Preload("Category").Preload("MeasureType")
}

func (r *repo) ListProducts(ctx context.Context) ([]*models.Product, error) {
	return findAll[models.Product](ctx, r, func(db *gorm.DB) *gorm.DB {
		return withProductLookups(db).Order("name").Order("product_id")
	})
}

func (r *repo) FindProductByID(ctx context.Context, id uint) (*models.Product, error) {
	return findOne[models.Product](ctx, r, withProductLookups, "product_id = ?", id)
}

func (r *repo) CreateProduct(ctx context.Context, product *models.Product) error {
	return r.create(ctx, product)
}

func (r *repo) UpdateProduct(ctx context.Context, product *models.Product) error {
	return r.save(ctx, product)
}

// DeleteProduct removes the product and its variable assignments
func (r *repo) DeleteProduct(ctx context.Context, id uint) error {
	gormDB, err := r.conn(ctx)
	if err != nil {
		return err
	}
	if err := gormDB.Where("product_id = ?", id).Delete(&models.ProductProductVariable{}).Error; err != nil {
		return translate(err, ErrDeleteFailed)
	}
	return r.deleteWhere(ctx, &models.Product{}, "product_id = ?", id)
}

func (r *repo) CountItemsForProduct(ctx context.Context, id uint) (int64, error) {
	return r.count(ctx, &models.Item{}, "product_id = ?", id)
}

// Variable operations implementation

func withOptions(db *gorm.DB) *gorm.DB {
	return db.Preload("Options", func(db *gorm.DB) *gorm.DB {
		return db.Order("variable_option_id")
	})
}

func (r *repo) ListVariables(ctx context.Context) ([]*models.ProductVariable, error) {
	return findAll[models.ProductVariable](ctx, r, func(db *gorm.DB) *gorm.DB {
		return withOptions(db).Order("product_variable_id")
	})
}

func (r *repo) FindVariableByID(ctx context.Context, id uint) (*models.ProductVariable, error) {
	return findOne[models.ProductVariable](ctx, r, withOptions, "product_variable_id = ?", id)
}

func (r *repo) CreateVariable(ctx context.Context, variable *models.ProductVariable) error {
	return r.create(ctx, variable)
}

func (r *repo) UpdateVariable(ctx context.Context, variable *models.ProductVariable) error {
	return r.save(ctx, variable)
}

// DeleteVariable removes the variable together with its options and product assignments
func (r *repo) DeleteVariable(ctx context.Context, id uint) error {
	gormDB, err := r.conn(ctx)
	if err != nil {
		return err
	}
	if err := gormDB.Where("product_variable_id = ?", id).Delete(&models.VariableOption{}).Error; err != nil {
		return translate(err, ErrDeleteFailed)
	}
	if err := gormDB.Where("product_variable_id = ?", id).Delete(&models.ProductProductVariable{}).Error; err != nil {
		return translate(err, ErrDeleteFailed)
	}
	return r.deleteWhere(ctx, &models.ProductVariable{}, "product_variable_id = ?", id)
}

func (r *repo) CountItemVariablesForVariable(ctx context.Context, id uint) (int64, error) {
	return r.count(ctx, &models.ItemVariable{}, "product_variable_id = ?", id)
}

// Option operations implementation

func (r *repo) FindOptionByID(ctx context.Context, id uint) (*models.VariableOption, error) {
	return findOne[models.VariableOption](ctx, r, nil, "variable_option_id = ?", id)
}

func (r *repo) ListOptionsByIDs(ctx context.Context, ids []uint) ([]*models.VariableOption, error) {
	if len(ids) == 0 {
		return []*models.VariableOption{}, nil
	}
	return findAll[models.VariableOption](ctx, r, func(db *gorm.DB) *gorm.DB {
		return db.Where("variable_option_id IN ?", ids).Order("variable_option_id")
	})
}

func (r *repo) CreateOption(ctx context.Context, option *models.VariableOption) error {
	return r.create(ctx, option)
}

func (r *repo) UpdateOption(ctx context.Context, option *models.VariableOption) error {
	return r.save(ctx, option)
}

func (r *repo) DeleteOption(ctx context.Context, id uint) error {
	return r.deleteWhere(ctx, &models.VariableOption{}, "variable_option_id = ?", id)
}

func (r *repo) CountItemSelectionsForOption(ctx context.Context, id uint) (int64, error) {
	return r.count(ctx, &models.ItemVariableOption{}, "variable_option_id = ?", id)
}

// Assignment operations implementation

func withAssignedVariable(db *gorm.DB) *gorm.DB {
	return db.Preload("Variable").Preload("Variable.Options", func(db *gorm.DB) *gorm.DB {
		return db.Order("variable_option_id")
	})
}

func (r *repo) ListAssignments(ctx context.Context) ([]*models.ProductProductVariable, error) {
	return findAll[models.ProductProductVariable](ctx, r, func(db *gorm.DB) *gorm.DB {
		return withAssignedVariable(db).Order("product_id").Order("display_order").Order("product_product_variable_id")
	})
}

func (r *repo) ListProductAssignments(ctx context.Context, productID uint) ([]*models.ProductProductVariable, error) {
	return findAll[models.ProductProductVariable](ctx, r, func(db *gorm.DB) *gorm.DB {
		return withAssignedVariable(db).
			Where("product_id = ?", productID).
			Order("display_order").
			Order("product_product_variable_id")
	})
}

func (r *repo) FindAssignment(ctx context.Context, productID, variableID uint) (*models.ProductProductVariable, error) {
	return findOne[models.ProductProductVariable](ctx, r, nil,
		"product_id = ? AND product_variable_id = ?", productID, variableID)
}

// MaxDisplayOrder returns the highest display order used by the product, or 0
func (r *repo) MaxDisplayOrder(ctx context.Context, productID uint) (int, error) {
	gormDB, err := r.conn(ctx)
	if err != nil {
		return 0, err
	}
	var highest int
	err = gormDB.Model(&models.ProductProductVariable{}).
		Where("product_id = ?", productID).
		Select("COALESCE(MAX(display_order), 0)").
		Scan(&highest).Error
	return highest, translate(err, nil)
}

func (r *repo) CreateAssignment(ctx context.Context, assignment *models.ProductProductVariable) error {
	return r.create(ctx, assignment)
}

func (r *repo) DeleteAssignment(ctx context.Context, productID, variableID uint) error {
	return r.deleteWhere(ctx, &models.ProductProductVariable{},
		"product_id = ? AND product_variable_id = ?", productID, variableID)
}
