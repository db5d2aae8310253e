package service

import (
	"context"
	"fmt"

	"example.com/outcry/internal/cache"
	"example.com/outcry/internal/models"
	"example.com/outcry/internal/pricing"
	"example.com/outcry/internal/repository"
	"example.com/outcry/internal/utils"

	"github.com/pkg/errors"
)

// Categories

func (s *service) ListCategories(ctx context.Context) ([]*models.ProductCategory, error) {
	return s.repo.ListCategories(ctx)
}

func (s *service) CreateCategory(ctx context.Context, in CategoryInput) (*models.ProductCategory, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, invalid(err)
	}
	category := &models.ProductCategory{Name: in.Name}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *service) UpdateCategory(ctx context.Context, id uint, in CategoryInput) (*models.ProductCategory, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, invalid(err)
	}

	var category *models.ProductCategory
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		var err error
		if category, err = tx.FindCategoryByID(ctx, id); err != nil {
			return orNotFound(err, "Category", id)
		}
		category.Name = in.Name
		return tx.UpdateCategory(ctx, category)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, cache.ProductCatalogKey)
	return category, nil
}

// DeleteCategory refuses to remove a category that still has products
func (s *service) DeleteCategory(ctx context.Context, id uint) error {
	return s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		if _, err := tx.FindCategoryByID(ctx, id); err != nil {
			return orNotFound(err, "Category", id)
		}
		n, err := tx.CountProductsInCategory(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return conflictf("Cannot delete category. It has %d product(s).", n)
		}
		return tx.DeleteCategory(ctx, id)
	})
}

func (s *service) ListMeasureTypes(ctx context.Context) ([]*models.MeasureType, error) {
	return s.repo.ListMeasureTypes(ctx)
}

// Products

func (s *service) ListProducts(ctx context.Context) ([]models.ProductDetail, error) {
	return cached(ctx, s, cache.ProductCatalogKey, func() ([]models.ProductDetail, error) {
		products, err := s.repo.ListProducts(ctx)
		if err != nil {
			return nil, err
		}
		assignments, err := s.repo.ListAssignments(ctx)
		if err != nil {
			return nil, err
		}

		byProduct := make(map[uint][]*models.ProductProductVariable)
		for _, a := range assignments {
			byProduct[a.ProductID] = append(byProduct[a.ProductID], a)
		}

		details := make([]models.ProductDetail, 0, len(products))
		for _, p := range products {
			details = append(details, productDetail(p, byProduct[p.ProductID]))
		}
		return details, nil
	})
}

func (s *service) GetProduct(ctx context.Context, id uint) (*models.ProductDetail, error) {
	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, "Product", id)
	}
	assignments, err := s.repo.ListProductAssignments(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := productDetail(product, assignments)
	return &detail, nil
}

func (s *service) CreateProduct(ctx context.Context, in ProductInput) (*models.ProductDetail, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, invalid(err)
	}

	product := &models.Product{}
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		if err := applyProductInput(ctx, tx, product, in); err != nil {
			return err
		}
		return tx.CreateProduct(ctx, product)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, cache.ProductCatalogKey)
	return s.GetProduct(ctx, product.ProductID)
}

func (s *service) UpdateProduct(ctx context.Context, id uint, in ProductInput) (*models.ProductDetail, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, invalid(err)
	}

	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		product, err := tx.FindProductByID(ctx, id)
		if err != nil {
			return orNotFound(err, "Product", id)
		}
		if err := applyProductInput(ctx, tx, product, in); err != nil {
			return err
		}
		return tx.UpdateProduct(ctx, product)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, cache.ProductCatalogKey, cache.ProductCacheKey(id))
	return s.GetProduct(ctx, id)
}

func applyProductInput(ctx context.Context, tx repository.Repository, product *models.Product, in ProductInput) error {
	if _, err := tx.FindCategoryByID(ctx, in.ProductCategoryID); err != nil {
		return orNotFound(err, "Category", in.ProductCategoryID)
	}
	if in.MeasureTypeID != nil {
		if _, err := tx.FindMeasureTypeByID(ctx, *in.MeasureTypeID); err != nil {
			return orNotFound(err, "Measure type", *in.MeasureTypeID)
		}
	}
	product.Name = in.Name
	product.ProductCategoryID = in.ProductCategoryID
	product.MeasureTypeID = in.MeasureTypeID
	return nil
}

// DeleteProduct removes an unused product together with its variable assignments
func (s *service) DeleteProduct(ctx context.Context, id uint) error {
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		if _, err := tx.FindProductByID(ctx, id); err != nil {
			return orNotFound(err, "Product", id)
		}
		n, err := tx.CountItemsForProduct(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return conflictf("Cannot delete product. It is used by %d quote item(s).", n)
		}
		return tx.DeleteProduct(ctx, id)
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, cache.ProductCatalogKey, cache.ProductCacheKey(id))
	return nil
}

func (s *service) GetProductVariables(ctx context.Context, productID uint) ([]models.AssignedVariableDetail, error) {
	if _, err := s.repo.FindProductByID(ctx, productID); err != nil {
		return nil, orNotFound(err, "Product", productID)
	}
	return cached(ctx, s, cache.ProductCacheKey(productID), func() ([]models.AssignedVariableDetail, error) {
		assignments, err := s.repo.ListProductAssignments(ctx, productID)
		if err != nil {
			return nil, err
		}
		return assignedVariables(assignments), nil
	})
}

// AssignVariable links a variable to a product. A repeated assignment is
// reported and leaves the table untouched.
func (s *service) AssignVariable(ctx context.Context, productID, variableID uint, displayOrder *int) (*AssignResult, error) {
	if displayOrder != nil && *displayOrder < 1 {
		return nil, validationf("display_order must be at least 1")
	}

	result := &AssignResult{}
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		if _, err := tx.FindProductByID(ctx, productID); err != nil {
			return orNotFound(err, "Product", productID)
		}
		if _, err := tx.FindVariableByID(ctx, variableID); err != nil {
			return orNotFound(err, "Variable", variableID)
		}

		existing, err := tx.FindAssignment(ctx, productID, variableID)
		switch {
		case err == nil:
			result.AlreadyAssigned = true
			result.Message = "Variable already assigned to product"
			result.Assignment = existing
			return nil
		case !errors.Is(err, repository.ErrNotFound):
			return err
		}

		order := 0
		if displayOrder != nil {
			order = *displayOrder
		} else {
			highest, err := tx.MaxDisplayOrder(ctx, productID)
			if err != nil {
				return err
			}
			order = highest + 1
		}

		assignment := &models.ProductProductVariable{
			ProductID:         productID,
			ProductVariableID: variableID,
			DisplayOrder:      order,
		}
		if err := tx.CreateAssignment(ctx, assignment); err != nil {
			return err
		}
		result.Message = "Variable assigned successfully"
		result.Assignment = assignment
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.AlreadyAssigned {
		s.invalidate(ctx, cache.ProductCatalogKey, cache.ProductCacheKey(productID))
	}
	return result, nil
}

func (s *service) UnassignVariable(ctx context.Context, productID, variableID uint) error {
	if err := s.repo.DeleteAssignment(ctx, productID, variableID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("Assignment", fmt.Sprintf("%d/%d", productID, variableID))
		}
		return err
	}
	s.invalidate(ctx, cache.ProductCatalogKey, cache.ProductCacheKey(productID))
	return nil
}

// Variables

func (s *service) ListVariables(ctx context.Context) ([]models.VariableDetail, error) {
	variables, err := s.repo.ListVariables(ctx)
	if err != nil {
		return nil, err
	}
	assignments, err := s.repo.ListAssignments(ctx)
	if err != nil {
		return nil, err
	}

	products := make(map[uint][]uint)
	for _, a := range assignments {
		products[a.ProductVariableID] = append(products[a.ProductVariableID], a.ProductID)
	}

	details := make([]models.VariableDetail, 0, len(variables))
	for _, v := range variables {
		productIDs := products[v.ProductVariableID]
		if productIDs == nil {
			productIDs = []uint{}
		}
		details = append(details, models.VariableDetail{
			ProductVariableID: v.ProductVariableID,
			Name:              v.Name,
			DataType:          v.DataType,
			ProductIDs:        productIDs,
			Options:           nonNilOptions(v.Options),
		})
	}
	return details, nil
}

func (s *service) CreateVariable(ctx context.Context, in VariableInput) (*models.ProductVariable, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, invalid(err)
	}
	variable := &models.ProductVariable{Name: in.Name, DataType: in.DataType}
	if err := s.repo.CreateVariable(ctx, variable); err != nil {
		return nil, err
	}
	variable.Options = []models.VariableOption{}
	return variable, nil
}

func (s *service) UpdateVariable(ctx context.Context, id uint, in VariableInput) (*models.ProductVariable, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, invalid(err)
	}

	var (
		variable *models.ProductVariable
		keys     []string
	)
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		var err error
		if variable, err = tx.FindVariableByID(ctx, id); err != nil {
			return orNotFound(err, "Variable", id)
		}
		variable.Name = in.Name
		variable.DataType = in.DataType
		if err := tx.UpdateVariable(ctx, variable); err != nil {
			return err
		}
		keys, err = productKeysForVariable(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, keys...)
	return variable, nil
}

// DeleteVariable removes an unused variable with its options and assignments
func (s *service) DeleteVariable(ctx context.Context, id uint) error {
	var keys []string
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		if _, err := tx.FindVariableByID(ctx, id); err != nil {
			return orNotFound(err, "Variable", id)
		}
		n, err := tx.CountItemVariablesForVariable(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return conflictf("Cannot delete variable. It is selected on %d quote item(s).", n)
		}
		if keys, err = productKeysForVariable(ctx, tx, id); err != nil {
			return err
		}
		return tx.DeleteVariable(ctx, id)
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, keys...)
	return nil
}

// Options

func (s *service) CreateOption(ctx context.Context, in OptionInput) (*models.VariableOption, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, invalid(err)
	}

	option := &models.VariableOption{}
	var keys []string
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		if _, err := tx.FindVariableByID(ctx, in.ProductVariableID); err != nil {
			return orNotFound(err, "Variable", in.ProductVariableID)
		}
		applyOptionInput(option, in)
		if err := tx.CreateOption(ctx, option); err != nil {
			return err
		}
		var err error
		keys, err = productKeysForVariable(ctx, tx, in.ProductVariableID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, keys...)
	return option, nil
}

func (s *service) UpdateOption(ctx context.Context, id uint, in OptionInput) (*models.VariableOption, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, invalid(err)
	}

	var (
		option *models.VariableOption
		keys   []string
	)
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		var err error
		if option, err = tx.FindOptionByID(ctx, id); err != nil {
			return orNotFound(err, "Option", id)
		}
		if _, err := tx.FindVariableByID(ctx, in.ProductVariableID); err != nil {
			return orNotFound(err, "Variable", in.ProductVariableID)
		}
		previous := option.ProductVariableID
		applyOptionInput(option, in)
		if err := tx.UpdateOption(ctx, option); err != nil {
			return err
		}
		for _, variableID := range []uint{previous, in.ProductVariableID} {
			more, err := productKeysForVariable(ctx, tx, variableID)
			if err != nil {
				return err
			}
			keys = append(keys, more...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, keys...)
	return option, nil
}

func applyOptionInput(option *models.VariableOption, in OptionInput) {
	option.Name = in.Name
	option.BaseCost = in.BaseCost
	option.MultiplierCost = in.MultiplierCost
	option.ProductVariableID = in.ProductVariableID
}

func (s *service) DeleteOption(ctx context.Context, id uint) error {
	var keys []string
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		option, err := tx.FindOptionByID(ctx, id)
		if err != nil {
			return orNotFound(err, "Option", id)
		}
		n, err := tx.CountItemSelectionsForOption(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return conflictf("Cannot delete option. It is selected on %d quote item(s).", n)
		}
		if keys, err = productKeysForVariable(ctx, tx, option.ProductVariableID); err != nil {
			return err
		}
		return tx.DeleteOption(ctx, id)
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, keys...)
	return nil
}

// OptionCosts returns the pricing inputs of the requested options
func (s *service) OptionCosts(ctx context.Context, ids []uint) ([]models.OptionCost, error) {
	options, err := s.repo.ListOptionsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	costs := make([]models.OptionCost, 0, len(options))
	for _, o := range options {
		costs = append(costs, models.OptionCost{
			VariableOptionID: o.VariableOptionID,
			BaseCost:         o.BaseCost,
			MultiplierCost:   o.MultiplierCost,
		})
	}
	return costs, nil
}

// EstimatePrice prices an item configuration without persisting anything
func (s *service) EstimatePrice(ctx context.Context, in EstimateInput) (*pricing.Estimate, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, invalid(err)
	}

	product, err := s.repo.FindProductByID(ctx, in.ProductID)
	if err != nil {
		return nil, orNotFound(err, "Product", in.ProductID)
	}

	costs, err := s.OptionCosts(ctx, in.OptionIDs)
	if err != nil {
		return nil, err
	}
	if len(costs) != len(uniqueIDs(in.OptionIDs)) {
		return nil, validationf("one or more option_ids do not exist")
	}

	estimate := pricing.EstimateItem(pricing.KindOf(product.MeasureTypeID), costs, pricing.Dimensions{
		Width:    in.Width,
		Height:   in.Height,
		Quantity: in.Quantity,
	})
	return &estimate, nil
}

// productKeysForVariable lists the cache keys touched by a change to the variable
func productKeysForVariable(ctx context.Context, tx repository.Repository, variableID uint) ([]string, error) {
	assignments, err := tx.ListAssignments(ctx)
	if err != nil {
		return nil, err
	}
	keys := []string{cache.ProductCatalogKey}
	for _, a := range assignments {
		if a.ProductVariableID == variableID {
			keys = append(keys, cache.ProductCacheKey(a.ProductID))
		}
	}
	return keys, nil
}

func productDetail(p *models.Product, assignments []*models.ProductProductVariable) models.ProductDetail {
	detail := models.ProductDetail{
		Product:   *p,
		Variables: assignedVariables(assignments),
	}
	if p.Category != nil {
		detail.CategoryName = p.Category.Name
	}
	if p.MeasureType != nil {
		detail.MeasureTypeName = p.MeasureType.MeasureType
	}
	return detail
}

func assignedVariables(assignments []*models.ProductProductVariable) []models.AssignedVariableDetail {
	out := make([]models.AssignedVariableDetail, 0, len(assignments))
	for _, a := range assignments {
		if a.Variable == nil {
			continue
		}
		out = append(out, models.AssignedVariableDetail{
			ProductVariableID: a.ProductVariableID,
			Name:              a.Variable.Name,
			DataType:          a.Variable.DataType,
			DisplayOrder:      a.DisplayOrder,
			Options:           nonNilOptions(a.Variable.Options),
		})
	}
	return out
}

func nonNilOptions(options []models.VariableOption) []models.VariableOption {
	if options == nil {
		return []models.VariableOption{}
	}
	return options
}

func uniqueIDs(ids []uint) map[uint]struct{} {
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
