package models

// ProductCategory groups products
type ProductCategory struct {
	ProductCategoryID uint   `json:"product_category_id" gorm:"primaryKey;Column:product_category_id"`
	Name              string `json:"name" gorm:"Column:name;not null"`
}

func (ProductCategory) TableName() string { return "product_categories" }

// MeasureType is the unit-of-measure tag on a product
type MeasureType struct {
	MeasureTypeID uint   `json:"measure_type_id" gorm:"primaryKey;Column:measure_type_id"`
	MeasureType   string `json:"measure_type" gorm:"Column:measure_type;not null"`
}

func (MeasureType) TableName() string { return "measure_types" }

// Product is a sellable item whose shape is configured through variables
type Product struct {
	ProductID         uint  `json:"product_id" gorm:"primaryKey;Column:product_id"`
	Name              string `json:"name" gorm:"Column:name;not null"`
	ProductCategoryID uint  `json:"product_category_id" gorm:"Column:product_category_id;index"`
	MeasureTypeID     *uint `json:"measure_type_id" gorm:"Column:measure_type_id"`

	Category    *ProductCategory `json:"-" gorm:"foreignKey:ProductCategoryID;references:ProductCategoryID"`
	MeasureType *MeasureType     `json:"-" gorm:"foreignKey:MeasureTypeID;references:MeasureTypeID"`
}

func (Product) TableName() string { return "products" }

// ProductVariable is a configurable dimension reusable across products
type ProductVariable struct {
	ProductVariableID uint   `json:"product_variable_id" gorm:"primaryKey;Column:product_variable_id"`
	Name              string `json:"name" gorm:"Column:name;not null"`
	DataType          string `json:"data_type" gorm:"Column:data_type;not null"`

	Options []VariableOption `json:"options,omitempty" gorm:"foreignKey:ProductVariableID;references:ProductVariableID"`
}

func (ProductVariable) TableName() string { return "product_variables" }

// VariableOption is one selectable choice of a variable with its pricing contribution
type VariableOption struct {
	VariableOptionID  uint    `json:"variable_option_id" gorm:"primaryKey;Column:variable_option_id"`
	Name              string  `json:"name" gorm:"Column:name;not null"`
	BaseCost          float64 `json:"base_cost" gorm:"Column:base_cost;not null;default:0"`
	MultiplierCost    float64 `json:"multiplier_cost" gorm:"Column:multiplier_cost;not null;default:0"`
	ProductVariableID uint    `json:"product_variable_id" gorm:"Column:product_variable_id;index"`
}

func (VariableOption) TableName() string { return "variable_options" }

// ProductProductVariable assigns a variable to a product with a display position
type ProductProductVariable struct {
	ProductProductVariableID uint `json:"product_product_variable_id" gorm:"primaryKey;Column:product_product_variable_id"`
	ProductID                uint `json:"product_id" gorm:"Column:product_id;uniqueIndex:idx_product_variable_pair"`
	ProductVariableID        uint `json:"product_variable_id" gorm:"Column:product_variable_id;uniqueIndex:idx_product_variable_pair"`
	DisplayOrder             int  `json:"display_order" gorm:"Column:display_order;not null"`

	Variable *ProductVariable `json:"-" gorm:"foreignKey:ProductVariableID;references:ProductVariableID"`
}

func (ProductProductVariable) TableName() string { return "product_product_variables" }
