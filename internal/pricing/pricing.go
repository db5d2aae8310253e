// Package pricing computes advisory item prices from variable option costs.
package pricing

import (
	"math"

	"example.com/outcry/internal/models"
)

// GSTRate is the goods and services tax applied on top of ex-GST prices
const GSTRate = 0.10

// Dimensions are the measured inputs of a line item
type Dimensions struct {
	Width    float64
	Height   float64
	Quantity float64
}

// Estimate is a price before and after GST, rounded to cents
type Estimate struct {
	CostExclGST float64 `json:"cost_excl_gst"`
	GST         float64 `json:"gst"`
	CostInclGST float64 `json:"cost_incl_gst"`
}

// OptionCost prices one option for the measure kind. Unknown kinds fall back
// to the area formula.
func OptionCost(kind models.MeasureKind, option models.OptionCost, d Dimensions) float64 {
	switch kind {
	case models.MeasureLinear:
		return option.BaseCost + option.MultiplierCost*d.Width*d.Quantity
	case models.MeasureQuantity:
		return option.BaseCost + option.MultiplierCost*d.Quantity
	default:
		return option.BaseCost + option.MultiplierCost*d.Width*d.Height*d.Quantity
	}
}

// EstimateItem sums the option costs and adds GST
func EstimateItem(kind models.MeasureKind, options []models.OptionCost, d Dimensions) Estimate {
	var excl float64
	for _, option := range options {
		excl += OptionCost(kind, option, d)
	}
	return FromExclGST(excl)
}

// FromExclGST derives GST and the inclusive total from an ex-GST amount
func FromExclGST(excl float64) Estimate {
	excl = RoundCents(excl)
	incl := IncludeGST(excl)
	return Estimate{
		CostExclGST: excl,
		GST:         RoundCents(incl - excl),
		CostInclGST: incl,
	}
}

// IncludeGST adds GST to an ex-GST amount
func IncludeGST(excl float64) float64 {
	return RoundCents(excl * (1 + GSTRate))
}

// RoundCents rounds half away from zero to two decimal places
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// KindOf maps a product's measure type onto a pricing formula
func KindOf(measureTypeID *uint) models.MeasureKind {
	if measureTypeID == nil {
		return models.MeasureArea
	}
	return models.MeasureKind(*measureTypeID)
}
