package benefit

import (
	"strings"

	"github.com/shopspring/decimal"

	"pharmasales/m/domain"
)

var hundred = decimal.NewFromInt(100)

// Type describes one benefit category and its fixed discount.
type Type struct {
	Code        string          `json:"code"`
	Description string          `json:"description"`
	Percentage  decimal.Decimal `json:"percentage"`
}

var catalog = []Type{
	{Code: "ADULTO_MAYOR", Description: "Senior citizen", Percentage: decimal.NewFromInt(15)},
	{Code: "ESTUDIANTE", Description: "Student", Percentage: decimal.NewFromInt(10)},
	{Code: "FUNCIONARIO_PUBLICO", Description: "Public servant", Percentage: decimal.NewFromInt(12)},
	{Code: "DISCAPACIDAD", Description: "Person with disability", Percentage: decimal.NewFromInt(20)},
	{Code: "TRABAJADOR_SALUD", Description: "Healthcare worker", Percentage: decimal.NewFromInt(18)},
	{Code: "FAMILIA_NUMEROSA", Description: "Large family", Percentage: decimal.NewFromInt(8)},
}

var percentages = func() map[string]decimal.Decimal {
	m := make(map[string]decimal.Decimal, len(catalog))
	for _, t := range catalog {
		m[t.Code] = t.Percentage
	}
	return m
}()

// Types returns the benefit catalog in a stable order.
func Types() []Type {
	out := make([]Type, len(catalog))
	copy(out, catalog)
	return out
}

// PercentageFor looks up a benefit tag, ignoring case. Unknown tags yield 0.
func PercentageFor(benefitType string) decimal.Decimal {
	if pct, ok := percentages[strings.ToUpper(strings.TrimSpace(benefitType))]; ok {
		return pct
	}
	return decimal.Zero
}

// CalculateDiscount returns round(amount × pct/100, 2) using the fixed table.
func CalculateDiscount(benefitType string, amount *decimal.Decimal) decimal.Decimal {
	if benefitType == "" || amount == nil {
		return decimal.Zero
	}
	return discountOf(*amount, PercentageFor(benefitType))
}

// Resolve turns the raw benefits payload into a descriptor. A numeric
// percentage sent by the patient service wins over the local table.
func Resolve(data *domain.BenefitData) domain.Benefit {
	if data == nil {
		return domain.NoBenefit()
	}

	benefitType := strings.TrimSpace(data.BenefitType)
	if benefitType == "" {
		benefitType = domain.NoBenefitType
	}

	pct := PercentageFor(benefitType)
	if data.DiscountPercent != nil {
		pct = *data.DiscountPercent
	}

	return domain.Benefit{
		IsBeneficiary:      data.IsBeneficiary,
		BenefitType:        benefitType,
		DiscountPercentage: pct,
	}
}

// Apply computes discount and total for a subtotal. Beneficiaries are
// discounted by the table percentage of their tag; the descriptor percentage
// is only carried through for display. Non-beneficiaries get no discount.
func Apply(subtotal decimal.Decimal, b domain.Benefit) domain.Totals {
	if !b.IsBeneficiary {
		return domain.Totals{
			Subtotal:           subtotal,
			DiscountAmount:     decimal.Zero,
			DiscountPercentage: b.DiscountPercentage,
			TotalAmount:        subtotal,
		}
	}

	discount := CalculateDiscount(b.BenefitType, &subtotal)
	return domain.Totals{
		Subtotal:           subtotal,
		DiscountAmount:     discount,
		DiscountPercentage: b.DiscountPercentage,
		TotalAmount:        subtotal.Sub(discount),
	}
}

func discountOf(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(hundred).Round(2)
}
