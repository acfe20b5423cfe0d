package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NoBenefitType is the benefit tag used when a patient has no benefit or the
// benefits lookup could not be answered.
const NoBenefitType = "NINGUNO"

type Patient struct {
	ID         int64  `json:"id"`
	RUT        string `json:"rut"`
	GivenName  string `json:"givenName"`
	FamilyName string `json:"familyName"`
	BirthDate  string `json:"birthDate,omitempty"`
	Address    string `json:"address,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

func (p *Patient) DisplayName() string {
	return strings.TrimSpace(p.GivenName + " " + p.FamilyName)
}

// BenefitData is the raw benefits payload as the patient service returns it.
// DiscountPercent is nil when the remote side did not send a number.
type BenefitData struct {
	IsBeneficiary   bool
	BenefitType     string
	DiscountPercent *decimal.Decimal
}

// Benefit is the resolved benefit descriptor applied to a sale.
type Benefit struct {
	IsBeneficiary      bool            `json:"isBeneficiary"`
	BenefitType        string          `json:"benefitType"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
}

func NoBenefit() Benefit {
	return Benefit{IsBeneficiary: false, BenefitType: NoBenefitType, DiscountPercentage: decimal.Zero}
}
