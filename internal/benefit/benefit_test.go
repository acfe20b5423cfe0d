package benefit

import (
	"testing"

	"github.com/shopspring/decimal"

	"pharmasales/m/domain"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr(d decimal.Decimal) *decimal.Decimal { return &d }

func TestPercentageFor(t *testing.T) {
	tests := map[string]string{
		"ADULTO_MAYOR":        "15",
		"adulto_mayor":        "15",
		"Estudiante":          "10",
		"FUNCIONARIO_PUBLICO": "12",
		"DISCAPACIDAD":        "20",
		"TRABAJADOR_SALUD":    "18",
		"FAMILIA_NUMEROSA":    "8",
		"NINGUNO":             "0",
		"VIP":                 "0",
		"":                    "0",
	}
	for tag, want := range tests {
		if got := PercentageFor(tag); !got.Equal(dec(want)) {
			t.Errorf("PercentageFor(%q) = %s, want %s", tag, got, want)
		}
	}
}

func TestCalculateDiscount(t *testing.T) {
	amount := dec("3000")
	if got := CalculateDiscount("ESTUDIANTE", &amount); !got.Equal(dec("300")) {
		t.Errorf("student discount = %s", got)
	}

	odd := dec("33.33")
	// 33.33 × 15% = 4.9995 -> 5.00
	if got := CalculateDiscount("adulto_mayor", &odd); !got.Equal(dec("5")) {
		t.Errorf("rounded discount = %s", got)
	}

	if got := CalculateDiscount("", &amount); !got.IsZero() {
		t.Errorf("empty tag = %s", got)
	}
	if got := CalculateDiscount("ESTUDIANTE", nil); !got.IsZero() {
		t.Errorf("nil amount = %s", got)
	}
}

func TestResolve(t *testing.T) {
	remote := dec("25")
	tests := []struct {
		name string
		in   *domain.BenefitData
		want domain.Benefit
	}{
		{"nil payload", nil, domain.NoBenefit()},
		{
			"table percentage",
			&domain.BenefitData{IsBeneficiary: true, BenefitType: "ESTUDIANTE"},
			domain.Benefit{IsBeneficiary: true, BenefitType: "ESTUDIANTE", DiscountPercentage: dec("10")},
		},
		{
			"remote percentage wins",
			&domain.BenefitData{IsBeneficiary: true, BenefitType: "ESTUDIANTE", DiscountPercent: &remote},
			domain.Benefit{IsBeneficiary: true, BenefitType: "ESTUDIANTE", DiscountPercentage: dec("25")},
		},
		{
			"missing type",
			&domain.BenefitData{IsBeneficiary: false},
			domain.Benefit{BenefitType: domain.NoBenefitType, DiscountPercentage: decimal.Zero},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.in)
			if got.IsBeneficiary != tt.want.IsBeneficiary || got.BenefitType != tt.want.BenefitType ||
				!got.DiscountPercentage.Equal(tt.want.DiscountPercentage) {
				t.Errorf("Resolve = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestApply(t *testing.T) {
	student := domain.Benefit{IsBeneficiary: true, BenefitType: "ESTUDIANTE", DiscountPercentage: dec("10")}
	got := Apply(dec("3000"), student)
	if !got.DiscountAmount.Equal(dec("300")) || !got.TotalAmount.Equal(dec("2700")) || !got.DiscountPercentage.Equal(dec("10")) {
		t.Errorf("Apply(student) = %+v", got)
	}

	notEligible := domain.Benefit{IsBeneficiary: false, BenefitType: "ESTUDIANTE", DiscountPercentage: dec("10")}
	got = Apply(dec("3000"), notEligible)
	if !got.DiscountAmount.IsZero() || !got.TotalAmount.Equal(dec("3000")) {
		t.Errorf("Apply(not beneficiary) = %+v", got)
	}

	remote := Resolve(&domain.BenefitData{IsBeneficiary: true, BenefitType: "ESTUDIANTE", DiscountPercent: ptr(dec("25"))})
	got = Apply(dec("3000"), remote)
	if !got.DiscountAmount.Equal(dec("300")) || !got.TotalAmount.Equal(dec("2700")) || !got.DiscountPercentage.Equal(dec("25")) {
		t.Errorf("Apply(remote 25%%, ESTUDIANTE) = %+v", got)
	}

	unknown := Resolve(&domain.BenefitData{IsBeneficiary: true, BenefitType: "OTRO", DiscountPercent: ptr(dec("25"))})
	got = Apply(dec("3000"), unknown)
	if !got.DiscountAmount.IsZero() || !got.TotalAmount.Equal(dec("3000")) {
		t.Errorf("Apply(remote 25%%, unknown tag) = %+v", got)
	}

	for _, sub := range []string{"0", "0.01", "1050.5", "99999.99"} {
		got := Apply(dec(sub), student)
		if !got.TotalAmount.Equal(got.Subtotal.Sub(got.DiscountAmount)) {
			t.Errorf("total != subtotal - discount for %s", sub)
		}
		if got.DiscountAmount.GreaterThan(got.Subtotal) || got.DiscountAmount.IsNegative() {
			t.Errorf("discount out of range for %s: %s", sub, got.DiscountAmount)
		}
	}
}

func TestTypesIsACopy(t *testing.T) {
	types := Types()
	if len(types) != 6 {
		t.Fatalf("len(Types()) = %d", len(types))
	}
	types[0].Percentage = dec("99")
	if !PercentageFor(types[0].Code).Equal(dec("15")) {
		t.Error("mutating Types() leaked into the table")
	}
}
