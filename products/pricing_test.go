package products

import (
	"math"
	"testing"

	"mjolnir/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestApplyPricingBasePrice(t *testing.T) {
	p := ApplyPricing(models.Product{ProductID: "g1"}, 200, 0)

	if !almostEqual(p.Price, 200) {
		t.Errorf("price = %v, want 200", p.Price)
	}
	if !almostEqual(p.OriginalPrice, 200) {
		t.Errorf("originalPrice = %v, want 200", p.OriginalPrice)
	}
	if !almostEqual(p.Cost, 100) {
		t.Errorf("cost = %v, want half the price", p.Cost)
	}
	if !p.PriceSet {
		t.Error("PriceSet not flipped")
	}
}

func TestApplyPricingKeepsExistingCost(t *testing.T) {
	p := ApplyPricing(models.Product{ProductID: "g1", Cost: 80}, 200, 0)
	if !almostEqual(p.Cost, 80) {
		t.Errorf("cost = %v, want the existing 80", p.Cost)
	}
}

func TestApplyPricingDiscountDoesNotCompound(t *testing.T) {
	p := ApplyPricing(models.Product{ProductID: "g1"}, 100, 0)

	once := ApplyPricing(p, 0, 10)
	if !almostEqual(once.Price, 90) {
		t.Fatalf("price after 10%% = %v, want 90", once.Price)
	}

	twice := ApplyPricing(once, 0, 10)
	if !almostEqual(twice.Price, 90) {
		t.Errorf("price after repeating 10%% = %v, want 90 (no compounding)", twice.Price)
	}

	deeper := ApplyPricing(twice, 0, 25)
	if !almostEqual(deeper.Price, 75) {
		t.Errorf("price after 25%% = %v, want 75 off the original", deeper.Price)
	}
	if !almostEqual(deeper.OriginalPrice, 100) {
		t.Errorf("originalPrice = %v, want untouched 100", deeper.OriginalPrice)
	}
}

func TestApplyPricingNewBaseClearsDiscount(t *testing.T) {
	p := ApplyPricing(models.Product{ProductID: "g1"}, 100, 20)
	if !almostEqual(p.Price, 80) {
		t.Fatalf("price = %v, want 80", p.Price)
	}

	repriced := ApplyPricing(p, 150, 0)
	if !almostEqual(repriced.Price, 150) {
		t.Errorf("price = %v, want 150", repriced.Price)
	}
	if repriced.DiscountPercentage != 0 {
		t.Errorf("discount = %v, want cleared", repriced.DiscountPercentage)
	}
	if !almostEqual(repriced.OriginalPrice, 150) {
		t.Errorf("originalPrice = %v, want reset to 150", repriced.OriginalPrice)
	}
}
