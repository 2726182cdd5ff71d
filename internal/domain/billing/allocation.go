package billing

import (
	"github.com/billing/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// AllocationStrategy names the rule that split a payment across invoice lines
type AllocationStrategy string

const (
	// StrategyTaxExclusiveNaive weighs lines by quantity x unit price, rounds each share
	// on its own and applies no correction
	StrategyTaxExclusiveNaive AllocationStrategy = "TAX_EXCLUSIVE_NAIVE"
	// StrategyTaxInclusiveResidue weighs lines by line total + tax; the last line absorbs
	// the rounding residue
	StrategyTaxInclusiveResidue AllocationStrategy = "TAX_INCLUSIVE_RESIDUE"
)

// IsValid checks if the strategy is known
func (s AllocationStrategy) IsValid() bool {
	return s == StrategyTaxExclusiveNaive || s == StrategyTaxInclusiveResidue
}

// String returns the string representation of AllocationStrategy
func (s AllocationStrategy) String() string {
	return string(s)
}

// Allocation is the portion of a payment attributed to one invoice line.
// InvoiceItemID is nil when the invoice had no lines to attribute to.
type Allocation struct {
	InvoiceItemID   *uuid.UUID      `json:"invoice_item_id"`
	AllocatedAmount decimal.Decimal `json:"allocated_amount"`
}

// AllocateTaxExclusive splits amount in proportion to each line's quantity x unit price.
// Shares are rounded independently, so they need not add up to amount.
// A zero raw total yields zero shares.
func AllocateTaxExclusive(items []InvoiceItem, amount decimal.Decimal) []Allocation {
	rawTotal := decimal.Zero
	for _, item := range items {
		rawTotal = rawTotal.Add(item.RawAmount())
	}

	return lo.Map(items, func(item InvoiceItem, _ int) Allocation {
		share := decimal.Zero
		if !rawTotal.IsZero() {
			share = valueobject.Share(amount, item.RawAmount(), rawTotal)
		}
		return Allocation{
			InvoiceItemID:   lo.ToPtr(item.ID),
			AllocatedAmount: share,
		}
	})
}

// AllocateTaxInclusive splits amount in proportion to each line's tax-inclusive total.
// Every line but the last gets its rounded share; the last gets whatever is left,
// so the shares add up to round2(amount) exactly.
// When the lines total zero, the whole amount goes to the first line, or to a nil
// line reference when there are no lines.
func AllocateTaxInclusive(items []InvoiceItem, amount decimal.Decimal) []Allocation {
	weights := lo.Map(items, func(item InvoiceItem, _ int) decimal.Decimal {
		return item.TaxInclusiveTotal()
	})
	total := valueobject.Sum2(weights...)

	if !total.IsPositive() {
		var target *uuid.UUID
		if len(items) > 0 {
			target = lo.ToPtr(items[0].ID)
		}
		return []Allocation{{InvoiceItemID: target, AllocatedAmount: valueobject.Round2(amount)}}
	}

	allocations := make([]Allocation, 0, len(items))
	running := decimal.Zero
	last := len(items) - 1
	for i, item := range items {
		var share decimal.Decimal
		if i == last {
			share = valueobject.Sub2(amount, running)
		} else {
			share = valueobject.Share(amount, weights[i], total)
			running = valueobject.Add2(running, share)
		}
		allocations = append(allocations, Allocation{
			InvoiceItemID:   lo.ToPtr(item.ID),
			AllocatedAmount: share,
		})
	}
	return allocations
}

// SumAllocations adds the allocated amounts, rounding after every addition
func SumAllocations(allocations []Allocation) decimal.Decimal {
	return valueobject.Sum2(lo.Map(allocations, func(a Allocation, _ int) decimal.Decimal {
		return a.AllocatedAmount
	})...)
}
