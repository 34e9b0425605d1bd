package market

import "github.com/epeers/holdings/internal/models"

// StaticSegment is a fixed registry for assets that trade on no exchange
// (cash, bonds, commodities, mutual funds).
type StaticSegment struct {
	name  string
	index *models.HoldingIndex
}

// NewStaticSegment creates a registry from a fixed set of holdings
func NewStaticSegment(name string, holdings ...models.Holding) *StaticSegment {
	index := models.NewHoldingIndex()
	for _, h := range holdings {
		if _, _, exists := index.Get(h); !exists {
			index.Put(h, h, 0)
		}
	}
	return &StaticSegment{name: name, index: index}
}

func (s *StaticSegment) Name() string { return s.name }

func (s *StaticSegment) Lookup(h models.Holding) (models.Holding, bool) {
	ref, _, ok := s.index.Get(h)
	return ref, ok
}

// DefaultStaticSegments returns the built-in registries for non-tradable
// asset classes, in lookup order.
func DefaultStaticSegments() []Segment {
	return []Segment{
		NewStaticSegment("Cash",
			models.NewHolding("Cash", models.WithSector("Cash"), models.WithType(models.HoldingTypeCash)),
		),
		NewStaticSegment("Bonds",
			models.NewHolding("Bonds", models.WithSector("Bonds"), models.WithType(models.HoldingTypeBond)),
		),
		NewStaticSegment("Commodities",
			models.NewHolding("Gold", models.WithSector("Commodities"), models.WithType(models.HoldingTypeCommodity)),
			models.NewHolding("Silver", models.WithSector("Commodities"), models.WithType(models.HoldingTypeCommodity)),
			models.NewHolding("Bitcoin", models.WithSector("Crypto"), models.WithType(models.HoldingTypeCommodity)),
		),
		NewStaticSegment("Mutual Fund",
			models.NewHolding("Mutual Fund", models.WithSector("Mutual Fund"), models.WithType(models.HoldingTypeMutualFund)),
		),
	}
}
