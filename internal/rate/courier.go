package rate

import (
	"context"
	"fmt"
	"math"

	"freightquote/internal/alias"
	"freightquote/internal/sheets"
)

// regionLabels are the header spellings accepted for each courier region.
var regionLabels = map[alias.Region][]string{
	alias.RegionSouthAmerica: {"america sur", "sudamerica", "south america", "america del sur"},
	alias.RegionUSACanada:    {"usa canada", "usa", "eeuu", "canada"},
	alias.RegionEurope:       {"europa", "europe"},
	alias.RegionAsia:         {"asia"},
}

// Courier prices a parcel from its origin country's region and the nearest
// published weight bracket.
type Courier struct {
	loc     *sheets.Locator
	aliases *alias.Resolver
	table   Table
}

func (c *Courier) Quote(ctx context.Context, req Request) (*Quote, error) {
	header, rows, err := c.table.read(ctx, c.loc)
	if err != nil {
		return nil, err
	}
	if header == nil {
		return nil, nil
	}
	name := c.table.Hint
	iWeight, err := column(name, header, "peso", "kg", "weight")
	if err != nil {
		return nil, err
	}
	region := c.aliases.RegionOf(req.Country)
	iRegion, err := column(name, header, regionLabels[region]...)
	if err != nil {
		return nil, fmt.Errorf("region %s: %w", region, err)
	}

	best, bestBracket, bestDiff := -1, 0.0, math.Inf(1)
	for i, row := range rows {
		bracket, ok := ParseAmount(sheets.Cell(row, iWeight))
		if !ok {
			continue
		}
		if bracket == req.Weight {
			best, bestBracket, bestDiff = i, bracket, 0
			break
		}
		if d := math.Abs(bracket - req.Weight); d < bestDiff {
			best, bestBracket, bestDiff = i, bracket, d
		}
	}
	if best < 0 {
		return nil, nil
	}
	total, ok := ParseAmount(sheets.Cell(rows[best], iRegion))
	if !ok {
		return nil, nil
	}
	return &Quote{
		Mode:      ModeCourier,
		Origin:    req.Country,
		UnitPrice: total,
		Total:     total,
		Region:    region,
		Bracket:   bestBracket,
		Adjusted:  bestDiff != 0,
	}, nil
}
