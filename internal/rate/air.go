package rate

import (
	"context"
	"strings"

	"freightquote/internal/alias"
	"freightquote/internal/sheets"
	"freightquote/internal/textnorm"
)

// Air prices air cargo per chargeable kilogram.
type Air struct {
	loc          *sheets.Locator
	aliases      *alias.Resolver
	table        Table
	hub          string
	defaultMinKg int
}

func (a *Air) Quote(ctx context.Context, req Request) (*Quote, error) {
	header, rows, err := a.table.read(ctx, a.loc)
	if err != nil {
		return nil, err
	}
	if header == nil {
		return nil, nil
	}
	name := a.table.Hint
	iOrig, err := column(name, header, "origen", "origin", "desde")
	if err != nil {
		return nil, err
	}
	iDest, err := column(name, header, "destino", "destination", "hasta")
	if err != nil {
		return nil, err
	}
	iPrice, err := column(name, header, "precio por kg", "precio kg", "preciokg", "usd kg", "usdkg", "tarifa kg", "precio", "tarifa")
	if err != nil {
		return nil, err
	}
	iMin := sheets.ColumnIndex(header, "minimo kg", "kg minimo", "min kg", "minimo", "minimum")

	hub := textnorm.Normalize(a.hub)
	candidates := a.aliases.Expand(req.Origin)
	if len(candidates) == 0 {
		return nil, nil
	}

	for _, row := range rows {
		dest := textnorm.Normalize(sheets.Cell(row, iDest))
		if hub == "" || !strings.Contains(dest, hub) {
			continue
		}
		orig := textnorm.Normalize(sheets.Cell(row, iOrig))
		if !containsAny(orig, candidates) {
			continue
		}
		price, ok := ParseAmount(sheets.Cell(row, iPrice))
		if !ok {
			continue
		}
		minKg := a.defaultMinKg
		if m, ok := ParseAmount(sheets.Cell(row, iMin)); ok && m > 0 {
			minKg = int(m)
		}
		chargeable := Chargeable(req.Kg, req.VolKg)
		billable, applied := Billable(chargeable, minKg)
		return &Quote{
			Mode:           ModeAir,
			Origin:         sheets.Cell(row, iOrig),
			Destination:    sheets.Cell(row, iDest),
			UnitPrice:      price,
			Total:          price * float64(billable),
			ChargeableKg:   chargeable,
			BillableKg:     billable,
			MinimumKg:      minKg,
			MinimumApplied: applied,
		}, nil
	}
	return nil, nil
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
