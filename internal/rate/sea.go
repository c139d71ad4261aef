package rate

import (
	"context"
	"strings"

	"freightquote/internal/sheets"
	"freightquote/internal/textnorm"
)

// Sea prices a container or consolidated shipment at the row price. With
// matchModality unset it serves land freight from the same table layout.
type Sea struct {
	loc           *sheets.Locator
	table         Table
	hub           string
	mode          Mode
	matchModality bool
}

func (s *Sea) Quote(ctx context.Context, req Request) (*Quote, error) {
	header, rows, err := s.table.read(ctx, s.loc)
	if err != nil {
		return nil, err
	}
	if header == nil {
		return nil, nil
	}
	name := s.table.Hint
	iOrig, err := column(name, header, "origen", "origin", "puerto origen", "desde")
	if err != nil {
		return nil, err
	}
	iDest, err := column(name, header, "destino", "destination", "hasta")
	if err != nil {
		return nil, err
	}
	iPrice, err := column(name, header, "precio", "tarifa", "total", "flete", "usd")
	if err != nil {
		return nil, err
	}
	iMod := sheets.NotFound
	if s.matchModality {
		if iMod, err = column(name, header, "modalidad", "modality", "equipo", "tipo"); err != nil {
			return nil, err
		}
	}

	hub := textnorm.Normalize(s.hub)
	origin := textnorm.Normalize(req.Origin)
	modality := compact(req.Modality)
	if origin == "" || hub == "" {
		return nil, nil
	}

	for _, row := range rows {
		if !strings.Contains(textnorm.Normalize(sheets.Cell(row, iDest)), hub) {
			continue
		}
		if s.matchModality && compact(sheets.Cell(row, iMod)) != modality {
			continue
		}
		orig := textnorm.Normalize(sheets.Cell(row, iOrig))
		if orig != origin && !strings.Contains(orig, origin) {
			continue
		}
		price, ok := ParseAmount(sheets.Cell(row, iPrice))
		if !ok {
			continue
		}
		q := &Quote{
			Mode:        s.mode,
			Origin:      sheets.Cell(row, iOrig),
			Destination: sheets.Cell(row, iDest),
			UnitPrice:   price,
			Total:       price,
		}
		if s.matchModality {
			q.Modality = sheets.Cell(row, iMod)
		}
		return q, nil
	}
	return nil, nil
}

// compact normalizes a modality code and drops its spaces, so "FCL 40' HC"
// and "fcl 40hc" compare equal.
func compact(s string) string {
	return strings.ReplaceAll(textnorm.Normalize(s), " ", "")
}
