// Package rate prices freight requests against the rate sheets. Each shipping
// mode has its own Engine; all of them scan their table once, in sheet order,
// and the first qualifying row wins.
package rate

import (
	"context"
	"fmt"
	"strings"

	"freightquote/internal/alias"
	"freightquote/internal/sheets"
)

// Mode is a shipping mode as recorded in the quote log.
type Mode string

const (
	ModeSea     Mode = "maritimo"
	ModeAir     Mode = "aereo"
	ModeLand    Mode = "terrestre"
	ModeCourier Mode = "courier"
)

// Request carries the trip parameters collected by the conversation.
// Fields not used by a mode are ignored.
type Request struct {
	Origin   string
	Country  string
	Modality string
	Kg       float64
	VolKg    float64
	Weight   float64
}

// Quote is a priced row. Mode-specific fields are zero for other modes.
type Quote struct {
	Mode        Mode
	Origin      string
	Destination string
	Modality    string
	UnitPrice   float64
	Total       float64

	// air
	ChargeableKg   int
	BillableKg     int
	MinimumKg      int
	MinimumApplied bool

	// courier
	Region   alias.Region
	Bracket  float64
	Adjusted bool
}

// Engine prices one mode. A nil Quote with a nil error means the table was
// read but no row matched the request.
type Engine interface {
	Quote(ctx context.Context, req Request) (*Quote, error)
}

// Table addresses a rate table by collection, tab hint and A1 range.
type Table struct {
	CollectionID string
	Hint         string
	ExtraHints   []string
	Range        string
}

// Config holds the tables, hubs and business constants for every engine.
type Config struct {
	Air     Table
	Sea     Table
	Land    Table
	Courier Table

	HubAir  string
	HubSea  string
	HubLand string

	// DefaultMinKg applies to air rows with no minimum of their own.
	DefaultMinKg int
}

// Set builds engines that share one locator and alias resolver.
type Set struct {
	loc     *sheets.Locator
	aliases *alias.Resolver
	cfg     Config
}

// NewSet returns an engine set.
func NewSet(loc *sheets.Locator, aliases *alias.Resolver, cfg Config) *Set {
	if aliases == nil {
		aliases = alias.Default()
	}
	return &Set{loc: loc, aliases: aliases, cfg: cfg}
}

// Aliases exposes the resolver used by the engines.
func (s *Set) Aliases() *alias.Resolver { return s.aliases }

// ByMode returns the engine for mode, or nil for an unknown mode.
func (s *Set) ByMode(mode Mode) Engine {
	switch Mode(strings.ToLower(strings.TrimSpace(string(mode)))) {
	case ModeAir:
		return &Air{loc: s.loc, aliases: s.aliases, table: s.cfg.Air, hub: s.cfg.HubAir, defaultMinKg: s.cfg.DefaultMinKg}
	case ModeSea:
		return &Sea{loc: s.loc, table: s.cfg.Sea, hub: s.cfg.HubSea, mode: ModeSea, matchModality: true}
	case ModeLand:
		return &Sea{loc: s.loc, table: s.cfg.Land, hub: s.cfg.HubLand, mode: ModeLand}
	case ModeCourier:
		return &Courier{loc: s.loc, aliases: s.aliases, table: s.cfg.Courier}
	default:
		return nil
	}
}

func (t Table) read(ctx context.Context, loc *sheets.Locator) (header []string, rows [][]string, err error) {
	all, err := loc.Table(ctx, t.CollectionID, t.Range, t.Hint, t.ExtraHints...)
	if err != nil {
		return nil, nil, err
	}
	if len(all) == 0 {
		return nil, nil, nil
	}
	return all[0], all[1:], nil
}

// column finds a required column and reports the header labels it tried.
func column(table string, header []string, labels ...string) (int, error) {
	i := sheets.ColumnIndex(header, labels...)
	if i == sheets.NotFound {
		return i, fmt.Errorf("%s: no column matching %q in header %q", table, labels, header)
	}
	return i, nil
}
