package quotelog

import (
	"context"
	"fmt"

	"freightquote/internal/sheets"
)

// SheetSink appends records to a log tab located by hint.
type SheetSink struct {
	loc          *sheets.Locator
	collectionID string
	hint         string
	extraHints   []string
}

// NewSheetSink returns a sink writing to the tab matching hint.
func NewSheetSink(loc *sheets.Locator, collectionID, hint string, extraHints ...string) *SheetSink {
	return &SheetSink{loc: loc, collectionID: collectionID, hint: hint, extraHints: extraHints}
}

func (s *SheetSink) Append(ctx context.Context, r Record) error {
	title, err := s.loc.ResolveTable(ctx, s.collectionID, s.hint, s.extraHints...)
	if err != nil {
		return err
	}
	if err := s.loc.Source().AppendRow(ctx, s.collectionID, title, r.Values()); err != nil {
		return fmt.Errorf("append quote log: %w", err)
	}
	return nil
}
