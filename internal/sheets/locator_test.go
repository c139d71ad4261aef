package sheets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sourceWith(titles ...string) *MemorySource {
	m := NewMemorySource()
	for _, t := range titles {
		m.SetTable("rates", t, nil)
	}
	return m
}

func TestResolveTablePrefersExact(t *testing.T) {
	l := NewLocator(sourceWith("Aereos 2024", "Aereos"))
	got, err := l.ResolveTable(context.Background(), "rates", "aereos")
	require.NoError(t, err)
	assert.Equal(t, "Aereos", got)
}

func TestResolveTablePrefixBeforeContains(t *testing.T) {
	l := NewLocator(sourceWith("Tarifas Aereos", "Aereos 2024", "Aereo"))
	got, err := l.ResolveTable(context.Background(), "rates", "aereos")
	require.NoError(t, err)
	assert.Equal(t, "Aereos 2024", got)
}

func TestResolveTableContains(t *testing.T) {
	l := NewLocator(sourceWith("Tarifas Terrestres", "Aereo"))
	got, err := l.ResolveTable(context.Background(), "rates", "Terrestres")
	require.NoError(t, err)
	assert.Equal(t, "Tarifas Terrestres", got)
}

func TestResolveTableAccentsAndExtraHints(t *testing.T) {
	l := NewLocator(sourceWith("AÉREOS", "Courier DHL"))
	got, err := l.ResolveTable(context.Background(), "rates", "Aereos")
	require.NoError(t, err)
	assert.Equal(t, "AÉREOS", got)

	got, err = l.ResolveTable(context.Background(), "rates", "Paqueteria", "courier")
	require.NoError(t, err)
	assert.Equal(t, "Courier DHL", got)
}

func TestResolveTableMaritimeMisspelling(t *testing.T) {
	l := NewLocator(sourceWith("Aereos", "Maritmos"))
	got, err := l.ResolveTable(context.Background(), "rates", "Maritimos")
	require.NoError(t, err)
	assert.Equal(t, "Maritmos", got)
}

func TestResolveTableNotFound(t *testing.T) {
	l := NewLocator(sourceWith("Aereos"))
	_, err := l.ResolveTable(context.Background(), "rates", "Courier")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTableNotFound))
	var nf *TableNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Courier", nf.Hint)
}

func TestResolveTableCachesListing(t *testing.T) {
	src := sourceWith("Aereos", "Maritimos")
	l := NewLocator(src)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = l.ResolveTable(ctx, "rates", "maritimos")
		}()
	}
	wg.Wait()
	_, err := l.ResolveTable(ctx, "rates", "aereos")
	require.NoError(t, err)

	// concurrent first callers may overlap, later calls never list again
	calls := src.ListCalls()
	assert.LessOrEqual(t, calls, 8)
	_, _ = l.ResolveTable(ctx, "rates", "aereos")
	assert.Equal(t, calls, src.ListCalls())
}

func TestColumnIndex(t *testing.T) {
	header := []string{"Origen", "Destino", "Precio x KG (USD)", "Mínimo KG", "Precio"}
	assert.Equal(t, 0, ColumnIndex(header, "origen"))
	assert.Equal(t, 2, ColumnIndex(header, "precio x kg", "precio"))
	assert.Equal(t, 3, ColumnIndex(header, "minimo kg", "minimo"))
	// "precio" is contained in column 2 before the exact column 4
	assert.Equal(t, 2, ColumnIndex(header, "PRECIO"))
	assert.Equal(t, NotFound, ColumnIndex(header, "modalidad"))
	assert.Equal(t, NotFound, ColumnIndex(nil, "origen"))
}

func TestCell(t *testing.T) {
	row := []string{" a ", "b"}
	assert.Equal(t, "a", Cell(row, 0))
	assert.Equal(t, "", Cell(row, 5))
	assert.Equal(t, "", Cell(row, -1))
}

func TestA1Quoting(t *testing.T) {
	assert.Equal(t, "'Aereos 2024'!A1:H500", a1("Aereos 2024", "A1:H500"))
	assert.Equal(t, "'Bob''s'!A1", a1("Bob's", "A1"))
}

func TestGoogleSourceMissingCredentials(t *testing.T) {
	g := NewGoogleSource(GoogleCredentials{})
	_, err := g.ListTables(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCredentials))
	var ce *CredentialsError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, ce.Missing, "GOOGLE_CREDENTIALS_JSON")
}

func TestLoadYAMLAndAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
collections:
  rates:
    - title: Aereos
      rows:
        - [Origen, Destino, Precio]
        - [PVG, EZE, "3.20"]
  log:
    - title: Registros
      rows: []
`), 0o600))
	m, err := LoadYAML(path)
	require.NoError(t, err)

	rows, err := m.ReadRange(context.Background(), "rates", "Aereos", "A1:C10")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "3.20", rows[1][2])

	require.NoError(t, m.AppendRow(context.Background(), "log", "Registros", []string{"a", "b"}))
	assert.Equal(t, [][]string{{"a", "b"}}, m.Rows("log", "Registros"))
}

type blockingSource struct {
	*MemorySource
	started chan struct{}
	release chan struct{}
	ctxErr  chan error
}

func (b *blockingSource) ListTables(ctx context.Context, collectionID string) ([]string, error) {
	close(b.started)
	<-b.release
	b.ctxErr <- ctx.Err()
	return b.MemorySource.ListTables(ctx, collectionID)
}

func TestCancelledCallerDoesNotAbortSharedFill(t *testing.T) {
	src := &blockingSource{
		MemorySource: sourceWith("Aereos"),
		started:      make(chan struct{}),
		release:      make(chan struct{}),
		ctxErr:       make(chan error, 1),
	}
	loc := NewLocator(src)

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := loc.ResolveTable(ctx, "rates", "aereos")
		first <- err
	}()
	<-src.started
	cancel()
	assert.ErrorIs(t, <-first, context.Canceled)

	close(src.release)
	assert.NoError(t, <-src.ctxErr)

	got, err := loc.ResolveTable(context.Background(), "rates", "aereos")
	require.NoError(t, err)
	assert.Equal(t, "Aereos", got)
	assert.Equal(t, 1, src.ListCalls())
}
