package quotelog

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freightquote/internal/db"
	"freightquote/internal/rate"
	"freightquote/internal/sheets"
)

func sampleRecord() Record {
	return Record{
		Timestamp:   time.Date(2024, 5, 6, 14, 30, 0, 0, time.UTC),
		UserID:      "5491100000000",
		Company:     "ACME SA",
		Mode:        rate.ModeSea,
		Origin:      "Shanghai",
		Destination: "Buenos Aires",
		Modality:    "LCL",
		Total:       1250,
		Summary:     "Maritimo LCL Shanghai -> Buenos Aires USD 1250.00",
	}
}

func TestValuesOrder(t *testing.T) {
	v := sampleRecord().Values()
	require.Len(t, v, 13)
	assert.Equal(t, []string{
		"2024-05-06 14:30:00", "5491100000000", "", "ACME SA", "WhatsApp", "maritimo",
		"Shanghai", "Buenos Aires", "", "", "LCL", "1250.00",
		"Maritimo LCL Shanghai -> Buenos Aires USD 1250.00",
	}, v)
}

func TestSheetSinkResolvesTab(t *testing.T) {
	src := sheets.NewMemorySource()
	src.SetTable("log", "Registro Cotizaciones", [][]string{{"Fecha", "Usuario"}})
	sink := NewSheetSink(sheets.NewLocator(src), "log", "Registros", "registro")

	require.NoError(t, sink.Append(context.Background(), sampleRecord()))
	rows := src.Rows("log", "Registro Cotizaciones")
	require.Len(t, rows, 2)
	assert.Equal(t, "maritimo", rows[1][5])
}

type failingSink struct{ err error }

func (f failingSink) Append(context.Context, Record) error { return f.err }

func TestMultiJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	mem := &MemorySink{}
	err := Multi{failingSink{boom}, mem}.Append(context.Background(), sampleRecord())
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.Len(t, mem.Records(), 1)
}

func TestPostgresSink(t *testing.T) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set; skipping integration test")
	}
	pool, err := db.Open(testContext(t), dbURL)
	require.NoError(t, err)
	defer pool.Close()

	sink := NewPostgresSink(pool)
	require.NoError(t, sink.EnsureSchema(testContext(t)))
	require.NoError(t, sink.Append(testContext(t), sampleRecord()))

	var n int
	require.NoError(t, pool.QueryRow(testContext(t), `SELECT count(*) FROM quote_log WHERE user_id = $1`, "5491100000000").Scan(&n))
	assert.GreaterOrEqual(t, n, 1)
}
