package sheets

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// GoogleCredentials points at a service account key. JSON wins over File;
// JSON may be raw or base64 encoded.
type GoogleCredentials struct {
	JSON string
	File string
}

// GoogleSource reads and appends through the Sheets v4 API. The client is
// built on first use so a missing key only fails the requests that need it.
type GoogleSource struct {
	creds GoogleCredentials

	mu  sync.Mutex
	svc *gsheets.Service
}

// NewGoogleSource returns a Source backed by Google Sheets.
func NewGoogleSource(creds GoogleCredentials) *GoogleSource {
	return &GoogleSource{creds: creds}
}

func (g *GoogleSource) service(ctx context.Context) (*gsheets.Service, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.svc != nil {
		return g.svc, nil
	}
	raw, err := g.keyJSON()
	if err != nil {
		return nil, err
	}
	creds, err := google.CredentialsFromJSON(ctx, raw, gsheets.SpreadsheetsScope)
	if err != nil {
		return nil, &CredentialsError{Missing: []string{"GOOGLE_CREDENTIALS_JSON"}, Err: err}
	}
	// The service outlives the request that created it.
	svc, err := gsheets.NewService(context.Background(), option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("sheets client: %w", err)
	}
	g.svc = svc
	return svc, nil
}

func (g *GoogleSource) keyJSON() ([]byte, error) {
	if j := strings.TrimSpace(g.creds.JSON); j != "" {
		if strings.HasPrefix(j, "{") {
			return []byte(j), nil
		}
		b, err := base64.StdEncoding.DecodeString(j)
		if err != nil {
			return nil, &CredentialsError{Missing: []string{"GOOGLE_CREDENTIALS_JSON"}, Err: fmt.Errorf("neither JSON nor base64: %w", err)}
		}
		return b, nil
	}
	if f := strings.TrimSpace(g.creds.File); f != "" {
		b, err := os.ReadFile(f)
		if err != nil {
			return nil, &CredentialsError{Missing: []string{"GOOGLE_APPLICATION_CREDENTIALS"}, Err: err}
		}
		return b, nil
	}
	return nil, &CredentialsError{Missing: []string{"GOOGLE_CREDENTIALS_JSON", "GOOGLE_APPLICATION_CREDENTIALS"}}
}

func (g *GoogleSource) ListTables(ctx context.Context, collectionID string) ([]string, error) {
	svc, err := g.service(ctx)
	if err != nil {
		return nil, err
	}
	ss, err := svc.Spreadsheets.Get(collectionID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get spreadsheet %s: %w", collectionID, err)
	}
	titles := make([]string, 0, len(ss.Sheets))
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			titles = append(titles, sh.Properties.Title)
		}
	}
	return titles, nil
}

func (g *GoogleSource) ReadRange(ctx context.Context, collectionID, table, cellRange string) ([][]string, error) {
	svc, err := g.service(ctx)
	if err != nil {
		return nil, err
	}
	vr, err := svc.Spreadsheets.Values.Get(collectionID, a1(table, cellRange)).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	rows := make([][]string, len(vr.Values))
	for i, r := range vr.Values {
		row := make([]string, len(r))
		for j, v := range r {
			row[j] = cellString(v)
		}
		rows[i] = row
	}
	return rows, nil
}

func (g *GoogleSource) AppendRow(ctx context.Context, collectionID, table string, values []string) error {
	svc, err := g.service(ctx)
	if err != nil {
		return err
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	_, err = svc.Spreadsheets.Values.Append(collectionID, a1(table, "A1"), &gsheets.ValueRange{Values: [][]interface{}{row}}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

// cellString renders an unformatted cell. Numbers keep a plain decimal form
// so ParseAmount never sees the sheet locale.
func cellString(v any) string {
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(n)
	}
}

// a1 quotes a tab title for an A1 range; single quotes are doubled.
func a1(table, cellRange string) string {
	return "'" + strings.ReplaceAll(table, "'", "''") + "'!" + cellRange
}
