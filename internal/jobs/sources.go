package jobs

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"dealerdir/internal/services"

	"github.com/pkg/errors"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// RowSource yields raw spreadsheet rows, header rows included
type RowSource interface {
	Rows(ctx context.Context) ([][]string, error)
	// Name identifies the source in import results and metrics labels.
	Name() string
	Kind() string
}

// CSVSource reads rows from a CSV stream such as a multipart upload
type CSVSource struct {
	name   string
	reader io.Reader
}

func NewCSVSource(name string, reader io.Reader) *CSVSource {
	return &CSVSource{name: name, reader: reader}
}

func (s *CSVSource) Name() string { return "upload:" + s.name }
func (s *CSVSource) Kind() string { return "upload" }

func (s *CSVSource) Rows(_ context.Context) ([][]string, error) {
	return readCSV(s.reader)
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	// Spreadsheet exports drop trailing empty cells, so row width varies.
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "parse csv")
	}
	return records, nil
}

// ObjectSource reads a CSV export stored in an S3 compatible bucket
type ObjectSource struct {
	store  services.ObjectStore
	bucket string
	object string
}

func NewObjectSource(store services.ObjectStore, bucket, object string) *ObjectSource {
	return &ObjectSource{store: store, bucket: bucket, object: object}
}

func (s *ObjectSource) Name() string { return fmt.Sprintf("object:%s/%s", s.bucket, s.object) }
func (s *ObjectSource) Kind() string { return "object" }

func (s *ObjectSource) Rows(ctx context.Context) ([][]string, error) {
	body, err := s.store.Open(ctx, s.bucket, s.object)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return readCSV(body)
}

// SheetSource reads a values range from a Google Sheet
type SheetSource struct {
	values        *sheets.SpreadsheetsValuesService
	spreadsheetID string
	readRange     string
}

// NewSheetSource builds the Sheets client once. Credentials are supplied by the
// caller through opts, normally option.WithCredentialsFile.
func NewSheetSource(ctx context.Context, spreadsheetID, readRange string, opts ...option.ClientOption) (*SheetSource, error) {
	opts = append([]option.ClientOption{option.WithScopes(sheets.SpreadsheetsReadonlyScope)}, opts...)
	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "create sheets client")
	}
	return &SheetSource{
		values:        srv.Spreadsheets.Values,
		spreadsheetID: spreadsheetID,
		readRange:     readRange,
	}, nil
}

func (s *SheetSource) Name() string { return fmt.Sprintf("sheet:%s!%s", s.spreadsheetID, s.readRange) }
func (s *SheetSource) Kind() string { return "sheet" }

func (s *SheetSource) Rows(ctx context.Context) ([][]string, error) {
	resp, err := s.values.Get(s.spreadsheetID, s.readRange).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, errors.Wrapf(err, "read sheet %s", s.spreadsheetID)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			if cell != nil {
				row[i] = fmt.Sprint(cell)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
