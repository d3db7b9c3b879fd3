package repository

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Последняя колонка строки записи
const lastColumn = "G"

// SheetsTable - лист Google Sheets
type SheetsTable struct {
	service       *sheets.Service
	spreadsheetID string
	title         string
	sheetID       int64
}

// NewSheetsService создаёт клиент Sheets API по ключу сервисного аккаунта
func NewSheetsService(ctx context.Context, credentialsPath string) (*sheets.Service, error) {
	jsonKey, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read service account key file: %w", err)
	}

	jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse service account key: %w", err)
	}

	httpClient := oauth2.NewClient(ctx, jwtConfig.TokenSource(ctx))
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}
	return srv, nil
}

// OpenSheet открывает лист по названию, создавая его при отсутствии
func OpenSheet(ctx context.Context, srv *sheets.Service, spreadsheetID, title string) (*SheetsTable, error) {
	ss, err := srv.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to access spreadsheet %s: %w", spreadsheetID, err)
	}

	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == title {
			return &SheetsTable{
				service:       srv,
				spreadsheetID: spreadsheetID,
				title:         title,
				sheetID:       sh.Properties.SheetId,
			}, nil
		}
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: title},
			},
		}},
	}
	resp, err := srv.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to add sheet %q: %w", title, err)
	}
	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil || resp.Replies[0].AddSheet.Properties == nil {
		return nil, fmt.Errorf("add sheet %q: empty reply", title)
	}

	return &SheetsTable{
		service:       srv,
		spreadsheetID: spreadsheetID,
		title:         title,
		sheetID:       resp.Replies[0].AddSheet.Properties.SheetId,
	}, nil
}

func (t *SheetsTable) rangeA1() string {
	return fmt.Sprintf("'%s'!A:%s", t.title, lastColumn)
}

func (t *SheetsTable) Rows(ctx context.Context) ([][]string, error) {
	resp, err := t.service.Spreadsheets.Values.Get(t.spreadsheetID, t.rangeA1()).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", t.title, err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, r := range resp.Values {
		row := make([]string, len(r))
		for i, cell := range r {
			row[i] = fmt.Sprint(cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (t *SheetsTable) Append(ctx context.Context, row []string) error {
	values := make([]any, len(row))
	for i, cell := range row {
		values[i] = cell
	}

	// Ячейки пишутся как есть, без разбора формул
	vr := &sheets.ValueRange{Values: [][]any{values}}
	_, err := t.service.Spreadsheets.Values.Append(t.spreadsheetID, t.rangeA1(), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append to sheet %q: %w", t.title, err)
	}
	return nil
}

func (t *SheetsTable) DeleteRow(ctx context.Context, position int) error {
	if position < 1 {
		return fmt.Errorf("delete row %d: %w", position, ErrPosition)
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    t.sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(position - 1),
					EndIndex:   int64(position),
					// StartIndex 0 иначе не попадёт в запрос
					ForceSendFields: []string{"StartIndex", "SheetId"},
				},
			},
		}},
	}
	if _, err := t.service.Spreadsheets.BatchUpdate(t.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete row %d from sheet %q: %w", position, t.title, err)
	}
	return nil
}

// Title возвращает название листа
func (t *SheetsTable) Title() string {
	return t.title
}

var _ Table = (*SheetsTable)(nil)
