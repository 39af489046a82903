package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"food-delivery/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MenuWriter interface {
	UpsertMenu(ctx context.Context, m domain.MenuItem) (*domain.MenuItem, error)
}

// CSVImporter reads menu rows (restaurant,name,description,price,image) and
// inserts or updates the matching menu items.
type CSVImporter struct {
	reader            *csv.Reader
	menus             MenuWriter
	defaultRestaurant string
}

// NewCSVImporter builds an importer. Rows with an empty restaurant column
// go to defaultRestaurant.
func NewCSVImporter(r io.Reader, menus MenuWriter, defaultRestaurant string) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return &CSVImporter{
		reader:            csvr,
		menus:             menus,
		defaultRestaurant: defaultRestaurant,
	}
}

type csvRow struct {
	line         int
	RestaurantID string
	Name         string
	Desc         string
	Price        decimal.Decimal
	Image        string
}

// Run parses CSV rows and upserts a menu item per row. Rows without a name
// are skipped.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, required := range []string{"name", "price"} {
		if _, ok := index[required]; !ok {
			return 0, fmt.Errorf("missing %q column", required)
		}
	}

	imported := 0
	line := 1
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return imported, fmt.Errorf("read row %d: %w", line, err)
		}

		row, err := i.parseRow(record, index, line)
		if err != nil {
			return imported, err
		}
		if row == nil {
			continue
		}
		if err := i.save(ctx, row); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow) error {
	_, err := i.menus.UpsertMenu(ctx, domain.MenuItem{
		RestaurantID: row.RestaurantID,
		Name:         row.Name,
		Description:  row.Desc,
		Price:        row.Price,
		Image:        row.Image,
	})
	if err != nil {
		return fmt.Errorf("upsert menu %q (line %d): %w", row.Name, row.line, err)
	}
	return nil
}

func (i *CSVImporter) parseRow(record []string, index map[string]int, line int) (*csvRow, error) {
	name := pick(record, index, "name")
	if name == "" {
		return nil, nil
	}
	restaurantID := pick(record, index, "restaurant")
	if restaurantID == "" {
		restaurantID = i.defaultRestaurant
	}
	if _, err := uuid.Parse(restaurantID); err != nil {
		return nil, fmt.Errorf("line %d: invalid restaurant id %q", line, restaurantID)
	}
	price, err := decimal.NewFromString(pick(record, index, "price"))
	if err != nil || !price.IsPositive() {
		return nil, fmt.Errorf("line %d: invalid price for %q", line, name)
	}
	return &csvRow{
		line:         line,
		RestaurantID: restaurantID,
		Name:         name,
		Desc:         pick(record, index, "description"),
		Price:        price.Round(2),
		Image:        pick(record, index, "image"),
	}, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
