package loader

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"

	"github.com/02loveslollipop/solar-potential-dashboard/services/api/solar"
)

const timestampColumn = "Timestamp"

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04",
	"01/02/2006",
}

// decode turns a decompressed stream into observations. name selects the
// format: .xlsx reads the first sheet, anything else is CSV. Country is left
// for the caller to stamp.
func decode(name string, r io.Reader) ([]solar.Observation, error) {
	var df dataframe.DataFrame
	if strings.HasSuffix(strings.ToLower(name), ".xlsx") {
		records, err := readWorkbook(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", solar.ErrDataAccess, err)
		}
		df = dataframe.LoadRecords(records, loadOptions()...)
	} else {
		df = dataframe.ReadCSV(r, loadOptions()...)
	}
	if df.Err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", solar.ErrDataAccess, name, df.Err)
	}
	return observations(df)
}

// loadOptions keeps every column as text; numeric conversion happens per
// metric so that unparsable cells become NaN instead of failing the load.
func loadOptions() []dataframe.LoadOption {
	return []dataframe.LoadOption{
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues([]string{"", "NA", "NaN", "nan", "null", "<nil>"}),
	}
}

func readWorkbook(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s is empty", sheets[0])
	}

	// GetRows drops trailing empty cells; pad to the header width.
	width := len(rows[0])
	for i, row := range rows {
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			rows[i] = padded
		} else if len(row) > width {
			rows[i] = row[:width]
		}
	}
	return rows, nil
}

func observations(df dataframe.DataFrame) ([]solar.Observation, error) {
	columns := make(map[string]string, df.Ncol())
	for _, name := range df.Names() {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, seen := columns[key]; !seen {
			columns[key] = name
		}
	}

	values := make(map[solar.Metric][]float64, len(solar.Metrics()))
	for _, m := range solar.Metrics() {
		col, ok := columns[strings.ToLower(m.String())]
		if !ok {
			return nil, fmt.Errorf("%w: missing column %s", solar.ErrSchema, m)
		}
		values[m] = df.Col(col).Float()
	}

	var stamps []string
	if col, ok := columns[strings.ToLower(timestampColumn)]; ok {
		stamps = df.Col(col).Records()
	}

	rows := make([]solar.Observation, df.Nrow())
	for i := range rows {
		rows[i] = solar.Observation{
			GHI: values[solar.GHI][i],
			DNI: values[solar.DNI][i],
			DHI: values[solar.DHI][i],
		}
		if stamps != nil {
			rows[i].Timestamp = parseTimestamp(stamps[i])
		}
	}
	return rows, nil
}

// parseTimestamp returns the zero time for blank or unrecognised values.
func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" || s == "NaN" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}
	return time.Time{}
}
