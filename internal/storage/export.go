package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/cellsolver/internal/sim"
)

// ExportCSV writes an "x" column followed by one column per channel,
// headed by the channel id. Values use the shortest representation that
// parses back to the same float64.
func ExportCSV(w io.Writer, series *sim.Series) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(series.Channels)+1)
	header = append(header, "x")
	for _, c := range series.Channels {
		header = append(header, c.ID())
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for i, x := range series.X {
		row[0] = formatFloat(x)
		for j, col := range series.Y {
			row[j+1] = formatFloat(col[i])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportJSON writes the series with its channel descriptions.
func ExportJSON(w io.Writer, series *sim.Series) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonSeries(series))
}

// jsonSeries replaces non-finite values, which encoding/json rejects,
// with nil.
func jsonSeries(series *sim.Series) map[string]any {
	y := make([][]*float64, len(series.Y))
	for i, col := range series.Y {
		y[i] = make([]*float64, len(col))
		for j := range col {
			if sim.IsFinite(col[j : j+1]) {
				y[i][j] = &col[j]
			}
		}
	}
	return map[string]any{
		"title":        series.Title,
		"x_info":       series.XInfo,
		"x":            series.X,
		"channel_info": series.Channels,
		"y":            y,
	}
}

func readCSV(r io.Reader, channels int) ([]float64, [][]float64, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = channels + 1

	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	if header[0] != "x" {
		return nil, nil, fmt.Errorf("unexpected first column %q", header[0])
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	x := make([]float64, len(records))
	y := make([][]float64, channels)
	for j := range y {
		y[j] = make([]float64, len(records))
	}
	for i, record := range records {
		if x[i], err = strconv.ParseFloat(record[0], 64); err != nil {
			return nil, nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		for j := 0; j < channels; j++ {
			if y[j][i], err = strconv.ParseFloat(record[j+1], 64); err != nil {
				return nil, nil, fmt.Errorf("row %d column %d: %w", i+1, j+1, err)
			}
		}
	}
	return x, y, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
