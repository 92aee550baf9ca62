package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rickgao/market-ingest/internal/model"
)

// Header is the first CSV record.
var Header = []string{"date", "open", "high", "low", "close", "volume"}

// DefaultFilename returns the file name used when none is given.
func DefaultFilename(symbol string) string {
	return symbol + "_daily_prices.csv"
}

// WriteCSV writes bars to w in the order given.
func WriteCSV(w io.Writer, bars []model.PriceBar) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, b := range bars {
		record := []string{
			b.TradeDate.Format(model.DateLayout),
			b.Open.StringFixed(2),
			b.High.StringFixed(2),
			b.Low.StringFixed(2),
			b.Close.StringFixed(2),
			strconv.FormatInt(b.Volume, 10),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write %s: %w", record[0], err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteFile writes bars to path, replacing any existing file.
func WriteFile(path string, bars []model.PriceBar) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	return WriteCSV(f, bars)
}
