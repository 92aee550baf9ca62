package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/rickgao/market-ingest/internal/model"
)

const (
	priceColumns     = 7
	defaultChunkSize = 1000
	maxChunkSize     = 65535 / priceColumns
)

// UpsertPriceBars writes bars for companyID inside one transaction. Existing
// (company_id, trade_date) rows are overwritten. It returns the number of rows
// inserted or updated.
func (s *Store) UpsertPriceBars(ctx context.Context, companyID int64, bars []model.PriceBar) (int, error) {
	if len(bars) == 0 {
		return 0, nil
	}

	var affected int64
	err := s.WithTx(ctx, func(tx *Tx) error {
		n, err := tx.UpsertPriceBars(ctx, companyID, bars, s.chunkSize)
		affected = n
		return err
	})
	if err != nil {
		return 0, err
	}

	s.logger.Debug("upserted price bars",
		"company_id", companyID,
		"count", len(bars),
		"affected", affected,
	)
	return int(affected), nil
}

// UpsertPriceBars writes bars in statements of at most chunkSize rows.
func (t *Tx) UpsertPriceBars(ctx context.Context, companyID int64, bars []model.PriceBar, chunkSize int) (int64, error) {
	if chunkSize <= 0 || chunkSize > maxChunkSize {
		chunkSize = defaultChunkSize
	}

	var affected int64
	for start := 0; start < len(bars); start += chunkSize {
		end := min(start+chunkSize, len(bars))
		sql, args := buildPriceUpsert(companyID, bars[start:end])
		ct, err := t.tx.Exec(ctx, sql, args...)
		if err != nil {
			return 0, fmt.Errorf("upsert price bars %s..%s: %w",
				bars[start].TradeDate.Format(model.DateLayout),
				bars[end-1].TradeDate.Format(model.DateLayout),
				err,
			)
		}
		affected += ct.RowsAffected()
	}
	return affected, nil
}

// buildPriceUpsert renders one multi-row upsert statement and its arguments.
func buildPriceUpsert(companyID int64, bars []model.PriceBar) (string, []any) {
	var sb strings.Builder
	sb.WriteString(sqlPriceUpsertPrefix)

	args := make([]any, 0, len(bars)*priceColumns)
	for i, b := range bars {
		if i > 0 {
			sb.WriteString(", ")
		}
		n := i * priceColumns
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			n+1, n+2, n+3, n+4, n+5, n+6, n+7)
		args = append(args, companyID, b.TradeDate, b.Open, b.High, b.Low, b.Close, b.Volume)
	}

	sb.WriteString(sqlPriceUpsertSuffix)
	return sb.String(), args
}

// LastTradeDate returns the latest stored trade date for companyID. The
// boolean is false when the company has no price history.
func (s *Store) LastTradeDate(ctx context.Context, companyID int64) (time.Time, bool, error) {
	var d pgtype.Date
	err := s.db.QueryRow(ctx, sqlLastTradeDate, companyID).Scan(&d)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("query last trade date for company %d: %w", companyID, err)
	}
	if !d.Valid {
		return time.Time{}, false, nil
	}
	return model.DateOf(d.Time), true, nil
}

// PriceBars returns the stored bars for companyID between start and end
// inclusive, ordered by trade date.
func (s *Store) PriceBars(ctx context.Context, companyID int64, start, end time.Time) ([]model.PriceBar, error) {
	rows, err := s.db.Query(ctx, sqlPriceBars, companyID, model.DateOf(start), model.DateOf(end))
	if err != nil {
		return nil, fmt.Errorf("query price bars for company %d: %w", companyID, err)
	}
	defer rows.Close()

	var bars []model.PriceBar
	for rows.Next() {
		b := model.PriceBar{CompanyID: companyID}
		if err := rows.Scan(&b.TradeDate, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan price bar: %w", err)
		}
		b.TradeDate = model.DateOf(b.TradeDate)
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price bars: %w", err)
	}
	return bars, nil
}
