package store

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickgao/market-ingest/internal/model"
)

func newMockStore(t *testing.T, opts ...Option) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return New(mock, nil, opts...), mock
}

func q(sql string) string {
	return regexp.QuoteMeta(sql)
}

func bar(day int, close string, volume int64) model.PriceBar {
	c := decimal.RequireFromString(close)
	return model.PriceBar{
		TradeDate: model.Date(2020, time.January, day),
		Open:      c,
		High:      c,
		Low:       c,
		Close:     c,
		Volume:    volume,
	}
}

func TestResolveCompany(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(q(sqlResolveCompany)).
			WithArgs("AAPL").
			WillReturnRows(pgxmock.NewRows([]string{"company_id"}).AddRow(int64(7)))

		id, err := s.ResolveCompany(context.Background(), "AAPL")
		require.NoError(t, err)
		assert.Equal(t, int64(7), id)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(q(sqlResolveCompany)).
			WithArgs("ZZZZ").
			WillReturnRows(pgxmock.NewRows([]string{"company_id"}))

		_, err := s.ResolveCompany(context.Background(), "ZZZZ")
		require.Error(t, err)

		var nf *NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "ZZZZ", nf.Symbol)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, "no company row found for ticker ZZZZ", err.Error())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(q(sqlResolveCompany)).
			WithArgs("AAPL").
			WillReturnError(errors.New("connection reset"))

		_, err := s.ResolveCompany(context.Background(), "AAPL")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
		assert.Contains(t, err.Error(), "connection reset")
	})
}

func TestSaveArticles(t *testing.T) {
	published := time.Date(2024, time.May, 1, 13, 30, 0, 0, time.UTC)
	article := model.Article{
		Title:       "Apple beats estimates",
		Summary:     "Quarterly results",
		PublishedAt: published,
		URL:         "https://example.com/a",
		Source:      "Reuters",
	}

	t.Run("inserts new article and links it", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery(q(sqlFindArticleByURL)).
			WithArgs(article.URL).
			WillReturnRows(pgxmock.NewRows([]string{"article_id"}))
		mock.ExpectQuery(q(sqlInsertArticle)).
			WithArgs(article.Title, article.Summary, published, article.URL, article.Source).
			WillReturnRows(pgxmock.NewRows([]string{"article_id"}).AddRow(int64(11)))
		mock.ExpectExec(q(sqlLinkArticle)).
			WithArgs(int64(11), int64(7)).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit()

		n, err := s.SaveArticles(context.Background(), 7, []model.Article{article})
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("updates existing article in place", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery(q(sqlFindArticleByURL)).
			WithArgs(article.URL).
			WillReturnRows(pgxmock.NewRows([]string{"article_id"}).AddRow(int64(11)))
		mock.ExpectExec(q(sqlUpdateArticle)).
			WithArgs(article.Title, article.Summary, published, article.Source, int64(11)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectExec(q(sqlLinkArticle)).
			WithArgs(int64(11), int64(7)).
			WillReturnResult(pgxmock.NewResult("INSERT", 0))
		mock.ExpectCommit()

		n, err := s.SaveArticles(context.Background(), 7, []model.Article{article})
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on failure", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery(q(sqlFindArticleByURL)).
			WithArgs(article.URL).
			WillReturnRows(pgxmock.NewRows([]string{"article_id"}).AddRow(int64(11)))
		mock.ExpectExec(q(sqlUpdateArticle)).
			WithArgs(article.Title, article.Summary, published, article.Source, int64(11)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectExec(q(sqlLinkArticle)).
			WithArgs(int64(11), int64(7)).
			WillReturnError(errors.New("foreign key violation"))
		mock.ExpectRollback()

		n, err := s.SaveArticles(context.Background(), 7, []model.Article{article})
		require.Error(t, err)
		assert.Zero(t, n)
		assert.Contains(t, err.Error(), "link article 11 to company 7")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty input is a no-op", func(t *testing.T) {
		s, mock := newMockStore(t)

		n, err := s.SaveArticles(context.Background(), 7, nil)
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestWithTx_BeginError(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin().WillReturnError(errors.New("pool closed"))

	called := false
	err := s.WithTx(context.Background(), func(*Tx) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, called)
	assert.Contains(t, err.Error(), "begin transaction")
}

func TestUpsertPriceBars(t *testing.T) {
	t.Run("chunks rows inside one transaction", func(t *testing.T) {
		s, mock := newMockStore(t, WithChunkSize(2))
		bars := []model.PriceBar{
			bar(2, "300.35", 33870100),
			bar(3, "297.43", 36580700),
			bar(6, "299.80", 29596800),
		}

		mock.ExpectBegin()
		mock.ExpectExec(q("INSERT INTO pricehistory")).
			WithArgs(
				int64(7), bars[0].TradeDate, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), int64(33870100),
				int64(7), bars[1].TradeDate, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), int64(36580700),
			).
			WillReturnResult(pgxmock.NewResult("INSERT", 2))
		mock.ExpectExec(q("INSERT INTO pricehistory")).
			WithArgs(
				int64(7), bars[2].TradeDate, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), int64(29596800),
			).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit()

		n, err := s.UpsertPriceBars(context.Background(), 7, bars)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when a chunk fails", func(t *testing.T) {
		s, mock := newMockStore(t, WithChunkSize(1))
		bars := []model.PriceBar{bar(2, "300.35", 1), bar(3, "297.43", 2)}

		mock.ExpectBegin()
		mock.ExpectExec(q("INSERT INTO pricehistory")).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectExec(q("INSERT INTO pricehistory")).
			WillReturnError(errors.New("numeric field overflow"))
		mock.ExpectRollback()

		n, err := s.UpsertPriceBars(context.Background(), 7, bars)
		require.Error(t, err)
		assert.Zero(t, n)
		assert.Contains(t, err.Error(), "2020-01-03..2020-01-03")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty input is a no-op", func(t *testing.T) {
		s, mock := newMockStore(t)

		n, err := s.UpsertPriceBars(context.Background(), 7, nil)
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBuildPriceUpsert(t *testing.T) {
	bars := []model.PriceBar{bar(2, "300.35", 10), bar(3, "297.43", 20)}

	sql, args := buildPriceUpsert(7, bars)

	assert.True(t, strings.HasPrefix(sql, "INSERT INTO pricehistory"))
	assert.Contains(t, sql, "($1, $2, $3, $4, $5, $6, $7), ($8, $9, $10, $11, $12, $13, $14)")
	assert.Contains(t, sql, "ON CONFLICT (company_id, trade_date) DO UPDATE")
	assert.Contains(t, sql, "volume      = EXCLUDED.volume")
	assert.NotContains(t, sql, "$15")

	require.Len(t, args, 14)
	assert.Equal(t, int64(7), args[0])
	assert.Equal(t, bars[0].TradeDate, args[1])
	assert.True(t, decimal.RequireFromString("300.35").Equal(args[5].(decimal.Decimal)))
	assert.Equal(t, int64(10), args[6])
	assert.Equal(t, int64(7), args[7])
	assert.Equal(t, int64(20), args[13])
}

func TestWithChunkSize(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want int
	}{
		{"valid", 500, 500},
		{"zero keeps default", 0, defaultChunkSize},
		{"negative keeps default", -1, defaultChunkSize},
		{"over parameter limit keeps default", maxChunkSize + 1, defaultChunkSize},
		{"at parameter limit", maxChunkSize, maxChunkSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(nil, nil, WithChunkSize(tt.n))
			assert.Equal(t, tt.want, s.chunkSize)
		})
	}
}

func TestLastTradeDate(t *testing.T) {
	t.Run("history present", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(q(sqlLastTradeDate)).
			WithArgs(int64(7)).
			WillReturnRows(pgxmock.NewRows([]string{"max"}).AddRow(model.Date(2024, time.May, 3)))

		last, ok, err := s.LastTradeDate(context.Background(), 7)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, model.Date(2024, time.May, 3), last)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no history", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(q(sqlLastTradeDate)).
			WithArgs(int64(7)).
			WillReturnRows(pgxmock.NewRows([]string{"max"}).AddRow(nil))

		_, ok, err := s.LastTradeDate(context.Background(), 7)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("query error", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(q(sqlLastTradeDate)).
			WithArgs(int64(7)).
			WillReturnError(errors.New("timeout"))

		_, ok, err := s.LastTradeDate(context.Background(), 7)
		require.Error(t, err)
		assert.False(t, ok)
		assert.Contains(t, err.Error(), "query last trade date for company 7")
	})
}

func TestPriceBars(t *testing.T) {
	s, mock := newMockStore(t)
	start := model.Date(2020, time.January, 1)
	end := model.Date(2020, time.January, 10)

	mock.ExpectQuery(q(sqlPriceBars)).
		WithArgs(int64(7), start, end).
		WillReturnRows(pgxmock.NewRows([]string{"trade_date", "open_price", "high_price", "low_price", "close_price", "volume"}).
			AddRow(model.Date(2020, time.January, 2), decimal.RequireFromString("296.24"), decimal.RequireFromString("300.60"),
				decimal.RequireFromString("295.19"), decimal.RequireFromString("300.35"), int64(33870100)).
			AddRow(model.Date(2020, time.January, 3), decimal.RequireFromString("297.15"), decimal.RequireFromString("300.58"),
				decimal.RequireFromString("296.50"), decimal.RequireFromString("297.43"), int64(36580700)))

	bars, err := s.PriceBars(context.Background(), 7, start, end)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, int64(7), bars[0].CompanyID)
	assert.Equal(t, model.Date(2020, time.January, 2), bars[0].TradeDate)
	assert.Equal(t, "300.35", bars[0].Close.StringFixed(2))
	assert.Equal(t, int64(36580700), bars[1].Volume)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTx_FindArticleByURL(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery(q(sqlFindArticleByURL)).
		WithArgs("https://example.com/missing").
		WillReturnRows(pgxmock.NewRows([]string{"article_id"}))
	mock.ExpectQuery(q(sqlFindArticleByURL)).
		WithArgs("https://example.com/a").
		WillReturnRows(pgxmock.NewRows([]string{"article_id"}).AddRow(int64(3)))
	mock.ExpectRollback()

	errStop := errors.New("stop")
	err := s.WithTx(context.Background(), func(tx *Tx) error {
		missing, err := tx.FindArticleByURL(context.Background(), "https://example.com/missing")
		require.NoError(t, err)
		assert.Equal(t, ArticleLookup{}, missing)

		found, err := tx.FindArticleByURL(context.Background(), "https://example.com/a")
		require.NoError(t, err)
		assert.Equal(t, ArticleLookup{Found: true, ID: 3}, found)
		return errStop
	})
	assert.ErrorIs(t, err, errStop)
	assert.NoError(t, mock.ExpectationsWereMet())
}
