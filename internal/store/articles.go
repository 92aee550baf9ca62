package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/rickgao/market-ingest/internal/model"
)

// ArticleLookup is the outcome of looking up an article by URL.
type ArticleLookup struct {
	Found bool
	ID    int64 // Valid only when Found
}

// FindArticleByURL looks up an article by its natural key.
func (t *Tx) FindArticleByURL(ctx context.Context, url string) (ArticleLookup, error) {
	return findArticleByURL(ctx, t.tx, url)
}

// UpsertArticle updates the article stored under a.URL, or inserts it when
// the URL is new. It returns the article_id either way.
func (t *Tx) UpsertArticle(ctx context.Context, a model.Article) (int64, error) {
	return upsertArticle(ctx, t.tx, a)
}

// LinkArticle associates an article with a company. An existing link is left
// untouched.
func (t *Tx) LinkArticle(ctx context.Context, articleID, companyID int64) error {
	return linkArticle(ctx, t.tx, articleID, companyID)
}

// SaveArticles upserts every article and links it to companyID in a single
// transaction. It returns the number of articles written.
func (s *Store) SaveArticles(ctx context.Context, companyID int64, articles []model.Article) (int, error) {
	if len(articles) == 0 {
		return 0, nil
	}

	written := 0
	err := s.WithTx(ctx, func(tx *Tx) error {
		for _, a := range articles {
			id, err := tx.UpsertArticle(ctx, a)
			if err != nil {
				return err
			}
			if err := tx.LinkArticle(ctx, id, companyID); err != nil {
				return err
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Debug("saved articles", "company_id", companyID, "count", written)
	return written, nil
}

func findArticleByURL(ctx context.Context, q Querier, url string) (ArticleLookup, error) {
	var id int64
	err := q.QueryRow(ctx, sqlFindArticleByURL, url).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ArticleLookup{}, nil
	}
	if err != nil {
		return ArticleLookup{}, fmt.Errorf("find article %s: %w", url, err)
	}
	return ArticleLookup{Found: true, ID: id}, nil
}

func upsertArticle(ctx context.Context, q Querier, a model.Article) (int64, error) {
	lookup, err := findArticleByURL(ctx, q, a.URL)
	if err != nil {
		return 0, err
	}

	if lookup.Found {
		if _, err := q.Exec(ctx, sqlUpdateArticle, a.Title, a.Summary, a.PublishedAt, a.Source, lookup.ID); err != nil {
			return 0, fmt.Errorf("update article %d: %w", lookup.ID, err)
		}
		return lookup.ID, nil
	}

	var id int64
	err = q.QueryRow(ctx, sqlInsertArticle, a.Title, a.Summary, a.PublishedAt, a.URL, a.Source).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert article %s: %w", a.URL, err)
	}
	return id, nil
}

func linkArticle(ctx context.Context, q Querier, articleID, companyID int64) error {
	if _, err := q.Exec(ctx, sqlLinkArticle, articleID, companyID); err != nil {
		return fmt.Errorf("link article %d to company %d: %w", articleID, companyID, err)
	}
	return nil
}
