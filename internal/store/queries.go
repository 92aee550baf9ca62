package store

const (
	sqlResolveCompany = `SELECT company_id FROM company WHERE stock_ticker = $1`

	sqlFindArticleByURL = `SELECT article_id FROM article WHERE url = $1`

	sqlUpdateArticle = `
		UPDATE article
		SET title = $1,
		    summary = $2,
		    publication_date = $3,
		    source_location = $4
		WHERE article_id = $5
	`

	sqlInsertArticle = `
		INSERT INTO article (title, summary, publication_date, url, source_location)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING article_id
	`

	sqlLinkArticle = `
		INSERT INTO articlecompanylink (article_id, company_id)
		VALUES ($1, $2)
		ON CONFLICT (article_id, company_id) DO NOTHING
	`

	sqlLastTradeDate = `SELECT MAX(trade_date) FROM pricehistory WHERE company_id = $1`

	sqlPriceBars = `
		SELECT trade_date, open_price, high_price, low_price, close_price, volume
		FROM pricehistory
		WHERE company_id = $1 AND trade_date BETWEEN $2 AND $3
		ORDER BY trade_date
	`

	sqlPriceUpsertPrefix = `INSERT INTO pricehistory
			(company_id, trade_date, open_price, high_price, low_price, close_price, volume)
		VALUES `

	sqlPriceUpsertSuffix = `
		ON CONFLICT (company_id, trade_date) DO UPDATE
		SET open_price  = EXCLUDED.open_price,
		    high_price  = EXCLUDED.high_price,
		    low_price   = EXCLUDED.low_price,
		    close_price = EXCLUDED.close_price,
		    volume      = EXCLUDED.volume
	`
)
