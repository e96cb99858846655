package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
)

const (
	upsertProductSQL = `INSERT INTO products (
        id,
        name,
        slug,
        category,
        image_url,
        amazon_ref,
        flipkart_ref,
        amazon_url,
        flipkart_url,
        original_price,
        archived
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11
    )
    ON CONFLICT (id) DO UPDATE
    SET
        name           = EXCLUDED.name,
        slug           = EXCLUDED.slug,
        category       = EXCLUDED.category,
        image_url      = EXCLUDED.image_url,
        amazon_ref     = EXCLUDED.amazon_ref,
        flipkart_ref   = EXCLUDED.flipkart_ref,
        amazon_url     = EXCLUDED.amazon_url,
        flipkart_url   = EXCLUDED.flipkart_url,
        original_price = EXCLUDED.original_price,
        archived       = EXCLUDED.archived,
        updated_at     = now()
    RETURNING id, name, slug, category, image_url, amazon_ref, flipkart_ref,
              amazon_url, flipkart_url, original_price, archived, created_at, updated_at;`

	productColumnsSQL = `SELECT
        id, name, slug, category, image_url, amazon_ref, flipkart_ref,
        amazon_url, flipkart_url, original_price, archived, created_at, updated_at
    FROM products`

	getProductBySlugSQL = productColumnsSQL + ` WHERE slug = $1;`
	getProductByIDSQL   = productColumnsSQL + ` WHERE id = $1;`

	listProductsSQL = productColumnsSQL + `
    WHERE archived = FALSE
      AND ($1 = '' OR name ILIKE '%' || $1 || '%' OR category ILIKE '%' || $1 || '%')
    ORDER BY name
    LIMIT $2 OFFSET $3;`

	listTrackedProductsSQL = productColumnsSQL + `
    WHERE archived = FALSE
      AND (amazon_ref IS NOT NULL OR flipkart_ref IS NOT NULL)
    ORDER BY name;`

	archiveProductSQL = `UPDATE products SET archived = TRUE, updated_at = now() WHERE id = $1;`

	insertPriceSampleSQL = `INSERT INTO product_price_history (
        product_id,
        observed_at,
        amazon_price,
        flipkart_price,
        amazon_discount_pct,
        flipkart_discount_pct,
        original_price
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7
    );`

	sampleColumnsSQL = `SELECT
        product_id, observed_at, amazon_price, flipkart_price,
        amazon_discount_pct, flipkart_discount_pct, original_price, created_at
    FROM product_price_history`

	listRecentSamplesSQL = sampleColumnsSQL + `
    WHERE product_id = $1
    ORDER BY observed_at DESC
    LIMIT $2;`

	listSamplesBetweenSQL = sampleColumnsSQL + `
    WHERE product_id = $1
      AND observed_at >= $2
      AND observed_at < $3
    ORDER BY observed_at;`

	allTimeLowSQL = `SELECT LEAST(
        MIN(amazon_price)   FILTER (WHERE amazon_price   > 0),
        MIN(flipkart_price) FILTER (WHERE flipkart_price > 0)
    )
    FROM product_price_history
    WHERE product_id = $1;`

	upsertAlertSQL = `INSERT INTO price_alerts (
        user_id,
        product_id,
        target_price,
        enabled
    ) VALUES (
        $1,$2,$3,$4
    )
    ON CONFLICT (user_id, product_id) DO UPDATE
    SET target_price = EXCLUDED.target_price,
        enabled      = EXCLUDED.enabled,
        updated_at   = now()
    RETURNING user_id, product_id, target_price, enabled, last_notified_at, created_at, updated_at;`

	getAlertSQL = `SELECT
        user_id, product_id, target_price, enabled, last_notified_at, created_at, updated_at
    FROM price_alerts
    WHERE user_id = $1 AND product_id = $2;`

	deleteAlertSQL = `DELETE FROM price_alerts WHERE user_id = $1 AND product_id = $2;`

	listEnabledAlertTargetsSQL = `SELECT
        a.user_id, a.product_id, a.target_price, a.enabled, a.last_notified_at,
        a.created_at, a.updated_at,
        u.email, p.name, p.slug
    FROM price_alerts a
    JOIN users u ON u.id = a.user_id
    JOIN products p ON p.id = a.product_id
    WHERE a.enabled = TRUE
      AND p.archived = FALSE
    ORDER BY a.product_id, a.user_id;`

	markAlertNotifiedSQL = `UPDATE price_alerts
    SET last_notified_at = $3, updated_at = now()
    WHERE user_id = $1 AND product_id = $2;`

	addToWishlistSQL = `INSERT INTO wishlist (user_id, product_id)
    VALUES ($1, $2)
    ON CONFLICT (user_id, product_id) DO NOTHING;`

	removeFromWishlistSQL = `DELETE FROM wishlist WHERE user_id = $1 AND product_id = $2;`

	listWishlistSQL = `SELECT
        p.id, p.name, p.slug, p.category, p.image_url, p.amazon_ref, p.flipkart_ref,
        p.amazon_url, p.flipkart_url, p.original_price, p.archived, p.created_at, p.updated_at,
        w.created_at
    FROM wishlist w
    JOIN products p ON p.id = w.product_id
    WHERE w.user_id = $1
    ORDER BY w.created_at DESC;`

	upsertArticleSQL = `INSERT INTO articles (
        id, slug, title, html_path, published, published_at
    ) VALUES (
        $1,$2,$3,$4,$5,$6
    )
    ON CONFLICT (id) DO UPDATE
    SET slug         = EXCLUDED.slug,
        title        = EXCLUDED.title,
        html_path    = EXCLUDED.html_path,
        published    = EXCLUDED.published,
        published_at = EXCLUDED.published_at,
        updated_at   = now();`

	getArticleBySlugSQL = `SELECT
        id, slug, title, html_path, published, published_at, updated_at
    FROM articles
    WHERE slug = $1;`

	listPublishedArticlesSQL = `SELECT
        id, slug, title, html_path, published, published_at, updated_at
    FROM articles
    WHERE published = TRUE
    ORDER BY updated_at DESC;`

	tryAdvisoryLockSQL = `SELECT pg_try_advisory_lock($1);`
	advisoryUnlockSQL  = `SELECT pg_advisory_unlock($1);`
)

// ProductStore defines catalog persistence operations.
type ProductStore interface {
	UpsertProduct(ctx context.Context, product Product) (Product, error)
	GetProductBySlug(ctx context.Context, slug string) (Product, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (Product, error)
	ListProducts(ctx context.Context, search string, limit, offset int) ([]Product, error)
	ListTrackedProducts(ctx context.Context) ([]Product, error)
	ArchiveProduct(ctx context.Context, id uuid.UUID) error
}

// PriceHistoryStore defines price observation persistence.
type PriceHistoryStore interface {
	InsertPriceSample(ctx context.Context, sample PriceSample) error
	ListRecentSamples(ctx context.Context, productID uuid.UUID, limit int) ([]PriceSample, error)
	ListSamplesBetween(ctx context.Context, productID uuid.UUID, from, to time.Time) ([]PriceSample, error)
	AllTimeLowPrice(ctx context.Context, productID uuid.UUID) (decimal.Decimal, bool, error)
}

// AlertStore defines target-price alert persistence.
type AlertStore interface {
	UpsertAlert(ctx context.Context, alert TargetPriceAlert) (TargetPriceAlert, error)
	GetAlert(ctx context.Context, userID, productID uuid.UUID) (TargetPriceAlert, error)
	DeleteAlert(ctx context.Context, userID, productID uuid.UUID) error
	ListEnabledAlertTargets(ctx context.Context) ([]AlertTarget, error)
	MarkAlertNotified(ctx context.Context, userID, productID uuid.UUID, at time.Time) error
}

// WishlistStore defines wishlist persistence.
type WishlistStore interface {
	AddToWishlist(ctx context.Context, userID, productID uuid.UUID) error
	RemoveFromWishlist(ctx context.Context, userID, productID uuid.UUID) error
	ListWishlist(ctx context.Context, userID uuid.UUID) ([]WishlistEntry, error)
}

// ArticleStore defines article persistence.
type ArticleStore interface {
	UpsertArticle(ctx context.Context, article Article) error
	GetArticleBySlug(ctx context.Context, slug string) (Article, error)
	ListPublishedArticles(ctx context.Context) ([]Article, error)
}

// AdvisoryLocker exposes advisory lock helpers.
type AdvisoryLocker interface {
	TryAdvisoryLock(ctx context.Context, key int64) (unlock func(), acquired bool, err error)
}

// Store aggregates access to all dealscope tables.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// TryAdvisoryLock attempts to acquire a postgres advisory lock and returns a release func.
func (s *Store) TryAdvisoryLock(ctx context.Context, key int64) (func(), bool, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, false, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire connection: %w", err)
	}

	var acquired bool
	if err := conn.QueryRow(ctx, tryAdvisoryLockSQL, key).Scan(&acquired); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("try advisory lock: %w", err)
	}
	if !acquired {
		conn.Release()
		return nil, false, nil
	}

	unlock := func() {
		ctxUnlock, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if _, err := conn.Exec(ctxUnlock, advisoryUnlockSQL, key); err != nil {
			// unlock best effort; log omitted in storage package
		}
		conn.Release()
	}
	return unlock, true, nil
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// UpsertProduct creates or updates a catalog entry.
func (s *Store) UpsertProduct(ctx context.Context, product Product) (Product, error) {
	pool, err := s.getPool()
	if err != nil {
		return Product{}, err
	}

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}

	row := pool.QueryRow(ctx, upsertProductSQL,
		product.ID,
		product.Name,
		product.Slug,
		product.Category,
		product.ImageURL,
		product.AmazonRef,
		product.FlipkartRef,
		product.AmazonURL,
		product.FlipkartURL,
		decimalArg(product.OriginalPrice),
		product.Archived,
	)

	saved, scanErr := scanProductRow(row)
	if scanErr != nil {
		return Product{}, fmt.Errorf("upsert product: %w", scanErr)
	}
	return saved, nil
}

// GetProductBySlug fetches one product by its URL slug.
func (s *Store) GetProductBySlug(ctx context.Context, slug string) (Product, error) {
	pool, err := s.getPool()
	if err != nil {
		return Product{}, err
	}
	product, scanErr := scanProductRow(pool.QueryRow(ctx, getProductBySlugSQL, slug))
	if scanErr != nil {
		return Product{}, scanErr
	}
	return product, nil
}

// GetProductByID fetches one product by id.
func (s *Store) GetProductByID(ctx context.Context, id uuid.UUID) (Product, error) {
	pool, err := s.getPool()
	if err != nil {
		return Product{}, err
	}
	product, scanErr := scanProductRow(pool.QueryRow(ctx, getProductByIDSQL, id))
	if scanErr != nil {
		return Product{}, scanErr
	}
	return product, nil
}

// ListProducts lists live catalog entries, optionally filtered by a search term.
func (s *Store) ListProducts(ctx context.Context, search string, limit, offset int) ([]Product, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listProductsSQL, search, limit, offset)
	if queryErr != nil {
		return nil, fmt.Errorf("list products: %w", queryErr)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// ListTrackedProducts lists live products with at least one retailer reference.
func (s *Store) ListTrackedProducts(ctx context.Context) ([]Product, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listTrackedProductsSQL)
	if queryErr != nil {
		return nil, fmt.Errorf("list tracked products: %w", queryErr)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// ArchiveProduct soft-deletes a catalog entry.
func (s *Store) ArchiveProduct(ctx context.Context, id uuid.UUID) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	cmdTag, execErr := pool.Exec(ctx, archiveProductSQL, id)
	if execErr != nil {
		return fmt.Errorf("archive product: %w", execErr)
	}
	if cmdTag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// InsertPriceSample appends one observation row.
func (s *Store) InsertPriceSample(ctx context.Context, sample PriceSample) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	_, execErr := pool.Exec(ctx, insertPriceSampleSQL,
		sample.ProductID,
		sample.ObservedAt,
		decimalArg(sample.AmazonPrice),
		decimalArg(sample.FlipkartPrice),
		decimalArg(sample.AmazonDiscountPct),
		decimalArg(sample.FlipkartDiscountPct),
		decimalArg(sample.OriginalPrice),
	)
	if execErr != nil {
		return fmt.Errorf("insert price sample: %w", execErr)
	}
	return nil
}

// ListRecentSamples lists the most recent observations, newest first.
func (s *Store) ListRecentSamples(ctx context.Context, productID uuid.UUID, limit int) ([]PriceSample, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentSamplesSQL, productID, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent samples: %w", queryErr)
	}
	defer rows.Close()

	return collectSamples(rows, limit)
}

// ListSamplesBetween lists observations within a time window, oldest first.
func (s *Store) ListSamplesBetween(ctx context.Context, productID uuid.UUID, from, to time.Time) ([]PriceSample, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listSamplesBetweenSQL, productID, from, to)
	if queryErr != nil {
		return nil, fmt.Errorf("list samples between: %w", queryErr)
	}
	defer rows.Close()

	return collectSamples(rows, 0)
}

// AllTimeLowPrice returns the lowest positive price ever observed for a
// product across both retailers. The second return is false when no
// positive observation exists.
func (s *Store) AllTimeLowPrice(ctx context.Context, productID uuid.UUID) (decimal.Decimal, bool, error) {
	pool, err := s.getPool()
	if err != nil {
		return decimal.Decimal{}, false, err
	}

	var low sql.NullString
	if scanErr := pool.QueryRow(ctx, allTimeLowSQL, productID).Scan(&low); scanErr != nil {
		return decimal.Decimal{}, false, fmt.Errorf("all-time low price: %w", scanErr)
	}
	if !low.Valid {
		return decimal.Decimal{}, false, nil
	}

	value, convErr := decimal.NewFromString(low.String)
	if convErr != nil {
		return decimal.Decimal{}, false, fmt.Errorf("parse all-time low: %w", convErr)
	}
	return value, true, nil
}

// UpsertAlert creates or replaces the single alert for a (user, product) pair.
func (s *Store) UpsertAlert(ctx context.Context, alert TargetPriceAlert) (TargetPriceAlert, error) {
	pool, err := s.getPool()
	if err != nil {
		return TargetPriceAlert{}, err
	}

	row := pool.QueryRow(ctx, upsertAlertSQL,
		alert.UserID,
		alert.ProductID,
		alert.TargetPrice.String(),
		alert.Enabled,
	)

	saved, scanErr := scanAlertRow(row)
	if scanErr != nil {
		return TargetPriceAlert{}, fmt.Errorf("upsert alert: %w", scanErr)
	}
	return saved, nil
}

// GetAlert fetches the alert for a (user, product) pair.
func (s *Store) GetAlert(ctx context.Context, userID, productID uuid.UUID) (TargetPriceAlert, error) {
	pool, err := s.getPool()
	if err != nil {
		return TargetPriceAlert{}, err
	}
	alert, scanErr := scanAlertRow(pool.QueryRow(ctx, getAlertSQL, userID, productID))
	if scanErr != nil {
		return TargetPriceAlert{}, scanErr
	}
	return alert, nil
}

// DeleteAlert removes the alert for a (user, product) pair.
func (s *Store) DeleteAlert(ctx context.Context, userID, productID uuid.UUID) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	if _, execErr := pool.Exec(ctx, deleteAlertSQL, userID, productID); execErr != nil {
		return fmt.Errorf("delete alert: %w", execErr)
	}
	return nil
}

// ListEnabledAlertTargets lists every enabled alert joined with recipient
// email and product context for the sweep.
func (s *Store) ListEnabledAlertTargets(ctx context.Context) ([]AlertTarget, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listEnabledAlertTargetsSQL)
	if queryErr != nil {
		return nil, fmt.Errorf("list enabled alert targets: %w", queryErr)
	}
	defer rows.Close()

	targets := make([]AlertTarget, 0)
	for rows.Next() {
		var (
			target       AlertTarget
			targetStr    string
			lastNotified sql.NullTime
		)
		if err := rows.Scan(
			&target.Alert.UserID,
			&target.Alert.ProductID,
			&targetStr,
			&target.Alert.Enabled,
			&lastNotified,
			&target.Alert.CreatedAt,
			&target.Alert.UpdatedAt,
			&target.Email,
			&target.ProductName,
			&target.ProductSlug,
		); err != nil {
			return nil, err
		}

		var convErr error
		target.Alert.TargetPrice, convErr = decimal.NewFromString(targetStr)
		if convErr != nil {
			return nil, fmt.Errorf("parse target price: %w", convErr)
		}
		if lastNotified.Valid {
			at := lastNotified.Time
			target.Alert.LastNotifiedAt = &at
		}

		targets = append(targets, target)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return targets, nil
}

// MarkAlertNotified stamps the cooldown marker after a confirmed delivery.
func (s *Store) MarkAlertNotified(ctx context.Context, userID, productID uuid.UUID, at time.Time) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	cmdTag, execErr := pool.Exec(ctx, markAlertNotifiedSQL, userID, productID, at)
	if execErr != nil {
		return fmt.Errorf("mark alert notified: %w", execErr)
	}
	if cmdTag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// AddToWishlist adds a product to a user's wishlist; re-adding is a no-op.
func (s *Store) AddToWishlist(ctx context.Context, userID, productID uuid.UUID) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	if _, execErr := pool.Exec(ctx, addToWishlistSQL, userID, productID); execErr != nil {
		return fmt.Errorf("add to wishlist: %w", execErr)
	}
	return nil
}

// RemoveFromWishlist removes a product from a user's wishlist.
func (s *Store) RemoveFromWishlist(ctx context.Context, userID, productID uuid.UUID) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	if _, execErr := pool.Exec(ctx, removeFromWishlistSQL, userID, productID); execErr != nil {
		return fmt.Errorf("remove from wishlist: %w", execErr)
	}
	return nil
}

// ListWishlist lists a user's wishlist newest first, products included.
func (s *Store) ListWishlist(ctx context.Context, userID uuid.UUID) ([]WishlistEntry, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listWishlistSQL, userID)
	if queryErr != nil {
		return nil, fmt.Errorf("list wishlist: %w", queryErr)
	}
	defer rows.Close()

	entries := make([]WishlistEntry, 0)
	for rows.Next() {
		product, addedAt, scanErr := scanWishlistRow(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		entries = append(entries, WishlistEntry{Product: product, AddedAt: addedAt})
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return entries, nil
}

// UpsertArticle creates or updates an article row.
func (s *Store) UpsertArticle(ctx context.Context, article Article) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	if article.ID == uuid.Nil {
		article.ID = uuid.New()
	}

	var publishedAt interface{}
	if article.PublishedAt != nil {
		publishedAt = *article.PublishedAt
	}

	_, execErr := pool.Exec(ctx, upsertArticleSQL,
		article.ID,
		article.Slug,
		article.Title,
		article.HTMLPath,
		article.Published,
		publishedAt,
	)
	if execErr != nil {
		return fmt.Errorf("upsert article: %w", execErr)
	}
	return nil
}

// GetArticleBySlug fetches one article by slug.
func (s *Store) GetArticleBySlug(ctx context.Context, slug string) (Article, error) {
	pool, err := s.getPool()
	if err != nil {
		return Article{}, err
	}

	var (
		article     Article
		publishedAt sql.NullTime
	)
	if scanErr := pool.QueryRow(ctx, getArticleBySlugSQL, slug).Scan(
		&article.ID,
		&article.Slug,
		&article.Title,
		&article.HTMLPath,
		&article.Published,
		&publishedAt,
		&article.UpdatedAt,
	); scanErr != nil {
		return Article{}, scanErr
	}
	if publishedAt.Valid {
		at := publishedAt.Time
		article.PublishedAt = &at
	}
	return article, nil
}

// ListPublishedArticles lists published articles, most recently updated first.
func (s *Store) ListPublishedArticles(ctx context.Context) ([]Article, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listPublishedArticlesSQL)
	if queryErr != nil {
		return nil, fmt.Errorf("list published articles: %w", queryErr)
	}
	defer rows.Close()

	articles := make([]Article, 0)
	for rows.Next() {
		var (
			article     Article
			publishedAt sql.NullTime
		)
		if err := rows.Scan(
			&article.ID,
			&article.Slug,
			&article.Title,
			&article.HTMLPath,
			&article.Published,
			&publishedAt,
			&article.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if publishedAt.Valid {
			at := publishedAt.Time
			article.PublishedAt = &at
		}
		articles = append(articles, article)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return articles, nil
}

func decimalArg(d *decimal.Decimal) interface{} {
	if d == nil {
		return nil
	}
	return d.String()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProductRow(row rowScanner) (Product, error) {
	var (
		product       Product
		originalPrice sql.NullString
	)
	if err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Slug,
		&product.Category,
		&product.ImageURL,
		&product.AmazonRef,
		&product.FlipkartRef,
		&product.AmazonURL,
		&product.FlipkartURL,
		&originalPrice,
		&product.Archived,
		&product.CreatedAt,
		&product.UpdatedAt,
	); err != nil {
		return Product{}, err
	}

	if originalPrice.Valid {
		value, convErr := decimal.NewFromString(originalPrice.String)
		if convErr != nil {
			return Product{}, fmt.Errorf("parse original price: %w", convErr)
		}
		product.OriginalPrice = &value
	}
	return product, nil
}

func collectProducts(rows pgx.Rows) ([]Product, error) {
	products := make([]Product, 0)
	for rows.Next() {
		product, scanErr := scanProductRow(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		products = append(products, product)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return products, nil
}

func collectSamples(rows pgx.Rows, sizeHint int) ([]PriceSample, error) {
	samples := make([]PriceSample, 0, sizeHint)
	for rows.Next() {
		sample, scanErr := scanPriceSample(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		samples = append(samples, sample)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return samples, nil
}

func scanPriceSample(rows pgx.Rows) (PriceSample, error) {
	var (
		sample              PriceSample
		amazonPrice         sql.NullString
		flipkartPrice       sql.NullString
		amazonDiscountPct   sql.NullString
		flipkartDiscountPct sql.NullString
		originalPrice       sql.NullString
	)

	if err := rows.Scan(
		&sample.ProductID,
		&sample.ObservedAt,
		&amazonPrice,
		&flipkartPrice,
		&amazonDiscountPct,
		&flipkartDiscountPct,
		&originalPrice,
		&sample.CreatedAt,
	); err != nil {
		return PriceSample{}, err
	}

	fields := []struct {
		src  sql.NullString
		dst  **decimal.Decimal
		name string
	}{
		{amazonPrice, &sample.AmazonPrice, "amazon price"},
		{flipkartPrice, &sample.FlipkartPrice, "flipkart price"},
		{amazonDiscountPct, &sample.AmazonDiscountPct, "amazon discount pct"},
		{flipkartDiscountPct, &sample.FlipkartDiscountPct, "flipkart discount pct"},
		{originalPrice, &sample.OriginalPrice, "original price"},
	}
	for _, field := range fields {
		if !field.src.Valid {
			continue
		}
		value, convErr := decimal.NewFromString(field.src.String)
		if convErr != nil {
			return PriceSample{}, fmt.Errorf("parse %s: %w", field.name, convErr)
		}
		*field.dst = &value
	}

	return sample, nil
}

func scanAlertRow(row rowScanner) (TargetPriceAlert, error) {
	var (
		alert        TargetPriceAlert
		targetStr    string
		lastNotified sql.NullTime
	)
	if err := row.Scan(
		&alert.UserID,
		&alert.ProductID,
		&targetStr,
		&alert.Enabled,
		&lastNotified,
		&alert.CreatedAt,
		&alert.UpdatedAt,
	); err != nil {
		return TargetPriceAlert{}, err
	}

	var convErr error
	alert.TargetPrice, convErr = decimal.NewFromString(targetStr)
	if convErr != nil {
		return TargetPriceAlert{}, fmt.Errorf("parse target price: %w", convErr)
	}
	if lastNotified.Valid {
		at := lastNotified.Time
		alert.LastNotifiedAt = &at
	}
	return alert, nil
}

func scanWishlistRow(rows pgx.Rows) (Product, time.Time, error) {
	var (
		product       Product
		originalPrice sql.NullString
		addedAt       time.Time
	)
	if err := rows.Scan(
		&product.ID,
		&product.Name,
		&product.Slug,
		&product.Category,
		&product.ImageURL,
		&product.AmazonRef,
		&product.FlipkartRef,
		&product.AmazonURL,
		&product.FlipkartURL,
		&originalPrice,
		&product.Archived,
		&product.CreatedAt,
		&product.UpdatedAt,
		&addedAt,
	); err != nil {
		return Product{}, time.Time{}, err
	}

	if originalPrice.Valid {
		value, convErr := decimal.NewFromString(originalPrice.String)
		if convErr != nil {
			return Product{}, time.Time{}, fmt.Errorf("parse original price: %w", convErr)
		}
		product.OriginalPrice = &value
	}
	return product, addedAt, nil
}
