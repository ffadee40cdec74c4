package db

import (
	"crypto/sha256"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CachedPage is page content fetched earlier for a section
type CachedPage struct {
	CacheKey  string
	URL       string
	Title     string
	HTML      string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// PageCacheKey generates the cache key for a url and fetch mode
func PageCacheKey(url string, rendered bool) string {
	data := url
	if rendered {
		data += "#rendered"
	}
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash[:16]) // Use first 16 bytes for shorter key
}

// GetCachedPage retrieves a cached page if it hasn't expired. A miss
// returns nil, nil.
func GetCachedPage(cacheKey string) (*CachedPage, error) {
	page := &CachedPage{}
	var created, expires int64
	err := database.QueryRow(`
		SELECT cache_key, url, title, html, created_at, expires_at
		FROM page_cache
		WHERE cache_key = ? AND expires_at > ?`, cacheKey, time.Now().Unix()).Scan(
		&page.CacheKey, &page.URL, &page.Title, &page.HTML, &created, &expires,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Cache miss
	}
	if err != nil {
		return nil, err
	}
	page.CreatedAt = time.Unix(created, 0)
	page.ExpiresAt = time.Unix(expires, 0)
	return page, nil
}

// SaveCachedPage stores fetched page content for ttl
func SaveCachedPage(cacheKey, url, title, html string, ttl time.Duration) error {
	now := time.Now()
	_, err := database.Exec(`
		INSERT OR REPLACE INTO page_cache (cache_key, url, title, html, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		cacheKey, url, title, html, now.Unix(), now.Add(ttl).Unix())
	return err
}

// CleanExpiredPages removes expired cache entries
func CleanExpiredPages() error {
	_, err := database.Exec(`DELETE FROM page_cache WHERE expires_at <= ?`, time.Now().Unix())
	return err
}

// ClearPageCache removes all cached pages
func ClearPageCache() error {
	_, err := database.Exec(`DELETE FROM page_cache`)
	return err
}

// GetCacheStats returns cache statistics
func GetCacheStats() (total int, expired int, err error) {
	err = database.QueryRow(`SELECT COUNT(*) FROM page_cache`).Scan(&total)
	if err != nil {
		return 0, 0, err
	}

	err = database.QueryRow(`SELECT COUNT(*) FROM page_cache WHERE expires_at <= ?`, time.Now().Unix()).Scan(&expired)
	if err != nil {
		return total, 0, err
	}

	return total, expired, nil
}
