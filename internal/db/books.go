package db

import (
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when no ledger row matches
var ErrNotFound = errors.New("book not found in local ledger")

// BookStatus represents where a published book is in its lifecycle
type BookStatus string

const (
	StatusPublished  BookStatus = "published"
	StatusBuilding   BookStatus = "building"
	StatusComplete   BookStatus = "complete"
	StatusFailed     BookStatus = "failed"
	StatusDownloaded BookStatus = "downloaded"
	StatusDelivered  BookStatus = "delivered"
)

// Book is a local record of a book submitted to the publishing service
type Book struct {
	ID            int64
	RemoteID      string
	Title         string
	Description   string
	Filetype      string
	Email         string
	BaseURL       string
	URLs          []string
	Status        BookStatus
	StatusMessage string
	FilePath      string
	Verified      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
	CompletedAt   *time.Time
}

const bookColumns = `
	id, remote_id, title, description, filetype, email, base_url,
	status, status_message, file_path, verified, created_at, updated_at, completed_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanBook(row scanner) (*Book, error) {
	b := &Book{}
	var statusMsg, filePath sql.NullString
	var completedAt sql.NullTime
	err := row.Scan(
		&b.ID, &b.RemoteID, &b.Title, &b.Description, &b.Filetype, &b.Email, &b.BaseURL,
		&b.Status, &statusMsg, &filePath, &b.Verified, &b.CreatedAt, &b.UpdatedAt, &completedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	b.StatusMessage = statusMsg.String
	b.FilePath = filePath.String
	if completedAt.Valid {
		b.CompletedAt = &completedAt.Time
	}
	return b, nil
}

// CreateBook records a newly published book and its source urls
func CreateBook(b *Book) error {
	if b.Status == "" {
		b.Status = StatusPublished
	}

	tx, err := database.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		INSERT INTO books (remote_id, title, description, filetype, email, base_url, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.RemoteID, b.Title, b.Description, b.Filetype, b.Email, b.BaseURL, b.Status,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	for i, u := range b.URLs {
		if _, err := tx.Exec(`INSERT INTO book_urls (book_id, position, url) VALUES (?, ?, ?)`, id, i, u); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	b.ID = id
	return nil
}

// GetBook retrieves a book by its local ID
func GetBook(id int64) (*Book, error) {
	b, err := scanBook(database.QueryRow(`SELECT `+bookColumns+` FROM books WHERE id = ?`, id))
	if err != nil {
		return nil, err
	}
	b.URLs, err = GetBookURLs(b.ID)
	return b, err
}

// GetBookByRemoteID retrieves a book by the id the server assigned
func GetBookByRemoteID(remoteID string) (*Book, error) {
	b, err := scanBook(database.QueryRow(`SELECT `+bookColumns+` FROM books WHERE remote_id = ?`, remoteID))
	if err != nil {
		return nil, err
	}
	b.URLs, err = GetBookURLs(b.ID)
	return b, err
}

// GetBookURLs returns a book's source urls in submission order
func GetBookURLs(bookID int64) ([]string, error) {
	rows, err := database.Query(`SELECT url FROM book_urls WHERE book_id = ? ORDER BY position`, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}

// ListBooks retrieves books filtered by status
func ListBooks(status BookStatus, showAll bool) ([]*Book, error) {
	var rows *sql.Rows
	var err error

	switch {
	case status != "":
		rows, err = database.Query(`SELECT `+bookColumns+` FROM books WHERE status = ?
			ORDER BY updated_at DESC, id DESC`, status)
	case showAll:
		rows, err = database.Query(`SELECT ` + bookColumns + ` FROM books
			ORDER BY updated_at DESC, id DESC`)
	default:
		// By default, hide books that reached the reader
		rows, err = database.Query(`SELECT ` + bookColumns + ` FROM books
			WHERE status NOT IN ('downloaded', 'delivered')
			ORDER BY updated_at DESC, id DESC`)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// The single connection is busy until rows is closed
	rows.Close()

	for _, b := range books {
		if b.URLs, err = GetBookURLs(b.ID); err != nil {
			return nil, err
		}
	}
	return books, nil
}

// UpdateStatus stores the latest build status of a book
func UpdateStatus(remoteID string, status BookStatus, message string) error {
	query := `UPDATE books SET status = ?, status_message = ?, updated_at = CURRENT_TIMESTAMP
		WHERE remote_id = ?`
	if status == StatusComplete || status == StatusFailed {
		query = `UPDATE books SET status = ?, status_message = ?, updated_at = CURRENT_TIMESTAMP,
			completed_at = COALESCE(completed_at, CURRENT_TIMESTAMP)
		WHERE remote_id = ?`
	}
	return exec1(query, status, message, remoteID)
}

// MarkDownloaded records where the artifact was saved
func MarkDownloaded(remoteID, filePath string) error {
	return exec1(`
		UPDATE books SET status = 'downloaded', file_path = ?, verified = 0,
			updated_at = CURRENT_TIMESTAMP
		WHERE remote_id = ?`, filePath, remoteID)
}

// MarkVerified marks a downloaded artifact as verified
func MarkVerified(remoteID string, verified bool) error {
	return exec1(`
		UPDATE books SET verified = ?, updated_at = CURRENT_TIMESTAMP
		WHERE remote_id = ?`, verified, remoteID)
}

// MarkDelivered records a successful email delivery request
func MarkDelivered(remoteID, email string) error {
	return exec1(`
		UPDATE books SET status = 'delivered', email = ?, updated_at = CURRENT_TIMESTAMP
		WHERE remote_id = ?`, email, remoteID)
}

// DeleteBook removes a book and its urls
func DeleteBook(id int64) error {
	return exec1(`DELETE FROM books WHERE id = ?`, id)
}

// exec1 runs a statement that must touch exactly one row
func exec1(query string, args ...any) error {
	result, err := database.Exec(query, args...)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
