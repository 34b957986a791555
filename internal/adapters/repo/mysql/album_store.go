package mysql

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/albums-service/internal/core/domain"
	"github.com/albums-service/internal/core/services"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// AlbumStore keeps albums in the albums table and their ordered membership in
// album_photos. Mutations lock the album row with SELECT ... FOR UPDATE.
type AlbumStore struct {
	db    *sql.DB
	clock services.Clock
}

func NewAlbumStore(db *sql.DB, clock services.Clock) *AlbumStore {
	if clock == nil {
		clock = services.RealClock{}
	}
	return &AlbumStore{db: db, clock: clock}
}

func (s *AlbumStore) Create(ctx context.Context, owner, title, description, coverPhotoID string) (*domain.Album, error) {
	album := domain.Album{
		AlbumID:      uuid.NewString(),
		Owner:        owner,
		Title:        title,
		Description:  description,
		CoverPhotoID: coverPhotoID,
		CreatedAt:    s.clock.Now().UTC().Truncate(time.Microsecond),
		Photos:       []string{},
	}

	query := `
		INSERT INTO albums (album_id, display_name, title, description, cover_photo_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		album.AlbumID,
		album.Owner,
		album.Title,
		nullable(album.Description),
		nullable(album.CoverPhotoID),
		album.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &album, nil
}

func (s *AlbumStore) GetPage(ctx context.Context, owner string, offset, limit int) (domain.Page, error) {
	var total int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM albums WHERE display_name = ?`, owner).Scan(&total)
	if err != nil {
		return domain.Page{}, err
	}

	query := `
		SELECT album_id, display_name, title, description, cover_photo_id, created_at
		FROM albums
		WHERE display_name = ?
		ORDER BY created_at DESC, id ASC
		LIMIT ? OFFSET ?
	`
	rows, err := s.db.QueryContext(ctx, query, owner, limit, offset)
	if err != nil {
		return domain.Page{}, err
	}
	defer rows.Close()

	page := domain.Page{Items: []domain.Album{}, HasMore: domain.HasMore(total, offset, limit)}
	for rows.Next() {
		album, err := scanAlbum(rows)
		if err != nil {
			return domain.Page{}, err
		}
		page.Items = append(page.Items, *album)
	}
	if err := rows.Err(); err != nil {
		return domain.Page{}, err
	}

	for i := range page.Items {
		photos, err := photoIDs(ctx, s.db, page.Items[i].AlbumID)
		if err != nil {
			return domain.Page{}, err
		}
		page.Items[i].Photos = photos
	}
	return page, nil
}

func (s *AlbumStore) GetByID(ctx context.Context, owner, albumID string) (*domain.Album, error) {
	return loadAlbum(ctx, s.db, owner, albumID)
}

func (s *AlbumStore) Update(ctx context.Context, owner, albumID string, fields domain.AlbumFields) (*domain.Album, error) {
	supplied := fields.Supplied()
	if len(supplied) == 0 {
		return nil, services.ErrNoFieldsToUpdate
	}

	columns := make([]string, 0, len(supplied))
	for column := range supplied {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	assignments := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns)+2)
	for _, column := range columns {
		assignments = append(assignments, column+" = ?")
		args = append(args, supplied[column])
	}
	args = append(args, owner, albumID)
	query := `UPDATE albums SET ` + strings.Join(assignments, ", ") + ` WHERE display_name = ? AND album_id = ?`

	var album *domain.Album
	err := s.withLockedAlbum(ctx, owner, albumID, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
		var err error
		album, err = loadAlbum(ctx, tx, owner, albumID)
		return err
	})
	return album, err
}

func (s *AlbumStore) Delete(ctx context.Context, owner, albumID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM albums WHERE display_name = ? AND album_id = ?`, owner, albumID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *AlbumStore) AddPhoto(ctx context.Context, owner, albumID, photoID string) (*domain.Album, error) {
	query := `
		INSERT INTO album_photos (album_id, photo_id, position)
		SELECT ?, ?, COALESCE(MAX(position), 0) + 1
		FROM album_photos
		WHERE album_id = ?
	`

	// The album row lock serializes membership changes, so the check and
	// the insert cannot race. A plain INSERT keeps oversized ids an error
	// instead of a silent truncation.
	var album *domain.Album
	err := s.withLockedAlbum(ctx, owner, albumID, func(tx *sql.Tx) error {
		var member int
		err := tx.QueryRowContext(ctx,
			`SELECT 1 FROM album_photos WHERE album_id = ? AND photo_id = ?`,
			albumID, photoID,
		).Scan(&member)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			if _, err := tx.ExecContext(ctx, query, albumID, photoID, albumID); err != nil {
				return err
			}
		case err != nil:
			return err
		}
		album, err = loadAlbum(ctx, tx, owner, albumID)
		return err
	})
	return album, err
}

func (s *AlbumStore) RemovePhoto(ctx context.Context, owner, albumID, photoID string) (*domain.Album, bool, error) {
	var (
		album   *domain.Album
		removed bool
	)
	err := s.withLockedAlbum(ctx, owner, albumID, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM album_photos WHERE album_id = ? AND photo_id = ?`, albumID, photoID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		removed = n > 0
		album, err = loadAlbum(ctx, tx, owner, albumID)
		return err
	})
	return album, removed, err
}

func (s *AlbumStore) ListPhotoIDs(ctx context.Context, owner, albumID string) ([]string, error) {
	album, err := loadAlbum(ctx, s.db, owner, albumID)
	if err != nil {
		return nil, err
	}
	return album.Photos, nil
}

// withLockedAlbum runs fn in a transaction holding the album row lock. It
// returns services.ErrNotFound when the owner has no such album.
func (s *AlbumStore) withLockedAlbum(ctx context.Context, owner, albumID string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM albums WHERE display_name = ? AND album_id = ? FOR UPDATE`,
		owner, albumID,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return services.ErrNotFound
	}
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func loadAlbum(ctx context.Context, q querier, owner, albumID string) (*domain.Album, error) {
	query := `
		SELECT album_id, display_name, title, description, cover_photo_id, created_at
		FROM albums
		WHERE display_name = ? AND album_id = ?
	`
	album, err := scanAlbum(q.QueryRowContext(ctx, query, owner, albumID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	album.Photos, err = photoIDs(ctx, q, albumID)
	if err != nil {
		return nil, err
	}
	return album, nil
}

func photoIDs(ctx context.Context, q querier, albumID string) ([]string, error) {
	rows, err := q.QueryContext(ctx, `SELECT photo_id FROM album_photos WHERE album_id = ? ORDER BY position`, albumID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAlbum(row scanner) (*domain.Album, error) {
	var (
		album       domain.Album
		description sql.NullString
		cover       sql.NullString
	)
	err := row.Scan(
		&album.AlbumID,
		&album.Owner,
		&album.Title,
		&description,
		&cover,
		&album.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	album.Description = description.String
	album.CoverPhotoID = cover.String
	album.CreatedAt = album.CreatedAt.UTC()
	return &album, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
