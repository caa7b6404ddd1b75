// Package store provides typed access to the songs table on top of the
// db façade. Queries are built with squirrel and sent through db.DB so
// they share its transaction and error semantics.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	sq "github.com/Masterminds/squirrel"
	"github.com/nsqlite/songdb/internal/db"
)

const table = "songs"

// columns are the updatable columns of the songs table.
var columns = map[string]bool{
	"title":      true,
	"artist":     true,
	"album":      true,
	"play_count": true,
}

var (
	// ErrNotFound is returned when no song matches the requested id.
	ErrNotFound = errors.New("song not found")
	// ErrNoChanges is returned by Update when there is nothing to set.
	ErrNoChanges = errors.New("no columns to update")
)

// Song is a row of the songs table.
type Song struct {
	ID        int64          `db:"song_id"`
	Title     sql.NullString `db:"title"`
	Artist    sql.NullString `db:"artist"`
	Album     sql.NullString `db:"album"`
	PlayCount sql.NullInt64  `db:"play_count"`
}

// NewSong returns a song with the given text columns set and a NULL play
// count.
func NewSong(title, album, artist string) Song {
	return Song{
		Title:  Text(title),
		Album:  Text(album),
		Artist: Text(artist),
	}
}

// WithPlayCount returns a copy of s with the play count set.
func (s Song) WithPlayCount(count int64) Song {
	s.PlayCount = sql.NullInt64{Int64: count, Valid: true}
	return s
}

// Text returns a valid sql.NullString holding s.
func Text(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

// Filter is an equality predicate over song columns. A nil value matches
// NULL.
type Filter map[string]any

// Store runs song queries through a db.DB.
type Store struct {
	db *db.DB
}

// New creates a Store backed by database.
func New(database *db.DB) *Store {
	return &Store{db: database}
}

// Insert adds a song and returns its id.
func (s *Store) Insert(ctx context.Context, song Song) (int64, error) {
	query, args, err := sq.Insert(table).
		Columns("title", "album", "artist", "play_count").
		Values(song.Title, song.Album, song.Artist, song.PlayCount).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build insert: %w", err)
	}

	res, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertID, nil
}

// Get returns the song with the given id.
func (s *Store) Get(ctx context.Context, id int64) (Song, error) {
	songs, err := s.find(ctx, sq.Eq{"song_id": id})
	if err != nil {
		return Song{}, err
	}
	if len(songs) == 0 {
		return Song{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return songs[0], nil
}

// List returns every song ordered by id.
func (s *Store) List(ctx context.Context) ([]Song, error) {
	return s.find(ctx, nil)
}

// Find returns the songs matching filter ordered by id.
func (s *Store) Find(ctx context.Context, filter Filter) ([]Song, error) {
	if err := validateColumns(filter, true); err != nil {
		return nil, err
	}
	return s.find(ctx, sq.Eq(filter))
}

// FindByArtist returns the songs of artist ordered by id.
func (s *Store) FindByArtist(ctx context.Context, artist string) ([]Song, error) {
	return s.find(ctx, sq.Eq{"artist": artist})
}

// Count returns the number of songs.
func (s *Store) Count(ctx context.Context) (int64, error) {
	query, args, err := sq.Select("COUNT(*) AS total").From(table).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count: %w", err)
	}

	rs, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	defer rs.Close()

	if !rs.Next() {
		return 0, rs.Err()
	}
	total, _ := rs.Int("total")
	return total, nil
}

// Update sets changes on every song matching filter and returns the number
// of rows affected. Columns not named in changes are left untouched.
func (s *Store) Update(ctx context.Context, filter Filter, changes map[string]any) (int64, error) {
	if len(changes) == 0 {
		return 0, ErrNoChanges
	}
	if err := validateColumns(changes, false); err != nil {
		return 0, err
	}
	if err := validateColumns(filter, true); err != nil {
		return 0, err
	}

	builder := sq.Update(table).SetMap(changes)
	if len(filter) > 0 {
		builder = builder.Where(sq.Eq(filter))
	}
	return s.update(ctx, builder)
}

// IncrementPlayCount adds delta to the play count of the songs matching
// the title, album and artist triple.
func (s *Store) IncrementPlayCount(ctx context.Context, title, album, artist string, delta int64) (int64, error) {
	return s.update(ctx, sq.Update(table).
		Set("play_count", sq.Expr("play_count + ?", delta)).
		Where(sq.Eq{"title": title, "album": album, "artist": artist}))
}

// IncrementArtistPlayCount adds delta to the play count of every song of
// artist.
func (s *Store) IncrementArtistPlayCount(ctx context.Context, artist string, delta int64) (int64, error) {
	return s.update(ctx, sq.Update(table).
		Set("play_count", sq.Expr("play_count + ?", delta)).
		Where(sq.Eq{"artist": artist}))
}

func (s *Store) update(ctx context.Context, builder sq.UpdateBuilder) (int64, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build update: %w", err)
	}

	res, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected, nil
}

func (s *Store) find(ctx context.Context, where sq.Sqlizer) ([]Song, error) {
	builder := sq.Select("song_id", "title", "artist", "album", "play_count").
		From(table).
		OrderBy("song_id")
	if where != nil {
		builder = builder.Where(where)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	rs, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rs.Close()

	songs := []Song{}
	for rs.Next() {
		song := Song{}
		if err := rs.Scan(&song); err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}
	return songs, rs.Err()
}

// validateColumns rejects keys that are not song columns, since column
// names end up in the SQL text. song_id is only accepted when allowID is
// set.
func validateColumns(m map[string]any, allowID bool) error {
	unknown := []string{}
	for k := range m {
		if !columns[k] && !(allowID && k == "song_id") {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return fmt.Errorf("unknown song columns: %v", unknown)
}
