package walkthrough

import (
	"context"
	"fmt"

	"github.com/nsqlite/songdb/internal/songdb/printer"
)

const (
	insertSongSQL = "INSERT INTO songs (title, album, artist, play_count) " +
		"VALUES (:title, :album, :artist, :play_count)"
	incrementPlayCountSQL = "UPDATE songs SET play_count = play_count + :delta_play_count " +
		"WHERE title = :title AND album = :album AND artist = :artist"
)

// simpleQuery inserts two songs and lists the albums of their artist.
func simpleQuery(ctx context.Context, env Env, report *Report) error {
	statements := []string{
		"INSERT INTO songs (title, album, artist) " +
			"VALUES ('Girlfriend', 'The Best Damn Thing', 'Avril Lavigne')",
		"INSERT INTO songs (title, album, artist) " +
			"VALUES ('Sk8er Boi', 'Let Go', 'Avril Lavigne')",
	}
	for _, stmt := range statements {
		if _, err := env.DB.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	rs, err := env.DB.Query(ctx, "SELECT album FROM songs WHERE artist = 'Avril Lavigne'")
	if err != nil {
		return err
	}
	defer rs.Close()

	fmt.Fprintln(env.Out, "Avril Lavigne has been in the following albums:")
	report.Albums = []string{}
	for i := 1; rs.Next(); i++ {
		album, ok := rs.StringAt(0)
		if !ok {
			album = printer.NullText
		}
		fmt.Fprintf(env.Out, "%d. %s\n", i, album)
		report.Albums = append(report.Albums, album)
	}
	return rs.Err()
}

// hardCodedQuery builds every statement with its values written into the
// SQL text.
func hardCodedQuery(ctx context.Context, env Env, report *Report) error {
	if _, err := env.DB.Exec(ctx,
		"INSERT INTO songs (title, album, artist) VALUES ('Begin Again', 'Red', 'Taylor Swift')",
	); err != nil {
		return err
	}

	report.LastInsertID = env.DB.LastInsertRowID()
	rs, err := env.DB.Query(ctx, fmt.Sprintf(
		"SELECT * FROM songs WHERE _rowid_ = %d", report.LastInsertID,
	))
	if err != nil {
		return err
	}
	fmt.Fprintln(env.Out, "Result of insert follows...")
	_, err = printer.PrintRows(env.Out, rs)
	rs.Close()
	if err != nil {
		return err
	}

	if _, err := env.DB.Exec(ctx,
		"UPDATE songs SET "+
			"title = 'Begin Again (Taylor''s Version)', "+
			"album = 'Red (Taylor''s Version)' "+
			"WHERE artist = 'Taylor Swift' AND album = 'Red' AND title = 'Begin Again'",
	); err != nil {
		return err
	}

	fmt.Fprintln(env.Out, "Result of update follows...")
	return printSongsTable(ctx, env, report, "final")
}

// parameterizedQuery binds every value through named parameters.
func parameterizedQuery(ctx context.Context, env Env, report *Report) error {
	song := map[string]any{
		"title":      "Stay Stay Stay",
		"album":      "Red",
		"artist":     "Taylor Swift",
		"play_count": 42,
	}
	res, err := env.DB.ExecNamed(ctx, insertSongSQL, song)
	if err != nil {
		return err
	}
	report.LastInsertID = res.LastInsertID

	fmt.Fprintln(env.Out, "Initial table contents...")
	if err := printSongsTable(ctx, env, report, "initial"); err != nil {
		return err
	}

	if _, err := env.DB.ExecNamed(ctx, incrementPlayCountSQL, map[string]any{
		"delta_play_count": 1,
		"title":            song["title"],
		"album":            song["album"],
		"artist":           song["artist"],
	}); err != nil {
		return err
	}

	rs, err := env.DB.QueryNamed(ctx,
		"SELECT play_count FROM songs WHERE title = :title AND album = :album AND artist = :artist",
		map[string]any{
			"title":  song["title"],
			"album":  song["album"],
			"artist": song["artist"],
		},
	)
	if err != nil {
		return err
	}
	defer rs.Close()

	if !rs.Next() {
		if err := rs.Err(); err != nil {
			return err
		}
		return fmt.Errorf("song %q not found after update", song["title"])
	}
	count, ok := rs.Int("play_count")
	if !ok {
		return fmt.Errorf("song %q has no play count", song["title"])
	}
	report.PlayCount = count
	fmt.Fprintf(env.Out, "Updated play count: %d\n", count)
	return nil
}

// transactionCommit updates play counts inside a transaction and commits.
func transactionCommit(ctx context.Context, env Env, report *Report) error {
	if err := populateRecords(ctx, env); err != nil {
		return err
	}

	fmt.Fprintln(env.Out, "Initial table contents...")
	if err := printSongsTable(ctx, env, report, "initial"); err != nil {
		return err
	}

	if err := env.DB.Begin(ctx); err != nil {
		return err
	}
	if err := addArtistPlays(ctx, env); err != nil {
		return env.DB.RollbackAfter(err)
	}
	if err := env.DB.Commit(); err != nil {
		return err
	}

	fmt.Fprintln(env.Out, "Final table contents...")
	return printSongsTable(ctx, env, report, "final")
}

// transactionRollback runs the same update as transactionCommit and rolls
// it back.
func transactionRollback(ctx context.Context, env Env, report *Report) error {
	if err := populateRecords(ctx, env); err != nil {
		return err
	}

	fmt.Fprintln(env.Out, "Initial table contents...")
	if err := printSongsTable(ctx, env, report, "initial"); err != nil {
		return err
	}

	if err := env.DB.Begin(ctx); err != nil {
		return err
	}
	if err := addArtistPlays(ctx, env); err != nil {
		return env.DB.RollbackAfter(err)
	}

	fmt.Fprintln(env.Out, "The table inside a transaction...")
	if err := printSongsTable(ctx, env, report, "inside"); err != nil {
		return env.DB.RollbackAfter(err)
	}

	if err := env.DB.Rollback(); err != nil {
		return err
	}

	fmt.Fprintln(env.Out, "The table after rollback...")
	return printSongsTable(ctx, env, report, "final")
}

// populateRecords inserts the two songs used by the transaction scenarios.
func populateRecords(ctx context.Context, env Env) error {
	songs := []map[string]any{
		{
			"title":      "Keep Being You",
			"album":      "EXPLORE! (Special Edition)",
			"artist":     "Isyana Sarasvati",
			"play_count": 11,
		},
		{
			"title":      "The Moon Represents My Heart",
			"album":      "Home Sweet Home (Deluxe Version)",
			"artist":     "Katherine Jenkins",
			"play_count": 23,
		},
	}
	for _, song := range songs {
		if _, err := env.DB.ExecNamed(ctx, insertSongSQL, song); err != nil {
			return err
		}
	}
	return nil
}

func addArtistPlays(ctx context.Context, env Env) error {
	_, err := env.DB.ExecNamed(ctx,
		"UPDATE songs SET play_count = play_count + :delta WHERE artist = :artist",
		map[string]any{"delta": 6, "artist": "Isyana Sarasvati"},
	)
	return err
}
