// Package seed fills a songs database with generated rows.
package seed

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/nsqlite/songdb/internal/db"
	"github.com/nsqlite/songdb/internal/log"
	"github.com/nsqlite/songdb/internal/store"
)

var artists = []struct {
	name   string
	albums []string
}{
	{name: "Avril Lavigne", albums: []string{"Let Go", "Under My Skin", "The Best Damn Thing"}},
	{name: "Taylor Swift", albums: []string{"Fearless", "Red", "1989"}},
	{name: "Isyana Sarasvati", albums: []string{"Explore!", "Paradox", "Lexicon"}},
}

// newSong generates the songs inserted by Run.
var newSong = Song

// Result describes a finished seed run.
type Result struct {
	Inserted int
	Total    int64
	Elapsed  time.Duration
}

// Song returns the i-th generated song. The same index always yields the
// same song.
func Song(i int) store.Song {
	artist := artists[i%len(artists)]
	album := artist.albums[(i/len(artists))%len(artist.albums)]
	return store.NewSong(fmt.Sprintf("Track %04d", i+1), album, artist.name).
		WithPlayCount(int64(i % 100))
}

// Run inserts count generated songs into database inside a single
// transaction, reporting progress to progress. Nothing is inserted when
// any insert fails.
func Run(ctx context.Context, logger log.Logger, database *db.DB, count int, progress io.Writer) (Result, error) {
	if count <= 0 {
		return Result{}, fmt.Errorf("invalid seed count %d, must be greater than zero", count)
	}

	start := time.Now()
	songs := store.New(database)

	if err := database.Begin(ctx); err != nil {
		return Result{}, err
	}
	logger.InfoNs(log.NsSeed, "seeding songs", log.KV{
		"count": count,
		"txId":  database.TxID(),
	})

	bar := newProgressBar(progress, "seeding songs", count)
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, database.RollbackAfter(err)
		}
		if _, err := songs.Insert(ctx, newSong(i)); err != nil {
			return Result{}, database.RollbackAfter(err)
		}
		bar.Inc()
	}
	bar.Finish()

	if err := database.Commit(); err != nil {
		return Result{}, err
	}

	total, err := songs.Count(ctx)
	if err != nil {
		return Result{}, err
	}

	res := Result{Inserted: count, Total: total, Elapsed: time.Since(start)}
	logger.InfoNs(log.NsSeed, "seed finished", log.KV{
		"inserted": res.Inserted,
		"total":    res.Total,
		"elapsed":  res.Elapsed.String(),
	})
	return res, nil
}
