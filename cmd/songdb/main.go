package main

import (
	"context"
	"log"

	"github.com/nsqlite/songdb/internal/songdb"
)

func main() {
	if err := songdb.Run(context.Background()); err != nil {
		log.Fatal(err)
	}
}
