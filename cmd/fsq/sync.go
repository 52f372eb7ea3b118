package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
)

func runSync() {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)
	fs.Parse(os.Args[1:])

	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: fsq sync <video-id> [video-id...]")
		os.Exit(1)
	}

	cfg := loadConfig()
	client := newRetrievalClient(cfg)
	if !client.Available() {
		fmt.Fprintf(os.Stderr, "error: retrieval service unreachable at %s\n", cfg.Service.BaseURL)
		os.Exit(1)
	}

	st := openCorpus(cfg)
	defer st.Close()

	ctx := context.Background()
	for _, videoID := range fs.Args() {
		frames, err := client.VideoFrames(ctx, videoID)
		if err != nil {
			log.Fatalf("fetch frames for %s: %v", videoID, err)
		}
		inserted, err := st.SaveFrames(frames)
		if err != nil {
			log.Fatalf("save frames for %s: %v", videoID, err)
		}
		fmt.Printf("%s: %d frames fetched, %d new\n", videoID, len(frames), inserted)
	}
}
