package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/abelbrown/frameseq/internal/search"
)

func runFrames() {
	fs := flag.NewFlagSet("frames", flag.ExitOnError)
	remote := fs.Bool("remote", false, "List from the retrieval service instead of the local corpus")
	limit := fs.Int("limit", 0, "Show at most N frames (0 = all)")
	fs.Parse(os.Args[1:])

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: fsq frames [--remote] [--limit N] <video-id>")
		os.Exit(1)
	}
	videoID := fs.Arg(0)

	cfg := loadConfig()

	var source search.FrameSource
	if *remote {
		source = newRetrievalClient(cfg)
	} else {
		st := openCorpus(cfg)
		defer st.Close()
		source = st
	}

	frames, err := source.VideoFrames(context.Background(), videoID)
	if err != nil {
		log.Fatalf("list frames: %v", err)
	}
	if len(frames) == 0 {
		fmt.Printf("no frames for video %s\n", videoID)
		return
	}

	if frames[0].VideoTitle != "" {
		fmt.Printf("video %s — %s\n", videoID, frames[0].VideoTitle)
	} else {
		fmt.Printf("video %s\n", videoID)
	}
	fmt.Printf("%d frames, keyframes %d-%d\n\n", len(frames), frames[0].KeyframeN, frames[len(frames)-1].KeyframeN)

	shown := len(frames)
	if *limit > 0 && *limit < shown {
		shown = *limit
	}
	for _, f := range frames[:shown] {
		fmt.Printf("  %-8d %8.2fs  %s\n", f.KeyframeN, f.PtsTime, f.Filename)
	}
	if shown < len(frames) {
		fmt.Printf("  ... %d more\n", len(frames)-shown)
	}
}
