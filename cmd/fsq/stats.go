package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
)

func runStats() {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.Parse(os.Args[1:])

	cfg := loadConfig()
	st := openCorpus(cfg)
	defer st.Close()

	stats, err := st.Stats(context.Background())
	if err != nil {
		log.Fatalf("corpus stats: %v", err)
	}

	fmt.Printf("corpus:       %s\n", corpusPath(cfg))
	fmt.Printf("total frames: %d\n", stats.TotalFrames)
	fmt.Printf("videos:       %d\n", stats.TotalVideos)

	if len(stats.Videos) == 0 {
		fmt.Println("\ncorpus is empty; run 'fsq sync <video-id>' to pull frames")
		return
	}

	fmt.Println()
	for _, v := range stats.Videos {
		title := v.Title
		if title == "" {
			title = "-"
		}
		fmt.Printf("  %-24s %6d frames  keyframes %d-%d  %s\n",
			v.VideoID, v.FrameCount, v.MinFrame, v.MaxFrame, truncate(title, 40))
	}
}
