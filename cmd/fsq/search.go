package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/frameseq/internal/logging"
	"github.com/abelbrown/frameseq/internal/model"
	"github.com/abelbrown/frameseq/internal/otel"
	"github.com/abelbrown/frameseq/internal/query"
	"github.com/abelbrown/frameseq/internal/search"
	"github.com/abelbrown/frameseq/internal/ui"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#58a6ff"))
	scoreStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#3fb950"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8b949e"))
)

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	videoID := fs.String("video", "", "Restrict search to one video")
	topK := fs.Int("top", 0, "Candidates from initial retrieval (0 = config default)")
	threshold := fs.Float64("threshold", -1, "Similarity threshold (-1 = config default)")
	window := fs.Int("window", 0, "Search window radius in keyframe numbers (0 = config default)")
	local := fs.Bool("local", false, "Expand windows from the local corpus instead of the service")
	interactive := fs.Bool("i", false, "Open the interactive results browser")
	fs.Parse(os.Args[1:])

	descriptions := fs.Args()
	if len(descriptions) < 2 {
		fmt.Fprintln(os.Stderr, "usage: fsq search [flags] <event> <event> [event...]")
		fmt.Fprintln(os.Stderr, "  at least 2 ordered event descriptions are required")
		os.Exit(1)
	}

	if err := logging.Init(); err != nil {
		log.Printf("logging unavailable: %v", err)
	}
	defer logging.Close()

	cfg := loadConfig()
	if *topK > 0 {
		cfg.Algorithm.TopK = *topK
	}
	if *threshold >= 0 {
		cfg.Algorithm.SimilarityThreshold = *threshold
	}
	if *window > 0 {
		cfg.Algorithm.SearchWindow = *window
	}

	events := model.NewEvents(descriptions)

	eventLog := openEventLog()
	defer eventLog.Close()
	eventLog.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindStartup, Comp: "fsq"})
	defer eventLog.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindShutdown, Comp: "fsq"})

	client := newRetrievalClient(cfg)
	if !client.Available() {
		fmt.Fprintf(os.Stderr, "error: retrieval service unreachable at %s\n", cfg.Service.BaseURL)
		fmt.Fprintln(os.Stderr, "  set FRAMESEQ_API_URL or start the service")
		os.Exit(1)
	}

	var frames search.FrameSource
	if *local {
		st := openCorpus(cfg)
		defer st.Close()
		frames = st
	}

	session := search.New(cfg.Algorithm, client, frames, newResolver(cfg, eventLog), eventLog)
	session.VideoID = *videoID

	fmt.Println(headerStyle.Render("query"))
	fmt.Printf("  %s\n", query.Compose(events))
	for _, ev := range events {
		fmt.Printf("  %s\n", dimStyle.Render(fmt.Sprintf("%d. %s", ev.Index, ev.Description)))
	}
	fmt.Println(strings.Repeat("-", 72))

	t0 := time.Now()
	results, err := session.Search(context.Background(), events)
	dur := time.Since(t0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *interactive {
		if _, err := tea.NewProgram(ui.New(results, events), tea.WithAltScreen()).Run(); err != nil {
			log.Fatalf("browser failed: %v", err)
		}
		return
	}

	fmt.Printf("%s %d sequences in %v\n\n",
		headerStyle.Render("results"), len(results), dur.Round(time.Millisecond))

	for i, seq := range results {
		fmt.Printf("%2d. %s  video %s  frames %d-%d  span %d  %.0f%% complete\n",
			i+1, scoreStyle.Render(fmt.Sprintf("%.4f", seq.Score)),
			seq.VideoID, seq.StartFrame, seq.EndFrame, seq.Duration, seq.Completeness*100)

		bd := seq.Breakdown
		fmt.Printf("    %s\n", dimStyle.Render(fmt.Sprintf(
			"sim %.3f  temporal %.3f  complete %.3f  consistency %.3f  order %.3f",
			bd.BaseSimilarity, bd.Temporal, bd.Completeness, bd.Consistency, bd.Order)))

		for _, slot := range seq.Slots {
			marker := " "
			if slot.IsPivot {
				marker = "●"
			}
			desc := ""
			if slot.EventIndex < len(events) {
				desc = truncate(events[slot.EventIndex].Description, 48)
			}
			fmt.Printf("    %s event %d  frame %-6d sim %.3f  %s\n",
				marker, slot.EventIndex, slot.Frame.KeyframeN, slot.Similarity, dimStyle.Render(desc))
		}
		fmt.Println()
	}
}
