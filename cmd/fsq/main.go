// Command fsq is the CLI for frameseq temporal sequence search.
//
// Usage:
//
//	fsq                     Show help
//	fsq search <event>...   Temporal sequence search over video keyframes
//	fsq frames <video-id>   List a video's keyframes
//	fsq sync <video-id>     Pull a video's keyframes into the local corpus
//	fsq stats               Local corpus statistics
//	fsq events              JSONL event log viewer
package main

import (
	"fmt"
	"os"
)

const usage = `fsq — temporal sequence search CLI

Usage:
  fsq <command> [flags]

Commands:
  search      Find temporally ordered frame sequences matching events
  frames      List a video's keyframes (local corpus or remote service)
  sync        Pull a video's keyframes from the service into the local corpus
  stats       Local corpus statistics
  events      JSONL event log viewer

Environment:
  FRAMESEQ_API_URL   Retrieval/similarity service base URL (default http://localhost:8001)
  FRAMESEQ_DB        Local keyframe corpus path (default ~/.frameseq/frameseq.db)

Run 'fsq <command> -h' for command-specific help.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(0)
	}

	cmd := os.Args[1]
	// Strip the program name + subcommand so flag sets see only their flags
	os.Args = os.Args[1:]

	switch cmd {
	case "search":
		runSearch()
	case "frames":
		runFrames()
	case "sync":
		runSync()
	case "stats":
		runStats()
	case "events":
		runEvents()
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "fsq: unknown command %q\n\n", cmd)
		fmt.Print(usage)
		os.Exit(1)
	}
}
