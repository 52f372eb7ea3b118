package store

import (
	"context"
	"testing"

	"github.com/abelbrown/frameseq/internal/model"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedFrames() []model.Frame {
	return []model.Frame{
		{VideoID: "v1", KeyframeN: 100, Filename: "v1_100.jpg", PtsTime: 4.0, VideoTitle: "clip one"},
		{VideoID: "v1", KeyframeN: 250, Filename: "v1_250.jpg", PtsTime: 10.0, VideoTitle: "clip one"},
		{VideoID: "v1", KeyframeN: 400, Filename: "v1_400.jpg", PtsTime: 16.0, VideoTitle: "clip one"},
		{VideoID: "v2", KeyframeN: 50, Filename: "v2_50.jpg", PtsTime: 2.0, VideoTitle: "clip two"},
	}
}

func TestSaveFramesDeduplicates(t *testing.T) {
	s := testStore(t)

	n, err := s.SaveFrames(seedFrames())
	if err != nil {
		t.Fatalf("SaveFrames: %v", err)
	}
	if n != 4 {
		t.Errorf("inserted = %d, want 4", n)
	}

	n, err = s.SaveFrames(seedFrames())
	if err != nil {
		t.Fatalf("second SaveFrames: %v", err)
	}
	if n != 0 {
		t.Errorf("duplicate insert = %d, want 0", n)
	}
}

func TestVideoFramesOrdered(t *testing.T) {
	s := testStore(t)
	if _, err := s.SaveFrames(seedFrames()); err != nil {
		t.Fatalf("SaveFrames: %v", err)
	}

	frames, err := s.VideoFrames(context.Background(), "v1")
	if err != nil {
		t.Fatalf("VideoFrames: %v", err)
	}
	if len(frames) != 3 {
		t.Fatalf("got %d frames, want 3", len(frames))
	}
	want := []int{100, 250, 400}
	for i, w := range want {
		if frames[i].KeyframeN != w {
			t.Errorf("frame %d keyframe = %d, want %d", i, frames[i].KeyframeN, w)
		}
	}
	if frames[0].VideoTitle != "clip one" || frames[0].Filename != "v1_100.jpg" {
		t.Errorf("frame fields = %+v", frames[0])
	}
}

func TestFramesInWindow(t *testing.T) {
	s := testStore(t)
	if _, err := s.SaveFrames(seedFrames()); err != nil {
		t.Fatalf("SaveFrames: %v", err)
	}

	frames, err := s.FramesInWindow(context.Background(), "v1", 100, 250)
	if err != nil {
		t.Fatalf("FramesInWindow: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2 (bounds inclusive)", len(frames))
	}
}

func TestVideosAndStats(t *testing.T) {
	s := testStore(t)
	if _, err := s.SaveFrames(seedFrames()); err != nil {
		t.Fatalf("SaveFrames: %v", err)
	}

	videos, err := s.Videos(context.Background())
	if err != nil {
		t.Fatalf("Videos: %v", err)
	}
	if len(videos) != 2 || videos[0] != "v1" || videos[1] != "v2" {
		t.Errorf("videos = %v", videos)
	}

	st, err := s.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.TotalFrames != 4 || st.TotalVideos != 2 {
		t.Errorf("totals = %d frames, %d videos", st.TotalFrames, st.TotalVideos)
	}
	if st.Videos[0].MinFrame != 100 || st.Videos[0].MaxFrame != 400 {
		t.Errorf("v1 range = [%d, %d]", st.Videos[0].MinFrame, st.Videos[0].MaxFrame)
	}
}

func TestEmptyVideo(t *testing.T) {
	s := testStore(t)
	frames, err := s.VideoFrames(context.Background(), "missing")
	if err != nil {
		t.Fatalf("VideoFrames: %v", err)
	}
	if len(frames) != 0 {
		t.Errorf("got %d frames for unknown video", len(frames))
	}
}
