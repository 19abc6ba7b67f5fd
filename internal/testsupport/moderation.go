package testsupport

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// FlaggedItem mirrors one entry of the analysis service's flagged_content list.
type FlaggedItem struct {
	Timestamp       float64            `json:"timestamp"`
	FrameNumber     int                `json:"frame_number"`
	Text            string             `json:"text"`
	ToxicCategories map[string]float64 `json:"toxic_categories"`
}

// ModerationServer emulates the external content analysis endpoint.
type ModerationServer struct {
	*httptest.Server

	mu      sync.Mutex
	Flagged []FlaggedItem
	Frames  int
	Status  int
	Raw     string
	// Delay holds the response until it elapses or the client disconnects.
	Delay time.Duration

	calls    int
	uploaded []int64
}

// NewModerationServer starts a fake analysis service that reports a clear
// verdict unless Flagged, Status, or Raw are set.
func NewModerationServer(t testing.TB) *ModerationServer {
	t.Helper()
	m := &ModerationServer{Frames: 120}
	m.Server = httptest.NewServer(http.HandlerFunc(m.handle))
	t.Cleanup(m.Close)
	return m
}

func (m *ModerationServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.URL.Path != "/analyze_video" {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	file, _, err := r.FormFile("video")
	if err != nil {
		http.Error(w, "missing video field", http.StatusBadRequest)
		return
	}
	n, _ := io.Copy(io.Discard, file)
	file.Close()

	m.mu.Lock()
	m.calls++
	m.uploaded = append(m.uploaded, n)
	status, raw, delay := m.Status, m.Raw, m.Delay
	payload := map[string]any{"flagged_content": m.Flagged, "total_frames_analyzed": m.Frames}
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}
	if status != 0 && status != http.StatusOK {
		http.Error(w, "analysis failed", status)
		return
	}
	if raw != "" {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, raw)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

// Calls returns how many analyses were requested.
func (m *ModerationServer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// UploadedSizes returns the byte size of every submitted video.
func (m *ModerationServer) UploadedSizes() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64(nil), m.uploaded...)
}
