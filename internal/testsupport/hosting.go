package testsupport

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// ChunkRecord captures one chunk PUT received by HostingServer.
type ChunkRecord struct {
	Start  int64
	End    int64
	Total  int64
	Status int
}

// HostingServer emulates the resumable, multipart, and status endpoints of a
// video hosting API.
type HostingServer struct {
	*httptest.Server

	mu sync.Mutex

	RemoteID    string
	InitStatus  int
	PatchStatus int
	// FailChunk is the 1-based chunk index answered with FailStatus.
	FailChunk  int
	FailStatus int
	// OmitRange drops the Range header from 308 responses.
	OmitRange bool
	// OnChunk runs before a chunk response is written.
	OnChunk func(index int)

	requests     int
	initiations  int
	initMetadata map[string]any
	initHeaders  http.Header
	chunks       []ChunkRecord
	received     []byte
	offsets      map[string]int64
	patches      []map[string]any
	authHeaders  []string
}

// NewHostingServer starts a fake hosting API that completes uploads with
// remote id "v1" unless configured otherwise.
func NewHostingServer(t testing.TB) *HostingServer {
	t.Helper()
	h := &HostingServer{
		RemoteID:   "v1",
		FailStatus: http.StatusInternalServerError,
		offsets:    make(map[string]int64),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/upload/youtube/v3/videos", h.handleUpload)
	mux.HandleFunc("/upload/session/", h.handleChunk)
	mux.HandleFunc("/youtube/v3/videos", h.handlePatch)
	h.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.mu.Lock()
		h.requests++
		h.authHeaders = append(h.authHeaders, r.Header.Get("Authorization"))
		h.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(h.Close)
	return h
}

func (h *HostingServer) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	switch r.URL.Query().Get("uploadType") {
	case "resumable":
		h.handleInitiate(w, r)
	case "multipart":
		h.handleMultipart(w, r)
	default:
		http.Error(w, "unknown uploadType", http.StatusBadRequest)
	}
}

func (h *HostingServer) handleInitiate(w http.ResponseWriter, r *http.Request) {
	var meta map[string]any
	if err := json.NewDecoder(r.Body).Decode(&meta); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.mu.Lock()
	h.initiations++
	h.initMetadata = meta
	h.initHeaders = r.Header.Clone()
	status := h.InitStatus
	n := h.initiations
	h.mu.Unlock()
	if status != 0 && status != http.StatusOK {
		http.Error(w, "initiation rejected", status)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("%s/upload/session/%d", h.URL, n))
	w.WriteHeader(http.StatusOK)
}

func (h *HostingServer) handleMultipart(w http.ResponseWriter, r *http.Request) {
	mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/related" {
		http.Error(w, "expected multipart/related", http.StatusBadRequest)
		return
	}
	reader := multipart.NewReader(r.Body, params["boundary"])
	metaPart, err := reader.NextPart()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var meta map[string]any
	if err := json.NewDecoder(metaPart).Decode(&meta); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	mediaPart, err := reader.NextPart()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	payload, err := io.ReadAll(mediaPart)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.mu.Lock()
	h.initiations++
	h.initMetadata = meta
	h.initHeaders = http.Header(mediaPart.Header).Clone()
	h.received = append(h.received, payload...)
	status := h.InitStatus
	id := h.RemoteID
	h.mu.Unlock()
	if status != 0 && status != http.StatusOK {
		http.Error(w, "upload rejected", status)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "kind": "youtube#video"})
}

func (h *HostingServer) handleChunk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	start, end, total, err := parseContentRange(r.Header.Get("Content-Range"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	index := len(h.chunks) + 1
	record := ChunkRecord{Start: start, End: end, Total: total}
	offset := h.offsets[r.URL.Path]
	var status int
	switch {
	case start != offset || int64(len(body)) != end-start+1:
		status = http.StatusBadRequest
	case index == h.FailChunk:
		status = h.FailStatus
	case end+1 == total:
		status = http.StatusOK
	default:
		status = http.StatusPermanentRedirect
	}
	if status == http.StatusOK || status == http.StatusPermanentRedirect {
		h.received = append(h.received, body...)
		h.offsets[r.URL.Path] = end + 1
	}
	record.Status = status
	h.chunks = append(h.chunks, record)
	hook := h.OnChunk
	omitRange := h.OmitRange
	id := h.RemoteID
	h.mu.Unlock()

	if hook != nil {
		hook(index)
	}

	switch status {
	case http.StatusOK:
		writeJSON(w, http.StatusOK, map[string]any{"id": id, "kind": "youtube#video"})
	case http.StatusPermanentRedirect:
		if !omitRange {
			w.Header().Set("Range", fmt.Sprintf("bytes=0-%d", end))
		}
		w.WriteHeader(http.StatusPermanentRedirect)
	default:
		http.Error(w, "chunk rejected", status)
	}
}

func (h *HostingServer) handlePatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut || r.URL.Query().Get("part") != "status" {
		http.Error(w, "unexpected request", http.StatusBadRequest)
		return
	}
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.mu.Lock()
	h.patches = append(h.patches, body)
	status := h.PatchStatus
	h.mu.Unlock()
	if status != 0 && status != http.StatusOK {
		http.Error(w, "patch rejected", status)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

// Requests returns the total number of requests served.
func (h *HostingServer) Requests() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.requests
}

// Initiations returns how many sessions (or multipart uploads) were started.
func (h *HostingServer) Initiations() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.initiations
}

// InitMetadata returns the JSON metadata of the latest initiation.
func (h *HostingServer) InitMetadata() map[string]any {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.initMetadata
}

// InitHeader returns a header of the latest initiation (or media part).
func (h *HostingServer) InitHeader(key string) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.initHeaders.Get(key)
}

// Chunks returns a copy of the chunk log.
func (h *HostingServer) Chunks() []ChunkRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]ChunkRecord(nil), h.chunks...)
}

// Received returns the bytes accepted so far.
func (h *HostingServer) Received() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]byte(nil), h.received...)
}

// Patches returns the visibility patch bodies received.
func (h *HostingServer) Patches() []map[string]any {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]map[string]any(nil), h.patches...)
}

// AuthHeaders returns the Authorization header of every request.
func (h *HostingServer) AuthHeaders() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.authHeaders...)
}

func parseContentRange(value string) (int64, int64, int64, error) {
	spec, ok := strings.CutPrefix(value, "bytes ")
	if !ok {
		return 0, 0, 0, fmt.Errorf("bad Content-Range %q", value)
	}
	rng, totalText, ok := strings.Cut(spec, "/")
	if !ok {
		return 0, 0, 0, fmt.Errorf("bad Content-Range %q", value)
	}
	startText, endText, ok := strings.Cut(rng, "-")
	if !ok {
		return 0, 0, 0, fmt.Errorf("bad Content-Range %q", value)
	}
	start, err := strconv.ParseInt(startText, 10, 64)
	if err != nil {
		return 0, 0, 0, err
	}
	end, err := strconv.ParseInt(endText, 10, 64)
	if err != nil {
		return 0, 0, 0, err
	}
	total, err := strconv.ParseInt(totalText, 10, 64)
	if err != nil {
		return 0, 0, 0, err
	}
	return start, end, total, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
