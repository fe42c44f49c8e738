package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"ems/internal/transport/http/api"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"
	idempotencyTTL       = 24 * time.Hour
	maxIdempotencyKeyLen = 128
)

var ErrIdempotencyConflict = errors.New("idempotency key conflicts with existing request")

// StoredResponse is the replayable outcome of a request.
type StoredResponse struct {
	Hash   string          `json:"hash"`
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

type IdempotencyStore interface {
	// Check returns the stored response for key. A stored response whose hash
	// differs from requestHash yields ErrIdempotencyConflict.
	Check(ctx context.Context, key, requestHash string) (StoredResponse, bool, error)
	Save(ctx context.Context, key string, resp StoredResponse) error
}

func RequestHash(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

type captureWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (c *captureWriter) WriteHeader(code int) {
	c.status = code
	c.ResponseWriter.WriteHeader(code)
}

func (c *captureWriter) Write(p []byte) (int, error) {
	c.body.Write(p)
	return c.ResponseWriter.Write(p)
}

// Idempotency replays the first successful response of an authenticated POST
// carrying an Idempotency-Key header. Keys are scoped to the session's user
// and the request path; reusing a key with a different body is a conflict.
func Idempotency(store IdempotencyStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
			session := GetSession(r.Context())
			if store == nil || r.Method != http.MethodPost || key == "" || !session.IsAuthenticated() {
				next.ServeHTTP(w, r)
				return
			}
			requestID := GetRequestID(r.Context())
			if len(key) > maxIdempotencyKeyLen {
				api.Fail(w, http.StatusBadRequest, "invalid_idempotency_key", "idempotency key too long", requestID)
				return
			}

			payload, err := io.ReadAll(r.Body)
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", requestID)
					return
				}
				api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(payload))

			scoped := session.Email() + " " + r.URL.Path + " " + key
			hash := RequestHash(append([]byte(r.URL.Path+"\n"), payload...))

			stored, found, err := store.Check(r.Context(), scoped, hash)
			switch {
			case errors.Is(err, ErrIdempotencyConflict):
				api.Fail(w, http.StatusConflict, "idempotency_conflict", ErrIdempotencyConflict.Error(), requestID)
				return
			case err != nil:
				slog.Warn("idempotency check failed", "err", err, "requestId", requestID)
				next.ServeHTTP(w, r)
				return
			case found:
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Idempotent-Replayed", "true")
				w.WriteHeader(stored.Status)
				_, _ = w.Write(stored.Body)
				return
			}

			capture := &captureWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(capture, r)
			if capture.status < 200 || capture.status >= 300 {
				return
			}
			if err := store.Save(r.Context(), scoped, StoredResponse{Hash: hash, Status: capture.status, Body: capture.body.Bytes()}); err != nil {
				slog.Warn("idempotency save failed", "err", err, "requestId", requestID)
			}
		})
	}
}

type memoryEntry struct {
	resp    StoredResponse
	expires time.Time
}

// MemoryIdempotencyStore keeps responses in process for idempotencyTTL.
type MemoryIdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryIdempotencyStore() *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{entries: map[string]memoryEntry{}, now: time.Now}
}

func (s *MemoryIdempotencyStore) Check(_ context.Context, key, requestHash string) (StoredResponse, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok || s.now().After(entry.expires) {
		delete(s.entries, key)
		return StoredResponse{}, false, nil
	}
	if entry.resp.Hash != requestHash {
		return StoredResponse{}, false, ErrIdempotencyConflict
	}
	return entry.resp, true, nil
}

func (s *MemoryIdempotencyStore) Save(_ context.Context, key string, resp StoredResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if len(s.entries) > sweepThreshold {
		for k, entry := range s.entries {
			if now.After(entry.expires) {
				delete(s.entries, k)
			}
		}
	}
	if existing, ok := s.entries[key]; ok && now.Before(existing.expires) && existing.resp.Hash != resp.Hash {
		return ErrIdempotencyConflict
	}
	body := make([]byte, len(resp.Body))
	copy(body, resp.Body)
	resp.Body = body
	s.entries[key] = memoryEntry{resp: resp, expires: now.Add(idempotencyTTL)}
	return nil
}
