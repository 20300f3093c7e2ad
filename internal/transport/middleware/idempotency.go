package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/heartmarshall/hustle-xp/pkg/ctxutil"
)

const (
	// IdempotencyHeader carries the client-chosen key for a POST.
	IdempotencyHeader = "Idempotency-Key"
	// ReplayHeader is set on responses served from the idempotency cache.
	ReplayHeader = "Idempotent-Replay"

	maxIdempotencyKeyLen = 255
)

// storedResponse is what a completed POST leaves behind. pending marks a
// request that is still running.
type storedResponse struct {
	pending     bool
	status      int
	contentType string
	body        []byte
}

// Idempotency replays the stored response for a repeated POST carrying the
// same Idempotency-Key and user key. Keys live for ttl. 5xx responses are
// not stored so the client can retry. A duplicate that arrives while the
// first request is still running gets 409.
type Idempotency struct {
	cache *cache.Cache
	log   *slog.Logger
}

// NewIdempotency creates the response cache. Expired keys are swept every ttl.
func NewIdempotency(ttl time.Duration, logger *slog.Logger) *Idempotency {
	return &Idempotency{
		cache: cache.New(ttl, ttl),
		log:   logger.With("middleware", "idempotency"),
	}
}

// Middleware must run after UserKey so keys are scoped per user.
func (i *Idempotency) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get(IdempotencyHeader)
			if r.Method != http.MethodPost || header == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(header) > maxIdempotencyKeyLen {
				writeError(w, http.StatusBadRequest, "idempotency key is too long")
				return
			}

			userKey, _ := ctxutil.UserKeyFromCtx(r.Context())
			key := userKey + "\x00" + r.URL.Path + "\x00" + header

			if err := i.cache.Add(key, &storedResponse{pending: true}, cache.DefaultExpiration); err != nil {
				i.replay(w, r, key)
				return
			}

			stored := false
			defer func() {
				if !stored {
					i.cache.Delete(key)
				}
			}()

			rec := &recordingWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.status >= http.StatusInternalServerError {
				return
			}
			stored = true
			i.cache.Set(key, &storedResponse{
				status:      rec.status,
				contentType: rec.Header().Get("Content-Type"),
				body:        rec.body.Bytes(),
			}, cache.DefaultExpiration)
		})
	}
}

func (i *Idempotency) replay(w http.ResponseWriter, r *http.Request, key string) {
	v, ok := i.cache.Get(key)
	if !ok {
		// Expired or deleted between Add and Get; treat as in flight.
		writeError(w, http.StatusConflict, "request with this idempotency key is in progress")
		return
	}
	stored := v.(*storedResponse)
	if stored.pending {
		writeError(w, http.StatusConflict, "request with this idempotency key is in progress")
		return
	}

	if sw, ok := w.(*statusWriter); ok {
		sw.replayed = true
	}
	i.log.DebugContext(r.Context(), "idempotent replay", slog.String("path", r.URL.Path))

	if stored.contentType != "" {
		w.Header().Set("Content-Type", stored.contentType)
	}
	w.Header().Set(ReplayHeader, "true")
	w.WriteHeader(stored.status)
	_, _ = w.Write(stored.body)
}

// recordingWriter tees the response body so it can be stored.
type recordingWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func (w *recordingWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}
