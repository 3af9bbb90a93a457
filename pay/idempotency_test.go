package pay

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"homedish/globals"
	"homedish/models"

	"github.com/julienschmidt/httprouter"
)

type memIdempotency struct {
	mu   sync.Mutex
	recs map[string]*models.IdempotencyRecord
}

func (m *memIdempotency) Reserve(_ context.Context, rec *models.IdempotencyRecord) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.recs[rec.Key]; ok {
		return false, nil
	}
	cp := *rec
	m.recs[rec.Key] = &cp
	return true, nil
}

func (m *memIdempotency) Find(_ context.Context, key string) (*models.IdempotencyRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recs[key]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (m *memIdempotency) SaveResponse(_ context.Context, key string, resp map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs[key].Response = resp
	return nil
}

func (m *memIdempotency) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.recs[key]; ok && rec.Response == nil {
		delete(m.recs, key)
	}
	return nil
}

func TestIdempotentReplays(t *testing.T) {
	store := &memIdempotency{recs: map[string]*models.IdempotencyRecord{}}
	calls := 0
	handle := Idempotent(store)(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"insertedId":"o1"}`))
	})

	send := func(key, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
		req = req.WithContext(context.WithValue(req.Context(), globals.EmailKey, "eater@x.io"))
		if key != "" {
			req.Header.Set("Idempotency-Key", key)
		}
		rr := httptest.NewRecorder()
		handle(rr, req, nil)
		return rr
	}

	if rr := send("k1", `{"a":1}`); rr.Code != http.StatusCreated {
		t.Fatalf("first status = %d", rr.Code)
	}
	rr := send("k1", `{"a":1}`)
	if rr.Code != http.StatusCreated || rr.Header().Get("Idempotent-Replayed") != "true" {
		t.Fatalf("replay status = %d headers = %v", rr.Code, rr.Header())
	}
	if !strings.Contains(rr.Body.String(), "o1") {
		t.Fatalf("replay body = %s", rr.Body.String())
	}
	if calls != 1 {
		t.Fatalf("handler ran %d times", calls)
	}

	if rr := send("k1", `{"a":2}`); rr.Code != http.StatusConflict {
		t.Fatalf("changed body status = %d", rr.Code)
	}

	send("", `{"a":1}`)
	send("", `{"a":1}`)
	if calls != 3 {
		t.Fatalf("keyless requests should pass through, calls = %d", calls)
	}
}

func TestIdempotentReleasesFailedRequests(t *testing.T) {
	store := &memIdempotency{recs: map[string]*models.IdempotencyRecord{}}
	fail := true
	handle := Idempotent(store)(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		if fail {
			w.WriteHeader(http.StatusConflict)
			return
		}
		w.WriteHeader(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/payments", strings.NewReader(`{}`))
	req.Header.Set("Idempotency-Key", "k")
	handle(httptest.NewRecorder(), req, nil)

	fail = false
	req = httptest.NewRequest(http.MethodPost, "/api/payments", strings.NewReader(`{}`))
	req.Header.Set("Idempotency-Key", "k")
	rr := httptest.NewRecorder()
	handle(rr, req, nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("retry status = %d", rr.Code)
	}
}
