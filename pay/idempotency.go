package pay

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"homedish/apperr"
	"homedish/db"
	"homedish/middleware"
	"homedish/models"
	"homedish/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const idempotencyTTL = 24 * time.Hour

// IdempotencyStore keeps one record per client key.
type IdempotencyStore interface {
	// Reserve inserts rec and reports false when the key already exists.
	Reserve(ctx context.Context, rec *models.IdempotencyRecord) (bool, error)
	Find(ctx context.Context, key string) (*models.IdempotencyRecord, error)
	SaveResponse(ctx context.Context, key string, response map[string]interface{}) error
	// Release drops a reservation whose request failed so the client can retry.
	Release(ctx context.Context, key string) error
}

type MongoIdempotencyStore struct {
	collection *mongo.Collection
}

func NewMongoIdempotencyStore(database *mongo.Database) *MongoIdempotencyStore {
	return &MongoIdempotencyStore{collection: database.Collection(db.IdempotencyCollection)}
}

func (s *MongoIdempotencyStore) Reserve(ctx context.Context, rec *models.IdempotencyRecord) (bool, error) {
	_, err := s.collection.InsertOne(ctx, rec)
	if err == nil {
		return true, nil
	}
	if db.IsDuplicateKeyError(err) {
		return false, nil
	}
	return false, err
}

func (s *MongoIdempotencyStore) Find(ctx context.Context, key string) (*models.IdempotencyRecord, error) {
	var rec models.IdempotencyRecord
	if err := s.collection.FindOne(ctx, bson.M{"key": key}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (s *MongoIdempotencyStore) SaveResponse(ctx context.Context, key string, response map[string]interface{}) error {
	_, err := s.collection.UpdateOne(ctx,
		bson.M{"key": key},
		bson.M{"$set": bson.M{"response": response}},
	)
	return err
}

func (s *MongoIdempotencyStore) Release(ctx context.Context, key string) error {
	_, err := s.collection.DeleteOne(ctx, bson.M{"key": key, "response": bson.M{"$exists": false}})
	return err
}

func computeRequestHash(r *http.Request, bodyBytes []byte, email string) string {
	h := sha256.New()
	h.Write([]byte(r.Method + ":" + r.URL.Path + ":" + email + ":"))
	h.Write(bodyBytes)
	return hex.EncodeToString(h.Sum(nil))
}

// CaptureResponseWriter wraps http.ResponseWriter to capture status and body.
type CaptureResponseWriter struct {
	w           http.ResponseWriter
	statusCode  int
	buf         bytes.Buffer
	wroteHeader bool
}

func NewCaptureResponseWriter(w http.ResponseWriter) *CaptureResponseWriter {
	return &CaptureResponseWriter{w: w, statusCode: http.StatusOK}
}

func (c *CaptureResponseWriter) Header() http.Header {
	return c.w.Header()
}

func (c *CaptureResponseWriter) WriteHeader(statusCode int) {
	if !c.wroteHeader {
		c.statusCode = statusCode
		c.w.WriteHeader(statusCode)
		c.wroteHeader = true
	}
}

func (c *CaptureResponseWriter) Write(b []byte) (int, error) {
	c.buf.Write(b)
	return c.w.Write(b)
}

func (c *CaptureResponseWriter) Status() int {
	return c.statusCode
}

func (c *CaptureResponseWriter) BodyBytes() []byte {
	return c.buf.Bytes()
}

// Idempotent replays stored responses for requests carrying an
// Idempotency-Key header. Keys are scoped to the caller's email.
//   - no header: pass-through
//   - first use: run the handler and store its 2xx response, or release
//     the key when it fails
//   - reuse with a different request body: 409
//   - reuse after completion: replay the stored response
//   - reuse while the first request is in flight: 409
func Idempotent(store IdempotencyStore) middleware.Middleware {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			key := r.Header.Get("Idempotency-Key")
			if key == "" {
				next(w, r, ps)
				return
			}

			email := utils.GetEmailFromRequest(r)
			bodyBytes, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
			if err != nil {
				utils.WriteError(w, apperr.Validation("failed to read request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))

			scoped := email + ":" + key
			reqHash := computeRequestHash(r, bodyBytes, email)
			now := time.Now()
			rec := &models.IdempotencyRecord{
				Key:         scoped,
				Method:      r.Method,
				Path:        r.URL.Path,
				Email:       email,
				RequestHash: reqHash,
				CreatedAt:   now,
				ExpiresAt:   now.Add(idempotencyTTL),
			}

			ctx := r.Context()
			reserved, err := store.Reserve(ctx, rec)
			if err != nil {
				utils.WriteError(w, apperr.Dependency("idempotency lookup error", err))
				return
			}
			if reserved {
				crw := NewCaptureResponseWriter(w)
				next(crw, r, ps)

				if crw.Status() >= 300 {
					_ = store.Release(ctx, scoped)
					return
				}
				var parsed interface{}
				if err := json.Unmarshal(crw.BodyBytes(), &parsed); err != nil {
					parsed = string(crw.BodyBytes())
				}
				_ = store.SaveResponse(ctx, scoped, map[string]interface{}{
					"status": crw.Status(),
					"body":   parsed,
				})
				return
			}

			existing, err := store.Find(ctx, scoped)
			if err != nil || existing == nil {
				utils.WriteError(w, apperr.Dependency("idempotency lookup error", err))
				return
			}
			if existing.RequestHash != reqHash {
				utils.WriteError(w, apperr.Conflict("idempotency-key reused with a different request"))
				return
			}
			if existing.Response == nil {
				utils.WriteError(w, apperr.Conflict("request with this idempotency-key is still in progress"))
				return
			}

			status := http.StatusOK
			switch v := existing.Response["status"].(type) {
			case float64:
				status = int(v)
			case int:
				status = v
			case int32:
				status = int(v)
			case int64:
				status = int(v)
			}
			w.Header().Set("Idempotent-Replayed", "true")
			utils.RespondWithJSON(w, status, existing.Response["body"])
		}
	}
}
