package identity

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cuong200111/baitap-sub001/pkg/storage"
)

// Claim names checked for the user id, in order.
var userIDClaims = []string{"userId", "id"}

const sessionSuffixLen = 9

type Resolver struct {
	store  storage.Store
	now    func() time.Time
	random io.Reader
}

type Option func(*Resolver)

func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

func WithRandom(src io.Reader) Option {
	return func(r *Resolver) { r.random = src }
}

func NewResolver(store storage.Store, opts ...Option) *Resolver {
	r := &Resolver{
		store:  store,
		now:    time.Now,
		random: rand.Reader,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resolver) Store() storage.Store {
	return r.store
}

// Token returns the stored bearer token or "".
func (r *Resolver) Token(ctx context.Context) string {
	token, err := r.store.Get(ctx, storage.KeyToken)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(token)
}

// UserID returns the user id claimed by the stored token. Any failure to
// find or decode the token yields (0, false).
func (r *Resolver) UserID(ctx context.Context) (int64, bool) {
	token := r.Token(ctx)
	if token == "" {
		return 0, false
	}
	return ClaimedUserID(token)
}

// SessionID returns the guest session id, creating and persisting one on
// first use.
func (r *Resolver) SessionID(ctx context.Context) (string, error) {
	if sid, ok := r.PeekSessionID(ctx); ok {
		return sid, nil
	}

	sid, err := r.newSessionID()
	if err != nil {
		return "", err
	}
	if err := r.store.Set(ctx, storage.KeySessionID, sid); err != nil {
		return "", fmt.Errorf("failed to persist session id: %w", err)
	}
	return sid, nil
}

// PeekSessionID reads the guest session id without creating one.
func (r *Resolver) PeekSessionID(ctx context.Context) (string, bool) {
	sid, err := r.store.Get(ctx, storage.KeySessionID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("Warning: failed to read session id: %v", err)
		}
		return "", false
	}
	if sid = strings.TrimSpace(sid); sid == "" {
		return "", false
	}
	return sid, true
}

// ForgetSession drops the guest session id so later calls resolve to the user.
func (r *Resolver) ForgetSession(ctx context.Context) error {
	return r.store.Remove(ctx, storage.KeySessionID)
}

// Identifier prefers the claimed user and falls back to the guest session.
func (r *Resolver) Identifier(ctx context.Context) (Identity, error) {
	if uid, ok := r.UserID(ctx); ok {
		return User(uid), nil
	}
	sid, err := r.SessionID(ctx)
	if err != nil {
		return Identity{}, err
	}
	return Session(sid), nil
}

func (r *Resolver) newSessionID() (string, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r.random, buf[:]); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	suffix := strconv.FormatUint(binary.BigEndian.Uint64(buf[:]), 36)
	if len(suffix) < sessionSuffixLen {
		suffix = strings.Repeat("0", sessionSuffixLen-len(suffix)) + suffix
	}
	suffix = suffix[len(suffix)-sessionSuffixLen:]
	return fmt.Sprintf("session_%d_%s", r.now().UnixMilli(), suffix), nil
}

// ClaimedUserID decodes the token payload without verification and returns
// the first positive user id claim.
func ClaimedUserID(token string) (int64, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser(jwt.WithJSONNumber()).ParseUnverified(token, claims); err != nil {
		return 0, false
	}
	for _, name := range userIDClaims {
		if id, ok := claimInt(claims[name]); ok && id > 0 {
			return id, true
		}
	}
	return 0, false
}

func claimInt(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		if id, err := n.Int64(); err == nil {
			return id, true
		}
		if f, err := n.Float64(); err == nil && f == float64(int64(f)) {
			return int64(f), true
		}
	case float64:
		if n == float64(int64(n)) {
			return int64(n), true
		}
	case string:
		if id, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64); err == nil {
			return id, true
		}
	}
	return 0, false
}
