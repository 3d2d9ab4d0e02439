// Package identity decides who a storefront request is made for: a logged in
// user, read from the stored bearer token, or an anonymous guest session.
//
// The user id is read from the token payload without checking the signature.
// It is a claim used to scope requests, never proof of identity; the backend
// makes the authoritative check.
package identity

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/cuong200111/baitap-sub001/pkg/models"
)

type Kind string

const (
	KindUser    Kind = "user"
	KindSession Kind = "session"
)

// Identity is a claimed identity. Exactly one of UserID and SessionID is set,
// matching Kind.
type Identity struct {
	Kind      Kind
	UserID    int64
	SessionID string
}

func User(id int64) Identity {
	return Identity{Kind: KindUser, UserID: id}
}

func Session(id string) Identity {
	return Identity{Kind: KindSession, SessionID: id}
}

func (i Identity) IsUser() bool {
	return i.Kind == KindUser
}

// Query renders the identity the way read endpoints expect it.
func (i Identity) Query() url.Values {
	q := url.Values{}
	if i.IsUser() {
		q.Set("user_id", strconv.FormatInt(i.UserID, 10))
	} else {
		q.Set("session_id", i.SessionID)
	}
	return q
}

// Scope renders the identity as the body fragment write endpoints expect.
func (i Identity) Scope() models.Scope {
	if i.IsUser() {
		return models.UserScope(i.UserID)
	}
	return models.SessionScope(i.SessionID)
}

func (i Identity) String() string {
	if i.IsUser() {
		return fmt.Sprintf("user:%d", i.UserID)
	}
	return "session:" + i.SessionID
}
