package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"civicfix/types"
)

const (
	usersCollection    = "users"
	sessionsCollection = "sessions"
)

// ErrInvalidSession covers missing, malformed, and expired session tokens.
var ErrInvalidSession = errors.New("invalid or expired session")

// GetUser fetches a user by document ID.
func GetUser(client *firestore.Client, userID string) (types.User, error) {
	ctx := context.Background()
	var user types.User

	doc, err := client.Collection(usersCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return user, fmt.Errorf("user %s not found", userID)
		}
		return user, err
	}

	if err := doc.DataTo(&user); err != nil {
		return user, err
	}
	user.ID = doc.Ref.ID
	return user, nil
}

// GetSessionUser resolves a bearer token to its user. Session docs are keyed
// by the hashed token so raw tokens never land in Firestore.
func GetSessionUser(client *firestore.Client, token string) (types.User, error) {
	ctx := context.Background()
	var user types.User

	if token == "" {
		return user, ErrInvalidSession
	}

	doc, err := client.Collection(sessionsCollection).Doc(HashString(token)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return user, ErrInvalidSession
		}
		return user, err
	}

	var session types.Session
	if err := doc.DataTo(&session); err != nil {
		return user, err
	}
	if time.Now().After(session.ExpiresAt) {
		return user, ErrInvalidSession
	}

	user, err = GetUser(client, session.UserID)
	if err != nil {
		return user, ErrInvalidSession
	}
	if !user.IsActive {
		return user, ErrInvalidSession
	}
	return user, nil
}
