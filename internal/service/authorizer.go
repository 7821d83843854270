// Package service implements the application's business logic on top of the
// store, keeping HTTP concerns in the api package.
package service

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/abdotaker608/golden-pens-api/internal/domain"
	domainerrors "github.com/abdotaker608/golden-pens-api/internal/errors"
	"github.com/abdotaker608/golden-pens-api/internal/store"
)

// ResourceKind selects the ownership chain walked during authorization.
type ResourceKind string

const (
	KindUser    ResourceKind = "user"
	KindStory   ResourceKind = "story"
	KindChapter ResourceKind = "chapter"
	KindReply   ResourceKind = "reply"
)

// Authorizer gates mutations on owned resources. A request is authorized
// when its bearer token equals the canonical access token of the resource
// owner: the user itself, a story's author, a chapter's story's author, or
// a reply's commenter.
type Authorizer struct {
	store store.Store
}

// NewAuthorizer creates an authorizer backed by the given store.
func NewAuthorizer(s store.Store) *Authorizer {
	return &Authorizer{store: s}
}

// Authorize resolves the owner of the resource and checks the token against
// the owner's canonical token in constant time. Every failure mode, missing
// resource included, reports the same unauthorized error so probing with
// made-up IDs learns nothing.
func (a *Authorizer) Authorize(ctx context.Context, token string, kind ResourceKind, resourceID string) (*domain.User, error) {
	if token == "" {
		return nil, domainerrors.Unauthorized("unauthorized")
	}

	ownerID, err := a.resolveOwner(ctx, kind, resourceID)
	if err != nil {
		return nil, domainerrors.Unauthorized("unauthorized")
	}

	owner, err := a.store.GetUser(ctx, ownerID)
	if err != nil {
		return nil, domainerrors.Unauthorized("unauthorized")
	}

	if subtle.ConstantTimeCompare([]byte(owner.AccessToken), []byte(token)) != 1 {
		return nil, domainerrors.Unauthorized("unauthorized")
	}

	return owner, nil
}

// resolveOwner walks the ownership chain for the resource kind and returns
// the owning user's ID.
func (a *Authorizer) resolveOwner(ctx context.Context, kind ResourceKind, resourceID string) (string, error) {
	switch kind {
	case KindUser:
		return resourceID, nil

	case KindStory:
		story, err := a.store.GetStory(ctx, resourceID)
		if err != nil {
			return "", err
		}
		return story.AuthorID, nil

	case KindChapter:
		chapter, err := a.store.GetChapter(ctx, resourceID)
		if err != nil {
			return "", err
		}
		story, err := a.store.GetStory(ctx, chapter.StoryID)
		if err != nil {
			return "", err
		}
		return story.AuthorID, nil

	case KindReply:
		reply, err := a.store.GetReply(ctx, resourceID)
		if err != nil {
			return "", err
		}
		return reply.UserID, nil

	default:
		return "", fmt.Errorf("unknown resource kind %q", kind)
	}
}
