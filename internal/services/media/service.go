package media

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/scrollinondubs/DogTinder/internal/domain/model"
)

var ErrValidation = errors.New("validation error")

const DefaultSignedURLTTL = time.Hour

type URLSigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Resolver turns stored image references into URLs a client can fetch.
// Absolute http(s) URLs are returned unchanged; anything else is treated as
// an object key and presigned.
type Resolver struct {
	signer URLSigner
	ttl    time.Duration
}

func NewResolver(signer URLSigner, ttl time.Duration) *Resolver {
	if ttl <= 0 {
		ttl = DefaultSignedURLTTL
	}
	return &Resolver{
		signer: signer,
		ttl:    ttl,
	}
}

func (r *Resolver) ImageURL(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", nil
	}
	if isAbsoluteURL(ref) {
		return ref, nil
	}
	if r == nil || r.signer == nil {
		return ref, nil
	}

	signed, err := r.signer.PresignGet(ctx, strings.TrimPrefix(ref, "/"), r.ttl)
	if err != nil {
		return "", fmt.Errorf("presign image %q: %w", ref, err)
	}
	return signed, nil
}

// ResolveCards rewrites the dog and shelter images on each card in place.
func (r *Resolver) ResolveCards(ctx context.Context, cards []model.DogCard) error {
	for i := range cards {
		primary, err := r.ImageURL(ctx, cards[i].PrimaryImage)
		if err != nil {
			return err
		}
		cards[i].PrimaryImage = primary

		shelter, err := r.ImageURL(ctx, cards[i].Shelter.ImageURL)
		if err != nil {
			return err
		}
		cards[i].Shelter.ImageURL = shelter
	}
	return nil
}

func isAbsoluteURL(ref string) bool {
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
