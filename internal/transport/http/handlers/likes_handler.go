package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/scrollinondubs/DogTinder/internal/pkg/validate"
	authsvc "github.com/scrollinondubs/DogTinder/internal/services/auth"
	likessvc "github.com/scrollinondubs/DogTinder/internal/services/likes"
	"github.com/scrollinondubs/DogTinder/internal/transport/http/dto"
	httperrors "github.com/scrollinondubs/DogTinder/internal/transport/http/errors"
)

type LikesHandler struct {
	service *likessvc.Service
}

func NewLikesHandler(service *likessvc.Service) *LikesHandler {
	return &LikesHandler{service: service}
}

func (h *LikesHandler) Swipe(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "LIKES_SERVICE_UNAVAILABLE", "likes service is unavailable")
		return
	}

	var req dto.SwipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidation(w, "invalid request body", decodeFailureDetails(err))
		return
	}
	if errs := validate.Struct(req); errs != nil {
		writeValidation(w, "dogId and liked are required", toFieldErrors(errs))
		return
	}

	err := h.service.Swipe(r.Context(), identity.UserID, req.DogID, *req.Liked)
	if err != nil {
		switch {
		case errors.Is(err, likessvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid swipe request")
		case errors.Is(err, likessvc.ErrDogNotFound):
			writeNotFound(w, "DOG_NOT_FOUND", "dog not found")
		case errors.Is(err, likessvc.ErrAlreadySwiped):
			writeConflict(w, "ALREADY_SWIPED", "already swiped on this dog")
		default:
			if tf, ok := likessvc.IsTooFast(err); ok {
				httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
					Code:          "TOO_FAST",
					Message:       "too many swipes, slow down",
					RetryAfterSec: tf.RetryAfter(),
				})
				return
			}
			writeInternal(w, "INTERNAL_ERROR", "failed to save swipe")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.SwipeResponse{Success: true})
}

// Merge folds an anonymous ledger into the caller's Likes. Structural
// problems reject the whole batch before anything is written.
func (h *LikesHandler) Merge(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "LIKES_SERVICE_UNAVAILABLE", "likes service is unavailable")
		return
	}

	var req dto.MergeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidation(w, "invalid request body", decodeFailureDetails(err))
		return
	}
	if errs := validate.Struct(req); errs != nil {
		writeValidation(w, "invalid merge payload", toFieldErrors(errs))
		return
	}
	if limit := h.service.MaxMergeBatch(); len(req.Swipes) > limit {
		writeValidation(w, "invalid merge payload", []httperrors.FieldError{{
			Field:   "swipes",
			Message: fmt.Sprintf("must contain at most %d items", limit),
		}})
		return
	}

	swipes := make([]likessvc.MergeSwipe, 0, len(req.Swipes))
	for _, sw := range req.Swipes {
		swipes = append(swipes, likessvc.MergeSwipe{
			DogID:     sw.DogID,
			Liked:     *sw.Liked,
			Timestamp: int64(*sw.Timestamp),
		})
	}

	result, err := h.service.Merge(r.Context(), identity.UserID, swipes)
	if err != nil {
		if errors.Is(err, likessvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid merge payload")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to merge swipes")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.MergeResponse{
		Merged:  result.Merged,
		Skipped: result.Skipped,
	})
}

func (h *LikesHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "LIKES_SERVICE_UNAVAILABLE", "likes service is unavailable")
		return
	}

	cards, err := h.service.ListLiked(r.Context(), identity.UserID)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to load liked dogs")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.LikedDogsResponse{Items: mapDogCards(cards)})
}
