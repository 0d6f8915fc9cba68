package handlers

import (
	"net/http"

	authsvc "github.com/scrollinondubs/DogTinder/internal/services/auth"
	feedsvc "github.com/scrollinondubs/DogTinder/internal/services/feed"
	"github.com/scrollinondubs/DogTinder/internal/transport/http/dto"
	httperrors "github.com/scrollinondubs/DogTinder/internal/transport/http/errors"
)

type DogsHandler struct {
	service *feedsvc.Service
}

func NewDogsHandler(service *feedsvc.Service) *DogsHandler {
	return &DogsHandler{service: service}
}

// List serves the swipe deck. Anonymous callers pass the dogs already in
// their local ledger through the excludeDogIds query parameter.
func (h *DogsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "FEED_SERVICE_UNAVAILABLE", "feed service is unavailable")
		return
	}

	viewerID := ""
	if identity, ok := authsvc.IdentityFromContext(r.Context()); ok {
		viewerID = identity.UserID
	}

	cards, err := h.service.List(r.Context(), viewerID, feedsvc.ParseExcludeIDs(r.URL.Query().Get("excludeDogIds")))
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to load dogs")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.DogsResponse{Items: mapDogCards(cards)})
}
