package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/scrollinondubs/DogTinder/internal/domain/model"
	"github.com/scrollinondubs/DogTinder/internal/pkg/validate"
	"github.com/scrollinondubs/DogTinder/internal/transport/http/dto"
	httperrors "github.com/scrollinondubs/DogTinder/internal/transport/http/errors"
)

const maxBodyBytes = 1 << 20

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

// decodeFailureDetails describes a body that did not decode into the
// request shape, pointing at the offending field when the decoder knows it.
func decodeFailureDetails(err error) []httperrors.FieldError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return []httperrors.FieldError{{
			Field:   typeErr.Field,
			Message: "must be a " + typeErr.Type.String(),
		}}
	}
	return []httperrors.FieldError{{Field: "", Message: "malformed JSON body"}}
}

func toFieldErrors(in []validate.FieldError) []httperrors.FieldError {
	out := make([]httperrors.FieldError, 0, len(in))
	for _, fe := range in {
		out = append(out, httperrors.FieldError{Field: fe.Field, Message: fe.Message})
	}
	return out
}

func writeValidation(w http.ResponseWriter, message string, details []httperrors.FieldError) {
	httperrors.Write(w, http.StatusBadRequest, httperrors.ValidationError{
		Code:    "VALIDATION_ERROR",
		Message: message,
		Details: details,
	})
}

func writeBadRequest(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{Code: code, Message: message})
}

func writeUnauthorized(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{Code: code, Message: message})
}

func writeConflict(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusConflict, httperrors.APIError{Code: code, Message: message})
}

func writeNotFound(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusNotFound, httperrors.APIError{Code: code, Message: message})
}

func writeInternal(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{Code: code, Message: message})
}

func mapDogCards(cards []model.DogCard) []dto.DogCardResponse {
	out := make([]dto.DogCardResponse, 0, len(cards))
	for _, c := range cards {
		out = append(out, dto.DogCardResponse{
			ID:           c.ID,
			Name:         c.Name,
			Breed:        c.Breed,
			Age:          c.Age,
			Gender:       c.Gender,
			Size:         c.Size,
			Description:  c.Description,
			Status:       string(c.Status),
			PrimaryImage: c.PrimaryImage,
			Shelter: dto.ShelterResponse{
				ID:       c.Shelter.ID,
				Name:     c.Shelter.Name,
				Address:  c.Shelter.Address,
				City:     c.Shelter.City,
				State:    c.Shelter.State,
				ImageURL: c.Shelter.ImageURL,
			},
			CreatedAt: c.CreatedAt,
		})
	}
	return out
}
