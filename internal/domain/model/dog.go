package model

import (
	"time"

	"github.com/scrollinondubs/DogTinder/internal/domain/enums"
)

type Shelter struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	ImageURL string `json:"image_url"`
}

type Dog struct {
	ID          string          `json:"id"`
	ShelterID   string          `json:"shelter_id"`
	Name        string          `json:"name"`
	Breed       string          `json:"breed"`
	Age         int             `json:"age"`
	Gender      string          `json:"gender"`
	Size        string          `json:"size"`
	Description string          `json:"description"`
	Status      enums.DogStatus `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

// DogCard is a dog joined with its shelter and primary image, as shown in the feed.
type DogCard struct {
	Dog
	PrimaryImage string
	Shelter      Shelter
}
