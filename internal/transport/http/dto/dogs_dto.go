package dto

import "time"

type ShelterResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	ImageURL string `json:"image_url,omitempty"`
}

type DogCardResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Breed        string          `json:"breed"`
	Age          int             `json:"age"`
	Gender       string          `json:"gender"`
	Size         string          `json:"size"`
	Description  string          `json:"description,omitempty"`
	Status       string          `json:"status"`
	PrimaryImage string          `json:"primary_image,omitempty"`
	Shelter      ShelterResponse `json:"shelter"`
	CreatedAt    time.Time       `json:"created_at"`
}

type DogsResponse struct {
	Items []DogCardResponse `json:"items"`
}

type HealthResponse struct {
	OK bool `json:"ok"`
}
