package enums

type DogStatus string

const (
	DogStatusAvailable DogStatus = "available"
	DogStatusPending   DogStatus = "pending"
	DogStatusAdopted   DogStatus = "adopted"
)

func (s DogStatus) Valid() bool {
	switch s {
	case DogStatusAvailable, DogStatusPending, DogStatusAdopted:
		return true
	default:
		return false
	}
}
