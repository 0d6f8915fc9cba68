package enums

type Role string

const (
	RoleUser         Role = "USER"
	RoleShelterAdmin Role = "SHELTER_ADMIN"
	RoleAdmin        Role = "ADMIN"
)
