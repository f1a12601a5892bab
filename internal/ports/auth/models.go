package auth

type Role string

const (
	RolePatient Role = "patient"
	RoleCenter  Role = "center"
	RoleSponsor Role = "sponsor"
	RoleAdmin   Role = "admin"
)

// Claims is the session identity extracted from the token.
type Claims struct {
	UserID string
	Email  string
	Role   Role
}
