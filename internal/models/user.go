// -----------------------------------------------------------------------------
// User Model
// -----------------------------------------------------------------------------
// Kullanıcılar ve rolleri. Bir kullanıcı aynı anda alıcı, organizatör ve
// onaylayıcı olabilir; yetkiler roller üzerinden belirlenir.
// -----------------------------------------------------------------------------

package models

// Role, kullanıcı rolü.
type Role string

const (
	RoleUser     Role = "USER"
	RoleApprover Role = "APPROVER"
	RoleAdmin    Role = "ADMIN"
)

// User, users tablosunu temsil eden modeldir.
type User struct {
	BaseModel
	Username string `json:"username" db:"username"`
	Email    string `json:"email" db:"email"`
	FullName string `json:"full_name" db:"full_name"`
	Password string `json:"-" db:"password"` // json:"-" = API'ye göndermez
	Roles    []Role `json:"roles" db:"-"`
}

// HasRole, kullanıcının verilen rollerden birine sahip olup olmadığını döndürür.
func (u *User) HasRole(roles ...Role) bool {
	for _, have := range u.Roles {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// PrimaryRole, session token'a yazılan en yetkili roldür.
func (u *User) PrimaryRole() Role {
	switch {
	case u.HasRole(RoleAdmin):
		return RoleAdmin
	case u.HasRole(RoleApprover):
		return RoleApprover
	default:
		return RoleUser
	}
}
