package model

import (
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Role is the account role declared by the upstream API in "myRole".
type Role string

const (
	RoleManager  Role = "Managing Staff"
	RoleResident Role = "Resident"
	RoleSecurity Role = "Security Staff"
)

// ID is an identifier the upstream API may send either as a JSON string or
// as a number.  It is always kept and re-encoded as a string.
type ID string

// UnmarshalJSON accepts "abc", 42 and null.
func (id *ID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == "" {
		*id = ""
		return nil
	}
	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*id = ID(str)
		return nil
	}
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return err
	}
	*id = ID(s)
	return nil
}

func (id ID) String() string { return string(id) }

// Account is the signed-in user as kept in the session.  Token is opaque.
type Account struct {
	ID          ID     `json:"id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	MyRole      Role   `json:"myRole"`
	PropertyID  ID     `json:"propertyId,omitempty"`
	IsOnboarded bool   `json:"isOnboarded"`
	Token       string `json:"token,omitempty"`
}

// IsManager reports whether the account may use the admin portal.
func (a Account) IsManager() bool { return a.MyRole == RoleManager }

// IsResident reports whether the account may use the resident portal.
func (a Account) IsResident() bool { return a.MyRole == RoleResident }

// HomePath is where the account lands after sign-in: the onboarding page of
// its portal until the server declares it onboarded, the dashboard after.
// Roles without a portal land on the resident sign-in page.
func (a Account) HomePath() string {
	prefix := ""
	switch {
	case a.IsManager():
		prefix = "/admin"
	case !a.IsResident():
		return "/login"
	}
	if !a.IsOnboarded {
		return prefix + "/onboarding"
	}
	return prefix + "/dashboard"
}

// AuthResponse is the body returned by the login, Google and register
// endpoints.
type AuthResponse struct {
	Token string  `json:"token"`
	User  Account `json:"user"`
}

// Account merges the token into the returned user.
func (r AuthResponse) Account() Account {
	acc := r.User
	if r.Token != "" {
		acc.Token = r.Token
	}
	return acc
}
