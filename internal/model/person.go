package model

import "strings"

// Person holds the fields shared by residents and staff.  Username is the
// immutable identifier once created.
type Person struct {
	ID       ID     `json:"id,omitempty"`
	Username string `json:"username" form:"username"`
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Phone    string `json:"phone" form:"phone"`
	IC       string `json:"ic" form:"ic"`
	Gender   string `json:"gender" form:"gender"`
	Address  string `json:"address" form:"address"`
	Approved bool   `json:"approved"`
}

// Member is implemented by Resident and Staff through the embedded Person.
type Member interface {
	Details() Person
}

// VisitKey is the path segment of the person's visit history upstream: the
// id when the list carried one, the username otherwise.
func (p Person) VisitKey() string {
	if p.ID != "" {
		return p.ID.String()
	}
	return p.Username
}

// Details returns the shared fields.
func (p Person) Details() Person { return p }

// Resident is an occupant of a property.
type Resident struct {
	Person
	Room string `json:"room" form:"room"`
}

// Staff is security personnel managed by the property manager.
type Staff struct {
	Person
}

// MemberInput is the body sent when a resident or staff member is created
// or edited.  It has no approval flag: only the approve endpoints change
// that, so an edit never touches it.  Password is only set on create.
type MemberInput struct {
	Username   string `json:"username"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	IC         string `json:"ic"`
	Gender     string `json:"gender"`
	Address    string `json:"address"`
	Password   string `json:"password,omitempty"`
	PropertyID ID     `json:"propertyId,omitempty"`
}

// ResidentInput adds the room to MemberInput.
type ResidentInput struct {
	MemberInput
	Room string `json:"room"`
}

// StaffInput is MemberInput for staff.
type StaffInput struct {
	MemberInput
}

// Genders offered by the person and onboarding forms.
var Genders = []string{"Male", "Female"}

// GenderOptions lists the choices of a gender select editing current.  A
// canonical entry equal to current ignoring case is replaced by current
// itself and any other non-empty value is appended, so the stored value is
// always the selected option and posts back unchanged.
func GenderOptions(current string) []string {
	out := make([]string, 0, len(Genders)+1)
	found := current == ""
	for _, g := range Genders {
		if !found && strings.EqualFold(g, current) {
			out = append(out, current)
			found = true
			continue
		}
		out = append(out, g)
	}
	if !found {
		out = append(out, current)
	}
	return out
}
