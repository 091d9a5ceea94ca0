package model

// Property is a managed building that scopes residents, staff and visits.
type Property struct {
	ID           ID     `json:"id"`
	Name         string `json:"name"`
	Address      string `json:"address"`
	PropertyType string `json:"propertyType"`
}

// PropertyTypes offered on the admin onboarding form.
var PropertyTypes = []string{"Hostel", "Apartment", "Condominium", "Dormitory"}

// AdminOnboardingResponse is returned after a manager registers a property.
type AdminOnboardingResponse struct {
	Property Property `json:"property"`
	User     *Account `json:"user,omitempty"`
}

// ResidentOnboarding is the profile a resident completes after signup.
type ResidentOnboarding struct {
	PropertyID ID     `json:"propertyId" form:"propertyId"`
	Phone      string `json:"phone" form:"phone"`
	IC         string `json:"ic" form:"ic"`
	Gender     string `json:"gender" form:"gender"`
	Address    string `json:"address" form:"address"`
	Room       string `json:"room" form:"room"`
}

// ManagerContact is the property manager shown on the resident dashboard.
type ManagerContact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}
