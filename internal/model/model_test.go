package model

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDAcceptsStringAndNumber(t *testing.T) {
	var acc Account
	require.NoError(t, json.Unmarshal([]byte(`{"id":42,"propertyId":"p-7","myRole":"Resident"}`), &acc))
	assert.Equal(t, ID("42"), acc.ID)
	assert.Equal(t, ID("p-7"), acc.PropertyID)

	require.NoError(t, json.Unmarshal([]byte(`{"id":null}`), &acc))
	assert.Equal(t, ID(""), acc.ID)

	assert.Error(t, json.Unmarshal([]byte(`{"id":true}`), &acc))
}

func TestAccountHomePath(t *testing.T) {
	assert.Equal(t, "/admin/onboarding", Account{MyRole: RoleManager}.HomePath())
	assert.Equal(t, "/admin/dashboard", Account{MyRole: RoleManager, IsOnboarded: true}.HomePath())
	assert.Equal(t, "/onboarding", Account{MyRole: RoleResident}.HomePath())
	assert.Equal(t, "/dashboard", Account{MyRole: RoleResident, IsOnboarded: true}.HomePath())
	assert.Equal(t, "/login", Account{MyRole: RoleSecurity, IsOnboarded: true}.HomePath())
}

func TestAuthResponseAccountCarriesToken(t *testing.T) {
	var resp AuthResponse
	require.NoError(t, json.Unmarshal([]byte(`{"token":"abc","user":{"id":"u1","email":"a@b.c","myRole":"Managing Staff"}}`), &resp))
	acc := resp.Account()
	assert.Equal(t, "abc", acc.Token)
	assert.True(t, acc.IsManager())
}

func TestVisitStatus(t *testing.T) {
	cases := []struct {
		in    string
		label string
		badge string
	}{
		{"Pending", "Pending", "badge-pending"},
		{"APPROVED", "Approved", "badge-approved"},
		{"rejected", "Rejected", "badge-rejected"},
		{"cancelled", "Unknown", "badge-unknown"},
	}
	for _, tc := range cases {
		s := VisitStatus(tc.in)
		assert.Equal(t, tc.label, s.Label(), tc.in)
		assert.Equal(t, tc.badge, s.Badge(), tc.in)
	}
}

func TestVisitRequestMissing(t *testing.T) {
	assert.Equal(t, []string{"visitorName", "visitorUsername", "visitorPassword", "visitDate", "purpose"}, VisitRequest{}.Missing())
	full := VisitRequest{VisitorName: "Ali", VisitorUsername: "ali", VisitorPassword: "pw", VisitDate: "2026-10-20", Purpose: "Family"}
	assert.Empty(t, full.Missing())
	full.Purpose = "   "
	assert.Equal(t, []string{"purpose"}, full.Missing())
}

func TestGenderDistributionPercent(t *testing.T) {
	g := GenderDistribution{{Gender: "Male", Count: 3}, {Gender: "Female", Count: 1}}
	assert.Equal(t, 4, g.Total())
	assert.Equal(t, 75, g.Percent(g[0]))
	assert.Equal(t, 0, GenderDistribution{}.Percent(GenderCount{Count: 2}))
}

func TestProfileRoundTripUnchanged(t *testing.T) {
	body := `{"id":7,"name":"Jane Doe","email":"jane@example.com","phone":"0123","ic":"900101-01-1234",
		"gender":"Female","address":"Block A","room":"A-12","approved":true,"propertyId":3,"token":"secret",
		"emergency":{"name":"Mum","phone":"0199"}}`
	var p Profile
	require.NoError(t, json.Unmarshal([]byte(body), &p))

	form := map[string]string{}
	for _, k := range ProfileFields {
		form[k] = p.Get(k)
	}
	p.Apply(form)

	out, err := json.Marshal(p)
	require.NoError(t, err)

	var want, got map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &want))
	delete(want, "token")
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, want, got)
}

func TestProfileSetChangesOnlyEdited(t *testing.T) {
	var p Profile
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"phone":"1","name":"A"}`), &p))
	p.Apply(map[string]string{"phone": "2", "name": "A", "room": "ignored"})

	assert.Equal(t, "2", p.Get("phone"))
	assert.Equal(t, "1", p.ID())
	assert.Equal(t, "", p.Get("room"))

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"phone":"2","name":"A"}`, string(out))
}

func TestGenderDistributionShapes(t *testing.T) {
	var g GenderDistribution
	require.NoError(t, json.Unmarshal([]byte(`[{"gender":"Male","count":2}]`), &g))
	assert.Equal(t, GenderDistribution{{Gender: "Male", Count: 2}}, g)

	require.NoError(t, json.Unmarshal([]byte(`{"Male":3,"Female":1}`), &g))
	assert.Equal(t, GenderDistribution{{Gender: "Female", Count: 1}, {Gender: "Male", Count: 3}}, g)

	require.NoError(t, json.Unmarshal([]byte(`{"data":[{"gender":"Female","count":5}]}`), &g))
	assert.Equal(t, GenderDistribution{{Gender: "Female", Count: 5}}, g)
}

func TestGenderOptionsKeepCurrentValue(t *testing.T) {
	assert.Equal(t, Genders, GenderOptions(""))
	assert.Equal(t, []string{"Male", "Female"}, GenderOptions("Female"))
	assert.Equal(t, []string{"Male", "female"}, GenderOptions("female"))
	assert.Equal(t, []string{"Male", "Female", "Other"}, GenderOptions("Other"))
}
