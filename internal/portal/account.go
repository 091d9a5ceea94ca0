package portal

import "github.com/malo-app/malo-web/internal/model"

// MergeAccount lays the non-empty fields of upd over cur.  The session
// token survives when upd carries none, and a merged account is never
// less onboarded than cur.
func MergeAccount(cur model.Account, upd *model.Account) model.Account {
	if upd == nil {
		return cur
	}
	out := cur
	if upd.ID != "" {
		out.ID = upd.ID
	}
	if upd.Email != "" {
		out.Email = upd.Email
	}
	if upd.Name != "" {
		out.Name = upd.Name
	}
	if upd.MyRole != "" {
		out.MyRole = upd.MyRole
	}
	if upd.PropertyID != "" {
		out.PropertyID = upd.PropertyID
	}
	if upd.Token != "" {
		out.Token = upd.Token
	}
	out.IsOnboarded = cur.IsOnboarded || upd.IsOnboarded
	return out
}
