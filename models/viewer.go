package models

// Viewer is the identity a request is served for. The zero value is an
// anonymous visitor.
type Viewer struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Superuser bool   `json:"superuser"`
}

func (v Viewer) Authenticated() bool {
	return v.ID != ""
}
