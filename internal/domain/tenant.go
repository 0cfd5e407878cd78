package domain

import "time"

// Tenant is the display record events are joined against. Any of the name
// fields may be absent.
type Tenant struct {
	ID           string
	FullName     *string
	LegalName    *string
	PropertyName *string
	Unit         *string
	CreatedAt    time.Time
}

// DisplayName picks the first non-empty name, falling back to
// UnknownTenantName.
func (t *Tenant) DisplayName() string {
	for _, n := range []*string{t.FullName, t.LegalName} {
		if n != nil && *n != "" {
			return *n
		}
	}
	return UnknownTenantName
}
