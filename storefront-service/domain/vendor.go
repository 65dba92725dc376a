package domain

type VendorStatus string

const (
	VendorStatusPending  VendorStatus = "pending"
	VendorStatusApproved VendorStatus = "approved"
	VendorStatusBlocked  VendorStatus = "blocked"
)

type Vendor struct {
	ID     string       `json:"id,omitempty"`
	Email  string       `json:"email"`
	Name   string       `json:"name,omitempty"`
	Logo   string       `json:"logo,omitempty"`
	Phone  string       `json:"phone,omitempty"`
	Status VendorStatus `json:"status,omitempty"`
}

type VendorRegistration struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Logo     string `json:"logo,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
