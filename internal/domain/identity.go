package domain

// Identity is who an order belongs to: a guest or an authenticated user.
// Implemented only by GuestInfo and UserRef.
type Identity interface {
	ContactName() string
	ContactEmail() string
	ContactPhone() string
	// OwnerKey scopes session data such as the cart.
	OwnerKey() string
	isIdentity()
}

// GuestInfo is the contact data a guest enters at checkout.
type GuestInfo struct {
	Name  string
	Email string
	Phone string
}

func (g GuestInfo) ContactName() string  { return g.Name }
func (g GuestInfo) ContactEmail() string { return g.Email }
func (g GuestInfo) ContactPhone() string { return g.Phone }
func (g GuestInfo) OwnerKey() string     { return "guest:" + g.Email }
func (GuestInfo) isIdentity()            {}

// UserRef is an opaque reference to an authenticated member.
type UserRef struct {
	ID    string
	Name  string
	Email string
	Phone string
}

func (u UserRef) ContactName() string  { return u.Name }
func (u UserRef) ContactEmail() string { return u.Email }
func (u UserRef) ContactPhone() string { return u.Phone }
func (u UserRef) OwnerKey() string     { return "user:" + u.ID }
func (UserRef) isIdentity()            {}
