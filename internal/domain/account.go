package domain

import "time"

// CustomerIDPrefix starts every generated customer identifier.
const CustomerIDPrefix = "CUST"

// Account is a registered identity that can authenticate and own service requests.
type Account struct {
	ID           int64
	Username     string
	Email        string
	Name         string
	PhoneNumber  string
	Address      string
	CustomerID   string
	PasswordHash string
	IsActive     bool
	IsStaff      bool
	IsSuperuser  bool
	DateJoined   time.Time
}

// Role derives the privilege level from the stored flags.
func (a *Account) Role() Role {
	switch {
	case a.IsSuperuser:
		return RoleSuperAdministrator
	case a.IsStaff:
		return RoleAdministrator
	default:
		return RoleCustomer
	}
}

// Summary returns the compact view embedded in request listings.
func (a *Account) Summary() CustomerSummary {
	return CustomerSummary{
		ID:         a.ID,
		Username:   a.Username,
		Name:       a.Name,
		CustomerID: a.CustomerID,
	}
}

// CustomerSummary identifies the owner of a service request.
type CustomerSummary struct {
	ID         int64
	Username   string
	Name       string
	CustomerID string
}

// AccountUpdate carries an administrator's partial edit. Nil fields keep their value.
type AccountUpdate struct {
	Username    *string
	Email       *string
	Name        *string
	PhoneNumber *string
	Address     *string
	IsActive    *bool
	IsStaff     *bool
	IsSuperuser *bool
	Password    *string
}

// Apply copies every supplied field onto the account except the password,
// which must be hashed by the caller.
func (u AccountUpdate) Apply(a *Account) {
	if u.Username != nil {
		a.Username = *u.Username
	}
	if u.Email != nil {
		a.Email = *u.Email
	}
	if u.Name != nil {
		a.Name = *u.Name
	}
	if u.PhoneNumber != nil {
		a.PhoneNumber = *u.PhoneNumber
	}
	if u.Address != nil {
		a.Address = *u.Address
	}
	if u.IsActive != nil {
		a.IsActive = *u.IsActive
	}
	if u.IsStaff != nil {
		a.IsStaff = *u.IsStaff
	}
	if u.IsSuperuser != nil {
		a.IsSuperuser = *u.IsSuperuser
	}
}
