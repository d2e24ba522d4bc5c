package user

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/desiigner101/stunotes/core"
)

// User is an authenticated account (a principal). Role is a pair of flags:
// IsAdmin grants the admin dashboard and user management; IsAdminOnly bars an
// admin from the personal productivity features. IsAdminOnly implies IsAdmin.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	IsActive     bool      `json:"is_active"`
	IsAdmin      bool      `json:"is_admin"`
	IsAdminOnly  bool      `json:"is_admin_only"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

// CanUseUserFeatures reports whether the personal dashboard, tasks and notes
// are reachable for this account.
func (u User) CanUseUserFeatures() bool { return !u.IsAdminOnly }

// NewUser contains information needed to register a new regular User.
type NewUser struct {
	Name            string `json:"name" validate:"required"`
	Username        string `json:"username" validate:"required,min=6,alphanum_"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (nu *NewUser) Validate(ctx context.Context, validate *validator.Validate, svc Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Email = core.CleanString(nu.Email, true /* lower */)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, nu.Username, nu.Email)
}

// AdminNewUser is the admin-creation payload; unlike registration it may set
// role flags directly.
type AdminNewUser struct {
	NewUser
	IsAdmin     bool `json:"is_admin"`
	IsAdminOnly bool `json:"is_admin_only"`
}

func (anu *AdminNewUser) Validate(ctx context.Context, validate *validator.Validate, svc Service) error {
	if anu.IsAdminOnly && !anu.IsAdmin {
		return core.NewValidationError(nil, core.FieldError{
			Field: "is_admin_only", Error: "an admin-only account must be an admin",
		})
	}
	return anu.NewUser.Validate(ctx, validate, svc)
}

// UpdateUser defines what information may be provided to modify an existing User.
// Role flags are not updatable here; they change via upgrade, admin-creation or
// request approval only.
type UpdateUser struct {
	Name            string `json:"name"`
	Username        string `json:"username" validate:"omitempty,min=6,alphanum_"`
	Email           string `json:"email" validate:"omitempty,email"`
	IsActive        *bool  `json:"is_active"`
	Password        string `json:"password" validate:"omitempty"`
	PasswordConfirm string `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
}

func (uu *UpdateUser) Validate(ctx context.Context, validate *validator.Validate, origUsr User, svc Service) error {
	if name := core.CleanString(uu.Name); name != "" {
		uu.Name = name
	} else {
		uu.Name = origUsr.Name
	}

	if uname := core.CleanString(uu.Username, true /* lower */); uname != "" {
		uu.Username = uname
	} else {
		uu.Username = origUsr.Username
	}

	if email := core.CleanString(uu.Email, true /* lower */); email != "" {
		uu.Email = email
	} else {
		uu.Email = origUsr.Email
	}

	if err := validate.Struct(uu); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, uu.Username, uu.Email, origUsr)
}

// UpgradeUser is the self-serve upgrade payload. AdminOnly is an opt-in: a
// user upgrading themselves may forfeit the personal features; the
// request-approval path never sets it.
type UpgradeUser struct {
	AdminOnly bool `json:"admin_only"`
}

// QueryFilter filters admin user listings; fields combine with AND.
type QueryFilter struct {
	Search      string    `query:"search"`
	IsAdmin     *bool     `query:"is_admin"`
	IsActive    *bool     `query:"is_active"`
	CreatedFrom time.Time `query:"created_from"`
	CreatedTo   time.Time `query:"created_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.IsAdmin == nil && qf.IsActive == nil &&
		qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
