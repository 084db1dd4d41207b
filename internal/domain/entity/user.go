package entity

import (
	"time"
)

type Role string

const (
	RolePublic          Role = "public"
	RoleDepartmentStaff Role = "department_staff"
	RoleDepartmentHead  Role = "department_head"
	RoleAdmin           Role = "admin"
)

var AllRoles = []Role{RolePublic, RoleDepartmentStaff, RoleDepartmentHead, RoleAdmin}

func (r Role) Valid() bool {
	for _, v := range AllRoles {
		if v == r {
			return true
		}
	}
	return false
}

func (r Role) IsStaff() bool {
	return r == RoleDepartmentStaff || r == RoleDepartmentHead || r == RoleAdmin
}

type User struct {
	ID           string       `json:"id" firestore:"id" bson:"id"`
	Name         string       `json:"name" firestore:"name" bson:"name"`
	Email        string       `json:"email" firestore:"email" bson:"email"`
	PasswordHash string       `json:"-" firestore:"passwordHash" bson:"passwordHash"`
	Phone        string       `json:"phone" firestore:"phone" bson:"phone"`
	Role         Role         `json:"role" firestore:"role" bson:"role"`
	Department   DepartmentID `json:"department,omitempty" firestore:"department,omitempty" bson:"department,omitempty"`
	Address      string       `json:"address,omitempty" firestore:"address,omitempty" bson:"address,omitempty"`
	PinCode      string       `json:"pin_code,omitempty" firestore:"pinCode,omitempty" bson:"pinCode,omitempty"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt" bson:"updatedAt"`
}

// Identity is what a verified token tells us about the caller.
type Identity struct {
	UserID string
	Role   Role
}

func (i Identity) IsPublic() bool {
	return i.Role == RolePublic
}
