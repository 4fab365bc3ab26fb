package entity

import "github.com/raffleclub/backend/pkg/enum"

type GlobalRole string

var (
	RoleSuperAdmin = enum.New(GlobalRole("super_admin"))
	RoleAdmin      = enum.New(GlobalRole("admin"))
	RoleUser       = enum.New(GlobalRole("user"))
)

type User struct {
	Base

	Name string
	Role GlobalRole
}
