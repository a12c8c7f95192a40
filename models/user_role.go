package models

import "github.com/pkg/errors"

type UserRole string

const (
	UserRoleContractor UserRole = "contractor"
	UserRoleSupervisor UserRole = "supervisor"
	UserRoleAdmin      UserRole = "admin"
)

var roleHumanName = map[UserRole]string{
	UserRoleContractor: "Подрядчик",
	UserRoleSupervisor: "Руководитель",
	UserRoleAdmin:      "Администратор",
}

func (r UserRole) ToHuman() string {
	if human, exist := roleHumanName[r]; exist {
		return human
	}
	return string(r)
}

func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleContractor, UserRoleSupervisor, UserRoleAdmin:
		return true
	}
	return false
}

func ParseUserRole(value string) (UserRole, error) {
	role := UserRole(value)
	if !role.IsValid() {
		return "", errors.Errorf("неизвестная роль: %v", value)
	}
	return role, nil
}

// TimesheetScope видимость табелей для роли в списках
type TimesheetScope int

const (
	ScopeNone TimesheetScope = iota
	// только собственные табели
	ScopeOwn
	// очередь на согласование и табели, где пользователь указан руководителем
	ScopeSupervisor
	ScopeAll
)

func (r UserRole) ListScope() TimesheetScope {
	switch r {
	case UserRoleContractor:
		return ScopeOwn
	case UserRoleSupervisor:
		return ScopeSupervisor
	case UserRoleAdmin:
		return ScopeAll
	}
	return ScopeNone
}

// CanSubmit может ли роль создавать и отправлять табели
func (r UserRole) CanSubmit() bool {
	switch r {
	case UserRoleContractor, UserRoleAdmin:
		return true
	case UserRoleSupervisor:
		return false
	}
	return false
}

// CanApprove может ли роль согласовывать табели из личного кабинета
func (r UserRole) CanApprove() bool {
	switch r {
	case UserRoleSupervisor, UserRoleAdmin:
		return true
	case UserRoleContractor:
		return false
	}
	return false
}

// CanReadAny может ли роль просматривать чужие табели
func (r UserRole) CanReadAny() bool {
	switch r {
	case UserRoleSupervisor, UserRoleAdmin:
		return true
	case UserRoleContractor:
		return false
	}
	return false
}

// CanModifyAny может ли роль изменять и удалять чужие табели
func (r UserRole) CanModifyAny() bool {
	switch r {
	case UserRoleAdmin:
		return true
	case UserRoleContractor, UserRoleSupervisor:
		return false
	}
	return false
}

func (r UserRole) CanManageUsers() bool {
	switch r {
	case UserRoleAdmin:
		return true
	case UserRoleContractor, UserRoleSupervisor:
		return false
	}
	return false
}

const SystemUser = "Система"
