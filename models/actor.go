package models

// Actor пользователь из сессии, от имени которого выполняется операция
type Actor struct {
	UserID string
	Role   UserRole
	Name   string
}

func (a Actor) IsAuthorized() bool {
	return a.UserID != "" && a.Role.IsValid()
}
