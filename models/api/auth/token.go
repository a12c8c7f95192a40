package authapimodels

import (
	"time"

	usersapimodels "hr-timesheet-backend/models/api/users"
)

type JWTResponse struct {
	Token     string                  `json:"token"`
	ExpiresAt time.Time               `json:"expires_at"`
	User      usersapimodels.UserView `json:"user"`
}
