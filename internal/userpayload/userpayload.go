package userpayload

import (
	"net/http"

	"github.com/SergeyParamoshkin/toolrank/internal/user"
)

// UserPayload is the response payload for the authenticated admin.
type UserPayload struct {
	*user.User
	Role string `json:"role"`
}

func NewUserPayloadResponse(u *user.User) *UserPayload {
	return &UserPayload{User: u}
}

func (u *UserPayload) Render(w http.ResponseWriter, r *http.Request) error {
	u.Role = "admin"

	return nil
}
