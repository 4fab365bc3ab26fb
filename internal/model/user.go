package model

type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

type RegisterUserRequest struct {
	Name string `json:"name"`

	// GroupID and GroupName describe the chat the registration came from.
	// When given, the group is bootstrapped on first sight.
	GroupID   string `json:"group_id,omitempty"`
	GroupName string `json:"group_name,omitempty"`
}

type RegisterUserResponse struct{}

type GetMeRequest struct{}

type GetMeResponse struct {
	User User `json:"user"`
}
