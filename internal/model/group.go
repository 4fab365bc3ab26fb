package model

type CreateGroupRequest struct {
	GroupID              string `json:"group_id"`
	Name                 string `json:"name"`
	RequiresSubscription bool   `json:"requires_subscription"`
}

type CreateGroupResponse struct{}

type AddGroupAdminRequest struct {
	GroupID         string `json:"group_id"`
	UserID          string `json:"user_id"`
	PermissionLevel int    `json:"permission_level"`
}

type AddGroupAdminResponse struct{}

type GroupAdmin struct {
	UserID          string `json:"user_id"`
	PermissionLevel int    `json:"permission_level"`
}

type GetGroupAdminsRequest struct {
	GroupID string `json:"group_id" form:"group_id"`
}

type GetGroupAdminsResponse struct {
	Admins []GroupAdmin `json:"admins"`
}

type WinnerRank struct {
	UserID string `json:"user_id"`
	Wins   int64  `json:"wins"`
}

type GetWinnerLeaderBoardRequest struct {
	GroupID string `json:"group_id" form:"group_id"`
	Offset  int    `json:"offset" form:"offset"`
	Limit   int    `json:"limit" form:"limit"`
}

type GetWinnerLeaderBoardResponse struct {
	Ranks []WinnerRank `json:"ranks"`
}

type GetWinCountRequest struct {
	GroupID string `json:"group_id" form:"group_id"`

	// UserID defaults to the calling user when omitted.
	UserID string `json:"user_id" form:"user_id"`
}

type GetWinCountResponse struct {
	UserID string `json:"user_id"`
	Wins   int64  `json:"wins"`
}
