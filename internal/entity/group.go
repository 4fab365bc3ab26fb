package entity

// Group mirrors a chat group the bot operates in. The ID is the platform
// chat id, not a generated one.
type Group struct {
	Base

	Name                 string
	RequiresSubscription bool
	Active               bool
}

// GroupAdmin grants a user admin privileges inside one group.
type GroupAdmin struct {
	Base

	GroupID string `gorm:"uniqueIndex:idx_group_admin"`
	Group   Group  `gorm:"foreignKey:GroupID"`

	UserID string `gorm:"uniqueIndex:idx_group_admin"`
	User   User   `gorm:"foreignKey:UserID"`

	PermissionLevel int
}
