package entity

// User represents a chat user synced from the identity provider
type User struct {
	Id             UserId `json:"id" gorm:"column:id;primaryKey;type:varchar(64)"`
	ExternalAuthId string `json:"external_auth_id" gorm:"column:external_auth_id;type:varchar(191);uniqueIndex:uk_users_external_auth_id;not null"`
	Name           string `json:"name" gorm:"column:name;type:varchar(191);index:idx_users_name"`
	Email          string `json:"email" gorm:"column:email;type:varchar(191)"`
	AvatarImageUrl string `json:"avatar_image_url" gorm:"column:avatar_image_url;type:varchar(512)"`
	IsOnline       bool   `json:"is_online" gorm:"column:is_online"`
	CreatedAt      int64  `json:"created_at" gorm:"column:created_at;autoCreateTime:milli"`
	UpdatedAt      int64  `json:"updated_at" gorm:"column:updated_at;autoUpdateTime:milli"`
}

// TableName returns the table name for User
func (User) TableName() string {
	return "users"
}

// UserInfo represents user info for API response
type UserInfo struct {
	Id             UserId `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	AvatarImageUrl string `json:"avatar_image_url,omitempty"`
	IsOnline       bool   `json:"is_online"`
}

// ToUserInfo converts User to UserInfo
func (u *User) ToUserInfo() *UserInfo {
	if u == nil {
		return nil
	}
	return &UserInfo{
		Id:             u.Id,
		Name:           u.Name,
		Email:          u.Email,
		AvatarImageUrl: u.AvatarImageUrl,
		IsOnline:       u.IsOnline,
	}
}

// ToUserInfos converts a list of users, skipping nil entries
func ToUserInfos(users []*User) []*UserInfo {
	infos := make([]*UserInfo, 0, len(users))
	for _, u := range users {
		if u != nil {
			infos = append(infos, u.ToUserInfo())
		}
	}
	return infos
}
