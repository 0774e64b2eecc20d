package models

import "time"

// User 对应 users 表，主键是身份提供方签发的 uid
type User struct {
	UID             string    `gorm:"type:varchar(128);primaryKey" json:"uid"`
	Email           *string   `gorm:"type:varchar(255);uniqueIndex" json:"email"` // 仅在邮箱被转移时置空
	DisplayName     string    `gorm:"type:varchar(255);not null;default:''" json:"displayName"`
	PaymentVerified bool      `gorm:"not null;default:false" json:"paymentVerified"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定 GORM 使用的表名
func (User) TableName() string {
	return "users"
}

// UpsertUserRequest 注册或登录后同步用户资料
type UpsertUserRequest struct {
	UID                  string `json:"uid" binding:"required"`
	Email                string `json:"email" binding:"required,email"`
	DisplayName          string `json:"displayName"`
	CompleteRegistration bool   `json:"completeRegistration"`
}

// UserExistsResponse 用户是否存在
type UserExistsResponse struct {
	Exists bool `json:"exists"`
}
