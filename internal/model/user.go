package model

import "campus-notice/internal/common"

// User 用户, 密码明文保存和比较
type User struct {
	ID        int64   `json:"id"`
	Username  string  `json:"username"`
	Account   string  `json:"account"`
	Password  string  `json:"password"`
	Favorites []int64 `json:"favorites"`
}

// HasFavorite 是否已收藏
func (u *User) HasFavorite(noticeID int64) bool {
	for _, id := range u.Favorites {
		if id == noticeID {
			return true
		}
	}
	return false
}

// IsAdmin 管理员判断沿用前端的用户名约定
func (u *User) IsAdmin() bool {
	return u != nil && u.Username == common.AdminUsername
}

// IsGuest 游客
func (u *User) IsGuest() bool {
	return u != nil && u.ID == common.GuestID
}

// Clone 深拷贝, 收藏列表不与原对象共享
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Favorites = append([]int64{}, u.Favorites...)
	return &c
}

// Session 当前登录身份, nil User 表示匿名
type Session struct {
	User *User
}

// Authenticated 是否已登录
func (s *Session) Authenticated() bool {
	return s != nil && s.User != nil
}
