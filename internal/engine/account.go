package engine

import (
	"context"
	"unicode/utf8"

	"go.uber.org/zap"

	"campus-notice/internal/common"
	"campus-notice/internal/model"
)

// RegisterInput 注册表单
type RegisterInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Confirm  string `json:"confirm"`
}

// EnsureAdmin 不存在 admin 用户时写入预置管理员, 返回是否新建
func (e *Engine) EnsureAdmin(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	users, err := e.store.Users(ctx)
	if err != nil {
		return false, err
	}
	for _, u := range users {
		if u.Username == common.AdminUsername {
			return false, nil
		}
	}

	users = append(users, model.User{
		ID:        common.AdminID,
		Username:  common.AdminUsername,
		Account:   common.AdminAccount,
		Password:  common.AdminPassword,
		Favorites: []int64{},
	})
	if err := e.store.SaveUsers(ctx, users); err != nil {
		return false, err
	}
	e.logger.Info("管理员账号已初始化")
	return true, nil
}

// Register 注册并直接登录, 用户名重复时 users 不变
func (e *Engine) Register(ctx context.Context, in RegisterInput) (*model.Session, error) {
	if err := validateRegister(in); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	users, err := e.store.Users(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.Username == in.Username {
			return nil, common.NewValidationError("username", "用户名已存在！")
		}
	}

	user := model.User{
		ID: e.nextID(func(id int64) bool {
			for _, u := range users {
				if u.ID == id {
					return true
				}
			}
			return false
		}),
		Username:  in.Username,
		Account:   in.Username,
		Password:  in.Password,
		Favorites: []int64{},
	}
	if err := e.store.SaveUsers(ctx, append(users, user)); err != nil {
		return nil, err
	}
	if err := e.store.SetCurrentUser(ctx, &user); err != nil {
		return nil, err
	}
	e.logger.Info("注册成功", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return &model.Session{User: user.Clone()}, nil
}

// Login 普通用户登录, 管理员须走 AdminLogin
func (e *Engine) Login(ctx context.Context, username, password string) (*model.Session, error) {
	if username == "" {
		return nil, common.NewValidationError("username", "请输入用户名！")
	}
	if password == "" {
		return nil, common.NewValidationError("password", "请输入密码！")
	}
	return e.loginWhere(ctx, func(u model.User) bool {
		return u.Username == username && u.Password == password && u.Username != common.AdminUsername
	})
}

// AdminLogin 管理员登录
func (e *Engine) AdminLogin(ctx context.Context, password string) (*model.Session, error) {
	if password == "" {
		return nil, common.NewValidationError("password", "请输入密码！")
	}
	return e.loginWhere(ctx, func(u model.User) bool {
		return u.Username == common.AdminUsername && u.Password == password
	})
}

func (e *Engine) loginWhere(ctx context.Context, match func(model.User) bool) (*model.Session, error) {
	users, err := e.store.Users(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if !match(u) {
			continue
		}
		if u.Favorites == nil {
			u.Favorites = []int64{}
		}
		if err := e.store.SetCurrentUser(ctx, &u); err != nil {
			return nil, err
		}
		return &model.Session{User: u.Clone()}, nil
	}
	return nil, common.ErrInvalidCredentials
}

// GuestLogin 游客登录, 身份每次重新生成且不进入 users
func (e *Engine) GuestLogin(ctx context.Context) (*model.Session, error) {
	guest := &model.User{
		ID:        common.GuestID,
		Username:  common.GuestUsername,
		Account:   common.GuestAccount,
		Password:  "",
		Favorites: []int64{},
	}
	if err := e.store.SetCurrentUser(ctx, guest); err != nil {
		return nil, err
	}
	return &model.Session{User: guest.Clone()}, nil
}

// Logout 清除 currentUser
func (e *Engine) Logout(ctx context.Context) error {
	return e.store.ClearCurrentUser(ctx)
}

// Session 读取当前会话, 未登录时 User 为 nil
func (e *Engine) Session(ctx context.Context) (*model.Session, error) {
	user, err := e.store.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	return &model.Session{User: user}, nil
}

func validateRegister(in RegisterInput) error {
	switch {
	case in.Username == "":
		return common.NewValidationError("username", "请输入用户名！")
	case utf8.RuneCountInString(in.Username) < common.MinUsernameLen:
		return common.NewValidationError("username", "用户名至少3个字符！")
	case in.Password == "":
		return common.NewValidationError("password", "请输入密码！")
	case utf8.RuneCountInString(in.Password) < common.MinPasswordLen:
		return common.NewValidationError("password", "密码至少6个字符！")
	case in.Confirm == "":
		return common.NewValidationError("confirm", "请确认密码！")
	case in.Confirm != in.Password:
		return common.NewValidationError("confirm", "两次输入的密码不一致！")
	}
	return nil
}
