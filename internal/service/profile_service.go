package service

import (
	"context"
	"errors"

	"Gather_Events/internal/model"
	"Gather_Events/internal/pkg"
	"Gather_Events/internal/repository/mysql"
	"Gather_Events/internal/repository/redis"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type ProfileService struct {
	repo     *mysql.ProfileRepository
	rSession *redis.SessionRepository
	emailSvc *EmailService
}

func NewProfileService(repo *mysql.ProfileRepository, emailSvc *EmailService) *ProfileService {
	return &ProfileService{
		repo:     repo,
		rSession: &redis.SessionRepository{},
		emailSvc: emailSvc,
	}
}

// Register 注册即建档：一个认证身份对应一条 profile，默认角色 user。
// referredBy 是可空的自引用外键，推荐人不存在就置空，不做环检测。
func (s *ProfileService) Register(ctx context.Context, username, password, email, code string, referredBy *uint64) error {
	ok, err := s.emailSvc.VerifyCode("register", email, code)
	if err != nil || !ok {
		return errors.New("verification failed")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if referredBy != nil {
		if _, err := s.repo.FindByID(ctx, *referredBy); err != nil {
			referredBy = nil
		}
	}

	profile := &model.Profile{
		Username:   username,
		Password:   string(hash),
		Email:      email,
		Role:       pkg.RoleUser,
		ReferredBy: referredBy,
	}

	if err := s.repo.Create(profile); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errors.New("username or email already taken")
		}
		return err
	}
	return nil
}

func (s *ProfileService) Login(username, password string) (*pkg.Pair, error) {
	profile, err := s.repo.FindByUsername(username)
	if err != nil {
		return nil, errors.New("user not found")
	}

	if bcrypt.CompareHashAndPassword([]byte(profile.Password), []byte(password)) != nil {
		return nil, errors.New("invalid password")
	}

	token, err := pkg.GeneratePair(profile.ID)
	if err != nil {
		return nil, err
	}
	if err := s.rSession.AddToken(profile.ID, token.AccessToken); err != nil {
		return nil, err
	}
	return token, nil
}

func (s *ProfileService) Logout(userID uint64) error {
	return s.rSession.DeleteToken(userID)
}

func (s *ProfileService) Refresh(refreshToken string) (*pkg.Pair, error) {
	return pkg.Refresh(refreshToken)
}

// ResetPassword 忘记密码：邮箱验证码走通后改密
func (s *ProfileService) ResetPassword(email, code, newPassword string) error {
	ok, err := s.emailSvc.VerifyCode("reset", email, code)
	if err != nil || !ok {
		return errors.New("verification failed")
	}

	profile, err := s.repo.FindByEmail(email)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(profile, string(hash))
}

// ChangePassword 登录态修改密码，成功后踢掉当前会话
func (s *ProfileService) ChangePassword(ctx context.Context, userID uint64, oldPassword, newPassword string) error {
	profile, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(profile.Password), []byte(oldPassword)) != nil {
		return errors.New("old password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(profile, string(hash)); err != nil {
		return err
	}
	return s.Logout(userID)
}

func (s *ProfileService) GetProfile(ctx context.Context, id uint64) (*model.Profile, error) {
	profile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return profile, nil
}

func (s *ProfileService) ListProfiles(ctx context.Context, page, size int) ([]model.Profile, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 50
	}
	return s.repo.List(ctx, (page-1)*size, size)
}

// ChangeRole 改角色是 admin 专属操作，moderator 不放行。
// 权限检查针对 actorID 指向的真实账号并且每次回表，预览身份与
// 过期 claims 都够不到这里。
func (s *ProfileService) ChangeRole(ctx context.Context, actorID, targetID uint64, newRole string) error {
	actor, err := s.repo.FindByID(ctx, actorID)
	if err != nil {
		return ErrUnauthorized
	}
	if !pkg.IsAdminStrict(actor.Role) {
		return ErrUnauthorized
	}

	switch newRole {
	case pkg.RoleUser, pkg.RoleLead, pkg.RoleMember, pkg.RoleModerator, pkg.RoleAdmin:
	default:
		return errors.New("unknown role")
	}

	if _, err := s.repo.FindByID(ctx, targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	// MySQL 对值未变化的 UPDATE 报 0 行，这里不能拿行数判断存在性
	_, err = s.repo.UpdateRole(ctx, targetID, newRole)
	return err
}
