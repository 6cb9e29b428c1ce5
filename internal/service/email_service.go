package service

import (
	"Gather_Events/internal/pkg"
	"Gather_Events/internal/repository/redis"
)

type EmailService struct {
	emailCfg pkg.SMTPConfig
	rds      *redis.EmailRepository
}

func NewEmailService(cfg pkg.SMTPConfig) *EmailService {
	return &EmailService{emailCfg: cfg, rds: &redis.EmailRepository{}}
}

var codeSubjects = map[string]string{
	"register": "注册验证",
	"reset":    "重置密码",
}

// SendCode 发送验证码：先写 pending 键，邮件寄出后转 confirmed。
// 发信失败时 pending 键留给 TTL 过期，confirm 失败则主动清掉。
func (s *EmailService) SendCode(scope, email string) error {
	code, err := pkg.RandDigits(6)
	if err != nil {
		return err
	}

	if err = s.rds.SetCodePending(scope, email, code); err != nil {
		return err
	}

	subject := codeSubjects[scope]
	html := pkg.EmailCodeHTML(subject, code, redis.DefaultEmailCodeTTL)
	if err = pkg.SendEmail(s.emailCfg, email, subject+"验证码", html); err != nil {
		return err
	}

	if err = s.rds.ConfirmCode(scope, email); err != nil {
		_ = s.rds.DeleteCodePending(scope, email)
		return err
	}
	return nil
}

// VerifyCode 校验验证码并一次性删除
func (s *EmailService) VerifyCode(scope, email, code string) (bool, error) {
	val, err := s.rds.GetCodeConfirmed(scope, email)
	if err != nil {
		// 不存在或已过期
		return false, err
	}
	if val != code {
		return false, nil
	}
	if err = s.rds.DeleteCodeConfirmed(scope, email); err != nil {
		return false, err
	}
	return true, nil
}
