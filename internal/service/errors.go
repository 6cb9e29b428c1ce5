package service

import "errors"

// 业务结果分类。DuplicateBooking/NotFound 是面向用户的预期结果，
// 不算系统故障；鉴权失败直接原样上抛，不重试不降级。
var (
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrDuplicateBooking = errors.New("already booked")
	ErrNotFound         = errors.New("not found")
)
