package service

import (
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	NotFound            = 404
	InternalServerError = 500
)

var (
	ErrParamInvalid      = errors.New("参数错误")
	ErrUserNotFound      = errors.New("用户不存在")
	ErrUserUsernameExist = errors.New("用户名已存在")
	ErrUserEmailExist    = errors.New("邮箱已注册")
	ErrPasswordIncorrect = errors.New("密码错误")
	ErrUserFollowExist   = errors.New("用户已关注")
	ErrUserFollowMissing = errors.New("用户未关注")
	ErrUserFollowSelf    = errors.New("用户不能关注自己")
	ErrProjectNotFound   = errors.New("项目不存在")
	ErrRatingOutOfRange  = errors.New("评分必须在1到5之间")
	ErrFileNotSupported  = errors.New("不支持的文件类型")
	UnauthorizedError    = errors.New("权限不足")
	UnExpectedError      = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:      BadRequest,
	ErrUserNotFound:      NotFound,
	ErrUserUsernameExist: BadRequest,
	ErrUserEmailExist:    BadRequest,
	ErrPasswordIncorrect: Unauthorized,
	ErrUserFollowExist:   BadRequest,
	ErrUserFollowMissing: BadRequest,
	ErrUserFollowSelf:    BadRequest,
	ErrProjectNotFound:   NotFound,
	ErrRatingOutOfRange:  BadRequest,
	ErrFileNotSupported:  BadRequest,
	UnauthorizedError:    Unauthorized,
	UnExpectedError:      InternalServerError,
}
