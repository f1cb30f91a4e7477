package consts

const (
	UserSimpleInfoKey    = "user:simple:info:"
	ProjectRatingKey     = "project:rating:"
	TokenBlacklistPrefix = "token:blacklist:"
)
