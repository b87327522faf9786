package protocol

// 错误码
const (
	ErrCodeUnknown      = 1000
	ErrCodeInvalidMsg   = 1001
	ErrCodeRoomNotFound = 2001
	ErrCodeRoomExists   = 2002
	ErrCodeBadPassword  = 2003
	ErrCodeRoomFull     = 2004
	ErrCodeNotInRoom    = 2005
	ErrCodeGameNotStart = 3001
)

// ErrorMessages 错误码对应的消息
var ErrorMessages = map[int]string{
	ErrCodeUnknown:      "未知错误",
	ErrCodeInvalidMsg:   "无效的消息格式",
	ErrCodeRoomNotFound: "房间不存在",
	ErrCodeRoomExists:   "房间号已被占用",
	ErrCodeBadPassword:  "房间密码错误",
	ErrCodeRoomFull:     "房间已满",
	ErrCodeNotInRoom:    "您不在房间中",
	ErrCodeGameNotStart: "游戏尚未开始",
}
