package apperrors

import (
	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/protocol"
)

// GameError 游戏错误（房间和会话共享）
type GameError struct {
	Code    int
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

// 预定义错误
var (
	ErrRoomNotFound = &GameError{Code: protocol.ErrCodeRoomNotFound, Message: "房间不存在"}
	ErrRoomExists   = &GameError{Code: protocol.ErrCodeRoomExists, Message: "房间号已被占用"}
	ErrBadPassword  = &GameError{Code: protocol.ErrCodeBadPassword, Message: "房间密码错误"}
	ErrRoomFull     = &GameError{Code: protocol.ErrCodeRoomFull, Message: "房间已满"}
	ErrNotInRoom    = &GameError{Code: protocol.ErrCodeNotInRoom, Message: "您不在房间中"}
	ErrGameNotStart = &GameError{Code: protocol.ErrCodeGameNotStart, Message: "游戏尚未开始"}
)
