package codec

import (
	"encoding/json"

	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/protocol"
)

// NewMessage 创建消息
func NewMessage(msgType protocol.MessageType, payload any) (*protocol.Message, error) {
	var data json.RawMessage
	if payload != nil {
		var err error
		data, err = json.Marshal(payload)
		if err != nil {
			return nil, err
		}
	}
	return &protocol.Message{
		Type:    msgType,
		Payload: data,
	}, nil
}

// MustNewMessage 创建消息，失败时 panic（payload 均为内部结构体，序列化不应失败）
func MustNewMessage(msgType protocol.MessageType, payload any) *protocol.Message {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		panic(err)
	}
	return msg
}

// Decode 解析 JSON 字节为消息
func Decode(data []byte) (*protocol.Message, error) {
	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Encode 将消息编码为 JSON 字节
func Encode(msg *protocol.Message) ([]byte, error) {
	return json.Marshal(msg)
}

// ParsePayload 解析消息负载为具体类型
func ParsePayload[T any](msg *protocol.Message) (T, error) {
	var payload T
	if len(msg.Payload) == 0 {
		return payload, nil
	}
	err := json.Unmarshal(msg.Payload, &payload)
	return payload, err
}

// NewAck 创建房间操作回执
func NewAck(success bool, message string) *protocol.Message {
	return MustNewMessage(protocol.MsgAck, protocol.AckPayload{
		Success: success,
		Message: message,
	})
}

// NewErrorMessage 创建错误消息
func NewErrorMessage(code int) *protocol.Message {
	return MustNewMessage(protocol.MsgError, protocol.ErrorPayload{
		Code:    code,
		Message: protocol.ErrorMessages[code],
	})
}
