package handler

import (
	"errors"
	"log"

	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/apperrors"
	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/protocol"
	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/protocol/codec"
	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/types"
)

// handleCreateRoom 处理创建房间
func (h *Handler) handleCreateRoom(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.CreateRoomPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	if _, err := h.rooms.CreateRoom(client, payload); err != nil {
		client.SendMessage(codec.NewAck(false, errorText(err)))
		return
	}
	client.SendMessage(codec.NewAck(true, ""))
}

// handleJoinRoom 处理加入房间（同名重入即断线重连）
func (h *Handler) handleJoinRoom(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.JoinRoomPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	// 已在别的房间则先离开
	if cur := client.GetRoom(); cur != "" && cur != payload.RoomID {
		h.rooms.LeaveRoom(client)
	}

	if _, err := h.rooms.JoinRoom(client, payload.RoomID, payload.Password, payload.PlayerName); err != nil {
		client.SendMessage(codec.NewAck(false, errorText(err)))
		return
	}
	client.SendMessage(codec.NewAck(true, ""))
}

// handleSetReadyState 处理准备状态变更
func (h *Handler) handleSetReadyState(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.SetReadyStatePayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	// 身份以连接为准，负载里的名字不可信
	if err := h.rooms.SetReadyState(client.GetRoom(), client.GetName(), payload.IsReady); err != nil {
		client.SendMessage(codec.NewAck(false, errorText(err)))
	}
}

// handleStartGame 处理开始游戏。门槛不满足时注册表静默忽略。
func (h *Handler) handleStartGame(client types.ClientInterface) {
	h.rooms.StartGame(client.GetRoom())
}

// errorText 提取面向玩家的错误文案
func errorText(err error) string {
	var gameErr *apperrors.GameError
	if errors.As(err, &gameErr) {
		return gameErr.Message
	}
	log.Printf("⚠️ 未归类的房间错误: %v", err)
	return err.Error()
}
