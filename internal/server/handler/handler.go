package handler

import (
	"log"

	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/game/room"
	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/game/voice"
	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/protocol"
	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/protocol/codec"
	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/types"
)

// Deps 处理器依赖
type Deps struct {
	Rooms *room.Manager
	Voice *voice.Manager
}

// Handler 消息处理器
type Handler struct {
	rooms    *room.Manager
	voice    *voice.Manager
	handlers map[protocol.MessageType]handlerFunc
}

// handlerFunc 统一的处理器函数签名
type handlerFunc func(client types.ClientInterface, msg *protocol.Message)

// NewHandler 创建处理器
func NewHandler(deps Deps) *Handler {
	h := &Handler{
		rooms: deps.Rooms,
		voice: deps.Voice,
	}
	h.initHandlers()
	return h
}

// initHandlers 初始化消息处理器映射
func (h *Handler) initHandlers() {
	h.handlers = map[protocol.MessageType]handlerFunc{
		// 房间操作
		protocol.MsgCreateRoom:    h.handleCreateRoom,
		protocol.MsgJoinRoom:      h.handleJoinRoom,
		protocol.MsgSetReadyState: h.handleSetReadyState,
		protocol.MsgStartGame:     func(c types.ClientInterface, _ *protocol.Message) { h.handleStartGame(c) },

		// 游戏操作
		protocol.MsgGameAction:      h.handleGameAction,
		protocol.MsgLoveHateAction:  h.handleLoveHateAction,
		protocol.MsgUseSkill:        h.handleUseSkill,
		protocol.MsgTheChosenOne:    func(c types.ClientInterface, _ *protocol.Message) { h.handleTheChosenOne(c) },
		protocol.MsgTogglePartyHost: h.handleTogglePartyHost,
		protocol.MsgResetPartyHosts: func(c types.ClientInterface, _ *protocol.Message) { h.handleResetPartyHosts(c) },

		// 语音频道
		protocol.MsgVoiceJoin:            h.handleVoiceJoin,
		protocol.MsgVoiceLeave:           func(c types.ClientInterface, _ *protocol.Message) { h.handleVoiceLeave(c) },
		protocol.MsgVoiceToggleMute:      h.handleVoiceToggleMute,
		protocol.MsgVoiceOffer:           func(c types.ClientInterface, m *protocol.Message) { h.handleVoiceSignal(c, m, "offer") },
		protocol.MsgVoiceAnswer:          func(c types.ClientInterface, m *protocol.Message) { h.handleVoiceSignal(c, m, "answer") },
		protocol.MsgVoiceIceCandidate:    func(c types.ClientInterface, m *protocol.Message) { h.handleVoiceSignal(c, m, "iceCandidate") },
		protocol.MsgVoiceGetParticipants: func(c types.ClientInterface, _ *protocol.Message) { h.handleVoiceGetParticipants(c) },
	}
}

// Handle 处理消息
func (h *Handler) Handle(client types.ClientInterface, msg *protocol.Message) {
	if handler, ok := h.handlers[msg.Type]; ok {
		handler(client, msg)
		return
	}

	log.Printf("⚠️  未知消息类型: '%s' (来自: %s)", msg.Type, client.GetID())
	client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
}
