package handler

import (
	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/protocol"
	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/protocol/codec"
	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/types"
)

// handleVoiceJoin 加入语音频道，入场由排队器按固定间隔放行
func (h *Handler) handleVoiceJoin(client types.ClientInterface, msg *protocol.Message) {
	roomID := client.GetRoom()
	if roomID == "" {
		return
	}

	payload, err := codec.ParsePayload[protocol.VoiceJoinPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	name := payload.PlayerName
	if name == "" {
		name = client.GetName()
	}
	h.voice.Join(roomID, client, name)
}

// handleVoiceLeave 离开语音频道
func (h *Handler) handleVoiceLeave(client types.ClientInterface) {
	roomID := client.GetRoom()
	if roomID == "" {
		return
	}
	h.voice.Leave(roomID, client.GetName())
}

// handleVoiceToggleMute 切换静音
func (h *Handler) handleVoiceToggleMute(client types.ClientInterface, msg *protocol.Message) {
	roomID := client.GetRoom()
	if roomID == "" {
		return
	}

	payload, err := codec.ParsePayload[protocol.VoiceToggleMutePayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}
	h.voice.ToggleMute(roomID, client.GetName(), payload.Muted)
}

// handleVoiceSignal 点对点转发 WebRTC 信令
func (h *Handler) handleVoiceSignal(client types.ClientInterface, msg *protocol.Message, kind string) {
	roomID := client.GetRoom()
	if roomID == "" {
		return
	}

	payload, err := codec.ParsePayload[protocol.VoiceSignalPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}
	h.voice.Relay(roomID, client.GetName(), kind, payload.Target, payload.Data)
}

// handleVoiceGetParticipants 查询语音参与者列表
func (h *Handler) handleVoiceGetParticipants(client types.ClientInterface) {
	roomID := client.GetRoom()
	if roomID == "" {
		return
	}

	list := h.voice.Participants(roomID)
	client.SendMessage(codec.MustNewMessage(protocol.MsgVoiceParticipants, protocol.VoiceParticipantsPayload{
		Participants: list,
	}))
}
