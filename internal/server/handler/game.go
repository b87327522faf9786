package handler

import (
	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/game/state"
	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/protocol"
	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/protocol/codec"
	"github.com/ZizhengLiu2719/BoardGame---Who-s-cheating/internal/types"
)

// handleGameAction 统一游戏操作入口。
// 未开局、越权、重放都静默忽略，不向操作者泄露任何状态。
func (h *Handler) handleGameAction(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.GameActionPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	game := h.rooms.GetGame(client.GetRoom())
	if game == nil {
		return
	}
	game.HandleGameAction(client.GetName(), payload.Action, payload.Data)
}

// handleLoveHateAction 处理 love/hate 表态
func (h *Handler) handleLoveHateAction(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.LoveHateActionPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	game := h.rooms.GetGame(client.GetRoom())
	if game == nil {
		return
	}
	game.HandleLoveHate(client.GetName(), payload.Type)
}

// handleUseSkill 处理技能施放
func (h *Handler) handleUseSkill(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.UseSkillPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	game := h.rooms.GetGame(client.GetRoom())
	if game == nil {
		return
	}
	game.UseSkill(client.GetName(), payload.Skill, payload.Target)
}

// handleTheChosenOne Ker 技能的独立入口
func (h *Handler) handleTheChosenOne(client types.ClientInterface) {
	game := h.rooms.GetGame(client.GetRoom())
	if game == nil {
		return
	}
	game.UseSkill(client.GetName(), state.SkillTheChosenOne, "")
}

// handleTogglePartyHost 切换派对主持人标记，可指定他人
func (h *Handler) handleTogglePartyHost(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.TogglePartyHostPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	name := payload.PlayerName
	if name == "" {
		name = client.GetName()
	}
	h.rooms.TogglePartyHost(client.GetRoom(), name)
}

// handleResetPartyHosts 清空派对主持人标记
func (h *Handler) handleResetPartyHosts(client types.ClientInterface) {
	h.rooms.ResetPartyHosts(client.GetRoom())
}
