package protocol

import "encoding/json"

// Message 基础消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 消息类型
const (
	// 房间操作
	MsgCreateRoom    MessageType = "createRoom"    // 创建房间
	MsgJoinRoom      MessageType = "joinRoom"      // 加入房间（含断线重连）
	MsgSetReadyState MessageType = "setReadyState" // 设置准备状态
	MsgStartGame     MessageType = "startGame"     // 开始游戏（房主）

	// 游戏操作
	MsgGameAction      MessageType = "gameAction"      // 统一游戏操作入口
	MsgLoveHateAction  MessageType = "loveHateAction"  // love/hate 表态
	MsgUseSkill        MessageType = "useSkill"        // 使用技能
	MsgTheChosenOne    MessageType = "theChosenOne"    // Ker 的天选技能
	MsgTogglePartyHost MessageType = "togglePartyHost" // 切换派对主持人标记
	MsgResetPartyHosts MessageType = "resetPartyHosts" // 清空派对主持人标记

	// 语音频道
	MsgVoiceJoin            MessageType = "voiceChat:join"
	MsgVoiceLeave           MessageType = "voiceChat:leave"
	MsgVoiceToggleMute      MessageType = "voiceChat:toggleMute"
	MsgVoiceOffer           MessageType = "voiceChat:offer"
	MsgVoiceAnswer          MessageType = "voiceChat:answer"
	MsgVoiceIceCandidate    MessageType = "voiceChat:iceCandidate"
	MsgVoiceGetParticipants MessageType = "voiceChat:getParticipants"
)

// 服务端 → 客户端 消息类型
const (
	MsgAck              MessageType = "ack"              // 房间操作回执
	MsgPlayerListUpdate MessageType = "playerListUpdate" // 玩家名单更新
	MsgGameStateUpdate  MessageType = "gameStateUpdate"  // 完整游戏状态快照
	MsgInitialGameState MessageType = "initialGameState" // 开局状态快照
	MsgGameStarted      MessageType = "startGame"        // 游戏开始通知
	MsgUIMessage        MessageType = "uiMessage"        // 带过期时间的提示
	MsgPartyHostsUpdate MessageType = "partyHostsUpdate" // 派对主持人名单

	MsgVoiceJoined       MessageType = "voiceChat:joined"
	MsgVoicePlayerJoined MessageType = "voiceChat:playerJoined"
	MsgVoicePlayerLeft   MessageType = "voiceChat:playerLeft"
	MsgVoiceMuteChanged  MessageType = "voiceChat:muteChanged"
	MsgVoiceParticipants MessageType = "voiceChat:participants"
	MsgVoiceSignal       MessageType = "voiceChat:signal"

	MsgError MessageType = "error" // 错误消息
)
