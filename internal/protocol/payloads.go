package protocol

// --- 客户端 → 服务端 ---

// CreateRoomPayload 创建房间请求
type CreateRoomPayload struct {
	RoomID   string `json:"roomId"`
	RoomName string `json:"roomName"`
	Password string `json:"password"`
	Capacity int    `json:"capacity"`
	HostName string `json:"hostName"`
}

// JoinRoomPayload 加入房间请求
type JoinRoomPayload struct {
	RoomID     string `json:"roomId"`
	Password   string `json:"password"`
	PlayerName string `json:"playerName"`
}

// SetReadyStatePayload 设置准备状态请求
type SetReadyStatePayload struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
	IsReady    bool   `json:"isReady"`
}

// ActionData gameAction 的参数，字段按 action 取用
type ActionData struct {
	IsDay     bool   `json:"isDay,omitempty"`
	CountType string `json:"countType,omitempty"` // party / scandal / closeKnot / vote
	Delta     int    `json:"delta,omitempty"`
	Skill     string `json:"skill,omitempty"`
	Target    string `json:"target,omitempty"`
}

// GameActionPayload 统一游戏操作请求
type GameActionPayload struct {
	Action     string     `json:"action"`
	Data       ActionData `json:"data"`
	PlayerName string     `json:"playerName"`
}

// LoveHateActionPayload love/hate 表态请求
type LoveHateActionPayload struct {
	Type string `json:"type"` // love 或 hate
}

// UseSkillPayload 使用技能请求
type UseSkillPayload struct {
	Skill  string `json:"skill"`
	Target string `json:"target,omitempty"`
}

// TogglePartyHostPayload 切换派对主持人请求
type TogglePartyHostPayload struct {
	PlayerName string `json:"playerName"`
}

// VoiceJoinPayload 加入语音频道请求
type VoiceJoinPayload struct {
	PlayerName string `json:"playerName"`
}

// VoiceSignalPayload WebRTC 信令转发（offer/answer/iceCandidate 共用）
type VoiceSignalPayload struct {
	From   string `json:"from,omitempty"`
	Target string `json:"target"`
	Kind   string `json:"kind,omitempty"` // offer / answer / iceCandidate
	Data   string `json:"data"`           // SDP 或 candidate 原文
}

// VoiceToggleMutePayload 切换静音请求
type VoiceToggleMutePayload struct {
	Muted bool `json:"muted"`
}

// --- 服务端 → 客户端 ---

// AckPayload 房间操作回执
type AckPayload struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// PlayerInfo 玩家信息
type PlayerInfo struct {
	Name        string `json:"name"`
	Role        string `json:"role,omitempty"`
	Position    int    `json:"position"`
	IsHost      bool   `json:"isHost"`
	IsPartyHost bool   `json:"isPartyHost"`
	Connected   bool   `json:"connected"`
}

// PlayerListUpdatePayload 玩家名单更新
type PlayerListUpdatePayload struct {
	RoomID      string          `json:"roomId"`
	RoomName    string          `json:"roomName"`
	HostName    string          `json:"hostName"`
	Capacity    int             `json:"capacity"`
	Players     []PlayerInfo    `json:"players"`
	ReadyStates map[string]bool `json:"readyStates"`
}

// UINotice 带过期时间的界面提示
type UINotice struct {
	Text      string `json:"text"`
	ExpiresAt int64  `json:"expiresAt"` // Unix 毫秒
}

// UsedActions 已消耗操作标记，按玩家名索引
type UsedActions struct {
	Vote   map[string]bool            `json:"vote"`
	Love   map[string]bool            `json:"love"`
	Hate   map[string]bool            `json:"hate"`
	Skills map[string]map[string]bool `json:"skills"` // 玩家名 → 技能 ID → 已用
}

// GameStateSnapshot 完整游戏状态快照（每次变更整体广播，不做增量）
type GameStateSnapshot struct {
	RoomID         string       `json:"roomId"`
	Players        []PlayerInfo `json:"players"`
	Roles          []string     `json:"roles"`
	IsDay          bool         `json:"isDay"`
	PartyCount     int          `json:"partyCount"`
	ScandalScore   int          `json:"scandalScore"`
	CloseKnotScore int          `json:"closeKnotScore"`
	VoteCount      int          `json:"voteCount"`
	LoveCount      int          `json:"loveCount"`
	HateCount      int          `json:"hateCount"`
	UIMessage      *UINotice    `json:"uiMessage,omitempty"`
	UsedActions    UsedActions  `json:"usedActions"`
}

// PartyHostsUpdatePayload 派对主持人名单
type PartyHostsUpdatePayload struct {
	PartyHosts []string `json:"partyHosts"`
}

// VoiceParticipantInfo 语音参与者信息
type VoiceParticipantInfo struct {
	PlayerName string `json:"playerName"`
	Muted      bool   `json:"muted"`
}

// VoiceJoinedPayload 语音加入成功回执
type VoiceJoinedPayload struct {
	RoomID       string                 `json:"roomId"`
	Participants []VoiceParticipantInfo `json:"participants"`
}

// VoicePlayerJoinedPayload 语音成员加入广播
type VoicePlayerJoinedPayload struct {
	PlayerName string `json:"playerName"`
}

// VoicePlayerLeftPayload 语音成员离开广播
type VoicePlayerLeftPayload struct {
	PlayerName string `json:"playerName"`
}

// VoiceMuteChangedPayload 静音状态变更广播
type VoiceMuteChangedPayload struct {
	PlayerName string `json:"playerName"`
	Muted      bool   `json:"muted"`
}

// VoiceParticipantsPayload 语音参与者列表
type VoiceParticipantsPayload struct {
	Participants []VoiceParticipantInfo `json:"participants"`
}

// ErrorPayload 错误消息
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
