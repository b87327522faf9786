package roles

import "math/rand"

// Role 角色标识
type Role string

// 固定角色池中的角色
const (
	RoleAbby      Role = "Abby"      // 出轨者，夜间可使用 molest
	RoleWind      Role = "Wind"      // 误导者，love/hate 结算时转移一票
	RoleKennedi   Role = "Kennedi"   // 护场者，可将 hate 全部转为 love
	RoleMichael   Role = "Michael"   // 侦探，可指认 Abby
	RoleKer       Role = "Ker"       // 天选者，投票权重加倍
	RoleGossip    Role = "Gossip"    // 八卦者
	RoleBodyguard Role = "Bodyguard" // 保镖
	RolePaparazzi Role = "Paparazzi" // 狗仔
	RoleOrganizer Role = "Organizer" // 派对组织者
)

// pools 按人数预设的角色池，出轨阵营与守护阵营比例固定
var pools = map[int][]Role{
	5: {RoleAbby, RoleWind, RoleMichael, RoleKennedi, RoleKer},
	6: {RoleAbby, RoleWind, RoleGossip, RoleMichael, RoleKennedi, RoleKer},
	7: {RoleAbby, RoleWind, RoleGossip, RoleMichael, RoleKennedi, RoleKer, RoleBodyguard},
	8: {RoleAbby, RoleWind, RoleGossip, RolePaparazzi, RoleMichael, RoleKennedi, RoleKer, RoleBodyguard},
	9: {RoleAbby, RoleWind, RoleGossip, RolePaparazzi, RoleMichael, RoleKennedi, RoleKer, RoleBodyguard, RoleOrganizer},
}

// cheaterAligned 出轨阵营
var cheaterAligned = map[Role]bool{
	RoleAbby:      true,
	RoleWind:      true,
	RoleGossip:    true,
	RolePaparazzi: true,
}

// Distribute 按人数返回打乱后的角色列表。
// 不支持的人数返回空列表，调用方必须视为配置错误，不得按位置兜底分配。
func Distribute(playerCount int) []Role {
	pool, ok := pools[playerCount]
	if !ok {
		return nil
	}

	shuffled := make([]Role, len(pool))
	copy(shuffled, pool)

	// Fisher–Yates 原地洗牌
	for i := len(shuffled) - 1; i >= 1; i-- {
		j := rand.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	return shuffled
}

// IsCheaterAligned 判断角色是否属于出轨阵营
func IsCheaterAligned(r Role) bool {
	return cheaterAligned[r]
}

// Pool 返回指定人数的角色池副本，人数不支持时返回 nil
func Pool(playerCount int) []Role {
	pool, ok := pools[playerCount]
	if !ok {
		return nil
	}
	out := make([]Role, len(pool))
	copy(out, pool)
	return out
}

// Supported 判断人数是否有预设角色池
func Supported(playerCount int) bool {
	_, ok := pools[playerCount]
	return ok
}
