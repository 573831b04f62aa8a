package repository

import "context"

// PresenceRepository 定义了与配对在线状态相关的操作，由 Redis 实现。
// 房间成员表本身只存在于进程内存（见 hub 包）；这里只承载跨画布可见的
// 在线标记，带 TTL 防止进程异常退出后残留。
type PresenceRepository interface {
	// SetOnline 标记用户在线。
	SetOnline(ctx context.Context, coupleID, userID string) error

	// SetOffline 移除用户的在线标记。
	SetOffline(ctx context.Context, coupleID, userID string) error

	// PartnerOnline 查询配对中除 selfID 之外的成员是否在线。
	PartnerOnline(ctx context.Context, coupleID, selfID string) (bool, error)
}
