package public

import "github.com/stablefront/internal/provider"

// Handler 店面公开接口处理器入口
// 说明：该处理器仅用于买家侧 API 与支付回调。
type Handler struct {
	*provider.Container
}

// New 创建店面处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
