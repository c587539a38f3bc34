package admin

import "github.com/stablefront/internal/provider"

// Handler 商户管理接口处理器入口
// 说明：该处理器仅用于商户端 API。
type Handler struct {
	*provider.Container
}

// New 创建商户端处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
