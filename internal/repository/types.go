package repository

import "time"

// OrderListFilter 订单列表过滤条件
type OrderListFilter struct {
	Status        string
	OrderNo       string
	CustomerEmail string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
	Page          int
	PageSize      int
}

// ProductListFilter 商品列表过滤条件
type ProductListFilter struct {
	Search     string
	OnlyActive bool
	Page       int
	PageSize   int
}
