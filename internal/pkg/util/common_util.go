package util

import (
	"BrainShelf/internal/pkg/consts"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GetPagination 解析 page / page_size 查询参数，非法值回落到默认值
func GetPagination(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = consts.DefaultPage
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if err != nil || pageSize < 1 {
		pageSize = consts.DefaultPageSize
	}
	if pageSize > consts.MaxPageSize {
		pageSize = consts.MaxPageSize
	}
	return page, pageSize
}

// CeilDiv 向上取整除法，用于计算总页数
func CeilDiv(total int64, pageSize int) int64 {
	if pageSize <= 0 {
		return 0
	}
	return (total + int64(pageSize) - 1) / int64(pageSize)
}
