package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Catalog page sizes mirror the storefront layout: a 3x3 grid on listing
// pages, 3x2 on the featured homepage.
const (
	catalogPageSize  = 9
	featuredPageSize = 6
)

// pageParams reads the page query parameter; pages are 1-based.
func pageParams(c *fiber.Ctx, pageSize int) (page, offset int) {
	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	return page, (page - 1) * pageSize
}

// paginated applies count+limit/offset to a query and returns the total.
func paginated(query *gorm.DB, offset, pageSize int, out interface{}) (int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	err := query.Offset(offset).Limit(pageSize).Find(out).Error
	return total, err
}
