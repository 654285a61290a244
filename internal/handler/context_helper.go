package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/noah-isme/libvisit-api/internal/models"
	appErrors "github.com/noah-isme/libvisit-api/pkg/errors"
)

func parseIDParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, name+" must be a positive integer")
	}
	return id, nil
}

func bindError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// paginate slices visitors when page is set; page 0 returns everything without pagination.
func paginate(visitors []models.Visitor, page, pageSize int) ([]models.Visitor, *models.Pagination) {
	if page <= 0 {
		return visitors, nil
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	pageSize = lo.Clamp(pageSize, 1, maxPageSize)
	total := len(visitors)
	start := total
	if page-1 <= total/pageSize {
		start = lo.Clamp((page-1)*pageSize, 0, total)
	}
	end := lo.Clamp(start+pageSize, 0, total)
	return visitors[start:end], &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}
}
