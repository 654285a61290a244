package handler

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/libvisit-api/internal/models"
)

func TestPaginate(t *testing.T) {
	visitors := make([]models.Visitor, 5)
	for i := range visitors {
		visitors[i].ID = int64(5 - i)
	}

	cases := []struct {
		name     string
		page     int
		size     int
		wantIDs  []int64
		wantPage *models.Pagination
	}{
		{name: "no page", page: 0, size: 2, wantIDs: []int64{5, 4, 3, 2, 1}},
		{name: "first", page: 1, size: 2, wantIDs: []int64{5, 4}, wantPage: &models.Pagination{Page: 1, PageSize: 2, TotalCount: 5}},
		{name: "last partial", page: 3, size: 2, wantIDs: []int64{1}, wantPage: &models.Pagination{Page: 3, PageSize: 2, TotalCount: 5}},
		{name: "past the end", page: 4, size: 2, wantIDs: []int64{}, wantPage: &models.Pagination{Page: 4, PageSize: 2, TotalCount: 5}},
		{name: "default size", page: 1, size: 0, wantIDs: []int64{5, 4, 3, 2, 1}, wantPage: &models.Pagination{Page: 1, PageSize: defaultPageSize, TotalCount: 5}},
		{name: "huge page", page: math.MaxInt, size: maxPageSize, wantIDs: []int64{}, wantPage: &models.Pagination{Page: math.MaxInt, PageSize: maxPageSize, TotalCount: 5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, pagination := paginate(visitors, tc.page, tc.size)
			ids := make([]int64, 0, len(got))
			for _, v := range got {
				ids = append(ids, v.ID)
			}
			assert.Equal(t, tc.wantIDs, ids)
			assert.Equal(t, tc.wantPage, pagination)
		})
	}
}
