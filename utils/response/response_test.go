package response

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculatePagination(t *testing.T) {
	meta := CalculatePagination(2, 10, 35)
	assert.Equal(t, PaginationMeta{CurrentPage: 2, PerPage: 10, Total: 35, TotalPages: 4}, meta)

	meta = CalculatePagination(0, 500, 0)
	assert.Equal(t, 1, meta.CurrentPage)
	assert.Equal(t, 100, meta.PerPage)
	assert.Equal(t, 0, meta.TotalPages)
}
