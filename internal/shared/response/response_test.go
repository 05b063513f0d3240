package response_test

import (
	"testing"

	"go-leave/internal/shared/response"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	t.Run("middle page", func(t *testing.T) {
		got, meta := response.Paginate(items, 2, 2)

		assert.Equal(t, []int{3, 4}, got)
		assert.Equal(t, int64(5), meta.Total)
		assert.Equal(t, 3, meta.TotalPages)
		assert.Equal(t, 2, meta.Page)
	})

	t.Run("defaults for invalid input", func(t *testing.T) {
		got, meta := response.Paginate(items, 0, 0)

		assert.Len(t, got, 5)
		assert.Equal(t, 1, meta.Page)
		assert.Equal(t, 10, meta.PageSize)
	})

	t.Run("page past the end is empty", func(t *testing.T) {
		got, _ := response.Paginate(items, 9, 2)
		assert.Empty(t, got)
	})
}
