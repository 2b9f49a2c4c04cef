package todo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckListContract(t *testing.T) {
	t.Run("conforming payload", func(t *testing.T) {
		report, err := CheckListContract([]byte(`[{"id":"1","text":"a"},{"todo_id":2,"title":"b"},{"_id":"3","task":"c"}]`))
		require.NoError(t, err)
		assert.True(t, report.Valid)
		assert.Empty(t, report.Issues)
	})

	t.Run("empty array", func(t *testing.T) {
		report, err := CheckListContract([]byte(`[]`))
		require.NoError(t, err)
		assert.True(t, report.Valid)
	})

	t.Run("object instead of array", func(t *testing.T) {
		report, err := CheckListContract([]byte(`{"todos":[]}`))
		require.NoError(t, err)
		assert.False(t, report.Valid)
		require.NotEmpty(t, report.Issues)
	})

	t.Run("missing id is reported with a path", func(t *testing.T) {
		report, err := CheckListContract([]byte(`[{"id":"1","text":"a"},{"text":"no id"}]`))
		require.NoError(t, err)
		assert.False(t, report.Valid)

		var paths []string
		for _, issue := range report.Issues {
			paths = append(paths, issue.Path)
		}
		assert.Contains(t, paths, "[1]")
	})

	t.Run("numeric ids conform", func(t *testing.T) {
		report, err := CheckListContract([]byte(`[{"id":1.0,"text":"a"},{"id":12345678901234567890,"title":"b"}]`))
		require.NoError(t, err)
		assert.True(t, report.Valid, report.Issues)
	})

	t.Run("not json", func(t *testing.T) {
		report, err := CheckListContract([]byte(`<html></html>`))
		require.NoError(t, err)
		assert.False(t, report.Valid)
		require.Len(t, report.Issues, 1)
		assert.True(t, strings.HasPrefix(report.Issues[0].String(), "body is not JSON"))
	})
}
