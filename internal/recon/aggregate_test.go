package recon

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"shareaudit/internal/domain"
)

func TestAggregate(t *testing.T) {
	results := []domain.HostResult{
		{Host: "b", Records: []domain.PermissionRecord{{Path: `\\b\X`, Principal: "Z"}, {Path: `\\b\X`, Principal: "A"}}},
		{Host: "c"},
		{Host: "a", Records: []domain.PermissionRecord{{Path: `\\a\Y`, Principal: "M"}}},
	}

	flat := Aggregate(results, false)
	assert.Equal(t, []string{"Z", "A", "M"}, principals(flat), "host order kept")

	sorted := Aggregate(results, true)
	assert.Equal(t, []string{"M", "A", "Z"}, principals(sorted))
	assert.Equal(t, `\\a\Y`, sorted[0].Path)

	assert.Empty(t, Aggregate(nil, true))
}

func principals(records []domain.PermissionRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Principal
	}
	return out
}
