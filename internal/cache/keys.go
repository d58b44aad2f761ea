package cache

import (
	"fmt"

	"github.com/google/uuid"
)

// SummaryGenKey holds a per-tenant generation counter. Bumping it on any
// expense write invalidates every cached summary for that tenant at once.
func SummaryGenKey(tenantID uuid.UUID) string {
	return fmt.Sprintf("summary:gen:%s", tenantID)
}

// SummaryKey caches one summarize result for a tenant at a generation.
func SummaryKey(tenantID uuid.UUID, gen int64, start, end, category string) string {
	return fmt.Sprintf("summary:%s:%d:%s:%s:%s", tenantID, gen, start, end, category)
}
