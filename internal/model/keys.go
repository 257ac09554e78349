package model

import "fmt"

const (
	CatalogCachePattern = "catalog:*"
	CatalogTreeCacheKey = "catalog:tree"
	CatalogLockKey      = "lock:catalog"
)

func CategoryDishesCacheKey(categoryID string) string {
	return fmt.Sprintf("catalog:dishes:%s", categoryID)
}
