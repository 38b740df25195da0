package scenario

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vertti/storecheck/pkg/store"
)

// fmtDoc renders a document as "key=value" pairs in key order.
func fmtDoc(doc store.Document) string {
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, doc[k]))
	}
	return strings.Join(parts, " ")
}
