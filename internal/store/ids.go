package store

import (
	"strings"

	"github.com/google/uuid"
)

const itemIDPrefix = "item-"

// newItemID returns a short, human-typeable item id such as "item-3f9a1c2b".
func newItemID() string {
	return itemIDPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
