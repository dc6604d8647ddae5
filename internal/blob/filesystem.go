package blob

import (
	"feedlot/internal/infra/blob/fs"
)

// NewFilesystem constructs a filesystem-backed archive Store rooted at the
// provided path. Returns the interface so call sites stay backend-agnostic.
func NewFilesystem(root string) (Store, error) {
	return fs.New(root)
}
