// AngelaMos | 2026
// errors.go

package admin

import (
	"errors"
)

var (
	ErrSelfAction       = errors.New("admins cannot delete their own account")
	ErrProtectedAccount = errors.New("the primary admin account cannot be deleted")
)
