// AngelaMos | 2026
// guard.go

package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/carterperez-dev/medassist/internal/core"
	"github.com/carterperez-dev/medassist/internal/user"
)

// Guard authorizes the acting user of an admin operation. It never writes.
type Guard struct {
	db core.Store
}

func NewGuard(db core.Store) *Guard {
	return &Guard{db: db}
}

// Require returns the acting admin. A missing or unknown actor is
// unauthorized; a deleted or non-admin actor is forbidden.
func (g *Guard) Require(ctx context.Context, rawActorID string) (*user.User, error) {
	raw := strings.TrimSpace(rawActorID)
	if raw == "" {
		return nil, core.UnauthorizedError("userId is required")
	}

	id, err := core.ParseID(raw)
	if err != nil {
		return nil, core.UnauthorizedError("unknown user")
	}

	actor, err := user.NewRepository(g.db).GetByID(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		return nil, core.UnauthorizedError("unknown user")
	}
	if err != nil {
		return nil, fmt.Errorf("admin guard: %w", err)
	}

	if actor.IsDeleted() || !actor.IsAdmin {
		return nil, core.ForbiddenError("admin access required")
	}

	return actor, nil
}
