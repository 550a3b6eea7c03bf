// Package permission implements the Permission Engine (spec §4.3) as a
// thin, total-function wrapper over entity.User.HasPermission — the
// matching rules live in entity because they operate purely on the data
// already carried by User, with no service-level dependency.
package permission

import "github.com/elnvault/eln-core/internal/core/entity"

// Check reports whether user satisfies the required "action:resource"
// permission. It never returns an error: a permission check is total.
func Check(user *entity.User, required string) bool {
	if user == nil {
		return false
	}
	return user.HasPermission(required)
}
