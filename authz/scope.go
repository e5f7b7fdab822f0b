package authz

import "gorm.io/gorm"

// Scope builders translate the actor's role into the mandatory row filter
// for a collection. Handlers AND their own filters onto the returned
// query, so caller-supplied parameters can narrow but never widen the
// scope. Admin passes through unfiltered; a role with no access at all
// must be rejected via CanAccess before building a query.

// ScopeRestaurants limits the restaurants collection to rows the actor
// may see.
func ScopeRestaurants(db *gorm.DB, actor Actor) *gorm.DB {
	switch actor.Role {
	case RoleAdmin:
		return db
	case RoleOwner:
		return db.Where("restaurants.owner_user_id = ?", actor.ID)
	default:
		return db.Where("1 = 0")
	}
}

// ScopeStaff limits the staff collection: owners see staff of restaurants
// they own, workers see only their own record.
func ScopeStaff(db *gorm.DB, actor Actor) *gorm.DB {
	switch actor.Role {
	case RoleAdmin:
		return db
	case RoleOwner:
		return db.
			Joins("JOIN restaurants ON restaurants.id = staff_members.restaurant_id").
			Where("restaurants.owner_user_id = ?", actor.ID)
	case RoleWorker:
		return db.Where("staff_members.user_id = ?", actor.ID)
	default:
		return db.Where("1 = 0")
	}
}

// ScopeTips limits the tips collection transitively through
// tip → staff member → restaurant. The join on staff_members is applied
// for every role so callers can filter on joined columns uniformly.
func ScopeTips(db *gorm.DB, actor Actor) *gorm.DB {
	scoped := db.
		Joins("JOIN staff_members ON staff_members.id = tips.staff_member_id").
		Joins("JOIN restaurants ON restaurants.id = staff_members.restaurant_id")

	switch actor.Role {
	case RoleAdmin:
		return scoped
	case RoleOwner:
		return scoped.Where("restaurants.owner_user_id = ?", actor.ID)
	case RoleWorker:
		return scoped.Where("staff_members.user_id = ?", actor.ID)
	default:
		return db.Where("1 = 0")
	}
}

// ScopeReviews limits the reviews collection the same way as ScopeTips.
func ScopeReviews(db *gorm.DB, actor Actor) *gorm.DB {
	scoped := db.
		Joins("JOIN staff_members ON staff_members.id = reviews.staff_member_id").
		Joins("JOIN restaurants ON restaurants.id = staff_members.restaurant_id")

	switch actor.Role {
	case RoleAdmin:
		return scoped
	case RoleOwner:
		return scoped.Where("restaurants.owner_user_id = ?", actor.ID)
	default:
		return db.Where("1 = 0")
	}
}
