package model

import (
	"fmt"

	"gorm.io/gorm"
)

// Owner identifies whose cart is being touched: an authenticated user or an
// anonymous session. Exactly one of the two is set.
type Owner struct {
	userID    uint
	sessionID string
}

func UserOwner(userID uint) Owner {
	return Owner{userID: userID}
}

func SessionOwner(sessionID string) Owner {
	return Owner{sessionID: sessionID}
}

func (o Owner) IsUser() bool { return o.userID != 0 }

func (o Owner) UserID() uint { return o.userID }

func (o Owner) SessionID() string { return o.sessionID }

func (o Owner) Valid() bool {
	return (o.userID != 0) != (o.sessionID != "")
}

func (o Owner) String() string {
	if o.IsUser() {
		return fmt.Sprintf("user:%d", o.userID)
	}
	return "session:" + o.sessionID
}

// Scope restricts a cart_items query to this owner.
func (o Owner) Scope(db *gorm.DB) *gorm.DB {
	if o.IsUser() {
		return db.Where("cart_items.user_id = ?", o.userID)
	}
	return db.Where("cart_items.session_id = ?", o.sessionID)
}

// Assign sets the owner columns of a new cart line.
func (o Owner) Assign(item *CartItem) {
	item.UserID, item.SessionID = nil, nil
	if o.IsUser() {
		id := o.userID
		item.UserID = &id
		return
	}
	sid := o.sessionID
	item.SessionID = &sid
}

// ConflictColumn is the owner half of the cart line unique key.
func (o Owner) ConflictColumn() string {
	if o.IsUser() {
		return "user_id"
	}
	return "session_id"
}

// Principal is the authenticated caller.
type Principal struct {
	UserID uint
	Role   string
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
