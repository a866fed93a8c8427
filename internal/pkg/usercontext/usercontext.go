package usercontext

import "github.com/gofiber/fiber/v2"

// ContextKey is the fiber Locals key holding the request's user context.
const ContextKey = "USER_CONTEXT"

// UserContext represents the authenticated identity of a request.
type UserContext struct {
	UserID     uint   `json:"user_id"`
	Subject    string `json:"subject"`
	Email      string `json:"email"`
	IsLoggedIn bool   `json:"is_logged_in"`
	IsAdmin    bool   `json:"is_admin"`
}

// Set stores the user context on the request.
func Set(c *fiber.Ctx, uc UserContext) {
	c.Locals(ContextKey, uc)
}

// Get retrieves the user context from the request, or an anonymous context
// if none is set.
func Get(c *fiber.Ctx) UserContext {
	if ctx := c.Locals(ContextKey); ctx != nil {
		if uc, ok := ctx.(UserContext); ok {
			return uc
		}
	}
	return UserContext{}
}

// IsLoggedIn checks if the current request carries a verified identity.
func IsLoggedIn(c *fiber.Ctx) bool {
	return Get(c).IsLoggedIn
}

// IsAdmin checks if the current user is an admin.
func IsAdmin(c *fiber.Ctx) bool {
	return Get(c).IsAdmin
}

// GetUserID returns the current user's ID, or 0 if not logged in.
func GetUserID(c *fiber.Ctx) uint {
	return Get(c).UserID
}
