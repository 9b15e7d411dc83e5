package models

import "github.com/golang-jwt/jwt/v5"

// Application permissions
const (
	// Admin permissions
	PermissionReadAdmin  = "admin:read"
	PermissionWriteAdmin = "admin:write"

	// Settlement permissions
	PermissionCommissionRead  = "commission:read"
	PermissionCommissionWrite = "commission:write"
	PermissionPayoutRead      = "payout:read"
	PermissionPayoutWrite     = "payout:write"
	PermissionRefundRead      = "refund:read"
	PermissionRefundWrite     = "refund:write"
	PermissionAuditRead       = "audit:read"

	// User permissions
	PermissionChangePassword = "user:change-password"
)

type UserClaims struct {
	jwt.RegisteredClaims
	UserID       uint     `json:"user_id"`
	Email        string   `json:"email"`
	Role         string   `json:"role"`
	Permissions  []string `json:"permissions"`
	TokenVersion int      `json:"token_version"`
}

// HasPermission checks if the claims include a specific permission
func (c *UserClaims) HasPermission(permission string) bool {
	for _, p := range c.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// GetDefaultPermissions returns default permissions based on role
func GetDefaultPermissions(role string) []string {
	switch role {
	case "admin":
		return []string{
			PermissionReadAdmin,
			PermissionWriteAdmin,
			PermissionCommissionRead,
			PermissionCommissionWrite,
			PermissionPayoutRead,
			PermissionPayoutWrite,
			PermissionRefundRead,
			PermissionRefundWrite,
			PermissionAuditRead,
			PermissionChangePassword,
		}
	case "finance":
		return []string{
			PermissionCommissionRead,
			PermissionPayoutRead,
			PermissionPayoutWrite,
			PermissionRefundRead,
			PermissionRefundWrite,
			PermissionChangePassword,
		}
	default:
		return []string{
			PermissionChangePassword,
		}
	}
}
