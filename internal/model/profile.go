package model

import "time"

// Role values stored in profiles.role.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
	RoleOwner = "owner"
)

// Profile represents an account as stored in the `profiles` table.  It
// carries the credentials used by the auth endpoints and the contact
// fields the notification dispatcher reads.
//
// Fields:
//  ID              – primary key (UUID string).
//  Email           – unique email address.
//  PasswordHash    – bcrypt hashed password.
//  FullName        – display name.
//  Phone           – E.164 phone used for booking SMS.
//  Role            – user, admin or owner.
//  VehiclePlate    – default plate offered on the booking form.
//  PreferredEVType – charging preference.
//  PreferredSize   – vehicle size preference.
//  AvatarURL       – profile picture.
type Profile struct {
	ID              string       `json:"id"`                          // profiles.id
	Email           string       `json:"email"`                       // profiles.email
	PasswordHash    string       `json:"-"`                           // profiles.password_hash
	FullName        *string      `json:"full_name"`                   // profiles.full_name
	Phone           *string      `json:"phone"`                       // profiles.phone
	Role            string       `json:"role"`                        // profiles.role
	VehiclePlate    *string      `json:"vehicle_plate"`               // profiles.vehicle_plate
	PreferredEVType *EVType      `json:"preferred_ev_type,omitempty"` // profiles.preferred_ev_type
	PreferredSize   *VehicleSize `json:"preferred_size,omitempty"`    // profiles.preferred_size
	AvatarURL       *string      `json:"avatar_url"`                  // profiles.avatar_url
	CreatedAt       time.Time    `json:"created_at"`                  // profiles.created_at
	UpdatedAt       time.Time    `json:"updated_at"`                  // profiles.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA-256 hash of the token value is stored.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    string     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
