package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/parkseva/internal/model"
	"github.com/iliyamo/parkseva/internal/utils"
)

// ProfileRepo stores accounts in the profiles table.
type ProfileRepo struct{ DB *sql.DB }

func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{DB: db} }

// ProfileUpdate carries the editable profile fields.  Nil pointers leave
// the column untouched.
type ProfileUpdate struct {
	FullName        *string
	Phone           *string
	VehiclePlate    *string
	PreferredEVType *string
	PreferredSize   *string
	AvatarURL       *string
}

// Create hashes the password, inserts the profile and returns its new id.
func (r *ProfileRepo) Create(ctx context.Context, email, password, role string, fullName *string, cost int) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO profiles (id, email, password_hash, role, full_name) VALUES (?,?,?,?,?)",
		id, email, hash, role, fullName)
	if err != nil {
		if IsDuplicate(err) {
			return "", ErrEmailExists
		}
		return "", err
	}
	return id, nil
}

const profileColumns = `id, email, password_hash, full_name, phone, role, vehicle_plate,
	preferred_ev_type, preferred_size, avatar_url, created_at, updated_at`

// GetByEmail fetches a profile by normalized email.  A missing profile
// yields sql.ErrNoRows.
func (r *ProfileRepo) GetByEmail(ctx context.Context, email string) (model.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scan(r.DB.QueryRowContext(ctx, "SELECT "+profileColumns+" FROM profiles WHERE email=? LIMIT 1", email))
}

// GetByID fetches a profile by id.  A missing profile yields sql.ErrNoRows.
func (r *ProfileRepo) GetByID(ctx context.Context, id string) (model.Profile, error) {
	return r.scan(r.DB.QueryRowContext(ctx, "SELECT "+profileColumns+" FROM profiles WHERE id=? LIMIT 1", id))
}

// Update applies the non-nil fields of u and returns the fresh profile.
func (r *ProfileRepo) Update(ctx context.Context, id string, u ProfileUpdate) (model.Profile, error) {
	var sets []string
	var args []any
	add := func(col string, v *string) {
		if v != nil {
			sets = append(sets, col+"=?")
			args = append(args, nullIfEmpty(*v))
		}
	}
	add("full_name", u.FullName)
	add("phone", u.Phone)
	add("vehicle_plate", u.VehiclePlate)
	add("preferred_ev_type", u.PreferredEVType)
	add("preferred_size", u.PreferredSize)
	add("avatar_url", u.AvatarURL)
	if len(sets) > 0 {
		args = append(args, id)
		if _, err := r.DB.ExecContext(ctx, "UPDATE profiles SET "+strings.Join(sets, ", ")+" WHERE id=?", args...); err != nil {
			return model.Profile{}, err
		}
	}
	p, err := r.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrNotFound
	}
	return p, err
}

// SetPassword replaces the password hash of a profile.
func (r *ProfileRepo) SetPassword(ctx context.Context, id, password string, cost int) error {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, "UPDATE profiles SET password_hash=? WHERE id=?", hash, id)
	return err
}

func (r *ProfileRepo) scan(row *sql.Row) (model.Profile, error) {
	var p model.Profile
	var ev, size sql.NullString
	err := row.Scan(&p.ID, &p.Email, &p.PasswordHash, &p.FullName, &p.Phone, &p.Role, &p.VehiclePlate,
		&ev, &size, &p.AvatarURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return p, err
	}
	if ev.Valid {
		t := model.EVType(ev.String)
		p.PreferredEVType = &t
	}
	if size.Valid {
		s := model.VehicleSize(size.String)
		p.PreferredSize = &s
	}
	return p, nil
}

func nullIfEmpty(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
