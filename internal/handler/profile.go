package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parkseva/internal/middleware"
	"github.com/iliyamo/parkseva/internal/repository"
)

// ProfileHandler serves the signed-in user's own profile.
type ProfileHandler struct {
	Profiles ProfileStore
}

func NewProfileHandler(p ProfileStore) *ProfileHandler {
	if p == nil {
		panic("nil dependency passed to NewProfileHandler")
	}
	return &ProfileHandler{Profiles: p}
}

// updateProfileReq holds the editable fields; absent fields are left
// unchanged and empty strings clear the column.
type updateProfileReq struct {
	FullName        *string `json:"full_name" validate:"omitempty,max=120"`
	Phone           *string `json:"phone" validate:"omitempty,max=20"`
	VehiclePlate    *string `json:"vehicle_plate" validate:"omitempty,max=20"`
	PreferredEVType *string `json:"preferred_ev_type" validate:"omitempty,ev_type"`
	PreferredSize   *string `json:"preferred_size" validate:"omitempty,vehicle_size"`
	AvatarURL       *string `json:"avatar_url" validate:"omitempty,url"`
}

// Get returns the profile of the authenticated user.
func (h *ProfileHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Profiles.GetByID(ctx, middleware.UserID(c))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load profile failed"})
	}
	return c.JSON(http.StatusOK, p)
}

// Update patches the profile of the authenticated user.
func (h *ProfileHandler) Update(c echo.Context) error {
	var req updateProfileReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Profiles.Update(ctx, middleware.UserID(c), repository.ProfileUpdate{
		FullName:        req.FullName,
		Phone:           req.Phone,
		VehiclePlate:    req.VehiclePlate,
		PreferredEVType: req.PreferredEVType,
		PreferredSize:   req.PreferredSize,
		AvatarURL:       req.AvatarURL,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update profile failed"})
	}
	return c.JSON(http.StatusOK, p)
}
