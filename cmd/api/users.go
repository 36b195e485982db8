package main

import (
	"net/http"

	"welp/internal/store"
)

// UserProfileResponse bundles the account with its subscription, when the
// subscription can be read.
type UserProfileResponse struct {
	*store.User
	Subscription any `json:"subscription,omitempty"`
}

// getCurrentUserHandler godoc
//
//	@Summary		Get my profile
//	@Description	Returns the authenticated user's profile and subscription status
//	@Tags			users
//	@Produce		json
//	@Success		200	{object}	UserProfileResponse			"Profile"
//	@Failure		500	{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/users/me [get]
func (app *application) getCurrentUserHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	resp := UserProfileResponse{User: user}

	// Billing being down must not make the profile unreadable.
	sub, err := app.access.GetSubscription(r.Context(), user.ID)
	if err != nil {
		app.logger.Errorw("error reading subscription", "user_id", user.ID, "error", err)
	} else if sub != nil {
		resp.Subscription = sub
	}

	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

type UpdateUserPayload struct {
	FirstName    *string `json:"first_name" validate:"omitempty,max=50"`
	LastName     *string `json:"last_name" validate:"omitempty,max=50"`
	BusinessName *string `json:"business_name" validate:"omitempty,max=120"`
	Phone        *string `json:"phone" validate:"omitempty,usphone"`
	Address      *string `json:"address" validate:"omitempty,max=255"`
	City         *string `json:"city" validate:"omitempty,max=100"`
	State        *string `json:"state" validate:"omitempty,max=50"`
	Zipcode      *string `json:"zipcode" validate:"omitempty,max=20"`
}

// updateUserHandler godoc
//
//	@Summary		Update my profile
//	@Description	Updates the provided profile fields. Contact changes feed the matching feed on next login.
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		UpdateUserPayload			true	"Fields to update"
//	@Success		200		{object}	UserProfileResponse			"Updated profile"
//	@Failure		400		{object}	ErrorBadRequestResponse		"Bad request"
//	@Failure		500		{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/users [patch]
func (app *application) updateUserHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	var payload UpdateUserPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	updates := map[string]interface{}{}
	if payload.FirstName != nil {
		updates["first_name"] = *payload.FirstName
	}
	if payload.LastName != nil {
		updates["last_name"] = *payload.LastName
	}
	if payload.BusinessName != nil {
		updates["business_name"] = *payload.BusinessName
	}
	if payload.Phone != nil {
		updates["phone"] = *payload.Phone
	}
	if payload.Address != nil {
		updates["address"] = *payload.Address
	}
	if payload.City != nil {
		updates["city"] = *payload.City
	}
	if payload.State != nil {
		updates["state"] = *payload.State
	}
	if payload.Zipcode != nil {
		updates["zipcode"] = *payload.Zipcode
	}

	ctx := r.Context()

	if err := app.store.Users.UpdateUser(ctx, user.ID, updates); err != nil {
		switch err {
		case store.ErrNotFound:
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	updated, err := app.store.Users.GetByID(ctx, user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	// Warm the geocode cache for the new address so the first feed load
	// after this change does not wait on the lookup.
	if payload.Address != nil && *payload.Address != "" {
		go app.warmGeocodeCache(*payload.Address)
	}

	resp := UserProfileResponse{User: updated}

	sub, err := app.access.GetSubscription(ctx, user.ID)
	if err != nil {
		app.logger.Errorw("error reading subscription", "user_id", user.ID, "error", err)
	} else if sub != nil {
		resp.Subscription = sub
	}

	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

// uploadAvatarHandler godoc
//
//	@Summary		Upload profile picture
//	@Description	Uploads the user's avatar (multipart field "avatar")
//	@Tags			users
//	@Accept			multipart/form-data
//	@Produce		json
//	@Success		200	{object}	map[string]string		"Avatar URL"
//	@Failure		400	{object}	ErrorBadRequestResponse	"Bad request"
//	@Security		ApiKeyAuth
//	@Router			/users/avatar [post]
func (app *application) uploadAvatarHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	file, _, err := r.FormFile("avatar")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	url, err := app.uploadAvatar(file, user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Users.SetAvatar(r.Context(), user.ID, url); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]string{"avatar_url": url}); err != nil {
		app.internalServerError(w, r, err)
	}
}
