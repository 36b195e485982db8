package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"welp/internal/domain/accesscontrol"
	"welp/internal/identity"
	"welp/internal/notifications"
	"welp/internal/params"
	"welp/internal/store"

	"github.com/go-chi/chi/v5"
)

type CreateReviewPayload struct {
	CustomerName    string `json:"customer_name" validate:"required,max=120"`
	CustomerPhone   string `json:"customer_phone" validate:"omitempty,usphone"`
	CustomerAddress string `json:"customer_address" validate:"omitempty,max=255"`
	Rating          int    `json:"rating" validate:"required,min=1,max=5"`
	Content         string `json:"content" validate:"required,max=5000"`
	IsAnonymous     bool   `json:"is_anonymous"`
}

// ReviewResponse is a review plus the resolved customer identity and the
// viewer's access level.
type ReviewResponse struct {
	*store.Review
	Customer   identity.Resolved `json:"customer"`
	FullAccess bool              `json:"full_access"`
}

// createReviewHandler godoc
//
//	@Summary		Create a review of a customer
//	@Description	A business writes a review about a customer they served
//	@Tags			reviews
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateReviewPayload			true	"Review details"
//	@Success		201		{object}	store.Review				"Review created"
//	@Failure		400		{object}	ErrorBadRequestResponse		"Bad request"
//	@Failure		500		{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/reviews [post]
func (app *application) createReviewHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	var payload CreateReviewPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	review := &store.Review{
		BusinessID:   user.ID,
		CustomerName: payload.CustomerName,
		Rating:       payload.Rating,
		Content:      payload.Content,
		IsAnonymous:  payload.IsAnonymous,
	}
	if payload.CustomerPhone != "" {
		review.CustomerPhone = store.NullString{Value: payload.CustomerPhone, Valid: true}
	}
	if payload.CustomerAddress != "" {
		review.CustomerAddress = store.NullString{Value: payload.CustomerAddress, Valid: true}
	}

	if err := app.store.Reviews.Create(r.Context(), review); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	// If the phone belongs to a registered customer, tip them off.
	if review.CustomerPhone.Valid {
		go app.notifyPhoneMatch(review.ID, review.CustomerPhone.Value, user.FullName())
	}

	if err := app.jsonResponse(w, http.StatusCreated, review); err != nil {
		app.internalServerError(w, r, err)
	}
}

// notifyPhoneMatch pushes a heads-up to the customer whose phone number a
// fresh review names. No account on that number means nothing to do.
func (app *application) notifyPhoneMatch(reviewID int64, phone, businessName string) {
	ctx, cancel := detachedContext()
	defer cancel()

	customer, err := app.store.Users.GetByPhone(ctx, phone)
	if err != nil {
		if err != store.ErrNotFound {
			app.logger.Warnw("phone lookup for match notification failed", "error", err)
		}
		return
	}
	if customer.Type != store.UserCustomer {
		return
	}

	if err := notifications.SendMatchNotification(ctx, app.push, &app.store, customer.ID, reviewID, businessName); err != nil {
		app.logger.Warnw("match push failed", "review_id", reviewID, "error", err)
	}
}

// getReviewHandler godoc
//
//	@Summary		Get a review
//	@Description	Returns a review with the resolved customer identity. Identifying fields are redacted unless the viewer has full access.
//	@Tags			reviews
//	@Produce		json
//	@Param			reviewID	path		int							true	"Review ID"
//	@Success		200			{object}	ReviewResponse				"Review"
//	@Failure		404			{object}	error						"Not found"
//	@Failure		500			{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/reviews/{reviewID} [get]
func (app *application) getReviewHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	reviewID, err := strconv.ParseInt(chi.URLParam(r, "reviewID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid review ID"))
		return
	}

	ctx := r.Context()

	review, err := app.store.Reviews.GetByID(ctx, reviewID)
	if err != nil {
		switch err {
		case store.ErrNotFound:
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	resp, err := app.buildReviewResponse(r, user, review)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

// buildReviewResponse resolves the customer identity and applies the
// access gate. The authoring business and the review's subject always see
// everything; other viewers need subscription, admin role, or a grant.
func (app *application) buildReviewResponse(r *http.Request, user *store.User, review *store.Review) (*ReviewResponse, error) {
	ctx := r.Context()

	isOwner := review.BusinessID == user.ID
	isSubject := review.CustomerID != nil && *review.CustomerID == user.ID

	fullAccess := isOwner || isSubject
	if !fullAccess {
		var err error
		fullAccess, err = app.access.HasFullAccess(ctx, user.ID, review.ID, accesscontrol.RoleName(user.Type))
		if err != nil {
			return nil, err
		}
	}

	inline := identity.Source{
		Name:    review.CustomerName,
		Phone:   review.CustomerPhone.Value,
		Address: review.CustomerAddress.Value,
	}

	var resolved identity.Resolved
	if review.CustomerID != nil {
		subject, err := app.store.Users.GetByID(ctx, *review.CustomerID)
		if err != nil && err != store.ErrNotFound {
			return nil, err
		}
		if subject != nil {
			profile := identity.Source{
				Name:    subject.FullName(),
				Phone:   subject.Phone,
				Address: subject.Address.Value,
				City:    subject.City.Value,
				State:   subject.State.Value,
				Zip:     subject.Zipcode.Value,
				Avatar:  subject.AvatarURL.Value,
			}
			resolved = identity.Resolve(true, profile, inline)
		} else {
			resolved = identity.Resolve(false, inline)
		}
	} else {
		resolved = identity.Resolve(false, inline)
	}

	if !fullAccess {
		resolved = redactIdentity(resolved)
		review.CustomerPhone = store.NullString{}
		review.CustomerAddress = store.NullString{}
	}

	// An anonymous review must not out its author. Only the authoring
	// business (and admins) ever see who wrote it.
	if review.IsAnonymous && !isOwner && user.Type != store.UserAdmin {
		review.BusinessID = 0
	}

	return &ReviewResponse{Review: review, Customer: resolved, FullAccess: fullAccess}, nil
}

// redactIdentity keeps just enough for a teaser card: first name plus
// last initial, no contact fields.
func redactIdentity(res identity.Resolved) identity.Resolved {
	return identity.Resolved{
		Name:     maskName(res.Name),
		City:     res.City,
		State:    res.State,
		Verified: res.Verified,
	}
}

func maskName(name string) string {
	parts := strings.Fields(name)
	if len(parts) < 2 {
		return name
	}
	return parts[0] + " " + string([]rune(parts[1])[0]) + "."
}

// listBusinessReviewsHandler godoc
//
//	@Summary		List my reviews
//	@Description	Lists every live review written by the authenticated business
//	@Tags			reviews
//	@Produce		json
//	@Success		200	{array}		store.Review				"Reviews"
//	@Failure		500	{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/reviews/mine [get]
func (app *application) listBusinessReviewsHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	p := params.ParsePagination(r.URL.Query())

	reviews, total, err := app.store.Reviews.ListByBusiness(r.Context(), user.ID, p.Limit, p.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	p.ComputeMeta(total)

	response := map[string]any{
		"reviews":    reviews,
		"pagination": p,
	}

	if err := app.jsonResponse(w, http.StatusOK, response); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteReviewHandler godoc
//
//	@Summary		Delete a review
//	@Description	Soft-deletes a review. Claims and conversation history stay in place.
//	@Tags			reviews
//	@Param			reviewID	path	int	true	"Review ID"
//	@Success		204
//	@Failure		404	{object}	error	"Not found"
//	@Failure		500	{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/reviews/{reviewID} [delete]
func (app *application) deleteReviewHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	reviewID, err := strconv.ParseInt(chi.URLParam(r, "reviewID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid review ID"))
		return
	}

	if err := app.store.Reviews.SoftDelete(r.Context(), reviewID, user.ID); err != nil {
		switch err {
		case store.ErrNotFound:
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// createShareCodeHandler godoc
//
//	@Summary		Create a share link for a review
//	@Description	Generates an opaque share code so the review can be shown outside the app
//	@Tags			reviews
//	@Produce		json
//	@Param			reviewID	path		int					true	"Review ID"
//	@Success		200			{object}	map[string]string	"Share code and URL"
//	@Failure		404			{object}	error				"Not found"
//	@Security		ApiKeyAuth
//	@Router			/reviews/{reviewID}/share [post]
func (app *application) createShareCodeHandler(w http.ResponseWriter, r *http.Request) {
	reviewID, err := strconv.ParseInt(chi.URLParam(r, "reviewID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid review ID"))
		return
	}

	ctx := r.Context()

	review, err := app.store.Reviews.GetByID(ctx, reviewID)
	if err != nil {
		switch err {
		case store.ErrNotFound:
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	code := review.ShareCode.Value
	if !review.ShareCode.Valid {
		code, err = app.shareCodes.Encode(reviewID)
		if err != nil {
			app.internalServerError(w, r, err)
			return
		}
		if err := app.store.Reviews.SetShareCode(ctx, reviewID, code); err != nil {
			app.internalServerError(w, r, err)
			return
		}
	}

	response := map[string]string{
		"share_code": code,
		"share_url":  app.config.frontendURL + "/r/" + code,
	}

	if err := app.jsonResponse(w, http.StatusOK, response); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getSharedReviewHandler godoc
//
//	@Summary		Get a shared review
//	@Description	Public view of a review via its share code. Identifying fields are always redacted.
//	@Tags			reviews
//	@Produce		json
//	@Param			shareCode	path		string			true	"Share code"
//	@Success		200			{object}	ReviewResponse	"Review"
//	@Failure		404			{object}	error			"Not found"
//	@Router			/reviews/shared/{shareCode} [get]
func (app *application) getSharedReviewHandler(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "shareCode")

	if _, err := app.shareCodes.Decode(code); err != nil {
		app.notFoundResponse(w, r, err)
		return
	}

	review, err := app.store.Reviews.GetByShareCode(r.Context(), code)
	if err != nil {
		switch err {
		case store.ErrNotFound:
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	resolved := redactIdentity(identity.Resolve(review.CustomerID != nil, identity.Source{
		Name: review.CustomerName,
	}))
	review.CustomerPhone = store.NullString{}
	review.CustomerAddress = store.NullString{}
	if review.IsAnonymous {
		review.BusinessID = 0
	}

	resp := &ReviewResponse{Review: review, Customer: resolved, FullAccess: false}

	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

// uploadReviewPhotoHandler godoc
//
//	@Summary		Upload a review photo
//	@Description	Uploads a photo for a review (multipart field "photo") and appends its URL
//	@Tags			reviews
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			reviewID	path		int					true	"Review ID"
//	@Param			photo		formData	file				true	"Photo file"
//	@Success		200			{object}	map[string]string	"Photo URL"
//	@Failure		400			{object}	ErrorBadRequestResponse	"Bad request"
//	@Security		ApiKeyAuth
//	@Router			/reviews/{reviewID}/photos [post]
func (app *application) uploadReviewPhotoHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	reviewID, err := strconv.ParseInt(chi.URLParam(r, "reviewID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid review ID"))
		return
	}

	ctx := r.Context()

	review, err := app.store.Reviews.GetByID(ctx, reviewID)
	if err != nil {
		app.notFoundResponse(w, r, err)
		return
	}
	if review.BusinessID != user.ID {
		app.forbiddenResponse(w, r)
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	url, err := app.uploadReviewPhoto(file, reviewID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Reviews.AddPhotoURL(ctx, reviewID, url); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]string{"photo_url": url}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteReviewPhotoHandler godoc
//
//	@Summary		Delete a review photo
//	@Description	Removes a photo both from storage and the review's URL list
//	@Tags			reviews
//	@Param			reviewID	path	int		true	"Review ID"
//	@Param			photo_url	query	string	true	"Photo URL to remove"
//	@Success		204
//	@Failure		400	{object}	ErrorBadRequestResponse	"Bad request"
//	@Security		ApiKeyAuth
//	@Router			/reviews/{reviewID}/photos [delete]
func (app *application) deleteReviewPhotoHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	reviewID, err := strconv.ParseInt(chi.URLParam(r, "reviewID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid review ID"))
		return
	}

	photoURL := r.URL.Query().Get("photo_url")
	if photoURL == "" {
		app.badRequestResponse(w, r, errors.New("photo_url query parameter is required"))
		return
	}

	ctx := r.Context()

	review, err := app.store.Reviews.GetByID(ctx, reviewID)
	if err != nil {
		app.notFoundResponse(w, r, err)
		return
	}
	if review.BusinessID != user.ID {
		app.forbiddenResponse(w, r)
		return
	}

	if err := app.deletePhotoFromCloudinary(photoURL); err != nil {
		app.logger.Errorw("error deleting photo from cloudinary", "error", err)
	}

	if err := app.store.Reviews.RemovePhotoURL(ctx, reviewID, photoURL); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
