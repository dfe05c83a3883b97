package controllers

import (
	"Recit/middleware"
	models "Recit/models/postgres"
	"Recit/services/store"
	"Recit/services/views"
	"Recit/utils/apperrors"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// @Summary Logs in with phone and password
// @Tags user
// @Accept x-www-form-urlencoded
// @Produce json
// @Param phone formData string true "Phone"
// @Param password formData string true "Password"
// @Success 200 {object} object{token=string,user=object}
// @Failure 401 {object} object{error=string,reason=string}
// @Failure 422 {object} object{error=string,reason=string,fields=[]object}
// @Router /login [post]
func Login(st store.Store, tokens *middleware.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		phone := strings.TrimSpace(c.PostForm("phone"))
		password := c.PostForm("password")

		//Minimum input sanitizing
		var v apperrors.Validator
		v.Check(phone != "", "phone", "is required")
		v.Check(strings.TrimSpace(password) != "", "password", "is required")
		if err := v.Err(); err != nil {
			respondError(c, err)
			return
		}

		user, err := st.FindUserByPhone(c.Request.Context(), phone)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				respondError(c, store.AppError("find user", "User", err))
				return
			}
			respondError(c, apperrors.ErrInvalidCredentials)
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
			respondError(c, apperrors.ErrInvalidCredentials)
			return
		}

		issueLogin(c, tokens, user, http.StatusOK)
	}
}

func issueLogin(c *gin.Context, tokens *middleware.Tokens, user *models.User, status int) {
	token, err := tokens.Issue(user.ID)
	if err != nil {
		log.Printf("[LOGIN-ERROR] Could not issue token for user %d: %v", user.ID, err)
		respondError(c, apperrors.Upstream("issue token", err))
		return
	}
	if err := middleware.StartSession(c, user.ID); err != nil {
		respondError(c, apperrors.Upstream("start session", err))
		return
	}
	c.JSON(status, gin.H{"token": token, "user": views.NewUser(*user)})
}

// @Summary Logs out
// @Description Deletes the session cookie. Bearer tokens stay valid until they expire
// @Tags user
// @Produce json
// @Success 200 {object} object{message=string}
// @Failure 404 {object} object{error=string,reason=string}
// @Router /auth/logout [delete]
func Logout(c *gin.Context) {
	had, err := middleware.EndSession(c)
	// There is no session for the user, won't delete nothing
	if !had {
		respondError(c, apperrors.NotFound("Session"))
		return
	}
	if err != nil {
		respondError(c, apperrors.Upstream("save session", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}

// @Summary Signs up a new user
// @Tags user
// @Accept x-www-form-urlencoded
// @Produce json
// @Param name formData string true "Display name"
// @Param phone formData string true "Phone"
// @Param password formData string true "Password"
// @Success 201 {object} object{token=string,user=object}
// @Failure 409 {object} object{error=string,reason=string}
// @Failure 422 {object} object{error=string,reason=string,fields=[]object}
// @Router /signup [post]
func SignUp(st store.Store, tokens *middleware.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := strings.TrimSpace(c.PostForm("name"))
		phone := strings.TrimSpace(c.PostForm("phone"))
		password := c.PostForm("password")

		var v apperrors.Validator
		v.Check(name != "", "name", "is required")
		v.Check(len(name) <= 50, "name", "must be at most 50 characters")
		v.Check(phone != "", "phone", "is required")
		v.Check(len(phone) <= 20, "phone", "must be at most 20 characters")
		v.Check(len(password) >= 8, "password", "must be at least 8 characters")
		if err := v.Err(); err != nil {
			respondError(c, err)
			return
		}

		_, err := st.FindUserByPhone(c.Request.Context(), phone)
		if err == nil {
			respondError(c, &apperrors.Error{Kind: apperrors.KindConflict, Reason: "PhoneTaken", Message: "phone already registered"})
			return
		}
		if !errors.Is(err, store.ErrNotFound) {
			respondError(c, store.AppError("find user", "User", err))
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			// logged by utils.ErrorHandler
			respondError(c, err)
			return
		}

		user := models.User{Name: name, Phone: phone, PasswordHash: string(hash)}
		if err := st.CreateUser(c.Request.Context(), &user); err != nil {
			respondError(c, store.AppError("create user", "User", err))
			return
		}
		log.Printf("[SIGNUP-SUCCESS] User %d created", user.ID)

		issueLogin(c, tokens, &user, http.StatusCreated)
	}
}

// @Summary Returns the logged in user
// @Tags user
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Success 200 {object} views.User
// @Router /auth/me [get]
// @Security ApiKeyAuth
func Me(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := st.FindUser(c.Request.Context(), middleware.CurrentUser(c))
		if err != nil {
			respondError(c, store.AppError("find user", "User", err))
			return
		}
		c.JSON(http.StatusOK, views.NewUser(*user))
	}
}
