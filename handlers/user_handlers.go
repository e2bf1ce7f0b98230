package handlers

import (
	"net/http"

	"LittleLemon/middleware"
	"LittleLemon/services"

	"github.com/gin-gonic/gin"
)

// RegisterHandler creates an account in the Customer group.
func RegisterHandler(c *gin.Context, users *services.UserService) {
	var newUser services.RegisterIn
	if err := c.ShouldBind(&newUser); err != nil {
		bindError(c, err)
		return
	}

	user, err := users.Register(c.Request.Context(), newUser)
	if err != nil {
		respondError(c, "registration failed", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "user registered",
		"user":    userJSON(*user),
	})
}

func LoginHandler(c *gin.Context, users *services.UserService) {
	if _, ok := middleware.CurrentCaller(c); ok {
		c.JSON(http.StatusOK, gin.H{
			"message": "already logged in",
		})
		return
	}

	var loginReq struct {
		Username string `json:"username" form:"username" binding:"required"`
		Password string `json:"password" form:"password" binding:"required"`
	}
	if err := c.ShouldBind(&loginReq); err != nil {
		bindError(c, err)
		return
	}

	session, err := users.Login(c.Request.Context(), loginReq.Username, loginReq.Password)
	if err != nil {
		respondError(c, "login failed", err)
		return
	}

	c.Header("Authorization", "Bearer "+session.Token)
	c.JSON(http.StatusOK, gin.H{
		"message":   "logged in",
		"token":     session.Token,
		"expiresAt": session.ExpiresAt,
	})
}

func LogOutHandler(c *gin.Context, users *services.UserService) {
	token := c.GetString(middleware.TokenKey)
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "cannot read token",
		})
		return
	}

	if err := users.Logout(c.Request.Context(), token); err != nil {
		respondError(c, "logout failed", err)
		return
	}

	c.Header("Authorization", "")
	c.JSON(http.StatusOK, gin.H{
		"message": "logged out",
	})
}

func GetUserProfileHandler(c *gin.Context, users *services.UserService) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	user, roles, err := users.Profile(c.Request.Context(), caller.UserID)
	if err != nil {
		respondError(c, "cannot load profile", err)
		return
	}

	profile := userJSON(*user)
	profile["roles"] = roles.Names()
	c.JSON(http.StatusOK, gin.H{
		"message": "profile loaded",
		"user":    profile,
	})
}
