package handlers

import (
	"net/http"

	"LittleLemon/services"

	"github.com/gin-gonic/gin"
)

// GetGroupUserListHandler lists the members of the group served by groups.
func GetGroupUserListHandler(c *gin.Context, groups *services.GroupService) {
	users, err := groups.Members(c.Request.Context())
	if err != nil {
		respondError(c, "cannot load group members", err)
		return
	}

	usersData := make([]gin.H, 0, len(users))
	for _, user := range users {
		usersData = append(usersData, userJSON(user))
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "group members loaded",
		"group":   groups.Group,
		"users":   usersData,
	})
}

func AddGroupUserHandler(c *gin.Context, groups *services.GroupService) {
	var groupReq struct {
		UserID uint `json:"userId" form:"userId"`
	}
	if err := c.ShouldBind(&groupReq); err != nil {
		bindError(c, err)
		return
	}

	user, err := groups.Add(c.Request.Context(), groupReq.UserID)
	if err != nil {
		respondError(c, "cannot add user to "+groups.Group, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "user added to " + groups.Group + " group",
		"user":    userJSON(*user),
	})
}

func RemoveGroupUserHandler(c *gin.Context, groups *services.GroupService) {
	userID, ok := paramID(c, "userID")
	if !ok {
		return
	}

	user, err := groups.Remove(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "cannot remove user from "+groups.Group, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "user removed from " + groups.Group + " group",
		"user":    userJSON(*user),
	})
}

func GetCategoryListHandler(c *gin.Context, categories *services.CategoryService) {
	list, err := categories.List(c.Request.Context())
	if err != nil {
		respondError(c, "cannot load categories", err)
		return
	}

	categoriesData := make([]gin.H, 0, len(list))
	for _, category := range list {
		categoriesData = append(categoriesData, categoryJSON(category))
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "categories loaded",
		"categories": categoriesData,
	})
}

func GetCategoryHandler(c *gin.Context, categories *services.CategoryService) {
	id, ok := paramID(c, "categoryID")
	if !ok {
		return
	}

	category, err := categories.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, "cannot load category", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "category loaded",
		"category": categoryJSON(*category),
	})
}

func CreateCategoryHandler(c *gin.Context, categories *services.CategoryService) {
	var categoryReq services.CategoryIn
	if err := c.ShouldBindJSON(&categoryReq); err != nil {
		bindError(c, err)
		return
	}

	category, err := categories.Create(c.Request.Context(), categoryReq)
	if err != nil {
		respondError(c, "cannot create category", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":  "category created",
		"category": categoryJSON(*category),
	})
}

func UpdateCategoryHandler(c *gin.Context, categories *services.CategoryService) {
	id, ok := paramID(c, "categoryID")
	if !ok {
		return
	}

	var categoryReq services.CategoryIn
	if err := c.ShouldBindJSON(&categoryReq); err != nil {
		bindError(c, err)
		return
	}

	category, err := categories.Update(c.Request.Context(), id, categoryReq)
	if err != nil {
		respondError(c, "cannot update category", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "category updated",
		"category": categoryJSON(*category),
	})
}

func DeleteCategoryHandler(c *gin.Context, categories *services.CategoryService) {
	id, ok := paramID(c, "categoryID")
	if !ok {
		return
	}

	if err := categories.Delete(c.Request.Context(), id); err != nil {
		respondError(c, "cannot delete category", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "category deleted",
	})
}
