package handlers

import (
	"net/http"
	"strconv"

	"LittleLemon/repository"
	"LittleLemon/services"

	"github.com/gin-gonic/gin"
)

// GetMenuItemListHandler pages through the menu, optionally filtered by
// category title. limit is capped at 50.
func GetMenuItemListHandler(c *gin.Context, menu *services.MenuService) {
	limitInt, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(services.DefaultPageSize)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "invalid limit",
			"error":   err.Error(),
		})
		return
	}

	offsetInt, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "invalid offset",
			"error":   err.Error(),
		})
		return
	}

	page, err := menu.List(c.Request.Context(), repository.MenuFilter{
		Category: c.Query("category"),
		Offset:   offsetInt,
		Limit:    limitInt,
	})
	if err != nil {
		respondError(c, "cannot load menu", err)
		return
	}

	items := make([]gin.H, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, menuItemJSON(item))
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "menu loaded",
		"menuItems":  items,
		"totalCount": page.Total,
		"offset":     page.Offset,
		"limit":      page.Limit,
	})
}

func GetMenuItemHandler(c *gin.Context, menu *services.MenuService) {
	id, ok := paramID(c, "menuItemID")
	if !ok {
		return
	}

	item, err := menu.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, "cannot load menu item", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "menu item loaded",
		"menuItem": menuItemJSON(*item),
	})
}

func CreateMenuItemHandler(c *gin.Context, menu *services.MenuService) {
	var menuItemReq services.MenuItemIn
	if err := c.ShouldBindJSON(&menuItemReq); err != nil {
		bindError(c, err)
		return
	}

	item, err := menu.Create(c.Request.Context(), menuItemReq)
	if err != nil {
		respondError(c, "cannot create menu item", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":  "menu item created",
		"menuItem": menuItemJSON(*item),
	})
}

// UpdateMenuItemHandler serves PUT and PATCH. Managers only get to change featured.
func UpdateMenuItemHandler(c *gin.Context, menu *services.MenuService) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "menuItemID")
	if !ok {
		return
	}

	var menuItemReq services.MenuItemIn
	if err := c.ShouldBindJSON(&menuItemReq); err != nil {
		bindError(c, err)
		return
	}

	item, err := menu.Update(c.Request.Context(), caller, id, menuItemReq)
	if err != nil {
		respondError(c, "cannot update menu item", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "menu item updated",
		"menuItem": menuItemJSON(*item),
	})
}

func DeleteMenuItemHandler(c *gin.Context, menu *services.MenuService) {
	id, ok := paramID(c, "menuItemID")
	if !ok {
		return
	}

	if err := menu.Delete(c.Request.Context(), id); err != nil {
		respondError(c, "cannot delete menu item", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "menu item deleted",
	})
}
