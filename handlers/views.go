package handlers

import (
	"LittleLemon/models"

	"github.com/gin-gonic/gin"
)

func categoryJSON(c models.Category) gin.H {
	return gin.H{
		"id":    c.ID,
		"slug":  c.Slug,
		"title": c.Title,
	}
}

func menuItemJSON(item models.MenuItem) gin.H {
	return gin.H{
		"id":       item.ID,
		"title":    item.Title,
		"price":    item.Price.StringFixed(2),
		"featured": item.Featured,
		"category": categoryJSON(item.Category),
	}
}

func cartLineJSON(line models.CartLine) gin.H {
	return gin.H{
		"id":          line.ID,
		"menuitem_id": line.MenuItemID,
		"menuitem":    line.MenuItem.Title,
		"quantity":    line.Quantity,
		"unit_price":  line.UnitPrice.StringFixed(2),
		"price":       line.Price.StringFixed(2),
	}
}

func userJSON(u models.User) gin.H {
	return gin.H{
		"id":         u.ID,
		"username":   u.Username,
		"email":      u.Email,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
	}
}
