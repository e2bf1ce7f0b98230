package handlers

import (
	"net/http"

	"LittleLemon/services"

	"github.com/gin-gonic/gin"
)

// GetCartHandler lists the caller's own cart lines.
func GetCartHandler(c *gin.Context, carts *services.CartService) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	lines, err := carts.ListItems(c.Request.Context(), caller.UserID)
	if err != nil {
		respondError(c, "cannot load cart", err)
		return
	}

	items := make([]gin.H, 0, len(lines))
	for _, line := range lines {
		items = append(items, cartLineJSON(line))
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "cart loaded",
		"items":   items,
	})
}

// AddToCartHandler answers 201 for a new line and 200 when an existing line was merged.
func AddToCartHandler(c *gin.Context, carts *services.CartService) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	var cartItemReq services.AddToCartIn
	if err := c.ShouldBind(&cartItemReq); err != nil {
		bindError(c, err)
		return
	}

	line, created, err := carts.AddItem(c.Request.Context(), caller.UserID, cartItemReq)
	if err != nil {
		respondError(c, "cannot add item to cart", err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{
		"message": "item added to cart",
		"item":    cartLineJSON(*line),
	})
}

func ClearCartHandler(c *gin.Context, carts *services.CartService) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	if err := carts.Clear(c.Request.Context(), caller.UserID); err != nil {
		respondError(c, "cannot clear cart", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "cart cleared",
	})
}
