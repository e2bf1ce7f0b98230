package handlers

import (
	"net/http"

	"LittleLemon/services"

	"github.com/gin-gonic/gin"
)

// SendOrderHandler turns the caller's cart into an order.
func SendOrderHandler(c *gin.Context, orders *services.OrderService) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	order, err := orders.PlaceOrder(c.Request.Context(), caller.UserID)
	if err != nil {
		respondError(c, "cannot place order", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "order placed",
		"order":   services.NewOrderView(services.SelectOrderView(caller.Roles), order),
	})
}

func GetOrderListHandler(c *gin.Context, orders *services.OrderService) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	list, err := orders.ListOrdersForCaller(c.Request.Context(), caller)
	if err != nil {
		respondError(c, "cannot load orders", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "orders loaded",
		"orders":  services.NewOrderViews(services.SelectOrderView(caller.Roles), list),
	})
}

func GetOrderDataHandler(c *gin.Context, orders *services.OrderService) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}
	orderID, ok := paramID(c, "orderID")
	if !ok {
		return
	}

	view, err := orders.GetOrder(c.Request.Context(), caller, orderID)
	if err != nil {
		respondError(c, "cannot load order", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "order loaded",
		"order":   view,
	})
}

// UpdateOrderHandler serves both PUT and PATCH. The caller's view decides
// which single field is applied.
func UpdateOrderHandler(c *gin.Context, orders *services.OrderService) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}
	orderID, ok := paramID(c, "orderID")
	if !ok {
		return
	}

	var orderReq services.OrderUpdateIn
	if err := c.ShouldBind(&orderReq); err != nil {
		bindError(c, err)
		return
	}

	order, err := orders.UpdateOrder(c.Request.Context(), caller, orderID, orderReq)
	if err != nil {
		respondError(c, "cannot update order", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "order updated",
		"order":   services.NewOrderView(services.SelectOrderView(caller.Roles), order),
	})
}

func DeleteOrderHandler(c *gin.Context, orders *services.OrderService) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}
	orderID, ok := paramID(c, "orderID")
	if !ok {
		return
	}

	if err := orders.DeleteOrder(c.Request.Context(), caller, orderID); err != nil {
		respondError(c, "cannot delete order", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "order deleted",
	})
}
