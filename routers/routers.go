package routers

import (
	"fmt"
	"net/http"
	"time"

	"LittleLemon/cache"
	"LittleLemon/handlers"
	"LittleLemon/jwt"
	"LittleLemon/metrics"
	"LittleLemon/middleware"
	"LittleLemon/permission"
	"LittleLemon/repository"
	"LittleLemon/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Services struct {
	Users        *services.UserService
	Carts        *services.CartService
	Orders       *services.OrderService
	Menu         *services.MenuService
	Categories   *services.CategoryService
	Managers     *services.GroupService
	DeliveryCrew *services.GroupService
}

// NewServices wires repositories and services. rdb may be nil, in which case
// the menu is served from the database only.
func NewServices(db *gorm.DB, rdb *redis.Client, keys *jwt.Keys, tokenTTL, cacheTTL time.Duration) *Services {
	userRepo := repository.NewUserRepository(db)
	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	menuRepo := repository.NewMenuRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)

	var menuCache services.MenuCache
	if rdb != nil {
		menuCache = cache.NewMenuCache(rdb, cacheTTL)
	}

	return &Services{
		Users:        services.NewUserService(db, userRepo, keys, tokenTTL),
		Carts:        services.NewCartService(db, cartRepo, menuRepo),
		Orders:       services.NewOrderService(db, orderRepo, cartRepo, userRepo),
		Menu:         services.NewMenuService(db, menuRepo, categoryRepo, menuCache),
		Categories:   services.NewCategoryService(db, categoryRepo, menuRepo, menuCache),
		Managers:     services.NewGroupService(permission.ManagerGroup, userRepo),
		DeliveryCrew: services.NewGroupService(permission.DeliveryCrewGroup, userRepo),
	}
}

// SetupRouters builds the engine. trustedProxies lists the proxy addresses or
// CIDRs allowed to set client IP headers; nil trusts none.
func SetupRouters(svc *Services, trustedProxies []string) (*gin.Engine, error) {
	//gin engine with access log and recovery
	router := gin.Default()
	router.Use(middleware.RequestIDMiddleware(), metrics.Middleware())
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Authorization, X-Request-ID")
		c.Next()
	})
	if err := router.SetTrustedProxies(trustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	router.OPTIONS("/*path", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware(svc.Users))
	{
		api.POST("/users", func(context *gin.Context) {
			handlers.RegisterHandler(context, svc.Users)
		})
		api.POST("/users/login", func(context *gin.Context) {
			handlers.LoginHandler(context, svc.Users)
		})
	}

	loginRequired := api.Group("")
	loginRequired.Use(middleware.CheckLoginMiddleware())
	{
		loginRequired.POST("/users/logout", func(context *gin.Context) {
			handlers.LogOutHandler(context, svc.Users)
		})
		loginRequired.GET("/users/me", func(context *gin.Context) {
			handlers.GetUserProfileHandler(context, svc.Users)
		})

		loginRequired.GET("/category", func(context *gin.Context) {
			handlers.GetCategoryListHandler(context, svc.Categories)
		})
		loginRequired.GET("/menu-items", func(context *gin.Context) {
			handlers.GetMenuItemListHandler(context, svc.Menu)
		})
		loginRequired.GET("/menu-items/:menuItemID", func(context *gin.Context) {
			handlers.GetMenuItemHandler(context, svc.Menu)
		})

		//role checks for single orders happen in the order service
		loginRequired.GET("/orders/:orderID", func(context *gin.Context) {
			handlers.GetOrderDataHandler(context, svc.Orders)
		})
		loginRequired.PUT("/orders/:orderID", func(context *gin.Context) {
			handlers.UpdateOrderHandler(context, svc.Orders)
		})
		loginRequired.PATCH("/orders/:orderID", func(context *gin.Context) {
			handlers.UpdateOrderHandler(context, svc.Orders)
		})
		loginRequired.DELETE("/orders/:orderID", func(context *gin.Context) {
			handlers.DeleteOrderHandler(context, svc.Orders)
		})
	}

	roleRequired := loginRequired.Group("")
	roleRequired.Use(middleware.RequireRoles(permission.Customer, permission.Manager, permission.Admin, permission.DeliveryCrew))
	{
		roleRequired.GET("/orders", func(context *gin.Context) {
			handlers.GetOrderListHandler(context, svc.Orders)
		})
	}

	customerRequired := loginRequired.Group("")
	customerRequired.Use(middleware.RequireRoles(permission.Customer))
	{
		customerRequired.GET("/cart/menu-items", func(context *gin.Context) {
			handlers.GetCartHandler(context, svc.Carts)
		})
		customerRequired.POST("/cart/menu-items", func(context *gin.Context) {
			handlers.AddToCartHandler(context, svc.Carts)
		})
		customerRequired.DELETE("/cart/menu-items", func(context *gin.Context) {
			handlers.ClearCartHandler(context, svc.Carts)
		})
		customerRequired.POST("/orders", func(context *gin.Context) {
			handlers.SendOrderHandler(context, svc.Orders)
		})
	}

	managerRequired := loginRequired.Group("")
	managerRequired.Use(middleware.RequireRoles(permission.Admin, permission.Manager))
	{
		managerRequired.PUT("/menu-items/:menuItemID", func(context *gin.Context) {
			handlers.UpdateMenuItemHandler(context, svc.Menu)
		})
		managerRequired.PATCH("/menu-items/:menuItemID", func(context *gin.Context) {
			handlers.UpdateMenuItemHandler(context, svc.Menu)
		})
		managerRequired.GET("/groups/delivery-crew/users", func(context *gin.Context) {
			handlers.GetGroupUserListHandler(context, svc.DeliveryCrew)
		})
		managerRequired.POST("/groups/delivery-crew/users", func(context *gin.Context) {
			handlers.AddGroupUserHandler(context, svc.DeliveryCrew)
		})
		managerRequired.DELETE("/groups/delivery-crew/users/:userID", func(context *gin.Context) {
			handlers.RemoveGroupUserHandler(context, svc.DeliveryCrew)
		})
	}

	adminRequired := loginRequired.Group("")
	adminRequired.Use(middleware.RequireRoles(permission.Admin))
	{
		adminRequired.POST("/category", func(context *gin.Context) {
			handlers.CreateCategoryHandler(context, svc.Categories)
		})
		adminRequired.GET("/category/:categoryID", func(context *gin.Context) {
			handlers.GetCategoryHandler(context, svc.Categories)
		})
		adminRequired.PUT("/category/:categoryID", func(context *gin.Context) {
			handlers.UpdateCategoryHandler(context, svc.Categories)
		})
		adminRequired.PATCH("/category/:categoryID", func(context *gin.Context) {
			handlers.UpdateCategoryHandler(context, svc.Categories)
		})
		adminRequired.DELETE("/category/:categoryID", func(context *gin.Context) {
			handlers.DeleteCategoryHandler(context, svc.Categories)
		})
		adminRequired.POST("/menu-items", func(context *gin.Context) {
			handlers.CreateMenuItemHandler(context, svc.Menu)
		})
		adminRequired.DELETE("/menu-items/:menuItemID", func(context *gin.Context) {
			handlers.DeleteMenuItemHandler(context, svc.Menu)
		})
		adminRequired.GET("/groups/manager/users", func(context *gin.Context) {
			handlers.GetGroupUserListHandler(context, svc.Managers)
		})
		adminRequired.POST("/groups/manager/users", func(context *gin.Context) {
			handlers.AddGroupUserHandler(context, svc.Managers)
		})
		adminRequired.DELETE("/groups/manager/users/:userID", func(context *gin.Context) {
			handlers.RemoveGroupUserHandler(context, svc.Managers)
		})
	}

	return router, nil
}
