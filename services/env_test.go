package services

import (
	"crypto/rand"
	"crypto/rsa"
	"sync"
	"testing"
	"time"

	"LittleLemon/dbtest"
	"LittleLemon/jwt"
	"LittleLemon/models"
	"LittleLemon/permission"
	"LittleLemon/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	keyOnce sync.Once
	testKey *rsa.PrivateKey
	keyErr  error
)

type testEnv struct {
	db         *gorm.DB
	users      *repository.UserRepository
	carts      *CartService
	orders     *OrderService
	menu       *MenuService
	categories *CategoryService
	accounts   *UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvOn(t, dbtest.Open(t))
}

func newTestEnvOn(t *testing.T, db *gorm.DB) *testEnv {
	t.Helper()
	userRepo := repository.NewUserRepository(db)
	cartRepo := repository.NewCartRepository(db)
	menuRepo := repository.NewMenuRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)

	keyOnce.Do(func() { testKey, keyErr = rsa.GenerateKey(rand.Reader, 2048) })
	require.NoError(t, keyErr)

	return &testEnv{
		db:         db,
		users:      userRepo,
		carts:      NewCartService(db, cartRepo, menuRepo),
		orders:     NewOrderService(db, repository.NewOrderRepository(db), cartRepo, userRepo),
		menu:       NewMenuService(db, menuRepo, categoryRepo, nil),
		categories: NewCategoryService(db, categoryRepo, menuRepo, nil),
		accounts:   NewUserService(db, userRepo, jwt.NewKeys(testKey), time.Hour),
	}
}

func callerOf(u *models.User, roles ...permission.Role) permission.Caller {
	return permission.Caller{UserID: u.ID, Roles: permission.NewSet(roles...)}
}

func qty(n int) *int { return &n }
