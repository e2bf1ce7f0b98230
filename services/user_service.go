package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"LittleLemon/jwt"
	"LittleLemon/models"
	"LittleLemon/permission"
	"LittleLemon/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const DefaultTokenTTL = 24 * time.Hour

type UserService struct {
	DB       *gorm.DB
	Users    *repository.UserRepository
	Keys     *jwt.Keys
	TokenTTL time.Duration
	Now      func() time.Time
}

func NewUserService(db *gorm.DB, users *repository.UserRepository, keys *jwt.Keys, ttl time.Duration) *UserService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &UserService{DB: db, Users: users, Keys: keys, TokenTTL: ttl, Now: time.Now}
}

type RegisterIn struct {
	Username  string `json:"username" form:"username"`
	Email     string `json:"email" form:"email"`
	Password  string `json:"password" form:"password"`
	FirstName string `json:"first_name" form:"first_name"`
	LastName  string `json:"last_name" form:"last_name"`
}

// Session is an issued login token.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

// Register creates an account and puts it in the Customer group.
func (s *UserService) Register(ctx context.Context, in RegisterIn) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if !ValidateUsername(in.Username) {
		return nil, validationError("invalid username")
	}
	if in.Email != "" && !ValidateEmail(in.Email) {
		return nil, validationError("invalid email")
	}
	if !ValidatePassword(in.Password) {
		return nil, validationError("password needs 8 to 50 characters with upper and lower case letters, a digit and a symbol")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:  in.Username,
		Email:     in.Email,
		Password:  string(hashedPassword),
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.Users.WithTx(tx)
		exists, err := users.UsernameExists(ctx, user.Username)
		if err != nil {
			return err
		}
		if exists {
			return validationError("username %s is already taken", user.Username)
		}
		if err := users.Create(ctx, user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return validationError("username %s is already taken", user.Username)
			}
			return err
		}
		group, err := users.FindGroup(ctx, permission.CustomerGroup)
		if err != nil {
			return err
		}
		return users.AddToGroup(ctx, user, group)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks the credentials and issues a token that stays valid until it
// expires or is logged out.
func (s *UserService) Login(ctx context.Context, username, password string) (*Session, error) {
	user, err := s.Users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrUnauthorized
	}

	expiresAt := s.Now().Add(s.TokenTTL)
	token, err := s.Keys.GenerateToken(user.ID, expiresAt.Unix())
	if err != nil {
		return nil, err
	}

	loginToken := models.LoginToken{
		Token:          token,
		ExpirationTime: expiresAt,
		UserID:         user.ID,
	}
	if err := s.Users.SaveLoginToken(ctx, &loginToken); err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Logout revokes the token.
func (s *UserService) Logout(ctx context.Context, token string) error {
	rows, err := s.Users.DeleteLoginToken(ctx, token)
	if err != nil {
		return err
	}
	if rows == 0 {
		return validationError("token not found or already logged out")
	}
	return nil
}

// Authenticate resolves a bearer token into the caller's id and role set.
func (s *UserService) Authenticate(ctx context.Context, token string) (permission.Caller, error) {
	userID, err := s.Keys.VerifyToken(token)
	if err != nil {
		return permission.Caller{}, ErrUnauthorized
	}

	live, err := s.Users.LoginTokenExists(ctx, token)
	if err != nil {
		return permission.Caller{}, err
	}
	if !live {
		return permission.Caller{}, ErrUnauthorized
	}

	roles, err := s.Users.Roles(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return permission.Caller{}, ErrUnauthorized
		}
		return permission.Caller{}, err
	}
	return permission.Caller{UserID: userID, Roles: roles}, nil
}

func (s *UserService) Profile(ctx context.Context, userID uint) (*models.User, permission.Set, error) {
	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, 0, notFound(err, ErrUserNotFound, userID)
	}
	roles, err := s.Users.Roles(ctx, userID)
	if err != nil {
		return nil, 0, notFound(err, ErrUserNotFound, userID)
	}
	return user, roles, nil
}
