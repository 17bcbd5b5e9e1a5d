package services

import (
	"context"
	"strings"
	"time"

	"motoloans/models"
	"motoloans/repositories"
	"motoloans/utils"

	"go.uber.org/zap"
)

// ProvisionOwnerRequest данные для создания учетной записи
type ProvisionOwnerRequest struct {
	Username string        `json:"username" validate:"required,min=3,max=100"`
	Password string        `json:"password" validate:"required,min=8"`
	Roles    []models.Role `json:"roles" validate:"dive,oneof=USER ADMIN MODERATOR"`
}

// ChangePasswordRequest данные для смены пароля
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

const (
	maxFailedLogins    = 5
	failedLoginWindow  = 15 * time.Minute
	invalidCredentials = "invalid username or password"
)

// OwnerService управляет административными учетными записями
type OwnerService struct {
	store   repositories.Store
	limiter *utils.AttemptLimiter
}

// NewOwnerService создает новый экземпляр OwnerService
func NewOwnerService(store repositories.Store) *OwnerService {
	return &OwnerService{
		store:   store,
		limiter: utils.NewAttemptLimiter(maxFailedLogins, failedLoginWindow),
	}
}

// WithLimiter подменяет ограничитель неудачных входов
func (s *OwnerService) WithLimiter(limiter *utils.AttemptLimiter) *OwnerService {
	s.limiter = limiter
	return s
}

// Provision создает учетную запись; без ролей выдается USER
func (s *OwnerService) Provision(ctx context.Context, req ProvisionOwnerRequest) (*models.Owner, error) {
	start := time.Now()
	req.Username = normalizeUsername(req.Username)
	if err := models.ValidateStruct(req); err != nil {
		utils.LogOperation("provision_owner", start, err)
		return nil, err
	}

	// Хешируем пароль
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.LogOperation("provision_owner", start, err)
		return nil, err
	}

	roles := req.Roles
	if len(roles) == 0 {
		roles = []models.Role{models.RoleUser}
	}

	owner := &models.Owner{
		Username:     req.Username,
		PasswordHash: hash,
		Roles:        models.NormalizeRoles(roles),
	}

	err = s.store.WithinTx(ctx, func(tx repositories.Store) error {
		if err := ensureUnique(ctx, tx.Owners(), "username", owner.Username, ""); err != nil {
			return err
		}
		return tx.Owners().Create(ctx, owner)
	})
	utils.LogOperation("provision_owner", start, err, zap.String("username", req.Username))
	if err != nil {
		return nil, err
	}
	return owner, nil
}

// Get возвращает учетную запись по ID
func (s *OwnerService) Get(ctx context.Context, id string) (*models.Owner, error) {
	return s.store.Owners().Get(ctx, id)
}

// FindByUsername ищет учетную запись по имени пользователя
func (s *OwnerService) FindByUsername(ctx context.Context, username string) (*models.Owner, error) {
	username = normalizeUsername(username)
	owners, err := s.store.Owners().FindMany(ctx, repositories.Query{
		Filter: repositories.Filter{"username": username},
		Limit:  1,
	})
	if err != nil {
		return nil, err
	}
	if len(owners) == 0 {
		return nil, models.NewNotFoundError("owner", username)
	}
	return &owners[0], nil
}

// List возвращает учетные записи по имени пользователя
func (s *OwnerService) List(ctx context.Context, limit, offset int) ([]models.Owner, error) {
	return s.store.Owners().FindMany(ctx, repositories.Query{
		OrderBy: "username ASC",
		Limit:   limit,
		Offset:  offset,
	})
}

// Authenticate проверяет пару имя/пароль. После серии неудач вход по имени
// блокируется до истечения окна.
func (s *OwnerService) Authenticate(ctx context.Context, username, password string) (*models.Owner, error) {
	key := normalizeUsername(username)
	if s.limiter.Blocked(key) {
		return nil, models.NewConflictError("too many failed login attempts for %q, retry after %s",
			key, s.limiter.ResetTime(key).Format(time.RFC3339))
	}

	owner, err := s.FindByUsername(ctx, username)
	if err != nil {
		if models.IsNotFound(err) {
			s.limiter.Record(key)
			return nil, models.NewValidationError("password", invalidCredentials)
		}
		return nil, err
	}
	if !utils.VerifyPassword(password, owner.PasswordHash) {
		s.limiter.Record(key)
		utils.Log.Warn("failed login attempt",
			zap.String("username", key),
			zap.Int("remaining", s.limiter.Remaining(key)))
		return nil, models.NewValidationError("password", invalidCredentials)
	}

	s.limiter.Reset(key)
	return owner, nil
}

// UpdateRoles заменяет набор ролей
func (s *OwnerService) UpdateRoles(ctx context.Context, id string, roles []models.Role) (*models.Owner, error) {
	var owner *models.Owner
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		current, err := tx.Owners().Get(ctx, id)
		if err != nil {
			return err
		}
		current.Roles = models.NormalizeRoles(roles)
		if err := current.Validate(); err != nil {
			return err
		}
		if err := tx.Owners().Update(ctx, current); err != nil {
			return err
		}
		owner = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.Log.Info("owner roles updated", zap.String("owner_id", id), zap.Any("roles", owner.Roles))
	return owner, nil
}

// ChangePassword меняет пароль после проверки текущего
func (s *OwnerService) ChangePassword(ctx context.Context, id string, req ChangePasswordRequest) error {
	if err := models.ValidateStruct(req); err != nil {
		return err
	}

	return s.store.WithinTx(ctx, func(tx repositories.Store) error {
		owner, err := tx.Owners().Get(ctx, id)
		if err != nil {
			return err
		}
		if !utils.VerifyPassword(req.CurrentPassword, owner.PasswordHash) {
			return models.NewValidationError("currentPassword", "does not match")
		}

		hash, err := utils.HashPassword(req.NewPassword)
		if err != nil {
			return err
		}
		owner.PasswordHash = hash
		return tx.Owners().Update(ctx, owner)
	})
}

// Delete удаляет учетную запись
func (s *OwnerService) Delete(ctx context.Context, id string) error {
	return s.store.Owners().Delete(ctx, id)
}

// normalizeUsername приводит имя к виду, в котором оно хранится: без пробелов по краям, в нижнем регистре
func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
