package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "canopy/internal/delivery/context"
	"canopy/internal/domain/entity"
	domainerrors "canopy/internal/domain/errors"
	"canopy/internal/domain/repository"
	"canopy/internal/domain/service"
	"canopy/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// userService implements the UserUsecase interface.
type userService struct {
	userRepo     repository.UserRepository
	orgRepo      repository.OrgRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	googleAuth   service.OAuthAuthService
	logger       *slog.Logger
	now          func() time.Time
}

// UserServiceParams holds dependencies for UserService, injected by Fx.
type UserServiceParams struct {
	fx.In

	UserRepo     repository.UserRepository
	OrgRepo      repository.OrgRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	GoogleAuth   service.OAuthAuthService
	Logger       *slog.Logger
}

// NewUserService is the constructor for userService. It receives all dependencies as interfaces.
func NewUserService(params UserServiceParams) usecase.UserUsecase {
	return &userService{
		userRepo:     params.UserRepo,
		orgRepo:      params.OrgRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		googleAuth:   params.GoogleAuth,
		logger:       params.Logger,
		now:          time.Now,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *userService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register creates a new org and its first admin user.
func (srv *userService) Register(ctx context.Context, input usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	if input.OrgType != entity.OrgTypeBrand && input.OrgType != entity.OrgTypeDispensary {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("org type must be brand or dispensary")
	}

	if err := srv.hasher.ValidatePasswordStrength(input.Password); err != nil {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "password does not meet security requirements")
	}

	hashed, err := srv.hasher.Hash(input.Password)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}

	now := srv.now().UTC()
	org := &entity.Org{
		ID:           uuid.NewString(),
		Name:         input.OrgName,
		Type:         input.OrgType,
		State:        input.State,
		ContactEmail: input.Email,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	user := &entity.User{
		ID:           uuid.NewString(),
		OrgID:        org.ID,
		Email:        input.Email,
		Name:         input.Name,
		PasswordHash: hashed,
		Roles:        []string{entity.RoleAdmin},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := srv.userRepo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, domainerrors.ErrUserAlreadyExists
		}

		return nil, errors.Wrap(err, "failed to create user")
	}
	if err := srv.orgRepo.CreateOrg(ctx, org); err != nil {
		return nil, errors.Wrap(err, "failed to create org")
	}

	srv.log(ctx).Info("Org registered",
		slog.String("org_id", org.ID),
		slog.String("type", string(org.Type)),
	)

	return &usecase.RegisterOutput{Org: org, User: user}, nil
}

// Login authenticates a user by email and password.
func (srv *userService) Login(ctx context.Context, input usecase.LoginInput) (*usecase.LoginOutput, error) {
	user, err := srv.userRepo.FindUserByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrInvalidCredentials
		}

		return nil, errors.Wrap(err, "failed to load user")
	}

	if user.PasswordHash == "" || !srv.hasher.Check(input.Password, user.PasswordHash) {
		srv.log(ctx).Warn("Login failed", slog.String("email", input.Email))

		return nil, domainerrors.ErrInvalidCredentials
	}

	return srv.issueTokens(user)
}

// GoogleLogin authenticates a user by a verified Google ID token.
func (srv *userService) GoogleLogin(ctx context.Context, input usecase.GoogleLoginInput) (*usecase.LoginOutput, error) {
	oauthUser, err := srv.googleAuth.VerifyIDToken(ctx, input.IDToken)
	if err != nil {
		return nil, domainerrors.ErrOAuthTokenInvalid
	}

	user, err := srv.userRepo.FindUserByGoogleSub(ctx, oauthUser.ID)
	if errors.Is(err, repository.ErrUserNotFound) {
		// Fall back to email linking for accounts created with a password.
		user, err = srv.userRepo.FindUserByEmail(ctx, oauthUser.Email)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return nil, domainerrors.ErrUserNotFound.WrapMessage("no account for this Google identity")
			}

			return nil, errors.Wrap(err, "failed to load user")
		}

		user.GoogleSub = oauthUser.ID
		user.UpdatedAt = srv.now().UTC()
		if err := srv.userRepo.UpdateUser(ctx, user); err != nil {
			return nil, errors.Wrap(err, "failed to link Google identity")
		}
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to load user")
	}

	return srv.issueTokens(user)
}

// Refresh exchanges a valid refresh token for a new token pair.
func (srv *userService) Refresh(ctx context.Context, refreshToken string) (*usecase.LoginOutput, error) {
	claims, err := srv.tokenService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, domainerrors.ErrRefreshTokenInvalid
	}

	user, err := srv.userRepo.FindUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrRefreshTokenInvalid
		}

		return nil, errors.Wrap(err, "failed to load user")
	}

	return srv.issueTokens(user)
}

func (srv *userService) issueTokens(user *entity.User) (*usecase.LoginOutput, error) {
	access, refresh, err := srv.tokenService.GenerateTokens(user.ID, user.OrgID, user.Roles)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate tokens")
	}

	return &usecase.LoginOutput{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         user,
	}, nil
}
