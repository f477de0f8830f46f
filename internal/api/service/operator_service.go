package service

import (
	"errors"

	"courier"
	"courier/internal/api/handler/request"
	"courier/internal/api/handler/response"
	"courier/internal/api/models"
	"courier/internal/api/repo"
	"courier/pkg"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInactiveOperator   = errors.New("account is inactive")
	ErrOperatorExists     = errors.New("operator with this email already exists")
	ErrOperatorNotFound   = errors.New("operator not found")
	ErrInvalidRefresh     = errors.New("invalid or expired refresh token")
)

// OperatorService manages the accounts allowed to call the API
type OperatorService struct {
	operatorRepo *repo.OperatorRepository
	config       courier.AppConfig
	logger       zerolog.Logger
}

func NewOperatorService(operatorRepo *repo.OperatorRepository, config courier.AppConfig, logger zerolog.Logger) *OperatorService {
	return &OperatorService{
		operatorRepo: operatorRepo,
		config:       config,
		logger:       logger,
	}
}

func (slf *OperatorService) Register(registerDTO request.RegisterDTO) (*response.AuthResponseDTO, error) {
	exists, err := slf.operatorRepo.ExistsByEmail(registerDTO.Email)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error checking if operator exists")
		return nil, err
	}
	if exists {
		return nil, ErrOperatorExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(registerDTO.Password), bcrypt.DefaultCost)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error hashing password")
		return nil, err
	}

	operator := models.Operator{
		Email:     registerDTO.Email,
		Password:  string(hashedPassword),
		FirstName: registerDTO.FirstName,
		LastName:  registerDTO.LastName,
		Role:      models.RoleOperator,
		Active:    true,
	}
	if err = slf.operatorRepo.Create(&operator); err != nil {
		slf.logger.Error().Err(err).Msg("Error creating operator")
		return nil, err
	}

	auth, err := slf.issueTokens(&operator)
	if err != nil {
		return nil, err
	}
	slf.logger.Info().Uint("operatorId", operator.ID).Msg("Operator registered successfully")
	return auth, nil
}

func (slf *OperatorService) Login(loginDTO request.LoginDTO) (*response.AuthResponseDTO, error) {
	operator, err := slf.operatorRepo.FindByEmail(loginDTO.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		slf.logger.Error().Err(err).Msg("Error finding operator by email")
		return nil, err
	}
	if !operator.Active {
		return nil, ErrInactiveOperator
	}
	if err := bcrypt.CompareHashAndPassword([]byte(operator.Password), []byte(loginDTO.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	auth, err := slf.issueTokens(&operator)
	if err != nil {
		return nil, err
	}
	slf.logger.Info().Uint("operatorId", operator.ID).Msg("Operator logged in successfully")
	return auth, nil
}

func (slf *OperatorService) GetByID(id uint) (response.OperatorResponseDTO, error) {
	operator, err := slf.operatorRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.OperatorResponseDTO{}, ErrOperatorNotFound
		}
		slf.logger.Error().Err(err).Uint("operatorId", id).Msg("Error finding operator by ID")
		return response.OperatorResponseDTO{}, err
	}
	return toOperatorResponse(operator), nil
}

func (slf *OperatorService) RefreshToken(refreshToken string) (*response.AuthResponseDTO, error) {
	claims, err := pkg.ValidateRefreshToken(refreshToken, slf.config.JWTConfig.Secret)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Invalid refresh token")
		return nil, ErrInvalidRefresh
	}

	operator, err := slf.operatorRepo.FindByID(claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOperatorNotFound
		}
		slf.logger.Error().Err(err).Uint("operatorId", claims.UserID).Msg("Error finding operator by ID")
		return nil, err
	}
	if !operator.Active {
		return nil, ErrInactiveOperator
	}
	if operator.RefreshToken != refreshToken {
		slf.logger.Warn().Uint("operatorId", operator.ID).Msg("Refresh token mismatch")
		return nil, ErrInvalidRefresh
	}

	auth, err := slf.issueTokens(&operator)
	if err != nil {
		return nil, err
	}
	slf.logger.Info().Uint("operatorId", operator.ID).Msg("Token refreshed successfully")
	return auth, nil
}

// issueTokens signs a new token pair and stores the refresh token on the operator
func (slf *OperatorService) issueTokens(operator *models.Operator) (*response.AuthResponseDTO, error) {
	jwtConfig := slf.config.JWTConfig
	token, err := pkg.GenerateToken(operator.ID, operator.Email, string(operator.Role), jwtConfig.Secret, jwtConfig.Expiration)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error generating token")
		return nil, err
	}
	refreshToken, err := pkg.GenerateRefreshToken(operator.ID, jwtConfig.Secret, jwtConfig.RefreshExpiration)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error generating refresh token")
		return nil, err
	}

	operator.RefreshToken = refreshToken
	if err = slf.operatorRepo.Update(operator); err != nil {
		slf.logger.Error().Err(err).Msg("Error updating operator with refresh token")
		return nil, err
	}

	return &response.AuthResponseDTO{
		Token:        token,
		RefreshToken: refreshToken,
		Operator:     toOperatorResponse(*operator),
	}, nil
}

func toOperatorResponse(operator models.Operator) response.OperatorResponseDTO {
	return response.OperatorResponseDTO{
		ID:        operator.ID,
		Email:     operator.Email,
		FirstName: operator.FirstName,
		LastName:  operator.LastName,
		Role:      string(operator.Role),
		Active:    operator.Active,
	}
}
