package service

import (
	"fmt"
	"os"
	"testing"
	"time"

	"courier"
	"courier/internal/api/handler/request"
	"courier/internal/api/models"
	"courier/internal/api/repo"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func testAppConfig() courier.AppConfig {
	var cfg courier.AppConfig
	cfg.JWTConfig.Secret = "test-secret"
	cfg.JWTConfig.Expiration = 15
	cfg.JWTConfig.RefreshExpiration = 1
	return cfg
}

// setupOperatorTestDB connects to the database described by .env.test, skipping when none is configured
func setupOperatorTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	_ = godotenv.Load("../../../.env.test")
	if os.Getenv("DB_HOSTNAME") == "" {
		t.Skip("DB_HOSTNAME not set, skipping database test")
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		os.Getenv("DB_HOSTNAME"), os.Getenv("DB_USERNAME"), os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"), courier.GetEnv("DB_PORT", "5432"), courier.GetEnv("DB_SSL_MODE", "disable"))
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "Failed to connect to test database")

	require.NoError(t, db.AutoMigrate(&models.Operator{}), "Failed to migrate operator table")
	return db
}

func cleanupOperator(db *gorm.DB, id uint) {
	if id > 0 {
		db.Unscoped().Delete(&models.Operator{}, id)
	}
}

func uniqueEmail() string {
	return fmt.Sprintf("test-%d@example.com", time.Now().UnixNano())
}

func TestOperator_RefreshToken_Invalid(t *testing.T) {
	svc := NewOperatorService(repo.NewOperatorRepository(nil), testAppConfig(), zerolog.Nop())

	_, err := svc.RefreshToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestOperator_ToResponse(t *testing.T) {
	dto := toOperatorResponse(models.Operator{
		ID:        4,
		Email:     "ops@example.com",
		Password:  "hash",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Role:      models.RoleAdmin,
		Active:    true,
	})

	assert.Equal(t, uint(4), dto.ID)
	assert.Equal(t, "admin", dto.Role)
	assert.Equal(t, "Ada", dto.FirstName)
	assert.True(t, dto.Active)
}

func TestOperator_RegisterAndLogin(t *testing.T) {
	db := setupOperatorTestDB(t)
	svc := NewOperatorService(repo.NewOperatorRepository(db), testAppConfig(), zerolog.Nop())
	email := uniqueEmail()

	registered, err := svc.Register(request.RegisterDTO{
		Email:     email,
		Password:  "testpassword123",
		FirstName: "Jean",
		LastName:  "Dupont",
	})
	require.NoError(t, err, "Failed to register operator")
	defer cleanupOperator(db, registered.Operator.ID)

	assert.NotEmpty(t, registered.Token)
	assert.NotEmpty(t, registered.RefreshToken)
	assert.Equal(t, email, registered.Operator.Email)
	assert.Equal(t, "operator", registered.Operator.Role)
	assert.True(t, registered.Operator.Active)

	_, err = svc.Register(request.RegisterDTO{Email: email, Password: "testpassword123", FirstName: "J", LastName: "D"})
	assert.ErrorIs(t, err, ErrOperatorExists)

	loggedIn, err := svc.Login(request.LoginDTO{Email: email, Password: "testpassword123"})
	require.NoError(t, err)
	assert.Equal(t, registered.Operator.ID, loggedIn.Operator.ID)

	_, err = svc.Login(request.LoginDTO{Email: email, Password: "wrongpassword"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(request.LoginDTO{Email: uniqueEmail(), Password: "whatever"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestOperator_RefreshToken_Rotates(t *testing.T) {
	db := setupOperatorTestDB(t)
	svc := NewOperatorService(repo.NewOperatorRepository(db), testAppConfig(), zerolog.Nop())

	registered, err := svc.Register(request.RegisterDTO{
		Email:     uniqueEmail(),
		Password:  "refreshpassword",
		FirstName: "Marie",
		LastName:  "Martin",
	})
	require.NoError(t, err)
	defer cleanupOperator(db, registered.Operator.ID)

	// token timestamps have second precision
	time.Sleep(1100 * time.Millisecond)

	refreshed, err := svc.RefreshToken(registered.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, registered.RefreshToken, refreshed.RefreshToken)

	_, err = svc.RefreshToken(registered.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefresh, "a rotated token is rejected")

	got, err := svc.GetByID(registered.Operator.ID)
	require.NoError(t, err)
	assert.Equal(t, registered.Operator.Email, got.Email)

	_, err = svc.GetByID(0)
	assert.ErrorIs(t, err, ErrOperatorNotFound)
}
