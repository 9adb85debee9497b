package service_test

import (
	"context"
	"testing"
	"time"

	"caffito/internal/config"
	"caffito/internal/dto"
	"caffito/internal/model"
	"caffito/internal/repository"
	"caffito/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type stubUsuarioRepo struct {
	users map[string]*model.Usuario
}

func newStubUsuarioRepo() *stubUsuarioRepo {
	return &stubUsuarioRepo{users: make(map[string]*model.Usuario)}
}

func (r *stubUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	if _, ok := r.users[u.Username]; ok {
		return gorm.ErrDuplicatedKey
	}
	u.ID = uuid.New()
	r.users[u.Username] = u
	return nil
}

func (r *stubUsuarioRepo) FindByUsername(_ context.Context, username string) (*model.Usuario, error) {
	u, ok := r.users[username]
	if !ok || !u.Activo {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *stubUsuarioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUsuarioRepo) List(_ context.Context, incl bool) ([]model.Usuario, error) {
	users := make([]model.Usuario, 0, len(r.users))
	for _, u := range r.users {
		if incl || u.Activo {
			users = append(users, *u)
		}
	}
	return users, nil
}

func (r *stubUsuarioRepo) Update(_ context.Context, u *model.Usuario) error {
	r.users[u.Username] = u
	return nil
}

func (r *stubUsuarioRepo) SetActivo(_ context.Context, id uuid.UUID, activo bool) error {
	for _, u := range r.users {
		if u.ID == id {
			u.Activo = activo
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubUsuarioRepo) RegistrarLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	for _, u := range r.users {
		if u.ID == id {
			u.UltimoLogin = &at
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

var _ repository.UsuarioRepository = (*stubUsuarioRepo)(nil)

const testSecret = "test_jwt_secret_32_chars_minimum!"

func newTestCfg() *config.Config {
	return &config.Config{JWTSecret: testSecret, JWTExpirationHours: 8, JWTRefreshHours: 24}
}

func seedUser(t *testing.T, repo *stubUsuarioRepo, username, password, rol string) *model.Usuario {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &model.Usuario{ID: uuid.New(), Username: username, Nombre: "Test", PasswordHash: string(hash), Rol: rol, Activo: true}
	repo.users[username] = u
	return u
}

func TestLogin(t *testing.T) {
	repo := newStubUsuarioRepo()
	seedUser(t, repo, "admin", "password123", "administrador")
	svc := service.NewAuthService(repo, newTestCfg())
	ctx := context.Background()

	resp, err := svc.Login(ctx, dto.LoginRequest{Username: "admin", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 8*3600, resp.ExpiresIn)
	assert.Equal(t, "administrador", resp.User.Rol)
	assert.Empty(t, resp.RefreshToken, "only a remembered login gets a refresh token")
	assert.NotNil(t, resp.User.UltimoLogin)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(resp.AccessToken, claims, func(*jwt.Token) (interface{}, error) { return []byte(testSecret), nil })
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims["user_id"])

	_, err = svc.Login(ctx, dto.LoginRequest{Username: "admin", Password: "wrong"})
	assert.ErrorIs(t, err, service.ErrCredenciales)
	_, err = svc.Login(ctx, dto.LoginRequest{Username: "nadie", Password: "password123"})
	assert.ErrorIs(t, err, service.ErrCredenciales)
}

func TestRefresh(t *testing.T) {
	repo := newStubUsuarioRepo()
	u := seedUser(t, repo, "super1", "pass1234", "supervisor")
	svc := service.NewAuthService(repo, newTestCfg())
	ctx := context.Background()

	login, err := svc.Login(ctx, dto.LoginRequest{Username: "super1", Password: "pass1234", Recordar: true})
	require.NoError(t, err)
	assert.Equal(t, 24*3600, login.RefreshExpiresIn)
	resp, err := svc.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, u.Username, resp.User.Username)
	assert.NotEmpty(t, resp.RefreshToken)

	_, err = svc.Refresh(ctx, login.AccessToken)
	assert.ErrorIs(t, err, service.ErrTokenInvalido, "an access token is not a refresh token")

	_, err = svc.Refresh(ctx, "this.is.garbage")
	assert.ErrorIs(t, err, service.ErrTokenInvalido)

	expirado := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": u.ID.String(), "typ": service.TokenRefresh, "exp": time.Now().Add(-time.Second).Unix(),
	})
	tok, err := expirado.SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = svc.Refresh(ctx, tok)
	assert.ErrorIs(t, err, service.ErrTokenInvalido)

	// A deactivated user cannot refresh.
	require.NoError(t, svc.DesactivarUsuario(ctx, u.ID))
	_, err = svc.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, service.ErrTokenInvalido)
}

func TestUsuarios_CRUD(t *testing.T) {
	repo := newStubUsuarioRepo()
	svc := service.NewAuthService(repo, newTestCfg())
	ctx := context.Background()

	resp, err := svc.CrearUsuario(ctx, dto.CrearUsuarioRequest{Username: "nuevo", Nombre: "Nuevo", Password: "securepass", Rol: "cajero"})
	require.NoError(t, err)
	assert.Equal(t, "cajero", resp.Rol)

	_, err = svc.CrearUsuario(ctx, dto.CrearUsuarioRequest{Username: "nuevo", Nombre: "Otro", Password: "securepass", Rol: "cajero"})
	assert.ErrorIs(t, err, service.ErrDuplicado)

	id := uuid.MustParse(resp.ID)
	upd, err := svc.ActualizarUsuario(ctx, id, dto.ActualizarUsuarioRequest{Rol: "supervisor"})
	require.NoError(t, err)
	assert.Equal(t, "supervisor", upd.Rol)

	require.NoError(t, svc.DesactivarUsuario(ctx, id))
	activos, err := svc.ListarUsuarios(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, activos)

	require.NoError(t, svc.ReactivarUsuario(ctx, id))
	assert.ErrorIs(t, svc.DesactivarUsuario(ctx, uuid.New()), service.ErrNoEncontrado)
}
