package identity

import (
	"errors"
	"net/http"

	dmn "github.com/beka-birhanu/vinom-zkmaze/domain"
	"github.com/beka-birhanu/vinom-zkmaze/service"
	"github.com/beka-birhanu/vinom-zkmaze/service/i"
	"github.com/gin-gonic/gin"
)

// IdentityServer handles HTTP requests related to authentication.
type IdentityServer struct {
	authService i.Authenticator
}

// NewIdentityServer creates a new IdentityServer.
func NewIdentityServer(a i.Authenticator) *IdentityServer {
	return &IdentityServer{
		authService: a,
	}
}

// RegisterPublic registers public routes.
func (c *IdentityServer) RegisterPublic(route *gin.RouterGroup) {
	auth := route.Group("/auth")
	{
		auth.POST("/register", c.registerClient)
		auth.POST("/login", c.login)
	}
}

// RegisterProtected registers privileged routes.
func (c *IdentityServer) RegisterProtected(route *gin.RouterGroup) {
}

// registerClient handles client registration.
func (c *IdentityServer) registerClient(ctx *gin.Context) {
	var request AuthRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	client, err := c.authService.Register(ctx.Request.Context(), request.Name, request.Password)
	if err != nil {
		ctx.JSON(registerStatus(err), gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusCreated, &RegisterResponse{
		ID:      client.ID.String(),
		Name:    client.Name,
		Credits: client.Credits,
	})
}

func registerStatus(err error) int {
	switch {
	case errors.Is(err, dmn.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, dmn.ErrNameTooShort),
		errors.Is(err, dmn.ErrNameTooLong),
		errors.Is(err, dmn.ErrInvalidName),
		errors.Is(err, dmn.ErrWeakPassword):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// login handles client login.
func (c *IdentityServer) login(ctx *gin.Context) {
	var request AuthRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	client, token, err := c.authService.SignIn(ctx.Request.Context(), request.Name, request.Password)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrInvalidCredentials) {
			status = http.StatusUnauthorized
		}
		ctx.JSON(status, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, &AuthResponse{
		ID:      client.ID.String(),
		Name:    client.Name,
		Credits: client.Credits,
		Token:   token,
	})
}
