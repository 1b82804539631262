package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/crm-api/internal/constants"
	"github.com/yukikurage/crm-api/internal/models"
	"github.com/yukikurage/crm-api/internal/permissions"
	"github.com/yukikurage/crm-api/internal/services"
)

type stubLoader struct {
	set   permissions.Set
	err   error
	calls int
}

func (s *stubLoader) Capabilities(uint64) (permissions.Set, error) {
	s.calls++
	return s.set, s.err
}

type stubInteractions map[uint64]*models.Interaction

func (s stubInteractions) GetOwnedInteraction(id, userID uint64) (*models.Interaction, error) {
	if id == 500 {
		return nil, errors.New("connection reset")
	}
	interaction, ok := s[id]
	if !ok {
		return nil, services.ErrInteractionNotFound
	}
	if !interaction.OwnedBy(userID) {
		return nil, services.ErrNotInteractionOwner
	}
	return interaction, nil
}

func withUser(userID uint64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(constants.ContextKeyUserID, userID)
		c.Next()
	}
}

func serve(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestRequirePermission(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		set        permissions.Set
		err        error
		required   []permissions.Capability
		wantStatus int
	}{
		{"held", permissions.NewSet(permissions.ViewInteraction), nil, []permissions.Capability{permissions.ViewInteraction}, http.StatusOK},
		{"missing one", permissions.NewSet(permissions.ViewInteraction), nil, []permissions.Capability{permissions.ViewInteraction, permissions.AddInteraction}, http.StatusForbidden},
		{"superuser", permissions.SuperuserSet(), nil, []permissions.Capability{permissions.DeleteProject}, http.StatusOK},
		{"loader error", permissions.Set{}, errors.New("user gone"), []permissions.Capability{permissions.AddCompany}, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := &stubLoader{set: tt.set, err: tt.err}
			r := gin.New()
			r.GET("/", withUser(1), RequirePermission(loader, tt.required...), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := serve(r, "/")
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestRequirePermission_CachesSet(t *testing.T) {
	gin.SetMode(gin.TestMode)

	loader := &stubLoader{set: permissions.NewSet(permissions.ChangeInteraction, permissions.ViewInteraction)}
	r := gin.New()
	r.GET("/", withUser(1),
		RequirePermission(loader, permissions.ViewInteraction),
		RequirePermission(loader, permissions.ChangeInteraction),
		func(c *gin.Context) {
			set, ok := GetCapabilities(c)
			require.True(t, ok)
			assert.True(t, set.Has(permissions.ViewInteraction))
			c.Status(http.StatusOK)
		})

	w := serve(r, "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, loader.calls)
}

func TestRequirePermission_NoUser(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/", RequirePermission(&stubLoader{}, permissions.AddCompany), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusUnauthorized, serve(r, "/").Code)
}

func TestRequireInteractionOwner(t *testing.T) {
	gin.SetMode(gin.TestMode)

	owner := uint64(7)
	loader := stubInteractions{
		1: {ID: 1, ManagerID: &owner, Description: "owned"},
		2: {ID: 2, Description: "no manager"},
	}

	tests := []struct {
		name       string
		userID     uint64
		path       string
		wantStatus int
	}{
		{"owner", owner, "/interaction/1", http.StatusOK},
		{"other user", 8, "/interaction/1", http.StatusForbidden},
		{"null manager", owner, "/interaction/2", http.StatusForbidden},
		{"missing", owner, "/interaction/3", http.StatusNotFound},
		{"bad id", owner, "/interaction/abc", http.StatusBadRequest},
		{"load failure", owner, "/interaction/500", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/interaction/:id", withUser(tt.userID), RequireInteractionOwner(loader), func(c *gin.Context) {
				interaction, ok := GetInteraction(c)
				require.True(t, ok)
				c.String(http.StatusOK, interaction.Description)
			})

			w := serve(r, tt.path)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "owned", w.Body.String())
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(constants.ContextKeyRequestID))
	})

	w := serve(r, "/")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, w.Header().Get("X-Request-ID"), w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func sessionRouter() *gin.Engine {
	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))
	r.POST("/login/:id", func(c *gin.Context) {
		id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
		if err := StartSession(c, id); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusOK)
	})
	r.POST("/forged", func(c *gin.Context) {
		session := sessions.Default(c)
		session.Set(constants.ContextKeyUserID, "7")
		_ = session.Save()
		c.Status(http.StatusOK)
	})
	r.POST("/logout", func(c *gin.Context) {
		_ = EndSession(c)
		c.Status(http.StatusOK)
	})
	r.GET("/me", RequireAuth(), func(c *gin.Context) {
		id, ok := GetUserID(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, strconv.FormatUint(id, 10))
	})
	return r
}

func sessionRequest(r *gin.Engine, method, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth_Session(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := sessionRouter()

	assert.Equal(t, http.StatusUnauthorized, sessionRequest(r, http.MethodGet, "/me", nil).Code)

	login := sessionRequest(r, http.MethodPost, "/login/7", nil)
	require.Equal(t, http.StatusOK, login.Code)
	cookies := login.Result().Cookies()
	require.NotEmpty(t, cookies)

	w := sessionRequest(r, http.MethodGet, "/me", cookies)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "7", w.Body.String())

	logout := sessionRequest(r, http.MethodPost, "/logout", cookies)
	require.Equal(t, http.StatusOK, logout.Code)
	assert.Equal(t, http.StatusUnauthorized, sessionRequest(r, http.MethodGet, "/me", logout.Result().Cookies()).Code)
}

func TestRequireAuth_MalformedSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := sessionRouter()

	forged := sessionRequest(r, http.MethodPost, "/forged", nil)
	require.Equal(t, http.StatusOK, forged.Code)

	w := sessionRequest(r, http.MethodGet, "/me", forged.Result().Cookies())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
