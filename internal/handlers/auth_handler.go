package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"digi3/internal/authz"
	"digi3/internal/middleware"
	"digi3/internal/models"
	"digi3/internal/services"
)

const (
	csrfCookieName  = "digi3_csrf"
	flashCookieName = "flash_error"
	csrfFormField   = "_csrf_token"

	loginPath     = "/login"
	dashboardPath = "/dashboard"
)

type AuthHandler struct {
	authService    services.AuthService
	projectService services.ProjectService
	ev             *authz.Evaluator
	secureCookies  bool
}

func NewAuthHandler(authService services.AuthService, projectService services.ProjectService, ev *authz.Evaluator, secureCookies bool) *AuthHandler {
	return &AuthHandler{authService: authService, projectService: projectService, ev: ev, secureCookies: secureCookies}
}

func (h *AuthHandler) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", h.secureCookies, true)
}

func (h *AuthHandler) fail(c *gin.Context, msg string) {
	h.setCookie(c, flashCookieName, msg, 60)
	c.Redirect(http.StatusSeeOther, loginPath)
}

// @Summary      Formulaire de connexion
// @Description  Émet un jeton CSRF (cookie + JSON) et restitue le message flash éventuel
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /login [get]
func (h *AuthHandler) LoginForm(c *gin.Context) {
	token, err := h.authService.NewCSRFToken()
	if err != nil {
		log.Errorf("[auth][csrf][err] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	h.setCookie(c, csrfCookieName, token, 3600)

	resp := gin.H{"csrf_token": token}
	if flash, err := c.Cookie(flashCookieName); err == nil && flash != "" {
		resp["error"] = flash
		// one-shot
		h.setCookie(c, flashCookieName, "", -1)
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary      Connexion (formulaire)
// @Description  Vérifie le jeton CSRF puis les identifiants, pose le cookie de session et redirige
// @Tags         Auth
// @Accept       x-www-form-urlencoded
// @Param        email        formData  string  true  "Email"
// @Param        password     formData  string  true  "Mot de passe"
// @Param        _csrf_token  formData  string  true  "Jeton CSRF"
// @Success      303
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	start := time.Now()
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")

	expected, _ := c.Cookie(csrfCookieName)
	if err := h.authService.VerifyCSRF(expected, c.PostForm(csrfFormField)); err != nil {
		log.WithField("email", email).Warn("[auth][login][csrf] token mismatch")
		h.fail(c, "Jeton CSRF invalide.")
		return
	}

	user, err := h.authService.Authenticate(c.Request.Context(), email, password)
	if err != nil {
		if !errors.Is(err, services.ErrBadCredentials) {
			log.WithField("email", email).Errorf("[auth][login][err] %v", err)
		}
		h.fail(c, "Identifiants invalides.")
		return
	}

	token, exp, err := h.authService.IssueToken(user)
	if err != nil {
		log.WithField("user_id", user.ID).Errorf("[auth][login][err] %v", err)
		h.fail(c, "Connexion impossible, réessayez.")
		return
	}
	h.setCookie(c, middleware.SessionCookieName, token, int(time.Until(exp).Seconds()))
	h.setCookie(c, csrfCookieName, "", -1)

	log.WithFields(log.Fields{"user_id": user.ID, "took": time.Since(start).Truncate(time.Millisecond)}).Info("[auth][login][ok]")
	c.Redirect(http.StatusSeeOther, dashboardPath)
}

// @Summary      Connexion API
// @Description  Authentifie l'utilisateur et renvoie un jeton Bearer
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Identifiants"
// @Success      200    {object}  map[string]interface{}
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Router       /api/login [post]
func (h *AuthHandler) APILogin(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.authService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrBadCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		respondError(c, "[auth][api-login]", err)
		return
	}
	token, exp, err := h.authService.IssueToken(user)
	if err != nil {
		respondError(c, "[auth][api-login]", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"expires_at":   exp,
		"user":         user,
	})
}

// @Summary      Déconnexion
// @Tags         Auth
// @Success      303
// @Router       /logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	h.setCookie(c, middleware.SessionCookieName, "", -1)
	log.WithField("user_id", actorID(c)).Info("[auth][logout][ok]")
	c.Redirect(http.StatusSeeOther, loginPath)
}

// @Summary      Utilisateur courant
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  models.User
// @Router       /me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, actorFrom(c))
}

type dashboardProject struct {
	ID        int64                `json:"id"`
	Name      string               `json:"name"`
	Status    models.ProjectStatus `json:"status"`
	TaskCount int                  `json:"task_count"`
	MyTasks   int                  `json:"my_tasks"`
}

// @Summary      Tableau de bord
// @Description  Projets visibles par l'utilisateur connecté
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /dashboard [get]
func (h *AuthHandler) Dashboard(c *gin.Context) {
	actor := actorFrom(c)
	projects, err := h.projectService.List(c.Request.Context(), actor)
	if err != nil {
		respondError(c, "[dashboard]", err)
		return
	}
	out := make([]dashboardProject, 0, len(projects))
	for _, p := range projects {
		dp := dashboardProject{ID: p.ID, Name: p.Name, Status: p.Status, TaskCount: len(p.Tasks)}
		for _, t := range p.Tasks {
			if t.IsAssignedTo(actor.ID) {
				dp.MyTasks++
			}
		}
		out = append(out, dp)
	}
	c.JSON(http.StatusOK, gin.H{
		"user":                actor,
		"projects":            out,
		"can_create_project":  h.ev.CanCreateProject(actor),
		"can_view_statistics": h.ev.CanViewStatistics(actor),
		"can_manage_users":    h.ev.CanManageUsers(actor),
	})
}
