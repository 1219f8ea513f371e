package api

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nextmic/nextmic/internal/ai"
	"github.com/nextmic/nextmic/internal/auth"
	"github.com/nextmic/nextmic/internal/db"
	"github.com/nextmic/nextmic/internal/discover"
	"github.com/nextmic/nextmic/internal/functions"
	"github.com/nextmic/nextmic/internal/models"
	"github.com/nextmic/nextmic/internal/pipeline"
)

type Server struct {
	Store       *db.Store
	AuthService *auth.Service
	Functions   *functions.Client
	Echo        *echo.Echo
	DB          *pgxpool.Pool

	registry *discover.Registry

	// One board session per signed-in user: the engine holding their
	// in-memory card list plus the notification buffer their next
	// response drains.
	sessMu   sync.Mutex
	sessions map[uuid.UUID]*boardSession
}

type boardSession struct {
	engine    *pipeline.Engine
	collector *pipeline.Collector
}

var (
	adminSecretOnce    sync.Once
	adminSecretRuntime string
	adminSecretErr     error
)

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func NewServer(pool *pgxpool.Pool, fns *functions.Client) *Server {
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Validator = &requestValidator{validate: validator.New()}

	// CORS: allow frontend origins from env or default to localhost
	allowedOrigins := []string{"http://localhost:5173"}
	if extra := os.Getenv("CORS_ORIGINS"); extra != "" {
		for _, o := range strings.Split(extra, ",") {
			o = strings.TrimSpace(o)
			if o != "" {
				allowedOrigins = append(allowedOrigins, o)
			}
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "X-Admin-Secret"},
	}))

	registry, err := discover.LoadRegistry("config/sources.yaml")
	if err != nil {
		log.Printf("[api] source registry unavailable: %v", err)
	}

	s := &Server{
		DB:          pool,
		Store:       db.NewStore(pool),
		AuthService: auth.NewService(pool),
		Functions:   fns,
		Echo:        e,
		registry:    registry,
		sessions:    make(map[uuid.UUID]*boardSession),
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.Echo.GET("/health", s.handleHealth)
	s.Echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := s.Echo.Group("/api/v1")
	api.POST("/auth/signup", s.handleSignup)
	api.POST("/auth/login", s.handleLogin)

	api.GET("/opportunities", s.handleListOpportunities)
	api.GET("/opportunities/:id", s.handleGetOpportunity)

	// Signed-in routes
	user := api.Group("")
	user.Use(auth.Middleware)
	user.GET("/pipeline", s.handleGetBoard)
	user.POST("/pipeline/move", s.handleMoveCard)
	user.POST("/pipeline/cards/:id/view", s.handleViewCard)
	user.GET("/pipeline/activity", s.handleGetActivity)
	user.GET("/profile", s.handleGetProfile)
	user.PATCH("/profile", s.handleUpdateProfile)
	user.POST("/generate/:kind", s.handleGenerate)

	// Admin routes (ingestion and ranking)
	admin := api.Group("/admin")
	admin.Use(s.adminMiddleware)
	admin.POST("/ingest/source/:id", s.handleIngestSource)
	admin.POST("/rank", s.handleRank)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (s *Server) handleSignup(c echo.Context) error {
	var req auth.SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	resp, err := s.AuthService.Signup(c.Request().Context(), req)
	if err != nil {
		if err == auth.ErrUserExists {
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusCreated, resp)
}

func (s *Server) handleLogin(c echo.Context) error {
	var req auth.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	resp, err := s.AuthService.Login(c.Request().Context(), req)
	if err != nil {
		if err == auth.ErrInvalidCreds {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleListOpportunities(c echo.Context) error {
	params := db.ListParams{
		Query:     c.QueryParam("q"),
		Location:  c.QueryParam("location"),
		Organizer: c.QueryParam("organizer"),
		SortBy:    c.QueryParam("sort"),
		Limit:     20,
	}
	if l, err := strconv.Atoi(c.QueryParam("limit")); err == nil && l > 0 && l <= 100 {
		params.Limit = l
	}
	if o, err := strconv.Atoi(c.QueryParam("offset")); err == nil && o >= 0 {
		params.Offset = o
	}
	if v, err := strconv.ParseFloat(c.QueryParam("min_fee"), 64); err == nil && v > 0 {
		params.MinFee = v
	}
	if v, err := strconv.ParseFloat(c.QueryParam("max_fee"), 64); err == nil && v > 0 {
		params.MaxFee = v
	}
	if v, err := strconv.Atoi(c.QueryParam("deadline_days")); err == nil && v > 0 {
		params.DeadlineDays = v
	}

	result, err := s.Store.ListOpportunities(c.Request().Context(), params)
	if err != nil {
		c.Logger().Errorf("Failed to list opportunities: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleGetOpportunity(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid opportunity ID"})
	}
	opp, err := s.Store.GetOpportunity(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
	}
	return c.JSON(http.StatusOK, opp)
}

func (s *Server) handleGetProfile(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	profile, err := s.Store.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load profile"})
	}
	return c.JSON(http.StatusOK, profile)
}

type updateProfileRequest struct {
	Bio               string   `json:"bio"`
	Topics            []string `json:"topics" validate:"max=50"`
	FeeMin            float64  `json:"fee_min" validate:"gte=0"`
	FeeMax            float64  `json:"fee_max" validate:"gte=0"`
	FollowUpIntervals []int    `json:"follow_up_intervals" validate:"max=10,dive,gt=0,lte=365"`
}

func (s *Server) handleUpdateProfile(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	profile := models.SpeakerProfile{
		UserID:            userID,
		Bio:               req.Bio,
		Topics:            req.Topics,
		FeeMin:            req.FeeMin,
		FeeMax:            req.FeeMax,
		FollowUpIntervals: req.FollowUpIntervals,
	}
	if err := s.Store.UpdateProfile(c.Request().Context(), profile); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update profile"})
	}

	// The board engine caches follow-up intervals, so force a rebuild on
	// the next board request.
	s.dropSession(userID)

	return c.JSON(http.StatusOK, profile)
}

type generateRequest struct {
	EventName string   `json:"event_name" validate:"required"`
	Organizer string   `json:"organizer"`
	Topics    []string `json:"topics"`
	Notes     string   `json:"notes"`
}

// handleGenerate proxies pitch and outline drafting to the external
// generateSpeakerText function, enriched with the speaker's profile.
func (s *Server) handleGenerate(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	kind := c.Param("kind")
	if kind != "pitch" && kind != "outline" && kind != "coaching" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Unknown generation kind"})
	}

	var req generateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	bio := ""
	if profile, err := s.Store.GetProfile(ctx, userID); err == nil {
		bio = profile.Bio
	}

	text, err := s.Functions.GenerateText(ctx, kind, functions.GenerateRequest{
		EventName: req.EventName,
		Organizer: req.Organizer,
		Topics:    req.Topics,
		Bio:       bio,
		Notes:     req.Notes,
	})
	if err != nil {
		c.Logger().Errorf("Generation failed: %v", err)
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "Text generation unavailable"})
	}

	return c.JSON(http.StatusOK, map[string]string{"kind": kind, "text": text})
}

func (s *Server) handleIngestSource(c echo.Context) error {
	if s.registry == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Source registry unavailable"})
	}
	sourceID := c.Param("id")

	ingestor := discover.NewIngestor(s.registry, s.Store)
	stats, err := ingestor.IngestSource(c.Request().Context(), sourceID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("%s ingestion complete", sourceID),
		"stats":   stats,
	})
}

func (s *Server) handleRank(c echo.Context) error {
	userID, err := uuid.Parse(c.QueryParam("user_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "user_id param required"})
	}

	limit := 50
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 && v <= 500 {
		limit = v
	}

	ranker := ai.NewRanker(s.Store, s.Functions)
	ctx := c.Request().Context()

	embedded, err := ranker.EmbedMissing(ctx, 200)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	stats, err := ranker.RankForUser(ctx, userID, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	stats.Embedded += embedded

	// New scores should show up on the user's next board load.
	s.dropSession(userID)

	return c.JSON(http.StatusOK, stats)
}

func (s *Server) Start(port string) error {
	return s.Echo.Start(":" + port)
}

func (s *Server) adminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		secret, err := adminSecret()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Server admin configuration error"})
		}

		authHeader := c.Request().Header.Get("Authorization")
		adminHeader := c.Request().Header.Get("X-Admin-Secret")

		if adminHeader == secret {
			return next(c)
		}
		if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
			if authHeader[7:] == secret {
				return next(c)
			}
		}

		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized admin access"})
	}
}

func adminSecret() (string, error) {
	adminSecretOnce.Do(func() {
		secret := strings.TrimSpace(os.Getenv("ADMIN_SECRET"))
		if secret != "" {
			adminSecretRuntime = secret
			return
		}

		buf := make([]byte, 48)
		if _, err := rand.Read(buf); err != nil {
			adminSecretErr = fmt.Errorf("failed to generate ADMIN_SECRET fallback: %w", err)
			return
		}

		adminSecretRuntime = base64.RawURLEncoding.EncodeToString(buf)
		log.Print("ADMIN_SECRET is not set; using ephemeral in-memory fallback secret")
	})

	if adminSecretErr != nil {
		return "", adminSecretErr
	}
	if adminSecretRuntime == "" {
		return "", fmt.Errorf("admin secret unavailable")
	}

	return adminSecretRuntime, nil
}
