package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mind-engage/mindengage-games/internal/auth"
	authmw "github.com/mind-engage/mindengage-games/internal/auth/middleware"
	"github.com/mind-engage/mindengage-games/internal/game"
	"github.com/mind-engage/mindengage-games/internal/generation"
	"github.com/mind-engage/mindengage-games/internal/preview"
	"github.com/mind-engage/mindengage-games/internal/rbac"
	"github.com/mind-engage/mindengage-games/internal/storage"
)

// Deps is what the router needs. Generator may be nil, in which case
// POST /generate answers 503.
type Deps struct {
	Auth      *authmw.AuthService
	Games     *game.Service
	Plays     *preview.Hub
	Generator generation.Generator
	MaxCount  int
	Images    *storage.ImageIntake
	Blobs     storage.BlobStore

	CORSOrigins   []string
	SecureCookies bool
	GenTimeout    time.Duration
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Post("/auth/login", authmw.LoginHandler(d.Auth))
	r.Post("/auth/guest", auth.GuestLoginHandler(d.Auth, d.SecureCookies))
	r.Route("/assets", func(ar chi.Router) {
		MountAssets(ar, d.Blobs)
	})

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(authmw.JWTMiddleware(d.Auth))

		// batches run one call after another, so they get their own budget
		genTimeout := d.GenTimeout
		if genTimeout <= 0 {
			genTimeout = 10 * time.Minute
		}
		pr.With(rbac.Require(rbac.PermGameGenerate), middleware.Timeout(genTimeout)).
			Post("/generate", GenerateHandler(d.Games, d.Generator, d.MaxCount))

		pr.Group(func(pr chi.Router) {
			pr.Use(middleware.Timeout(30 * time.Second))

			pr.With(rbac.Require(rbac.PermGameView)).
				Get("/game-types", ListTypesHandler(d.Games))
			pr.With(rbac.RequireAny(rbac.PermGameCreate, rbac.PermGameGenerate)).
				Get("/game-types/{name}/schema", TypeSchemaHandler(d.Games))
			pr.With(rbac.Require(rbac.PermGameCreate)).
				Post("/game-types/{name}/normalize", NormalizeHandler(d.Games))

			pr.With(rbac.Require(rbac.PermGameView)).
				Get("/subjects/{subjectID}/games", ListGamesHandler(d.Games))
			pr.With(rbac.Require(rbac.PermGameView)).
				Get("/games/{gameID}", GetGameHandler(d.Games))
			pr.With(rbac.Require(rbac.PermGameCreate)).
				Post("/games", CreateGameHandler(d.Games))
			pr.With(rbac.Require(rbac.PermGameUpdate)).
				Patch("/games/{gameID}", UpdateGameHandler(d.Games))
			pr.With(rbac.Require(rbac.PermGameDelete)).
				Delete("/games/{gameID}", DeleteGameHandler(d.Games))
			pr.With(rbac.Require(rbac.PermGameCreate)).
				Post("/images", UploadImageHandler(d.Images))

			pr.With(rbac.Require(rbac.PermPlayCreate)).
				Post("/games/{gameID}/plays", OpenPlayHandler(d.Games, d.Plays))
			pr.With(rbac.Require(rbac.PermPlayCreate)).
				Get("/plays/{playID}", GetPlayHandler(d.Plays))
			pr.With(rbac.Require(rbac.PermPlaySubmit)).
				Post("/plays/{playID}/moves", MovePlayHandler(d.Plays))
			pr.With(rbac.Require(rbac.PermPlaySubmit)).
				Post("/plays/{playID}/submit", SubmitPlayHandler(d.Plays))
			pr.With(rbac.Require(rbac.PermPlaySubmit)).
				Post("/plays/{playID}/reset", ResetPlayHandler(d.Plays))
		})
	})
	return r
}
