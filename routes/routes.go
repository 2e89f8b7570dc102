package routes

import (
	"net/http"
	"time"

	"github.com/Dosada05/league-simulator/handlers"
	"github.com/Dosada05/league-simulator/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
)

func SetupRoutes(
	router chi.Router,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	seasonHandler *handlers.SeasonHandler,
	matchHandler *handlers.MatchHandler,
	webSocketHandler *handlers.WebSocketHandler,
	metricsHandler http.Handler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate([]byte(jwtSecret))

	// Websocket-соединения живут дольше таймаута обычных запросов.
	router.Get("/ws/fixtures/{fixtureID}", webSocketHandler.ServeFixture)
	router.Get("/ws/round", webSocketHandler.ServeRound)
	router.Handle("/metrics", metricsHandler)

	router.Group(func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(30 * time.Second))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.With(authenticate).Get("/me", authHandler.Me)
		})

		r.Get("/season", seasonHandler.GetClock)
		r.Get("/season/overview", seasonHandler.GetOverview)
		r.Get("/championships/{championshipID}/standings", seasonHandler.GetStandings)
		r.Get("/championships/{championshipID}/fixtures", seasonHandler.GetFixtures)
		r.Get("/teams/{teamID}/players", seasonHandler.GetTeamPlayers)

		r.Route("/rounds", func(r chi.Router) {
			r.Get("/current", matchHandler.CurrentRound)
			r.Post("/start", matchHandler.StartRound)
			r.Post("/advance", matchHandler.AdvanceRound)
		})

		r.Route("/matches", func(r chi.Router) {
			r.Get("/{fixtureID}", matchHandler.GetLive)

			// Решения менеджера принимаются только для команды из токена.
			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Use(middleware.RequireTeam)
				r.Post("/substitutions", matchHandler.Substitute)
				r.Post("/resume", matchHandler.Resume)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(middleware.RequireTeam)
			r.Put("/squad", matchHandler.SubmitSquad)
		})
	})
}
