package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/rematch-liga/league-system/handlers"
	"github.com/rematch-liga/league-system/middleware"
	"github.com/rematch-liga/league-system/models"
)

// SetupRoutes wires every HTTP endpoint onto the router. Read endpoints
// are public, mutations require a token and the role checks happen again
// inside the services.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	teamHandler *handlers.TeamHandler,
	leagueHandler *handlers.LeagueHandler,
	matchHandler *handlers.MatchHandler,
	tournamentHandler *handlers.TournamentHandler,
	invitationHandler *handlers.InvitationHandler,
	notificationHandler *handlers.NotificationHandler,
	dashboardHandler *handlers.DashboardHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate([]byte(jwtSecret))
	adminOnly := middleware.Authorize(models.RoleAdmin)

	router.Get("/swagger/*", httpSwagger.WrapHandler)

	router.Route("/auth", func(r chi.Router) {
		r.Get("/discord/login", authHandler.DiscordLogin)
		r.Get("/discord/callback", authHandler.DiscordCallback)
		r.Post("/admin/login", authHandler.AdminLogin)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/me", authHandler.Me)
		})
	})

	router.Route("/teams", func(r chi.Router) {
		r.Get("/", teamHandler.List)
		r.Get("/{teamID}", teamHandler.GetByID)
		r.Get("/{teamID}/matches", matchHandler.ListByTeam)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/", teamHandler.Create)
			r.Get("/mine", teamHandler.ListMine)
			r.Post("/{teamID}/crest", teamHandler.UploadCrest)
			r.Post("/{teamID}/invitations", invitationHandler.Invite)
			r.Delete("/{teamID}/members/{userID}", teamHandler.RemoveMember)
			r.Delete("/{teamID}", teamHandler.Deactivate)
		})
	})

	router.Route("/leagues", func(r chi.Router) {
		r.Get("/", leagueHandler.List)
		r.Get("/{leagueID}/standings", leagueHandler.Standings)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/{leagueID}/join", leagueHandler.Join)

			r.Group(func(r chi.Router) {
				r.Use(adminOnly)
				r.Post("/", leagueHandler.Create)
			})
		})
	})

	router.Route("/matches", func(r chi.Router) {
		r.Get("/upcoming", matchHandler.ListUpcoming)
		r.Get("/calendar", matchHandler.Calendar)
		r.Get("/{matchID}", matchHandler.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(adminOnly)
			r.Post("/", matchHandler.Schedule)
			r.Patch("/{matchID}/result", matchHandler.Complete)
			r.Patch("/{matchID}/status", matchHandler.ChangeStatus)
		})
	})

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", tournamentHandler.List)
		r.Get("/{tournamentID}", tournamentHandler.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/{tournamentID}/register", tournamentHandler.Register)

			r.Group(func(r chi.Router) {
				r.Use(adminOnly)
				r.Post("/", tournamentHandler.Create)
			})
		})
	})

	router.Route("/invitations", func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/", invitationHandler.ListMine)
		r.Patch("/{invitationID}", invitationHandler.Resolve)
	})

	router.Route("/notifications", func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/", notificationHandler.List)
		r.Get("/unread", notificationHandler.UnreadCount)
		r.Patch("/{notificationID}/read", notificationHandler.MarkRead)
	})

	router.Route("/users", func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/{userID}", userHandler.GetByID)
		r.Post("/captain-requests", userHandler.RequestCaptainRole)

		r.Group(func(r chi.Router) {
			r.Use(adminOnly)
			r.Patch("/{userID}/role", userHandler.PromoteRole)
			r.Get("/captain-requests", userHandler.ListCaptainRequests)
			r.Patch("/captain-requests/{requestID}", userHandler.ResolveCaptainRequest)
		})
	})

	router.Route("/admin", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(adminOnly)
		r.Get("/dashboard", dashboardHandler.Stats)
	})

	router.Get("/ws", webSocketHandler.ServeWs)
}
