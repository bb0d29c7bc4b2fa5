package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"votedesk/internal/container"
	"votedesk/internal/middleware"
)

// NewRouter configures the HTTP routes of the console
func NewRouter(c *container.Container) (http.Handler, error) {
	h, err := New(c)
	if err != nil {
		return nil, err
	}
	cfg := c.GetConfig()
	log := c.GetLogger()

	r := chi.NewRouter()
	r.Use(middleware.RequestID(log))
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Compress(5))
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	r.Get("/health", h.Health)

	// JSON helpers for the address dropdowns
	r.Group(func(r chi.Router) {
		corsConfig := middleware.DefaultCORSConfig()
		corsConfig.AllowedOrigins = cfg.AllowedOrigins
		r.Use(middleware.CORS(corsConfig, log))
		r.Get("/locations", h.Locations)
		r.Options("/locations", func(w http.ResponseWriter, r *http.Request) {})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Session(middleware.SessionConfig{
			CookieName: cfg.SessionCookie,
			TTL:        cfg.SessionTTL,
			Secure:     cfg.CookieSecure,
		}, log))
		r.Use(middleware.SameOrigin(middleware.SameOriginConfig{
			TrustForwardedProto: cfg.TrustForwardedProto,
		}, log))
		r.Use(middleware.NoStore)

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			redirect(w, r, "/dashboard")
		})

		r.Get("/login", h.LoginPage)
		r.Post("/login", h.Login)
		r.Get("/login/verify", h.VerifyLoginPage)
		r.Post("/login/verify", h.VerifyLogin)
		r.Get("/register", h.RegisterPage)
		r.Post("/register", h.Register)
		r.Post("/register/verify", h.VerifyRegistration)
		r.Get("/forgot-password", h.ForgotPasswordPage)
		r.Post("/forgot-password", h.ForgotPassword)
		r.Get("/reset-password", h.ResetPasswordPage)
		r.Post("/reset-password", h.ResetPassword)
		r.Post("/logout", h.Logout)

		r.Get("/results", h.PublishedResults)
		r.Get("/results/{id}", h.PublicElectionResults)

		r.Group(func(r chi.Router) {
			r.Use(h.requireUser)

			r.Get("/dashboard", h.Dashboard)
			r.Get("/profile", h.ProfilePage)
			r.Post("/profile", h.UpdateProfile)

			r.Route("/vote", func(r chi.Router) {
				r.Get("/", h.ElectionList)
				r.Post("/{id}/start", h.StartVote)
				r.Get("/credentials", h.CredentialsPage)
				r.Post("/credentials", h.RequestPassword)
				r.Get("/password", h.PasswordPage)
				r.Post("/password", h.VerifyPassword)
				r.Get("/ballot", h.BallotPage)
				r.Post("/ballot", h.SelectCandidate)
				r.Post("/cast", h.CastVote)
				r.Get("/confirmation", h.ConfirmationPage)
				r.Get("/already-voted", h.AlreadyVotedPage)
				r.Post("/reveal", h.RevealVote)
				r.Post("/reset", h.ResetVote)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/login", h.AdminLoginPage)
			r.Post("/login", h.AdminSendOTP)
			r.Post("/login/verify", h.AdminVerifyOTP)
			r.Post("/logout", h.AdminLogout)

			r.Group(func(r chi.Router) {
				r.Use(h.requireAdmin)

				r.Get("/", func(w http.ResponseWriter, r *http.Request) {
					redirect(w, r, adminHome)
				})

				r.Route("/elections", func(r chi.Router) {
					r.Get("/", h.Elections)
					r.Post("/", h.CreateElection)
					r.Get("/new", h.NewElectionPage)
					r.Get("/{id}/edit", h.EditElectionPage)
					r.Post("/{id}", h.UpdateElection)
					r.Post("/{id}/delete", h.DeleteElection)
					r.Post("/{id}/archive", h.ArchiveElection)
				})

				r.Route("/candidates", func(r chi.Router) {
					r.Get("/", h.Candidates)
					r.Post("/", h.CreateCandidate)
					r.Get("/new", h.NewCandidatePage)
					r.Get("/{id}", h.CandidateDetail)
					r.Get("/{id}/edit", h.EditCandidatePage)
					r.Post("/{id}", h.UpdateCandidate)
					r.Post("/{id}/delete", h.DeleteCandidate)
					r.Post("/{id}/assign", h.AssignCandidate)
					r.Post("/{id}/unassign/{electionID}", h.UnassignCandidate)
				})

				r.Route("/users", func(r chi.Router) {
					r.Get("/", h.Users)
					r.Post("/{id}/active", h.SetUserActive)
					r.Post("/{id}/delete", h.DeleteUser)
				})

				r.Route("/access", func(r chi.Router) {
					r.Get("/", h.Access)
					r.Post("/toggle", h.ToggleAccess)
					r.Post("/assign", h.AssignAdmins)
					r.Post("/remove", h.RemoveAdmins)
					r.Post("/clear", h.ClearAccess)
				})

				r.Get("/notifications", h.NotificationsPage)
				r.Post("/notifications", h.SendNotification)

				r.Route("/results", func(r chi.Router) {
					r.Get("/", h.AdminResults)
					r.Get("/{id}", h.AdminElectionResults)
					r.Post("/{id}/publish", h.PublishResults)
				})

				r.Route("/history", func(r chi.Router) {
					r.Get("/", h.History)
					r.Post("/{id}/restore", h.RestoreElection)
					r.Post("/{id}/delete", h.PermanentDeleteElection)
				})
			})
		})

		r.NotFound(h.NotFound)
	})

	log.Info("Router configured successfully")
	return r, nil
}

// NotFound renders the 404 page
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, "error", page{
		Title: "Not found",
		Flash: flash(flashError, "The page you are looking for does not exist."),
	})
}
