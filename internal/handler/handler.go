package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/jobportal-dev/job-portal/backend/internal/auth"
	"github.com/jobportal-dev/job-portal/backend/internal/config"
	"github.com/jobportal-dev/job-portal/backend/internal/domain"
	"github.com/jobportal-dev/job-portal/backend/internal/metrics"
	"github.com/jobportal-dev/job-portal/backend/internal/oauth"
)

// Store is everything the handlers read and write. *repository.Repository
// satisfies it.
type Store interface {
	auth.IdentityStore

	GetCandidateByID(ctx context.Context, id string) (*domain.Candidate, error)
	UpdateCandidate(ctx context.Context, c *domain.Candidate) error
	DeleteCandidateCascade(ctx context.Context, id string) error
	EmailRegistered(ctx context.Context, email string) (bool, error)

	GetHRByID(ctx context.Context, id string) (*domain.HRAccount, error)
	GetAllHR(ctx context.Context) ([]*domain.HRAccount, error)
	UpdateHR(ctx context.Context, h *domain.HRAccount) error
	DeleteHRCascade(ctx context.Context, id string) error

	CreateJob(ctx context.Context, j *domain.Job) error
	GetJobByID(ctx context.Context, id int64) (*domain.Job, error)
	GetJobs(ctx context.Context, status domain.JobStatus) ([]*domain.Job, error)
	GetJobsByHR(ctx context.Context, hrID string) ([]*domain.Job, error)
	UpdateJob(ctx context.Context, j *domain.Job) error
	DeleteJobCascade(ctx context.Context, id int64) error

	CreateApplication(ctx context.Context, a *domain.Application) error
	GetApplicationByID(ctx context.Context, id string) (*domain.Application, error)
	GetApplicationsByJob(ctx context.Context, jobID int64) ([]*domain.Application, error)
	GetApplicationsByCandidate(ctx context.Context, candidateID string) ([]*domain.Application, error)
	UpdateApplicationStatus(ctx context.Context, id string, status domain.ApplicationStatus) error

	SaveJob(ctx context.Context, s *domain.SavedJob) error
	CountSavedJobs(ctx context.Context, candidateID string) (int, error)
	GetSavedJobs(ctx context.Context, candidateID string) ([]*domain.Job, error)
	DeleteSavedJob(ctx context.Context, candidateID string, jobID int64) error
}

type OTPStore interface {
	Issue(ctx context.Context, email, code string) error
	Verify(ctx context.Context, email, code string) error
	IsVerified(ctx context.Context, email string) (bool, error)
	Consume(ctx context.Context, email string) error
}

type MailPublisher interface {
	Publish(ctx context.Context, msg domain.MailMessage) error
}

type BlobStore interface {
	Put(ctx context.Context, name string, data []byte) error
	Get(ctx context.Context, name string) ([]byte, error)
	Delete(ctx context.Context, name string) error
}

type Deps struct {
	Config   *config.Config
	Store    Store
	OTP      OTPStore
	Mail     MailPublisher
	Blobs    BlobStore
	Sessions *auth.Sessions
	// Google is nil when federated sign-in is not configured.
	Google *oauth.Google
	Logger *slog.Logger
}

type Handler struct {
	validate   *validator.Validate
	config     *config.Config
	store      Store
	translator ut.Translator
	otp        OTPStore
	mail       MailPublisher
	blobs      BlobStore
	log        *slog.Logger

	sessions    *auth.Sessions
	resolver    *auth.Resolver
	provisioner *auth.Provisioner
	credentials *auth.Credentials
	google      *oauth.Google

	Mux *chi.Mux
}

func NewHandler(deps Deps) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		validate:   validate,
		config:     deps.Config,
		store:      deps.Store,
		translator: trans,
		otp:        deps.OTP,
		mail:       deps.Mail,
		blobs:      deps.Blobs,
		log:        logger,

		sessions:    deps.Sessions,
		resolver:    auth.NewResolver(deps.Store, logger),
		provisioner: auth.NewProvisioner(deps.Store, logger),
		credentials: auth.NewCredentials(deps.Config.Password.BcryptCost),
		google:      deps.Google,

		Mux: chi.NewRouter(),
	}, nil
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
		return rctx.RoutePattern()
	}
	return "unmatched"
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)
	h.Mux.Use(metrics.Middleware(routePattern))
	h.Mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.config.Server.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           int((12 * time.Hour).Seconds()),
	}))

	h.Mux.Get("/healthz", h.Healthz)
	h.Mux.Handle("/metrics", metrics.Handler())

	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		if h.google != nil {
			r.Get("/google/login", h.GoogleLogin)
			r.Get("/google/callback", h.GoogleCallback)
		}

		// the role may still be unresolved on these
		r.Group(func(r chi.Router) {
			r.Use(h.session)
			r.Use(h.requireSession)
			r.Post("/validate-role", h.ValidateRole)
			r.Post("/set-session-role", h.SetSessionRole)
			r.Post("/create-federated-user", h.CreateFederatedUser)
			r.Get("/current-user-data", h.CurrentUserData)
			r.Post("/reset-password", h.ResetPassword)
		})
	})

	h.Mux.Route("/signup", func(r chi.Router) {
		r.Post("/check-email", h.CheckEmail)
		r.Post("/send-otp", h.SendOTP)
		r.Post("/verify-otp", h.VerifyOTP)
		r.Post("/complete", h.CompleteSignup)
	})

	h.Mux.Route("/jobs", func(r chi.Router) {
		r.Get("/", h.GetOpenJobs)
		r.With(h.job).Get("/{jobId}", h.GetOpenJob)
	})

	h.Mux.Route("/hr", func(r chi.Router) {
		r.Use(h.session)

		r.Group(func(r chi.Router) {
			r.Use(h.pageGateway(domain.RoleHR))
			r.Get("/dashboard", h.ServeDashboard)
			r.Get("/dashboard/*", h.ServeDashboard)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.apiGateway(domain.RoleHR))
			r.Use(h.hrActor)

			r.Route("/users", func(r chi.Router) {
				r.Get("/", h.GetAllHR)
				r.Post("/", h.CreateHR)
				r.Route("/{id}", func(r chi.Router) {
					r.Use(h.targetHR)
					r.Use(h.preventOperateInitialOwner)
					r.Put("/", h.UpdateHR)
					r.Delete("/", h.DeleteHR)
				})
			})

			r.Route("/jobs", func(r chi.Router) {
				r.Get("/", h.GetMyPostedJobs)
				r.Post("/", h.CreateJob)
				r.Route("/{jobId}", func(r chi.Router) {
					r.Use(h.job)
					r.Put("/", h.UpdateJob)
					r.Delete("/", h.DeleteJob)
					r.Get("/applications", h.GetJobApplications)
				})
			})

			r.Route("/applications/{applicationId}", func(r chi.Router) {
				r.Use(h.application)
				r.Get("/", h.GetApplication)
				r.Get("/resume", h.DownloadApplicationResume)
				r.Patch("/status", h.UpdateApplicationStatus)
			})
		})
	})

	h.Mux.Route("/candidate", func(r chi.Router) {
		r.Use(h.session)

		r.Group(func(r chi.Router) {
			r.Use(h.pageGateway(domain.RoleCandidate))
			r.Get("/dashboard", h.ServeDashboard)
			r.Get("/dashboard/*", h.ServeDashboard)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.apiGateway(domain.RoleCandidate))
			r.Use(h.candidateActor)

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", h.GetProfile)
				r.Put("/", h.UpdateProfile)
				r.Delete("/", h.DeleteProfile)
			})
			r.Post("/resume", h.UploadResume)

			r.Route("/applications", func(r chi.Router) {
				r.Get("/", h.GetMyApplications)
				r.Post("/", h.Apply)
				r.Get("/check", h.CheckApplied)
			})

			r.Route("/saved-jobs", func(r chi.Router) {
				r.Get("/", h.GetSavedJobs)
				r.Post("/", h.SaveJob)
				r.Delete("/{jobId}", h.UnsaveJob)
			})
		})
	})

	h.Mux.NotFound(h.ServeStatic)
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	h.successResponse(w, r, "ok", nil)
}
