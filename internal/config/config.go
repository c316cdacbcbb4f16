package config

import (
	"errors"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Tracing     struct {
		Endpoint    string `env:"ENDPOINT"`
		ServiceName string `env:"SERVICE_NAME" envDefault:"job-portal-api"`
	} `envPrefix:"TRACING_"`
	Server struct {
		Port            string   `env:"PORT" envDefault:"3000"`
		ReadTimeout     int      `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int      `env:"WRITE_TIMEOUT" envDefault:"15"`
		IdleTimeout     int      `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int      `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
		AllowedOrigins  []string `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
		FrontendURL     string   `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
		FrontendDir     string   `env:"FRONTEND_DIR" envDefault:"./web/dist"`
	} `envPrefix:"SERVER_"`
	Database struct {
		DSN                string `env:"DSN,required"`
		ConnectTimeout     int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout       int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		TransactionTimeout int    `env:"TRANSACTION_TIMEOUT" envDefault:"20"`
		MaxOpenConns       int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns       int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
		MaxIdleTime        int    `env:"MAX_IDLE_TIME" envDefault:"60"`
	} `envPrefix:"DATABASE_"`
	InitialOwner struct {
		Email       string `env:"EMAIL,required"`
		Password    string `env:"PASSWORD,required"`
		FirstName   string `env:"FIRST_NAME" envDefault:"Portal"`
		LastName    string `env:"LAST_NAME" envDefault:"Owner"`
		Designation string `env:"DESIGNATION" envDefault:"Head of Talent"`
	} `envPrefix:"INITIAL_OWNER_"`
	Session struct {
		Expiration int    `env:"EXPIRATION" envDefault:"2592000"` // 30 days
		Secret     string `env:"SECRET,required"`
		CookieName string `env:"COOKIE_NAME" envDefault:"__job_portal_session"`
	} `envPrefix:"SESSION_"`
	RoleSelection struct {
		TTL        int    `env:"TTL" envDefault:"300"` // 5 minutes
		HashKey    string `env:"HASH_KEY,required"`
		BlockKey   string `env:"BLOCK_KEY,required"`
		CookieName string `env:"COOKIE_NAME" envDefault:"__job_portal_role_selection"`
	} `envPrefix:"ROLE_SELECTION_"`
	Password struct {
		BcryptCost int `env:"BCRYPT_COST" envDefault:"12"`
		MinLength  int `env:"MIN_LENGTH" envDefault:"8"`
	} `envPrefix:"PASSWORD_"`
	Google struct {
		ClientID     string   `env:"CLIENT_ID"`
		ClientSecret string   `env:"CLIENT_SECRET"`
		Issuer       string   `env:"ISSUER" envDefault:"https://accounts.google.com"`
		RedirectURI  string   `env:"REDIRECT_URI" envDefault:"http://localhost:3000/auth/google/callback"`
		Scopes       []string `env:"SCOPES" envDefault:"openid,profile,email" envSeparator:","`
		CookieKey    string   `env:"COOKIE_KEY"`
	} `envPrefix:"GOOGLE_"`
	Seed struct {
		User struct {
			Password string `env:"PASSWORD" envDefault:"portal@seed123"`
		} `envPrefix:"USER_"`
	} `envPrefix:"SEED_"`
	Email struct {
		UserDomain string `env:"USER_DOMAIN" envDefault:"example.com"`
		SMTP       struct {
			Username    string `env:"USERNAME"`
			Password    string `env:"PASSWORD"`
			Host        string `env:"HOST"`
			Port        int    `env:"PORT" envDefault:"465"`
			DialTimeout int    `env:"DIAL_TIMEOUT" envDefault:"10"`
		} `envPrefix:"SMTP_"`
	} `envPrefix:"EMAIL_"`
	RabbitMQ struct {
		DSN            string `env:"DSN,required"`
		Queue          string `env:"QUEUE" envDefault:"email_queue"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
	} `envPrefix:"RABBITMQ_"`
	Redis struct {
		Host                string `env:"HOST" envDefault:"localhost"`
		Port                int    `env:"PORT" envDefault:"6379"`
		Password            string `env:"PASSWORD"`
		ConnectTimeout      int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		OperationExpiration int    `env:"OPERATION_EXPIRATION" envDefault:"10"`
	} `envPrefix:"REDIS_"`
	OTP struct {
		Expiration         int `env:"EXPIRATION" envDefault:"1800"` // 30 minutes
		VerifiedExpiration int `env:"VERIFIED_EXPIRATION" envDefault:"1800"`
	} `envPrefix:"OTP_"`
	NewUser struct {
		PasswordLength int `env:"PASSWORD_LENGTH" envDefault:"12"`
	} `envPrefix:"NEW_USER_"`
	Resume struct {
		Dir      string `env:"DIR" envDefault:"./data/resumes"`
		MaxBytes int64  `env:"MAX_BYTES" envDefault:"204800"` // 200KB
	} `envPrefix:"RESUME_"`
	SavedJobs struct {
		Limit int `env:"LIMIT" envDefault:"20"`
	} `envPrefix:"SAVED_JOBS_"`
}

// GoogleEnabled reports whether federated sign-in has client credentials.
func (c *Config) GoogleEnabled() bool {
	return c.Google.ClientID != "" && c.Google.ClientSecret != ""
}

func LoadConfig() (*Config, error) {
	// a missing .env is fine, the environment may already be populated
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// first error only, keeps the log readable
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	return cfg, nil
}
