package auth

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/jobportal-dev/job-portal/backend/internal/config"
	"github.com/jobportal-dev/job-portal/backend/internal/domain"
)

// SessionClaims is the payload of the long lived session token. UserType is
// empty until a role is committed.
type SessionClaims struct {
	ID       string `json:"id,omitempty"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	UserType string `json:"userType,omitempty"`
	Method   string `json:"method"`
	jwt.RegisteredClaims
}

// Selection is the transient role choice made before the session carries a
// role. It only ever travels inside a signed and encrypted cookie.
type Selection struct {
	Email      string      `json:"email"`
	Role       domain.Role `json:"role"`
	IdentityID string      `json:"identityId"`
	Name       string      `json:"name"`
	Nonce      string      `json:"nonce"`
	IssuedAt   int64       `json:"issuedAt"`
}

func (s *Selection) principal(method domain.AuthMethod) *domain.Principal {
	return &domain.Principal{Email: s.Email, Name: s.Name, Role: s.Role, IdentityID: s.IdentityID, Method: method}
}

type SessionOptions struct {
	Secret              []byte
	Lifetime            time.Duration
	CookieName          string
	SelectionCookieName string
	SelectionTTL        time.Duration
	SelectionHashKey    []byte
	SelectionBlockKey   []byte
	Secure              bool
}

func SessionOptionsFromConfig(cfg *config.Config) SessionOptions {
	return SessionOptions{
		Secret:              []byte(cfg.Session.Secret),
		Lifetime:            time.Duration(cfg.Session.Expiration) * time.Second,
		CookieName:          cfg.Session.CookieName,
		SelectionCookieName: cfg.RoleSelection.CookieName,
		SelectionTTL:        time.Duration(cfg.RoleSelection.TTL) * time.Second,
		SelectionHashKey:    []byte(cfg.RoleSelection.HashKey),
		SelectionBlockKey:   []byte(cfg.RoleSelection.BlockKey),
		Secure:              cfg.Environment == "production",
	}
}

// Sessions owns the session token and the role selection side channel. The
// session is stateless; the ledger only remembers consumed selection nonces.
type Sessions struct {
	opts       SessionOptions
	selections *securecookie.SecureCookie
	ledger     NonceLedger
	logger     *slog.Logger
	now        func() time.Time
}

func NewSessions(opts SessionOptions, ledger NonceLedger, logger *slog.Logger) *Sessions {
	if logger == nil {
		logger = slog.Default()
	}

	// securecookie wants a 32 or 64 byte hash key and an AES sized block key
	hashKey := sha256.Sum256(opts.SelectionHashKey)
	blockKey := sha256.Sum256(opts.SelectionBlockKey)
	sc := securecookie.New(hashKey[:], blockKey[:])
	sc.MaxAge(int(opts.SelectionTTL.Seconds()))
	sc.SetSerializer(securecookie.JSONEncoder{})

	return &Sessions{
		opts:       opts,
		selections: sc,
		ledger:     ledger,
		logger:     logger,
		now:        time.Now,
	}
}

// Issue signs p into a new session cookie. p.Role may be RoleUnresolved.
func (s *Sessions) Issue(w http.ResponseWriter, p *domain.Principal) error {
	now := s.now()
	expiration := now.Add(s.opts.Lifetime)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		ID:       p.IdentityID,
		Email:    p.Email,
		Name:     p.Name,
		UserType: string(p.Role),
		Method:   string(p.Method),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiration),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   p.Email,
		},
	})
	ss, err := token.SignedString(s.opts.Secret)
	if err != nil {
		return err
	}

	http.SetCookie(w, s.cookie(s.opts.CookieName, ss, expiration))
	return nil
}

// IssueUnresolved starts a session whose role is still undecided, as after a
// federated callback.
func (s *Sessions) IssueUnresolved(w http.ResponseWriter, email, name string, method domain.AuthMethod) error {
	return s.Issue(w, &domain.Principal{Email: email, Name: name, Method: method})
}

// Parse decodes the session cookie without touching the selection channel.
func (s *Sessions) Parse(r *http.Request) (*domain.Principal, error) {
	cookie, err := r.Cookie(s.opts.CookieName)
	if err != nil {
		return nil, domain.ErrNoSession
	}

	claims := &SessionClaims{}
	_, err = jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.opts.Secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNoSession, err)
	}
	if claims.Email == "" {
		return nil, domain.ErrNoSession
	}

	p := &domain.Principal{
		Email:      claims.Email,
		Name:       claims.Name,
		Role:       domain.Role(claims.UserType),
		IdentityID: claims.ID,
		Method:     domain.AuthMethod(claims.Method),
	}
	if !p.Role.Valid() || p.IdentityID == "" {
		p.Role, p.IdentityID = domain.RoleUnresolved, ""
	}
	return p, nil
}

// CurrentPrincipal returns the session principal. A session without a role
// comes back as RoleUnresolved unless a pending selection for the same email
// is waiting, in which case the selection is committed here exactly once.
func (s *Sessions) CurrentPrincipal(ctx context.Context, w http.ResponseWriter, r *http.Request) (*domain.Principal, error) {
	p, err := s.Parse(r)
	if err != nil {
		return nil, err
	}

	if p.Role != domain.RoleUnresolved {
		if _, err := r.Cookie(s.opts.SelectionCookieName); err == nil {
			s.clearSelection(w)
		}
		return p, nil
	}

	sel, err := s.takeSelection(ctx, w, r, p.Email)
	if err != nil {
		return nil, err
	}
	if sel == nil {
		return p, nil
	}

	merged := sel.principal(p.Method)
	if err := s.Issue(w, merged); err != nil {
		return nil, err
	}
	s.logger.Info("merged role selection into session", "email", merged.Email, "role", merged.Role)
	return merged, nil
}

// CommitRole re-signs the session with a resolved role. Any pending selection
// is consumed and cleared so it can never be merged afterwards.
func (s *Sessions) CommitRole(ctx context.Context, w http.ResponseWriter, r *http.Request, p *domain.Principal) error {
	if !p.Resolved() {
		return domain.ErrRoleUnresolved
	}

	if sel, err := s.decodeSelection(r); err == nil {
		if _, err := s.ledger.Consume(ctx, sel.Nonce, s.opts.SelectionTTL); err != nil {
			return err
		}
	}
	s.clearSelection(w)

	return s.Issue(w, p)
}

// SelectRole stores a role choice for the next session read. The selection
// must already be validated against the identity store by the caller.
func (s *Sessions) SelectRole(w http.ResponseWriter, sel Selection) error {
	sel.Nonce = uuid.NewString()
	sel.IssuedAt = s.now().Unix()

	encoded, err := s.selections.Encode(s.opts.SelectionCookieName, sel)
	if err != nil {
		return err
	}

	cookie := s.cookie(s.opts.SelectionCookieName, encoded, s.now().Add(s.opts.SelectionTTL))
	cookie.MaxAge = int(s.opts.SelectionTTL.Seconds())
	http.SetCookie(w, cookie)
	return nil
}

// Clear drops the session and any pending selection.
func (s *Sessions) Clear(w http.ResponseWriter) {
	http.SetCookie(w, s.expired(s.opts.CookieName))
	s.clearSelection(w)
}

func (s *Sessions) takeSelection(ctx context.Context, w http.ResponseWriter, r *http.Request, email string) (*Selection, error) {
	if _, err := r.Cookie(s.opts.SelectionCookieName); err != nil {
		return nil, nil
	}

	// whatever happens below, the cookie is single use
	s.clearSelection(w)

	sel, err := s.decodeSelection(r)
	if err != nil {
		s.logger.Warn("discarding unreadable role selection", "error", err)
		return nil, nil
	}
	if sel.Email != email {
		s.logger.Warn("discarding role selection for another email", "session", email, "selection", sel.Email, "error", domain.ErrSelectionMismatch)
		return nil, nil
	}
	if !sel.Role.Valid() || sel.IdentityID == "" {
		return nil, nil
	}

	first, err := s.ledger.Consume(ctx, sel.Nonce, s.opts.SelectionTTL)
	if err != nil {
		return nil, err
	}
	if !first {
		s.logger.Warn("discarding replayed role selection", "email", email, "error", domain.ErrSelectionAlreadyMerged)
		return nil, nil
	}

	return sel, nil
}

func (s *Sessions) decodeSelection(r *http.Request) (*Selection, error) {
	cookie, err := r.Cookie(s.opts.SelectionCookieName)
	if err != nil {
		return nil, err
	}

	sel := &Selection{}
	if err := s.selections.Decode(s.opts.SelectionCookieName, cookie.Value, sel); err != nil {
		return nil, err
	}
	if sel.Nonce == "" {
		return nil, errors.New("selection without nonce")
	}
	return sel, nil
}

func (s *Sessions) clearSelection(w http.ResponseWriter) {
	http.SetCookie(w, s.expired(s.opts.SelectionCookieName))
}

func (s *Sessions) cookie(name, value string, expires time.Time) *http.Cookie {
	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Expires:  expires,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if s.opts.Secure {
		cookie.Secure = true
	}
	return cookie
}

func (s *Sessions) expired(name string) *http.Cookie {
	cookie := s.cookie(name, "", time.Unix(0, 0))
	cookie.MaxAge = -1
	return cookie
}
