package oauth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jobportal-dev/job-portal/backend/internal/config"
	"github.com/zitadel/oidc/v3/pkg/client/rp"
	httphelper "github.com/zitadel/oidc/v3/pkg/http"
	"github.com/zitadel/oidc/v3/pkg/oidc"
)

var ErrUnverifiedEmail = errors.New("identity provider returned no verified email")

// Identity is what the portal keeps from a federated sign-in.
type Identity struct {
	Email string
	Name  string
}

// Google wraps the zitadel relying party configured against Google.
type Google struct {
	rp rp.RelyingParty
}

func NewGoogle(ctx context.Context, cfg *config.Config) (*Google, error) {
	hashKey, cryptoKey, err := cookieKeys(cfg.Google.CookieKey)
	if err != nil {
		return nil, err
	}

	cookieOpts := []httphelper.CookieHandlerOpt{}
	if cfg.Environment != "production" {
		cookieOpts = append(cookieOpts, httphelper.WithUnsecure())
	}
	cookieHandler := httphelper.NewCookieHandler(hashKey, cryptoKey, cookieOpts...)

	options := []rp.Option{
		rp.WithCookieHandler(cookieHandler),
		rp.WithVerifierOpts(rp.WithIssuedAtMaxAge(time.Minute)),
		rp.WithPKCE(cookieHandler),
	}

	relyingParty, err := rp.NewRelyingPartyOIDC(ctx, cfg.Google.Issuer, cfg.Google.ClientID, cfg.Google.ClientSecret,
		cfg.Google.RedirectURI, cfg.Google.Scopes, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC relying party: %w", err)
	}

	return &Google{rp: relyingParty}, nil
}

// LoginHandler redirects to Google's consent screen.
func (g *Google) LoginHandler() http.HandlerFunc {
	return rp.AuthURLHandler(uuid.NewString, g.rp)
}

// CallbackHandler exchanges the code and hands the verified identity to
// onIdentity, or the failure to onError.
func (g *Google) CallbackHandler(onIdentity func(w http.ResponseWriter, r *http.Request, id Identity), onError func(w http.ResponseWriter, r *http.Request, err error)) http.HandlerFunc {
	callback := func(w http.ResponseWriter, r *http.Request, tokens *oidc.Tokens[*oidc.IDTokenClaims], state string, provider rp.RelyingParty) {
		id, err := identityFromClaims(tokens.IDTokenClaims)
		if err != nil {
			onError(w, r, err)
			return
		}
		onIdentity(w, r, id)
	}
	return rp.CodeExchangeHandler(callback, g.rp)
}

func identityFromClaims(claims *oidc.IDTokenClaims) (Identity, error) {
	if claims == nil {
		return Identity{}, ErrUnverifiedEmail
	}

	email := strings.ToLower(strings.TrimSpace(claims.Email))
	if email == "" || !bool(claims.EmailVerified) {
		return Identity{}, ErrUnverifiedEmail
	}

	name := strings.TrimSpace(claims.Name)
	if name == "" {
		name = strings.TrimSpace(claims.GivenName + " " + claims.FamilyName)
	}
	return Identity{Email: email, Name: name}, nil
}

// cookieKeys derives the state cookie keys from the configured secret. With no
// secret, keys are random and in-flight logins do not survive a restart.
func cookieKeys(secret string) (hashKey, cryptoKey []byte, err error) {
	if secret == "" {
		hashKey = make([]byte, 32)
		cryptoKey = make([]byte, 32)
		if _, err := rand.Read(hashKey); err != nil {
			return nil, nil, fmt.Errorf("failed to generate cookie hash key: %w", err)
		}
		if _, err := rand.Read(cryptoKey); err != nil {
			return nil, nil, fmt.Errorf("failed to generate cookie crypto key: %w", err)
		}
		return hashKey, cryptoKey, nil
	}

	h := sha256.Sum256([]byte("hash:" + secret))
	c := sha256.Sum256([]byte("crypto:" + secret))
	return h[:], c[:], nil
}
