package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"calendar-backend/pkg/common"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// HeaderAuthorizedUserID carries the verified subject when the Lambda
// entrypoint has already run the gateway authorizer. The entrypoint strips
// any inbound copy before setting it, so it can only originate in-process.
const HeaderAuthorizedUserID = "X-Authorizer-User-Id"

// AuthConfig configures the authentication middleware
type AuthConfig struct {
	// Secret verifies HS256 bearer tokens
	Secret string
	// Issuer, when set, must match the token's iss claim
	Issuer string
	// TrustGatewayHeader accepts the pre-verified subject header instead of
	// a bearer token. Only the Lambda entrypoint enables this.
	TrustGatewayHeader bool
}

// Authenticate resolves the caller's identity and attaches it to the request
// context. Requests with no verifiable identity get 401; there is no
// anonymous or default user.
func Authenticate(cfg AuthConfig, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.TrustGatewayHeader {
				if userID := r.Header.Get(HeaderAuthorizedUserID); userID != "" {
					ctx := common.WithUserID(r.Context(), userID)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			token := bearerToken(r)
			if token == "" {
				common.RespondError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			userID, err := verifyToken(token, cfg)
			if err != nil {
				logger.Warn("rejected token",
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
				common.RespondError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			ctx := common.WithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// verifyToken validates an HS256 token and returns its subject. A token
// without a sub claim is rejected even when the signature checks out.
func verifyToken(raw string, cfg AuthConfig) (string, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(cfg.Secret), nil
	}, opts...)
	if err != nil {
		return "", err
	}

	sub, err := token.Claims.GetSubject()
	if err != nil {
		return "", err
	}
	if sub == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return sub, nil
}

// bearerToken extracts the bearer token from the Authorization header
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
