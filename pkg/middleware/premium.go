package middleware

import (
	"context"
	"net/http"

	"github.com/NewMtnGoat/new-status/pkg/logger"
)

// PremiumChecker reports whether a user holds the premium entitlement.
type PremiumChecker interface {
	IsPremium(ctx context.Context, userID string) (bool, error)
}

// RequirePremium blocks requests from users without the premium flag.
func RequirePremium(checker PremiumChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetUserFromContext(r.Context())
			if claims == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			premium, err := checker.IsPremium(r.Context(), claims.UserID)
			if err != nil {
				logger.Log.Errorf("Failed to check premium flag for user %s: %v", claims.UserID, err)
				http.Error(w, "Failed to verify subscription", http.StatusInternalServerError)
				return
			}
			if !premium {
				http.Error(w, "Premium subscription required", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
