package server

import (
	"errors"
	"net/http"
	"strings"

	"changemakers/internal"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func (s *Service) handlePostLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := s.decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		s.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "email and password are required"})
		return
	}

	input := &cognitoidentityprovider.InitiateAuthInput{
		AuthFlow: types.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(s.config.CognitoClientID),
		AuthParameters: map[string]string{
			"USERNAME": email,
			"PASSWORD": req.Password,
		},
	}

	resp, err := s.cognitoClient.InitiateAuth(r.Context(), input)
	if err != nil {
		var notConfirmed *types.UserNotConfirmedException
		if errors.As(err, &notConfirmed) {
			s.writeJSON(w, http.StatusForbidden, errorResponse{Error: "confirm your account before signing in"})
			return
		}

		// NotAuthorizedException, UserNotFoundException, etc.
		s.logger.WithError(err).Info("login rejected")
		s.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
		return
	}

	if resp.AuthenticationResult == nil || resp.AuthenticationResult.AccessToken == nil {
		s.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "login failed"})
		return
	}

	accessToken := aws.ToString(resp.AuthenticationResult.AccessToken)
	expiresIn := int(resp.AuthenticationResult.ExpiresIn)
	if expiresIn <= 0 {
		expiresIn = s.config.SessionMaxAgeSec
	}

	encryptedToken, err := s.cookie.Encode(internal.COOKIE_ACCESS_TOKEN_NAME, accessToken)
	if err != nil {
		s.logger.WithError(err).Error("failed to encrypt access token")
		s.writeError(w, err)
		return
	}

	// Set httpOnly, secure cookie with access token
	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_ACCESS_TOKEN_NAME,
		Value:    encryptedToken,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   expiresIn,
		Path:     "/",
	})

	s.writeJSON(w, http.StatusOK, map[string]any{"email": email, "expiresIn": expiresIn})
}

// handlePostLogout signs the token out with Cognito, invalidates the session
// and clears the cookie. A Cognito failure does not keep the caller signed in.
func (s *Service) handlePostLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, err := s.sessionFromContext(ctx)
	if err == nil {
		s.sessions.invalidate(sess.Key())
	}

	if accessToken, ok := ctx.Value(contextKeyAccessToken).(string); ok && accessToken != "" {
		_, err := s.cognitoClient.GlobalSignOut(ctx, &cognitoidentityprovider.GlobalSignOutInput{
			AccessToken: aws.String(accessToken),
		})
		if err != nil {
			s.logger.WithError(err).Warn("cognito global sign out failed")
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_ACCESS_TOKEN_NAME,
		Value:    "",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})

	w.WriteHeader(http.StatusNoContent)
}
