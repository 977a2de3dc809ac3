package server

import (
	"errors"
	"net/http"
	"net/mail"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	ctypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

type registerRequest struct {
	GivenName       string `json:"givenName" form:"given_name"`
	FamilyName      string `json:"familyName" form:"family_name"`
	Email           string `json:"email" form:"email"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirmPassword" form:"confirm_password"`
}

type confirmRequest struct {
	Email string `json:"email" form:"email"`
	Code  string `json:"code" form:"code"`
}

func (s *Service) handlePostRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := s.decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	givenName := strings.TrimSpace(req.GivenName)
	familyName := strings.TrimSpace(req.FamilyName)
	email := strings.TrimSpace(req.Email)

	fieldErrors := validateRegisterInput(givenName, familyName, email, req.Password, req.ConfirmPassword)
	if len(fieldErrors) > 0 {
		s.logger.WithField("field_errors", fieldErrors).Info("validation errors during registration")
		s.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "Please fix the highlighted fields.", Fields: fieldErrors})
		return
	}

	input := &cognitoidentityprovider.SignUpInput{
		ClientId: aws.String(s.config.CognitoClientID),
		Username: aws.String(email), // use email as username
		Password: aws.String(req.Password),
		UserAttributes: []ctypes.AttributeType{
			{Name: aws.String("email"), Value: aws.String(email)},
			{Name: aws.String("given_name"), Value: aws.String(givenName)},
			{Name: aws.String("family_name"), Value: aws.String(familyName)},
		},
	}

	_, err := s.cognitoClient.SignUp(r.Context(), input)
	if err != nil {
		s.logger.WithError(err).Error("failed to signup user")

		status, message, fields := s.mapCognitoSignUpError(err)
		s.writeJSON(w, status, errorResponse{Error: message, Fields: fields})
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]string{"email": email, "next": "/register/confirm"})
}

func (s *Service) handlePostRegisterConfirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := s.decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	input := &cognitoidentityprovider.ConfirmSignUpInput{
		ClientId:         aws.String(s.config.CognitoClientID),
		Username:         aws.String(strings.TrimSpace(req.Email)),
		ConfirmationCode: aws.String(strings.TrimSpace(req.Code)),
	}

	_, err := s.cognitoClient.ConfirmSignUp(r.Context(), input)
	if err != nil {
		s.logger.WithError(err).Error("failed to confirm user signup")

		var codeMismatch *ctypes.CodeMismatchException
		if errors.As(err, &codeMismatch) {
			s.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "Invalid confirmation code. Please check the code and try again.", Field: "code"})
			return
		}

		s.writeJSON(w, http.StatusBadGateway, errorResponse{Error: "Unable to confirm account. Please try again."})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

var (
	hasUpperReg  = regexp.MustCompile(`[A-Z]`)
	hasLowerReg  = regexp.MustCompile(`[a-z]`)
	hasDigitReg  = regexp.MustCompile(`[0-9]`)
	hasSymbolReg = regexp.MustCompile(`[^A-Za-z0-9]`)
)

func validateRegisterInput(givenName, familyName, email, password, confirmPassword string) map[string]string {
	errs := map[string]string{}

	if givenName == "" {
		errs["given_name"] = "First name is required."
	}

	if familyName == "" {
		errs["family_name"] = "Last name is required."
	}

	if email == "" {
		errs["email"] = "Email is required."
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs["email"] = "Enter a valid email address."
	}

	if password != confirmPassword {
		errs["confirm_password"] = "Passwords do not match."
	}

	hasUpper := hasUpperReg.MatchString(password)
	hasLower := hasLowerReg.MatchString(password)
	hasDigit := hasDigitReg.MatchString(password)
	hasSymbol := hasSymbolReg.MatchString(password)

	if len(password) < 12 || !hasUpper || !hasLower || !hasDigit || !hasSymbol {
		errs["password"] = "Password must be at least 12 characters and include uppercase, lowercase, number, and symbol."
	}

	return errs
}

func (s *Service) mapCognitoSignUpError(err error) (int, string, map[string]string) {
	fieldErrs := map[string]string{}

	var invalidPw *ctypes.InvalidPasswordException
	if errors.As(err, &invalidPw) {
		fieldErrs["password"] = "Password must include uppercase, lowercase, number, and symbol (min 12)."
		return http.StatusUnprocessableEntity, "Please fix the highlighted fields.", fieldErrs
	}

	var userExists *ctypes.UsernameExistsException
	if errors.As(err, &userExists) {
		fieldErrs["email"] = "An account with this email already exists."
		return http.StatusConflict, "Try logging in instead.", fieldErrs
	}

	var invalidParam *ctypes.InvalidParameterException
	if errors.As(err, &invalidParam) {
		return http.StatusUnprocessableEntity, "Some details are invalid. Please review and try again.", fieldErrs
	}

	s.logger.WithError(err).Error("unhandled cognito signup error")

	return http.StatusBadGateway, "Unable to create account right now. Please try again.", nil
}
