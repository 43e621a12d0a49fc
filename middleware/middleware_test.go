package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mjolnir/globals"
	"mjolnir/models"
	"mjolnir/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
)

func signToken(t *testing.T, userID, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId":   userID,
		"username": "tester",
		"role":     role,
		"exp":      time.Now().Add(time.Hour).Unix(),
		"iat":      time.Now().Unix(),
	})
	signed, err := token.SignedString(globals.JwtSecret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func identityEcho(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"userId": utils.GetUserIDFromRequest(r),
		"role":   utils.GetRoleFromRequest(r),
	})
}

func TestAuthenticateRejectsMissingToken(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	Authenticate(identityEcho)(rec, req, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuthenticateRejectsMalformedToken(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	Authenticate(identityEcho)(rec, req, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuthenticateAttachesIdentity(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "u1", models.RoleCustomer))

	var gotUser, gotRole string
	Authenticate(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		gotUser = utils.GetUserIDFromRequest(r)
		gotRole = utils.GetRoleFromRequest(r)
		w.WriteHeader(http.StatusOK)
	})(rec, req, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotUser != "u1" || gotRole != models.RoleCustomer {
		t.Errorf("identity = (%q, %q), want (u1, %s)", gotUser, gotRole, models.RoleCustomer)
	}
}

func TestOptionalAuthPassesAnonymous(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)

	called := false
	OptionalAuth(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		called = true
		if utils.GetUserIDFromRequest(r) != "" {
			t.Error("anonymous request carries an identity")
		}
		w.WriteHeader(http.StatusOK)
	})(rec, req, nil)

	if !called {
		t.Fatal("handler not reached without a token")
	}
}

func TestRequireRoles(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusOK)
	}

	cases := []struct {
		role    string
		allowed []string
		want    int
	}{
		{models.RoleProductManager, []string{models.RoleProductManager}, http.StatusOK},
		{models.RoleSalesManager, []string{models.RoleProductManager, models.RoleSalesManager}, http.StatusOK},
		{models.RoleCustomer, []string{models.RoleProductManager}, http.StatusForbidden},
		{"", []string{models.RoleSalesManager}, http.StatusForbidden},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		if c.role != "" {
			req.Header.Set("Authorization", "Bearer "+signToken(t, "u1", c.role))
			Authenticate(RequireRoles(handler, c.allowed...))(rec, req, nil)
		} else {
			RequireRoles(handler, c.allowed...)(rec, req, nil)
		}
		if rec.Code != c.want {
			t.Errorf("role %q against %v: status = %d, want %d", c.role, c.allowed, rec.Code, c.want)
		}
	}
}
