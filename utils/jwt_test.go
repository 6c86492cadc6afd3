package utils

import (
	"testing"
	"time"
)

const testSecret = "test-secret-key-for-unit-tests"

func TestGenerateAndValidateJWT(t *testing.T) {
	for _, alg := range []string{"HS256", "HS384", "HS512"} {
		token, err := GenerateJWT("user123", testSecret, alg, time.Hour)
		if err != nil {
			t.Fatalf("%s: GenerateJWT: %v", alg, err)
		}

		claims, err := ValidateJWT(token, testSecret)
		if err != nil {
			t.Fatalf("%s: ValidateJWT: %v", alg, err)
		}
		if claims.UserID != "user123" {
			t.Errorf("%s: user id = %q, want user123", alg, claims.UserID)
		}
	}
}

func TestValidateJWTWrongSecret(t *testing.T) {
	token, err := GenerateJWT("user123", testSecret, "HS256", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	if _, err := ValidateJWT(token, "a-different-secret"); err == nil {
		t.Error("token signed with another secret was accepted")
	}
}

func TestValidateJWTExpired(t *testing.T) {
	token, err := GenerateJWT("user123", testSecret, "HS256", -time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	if _, err := ValidateJWT(token, testSecret); err == nil {
		t.Error("expired token was accepted")
	}
}

func TestValidateJWTGarbage(t *testing.T) {
	if _, err := ValidateJWT("not.a.token", testSecret); err == nil {
		t.Error("garbage token was accepted")
	}
}

func TestValidateJWTStripsBearerPrefix(t *testing.T) {
	token, err := GenerateJWT("user123", testSecret, "HS256", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	claims, err := ValidateJWT("Bearer "+token, testSecret)
	if err != nil {
		t.Fatalf("ValidateJWT with Bearer prefix: %v", err)
	}
	if claims.UserID != "user123" {
		t.Errorf("user id = %q", claims.UserID)
	}
}

func TestExtractTokenFromHeader(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc.def.ghi", "abc.def.ghi"},
		{"bearer abc.def.ghi", ""},
		{"Basic dXNlcjpwYXNz", ""},
		{"Bearer", ""},
		{"Bearer a b", ""},
	}
	for _, c := range cases {
		if got := ExtractTokenFromHeader(c.header); got != c.want {
			t.Errorf("ExtractTokenFromHeader(%q) = %q, want %q", c.header, got, c.want)
		}
	}
}
