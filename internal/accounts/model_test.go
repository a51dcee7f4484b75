package accounts

import (
	"errors"
	"testing"
)

func TestRegisterRequestValidate(t *testing.T) {
	valid := RegisterRequest{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
		Password:  "longenough",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*RegisterRequest)
		want   error
	}{
		{"missing first name", func(r *RegisterRequest) { r.FirstName = " " }, ErrInvalidName},
		{"missing last name", func(r *RegisterRequest) { r.LastName = "" }, ErrInvalidName},
		{"bad email", func(r *RegisterRequest) { r.Email = "not-an-email" }, ErrInvalidEmail},
		{"email missing domain", func(r *RegisterRequest) { r.Email = "jane@" }, ErrInvalidEmail},
		{"short password", func(r *RegisterRequest) { r.Password = "1234567" }, ErrWeakPassword},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := valid
			tc.mutate(&req)
			if err := req.Validate(); !errors.Is(err, tc.want) {
				t.Errorf("Validate() = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "correct horse battery" {
		t.Fatal("password stored in the clear")
	}
	if !CheckPassword(hash, "correct horse battery") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("wrong password accepted")
	}
}
