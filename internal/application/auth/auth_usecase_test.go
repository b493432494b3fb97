package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "trade-signals/internal/domain/auth"
)

type fakeUserRepo struct {
	user domain.User
	err  error
}

func (f fakeUserRepo) FindByEmail(_ context.Context, _ string) (domain.User, error) {
	if f.err != nil {
		return domain.User{}, f.err
	}
	return f.user, nil
}

func (f fakeUserRepo) FindByID(_ context.Context, _ string) (domain.User, error) {
	if f.err != nil {
		return domain.User{}, f.err
	}
	return f.user, nil
}

type fakeHasher struct {
	match bool
}

func (f fakeHasher) Compare(_, _ string) bool { return f.match }

type fakeTokens struct {
	token domain.Token
	err   error
}

func (f *fakeTokens) Issue(_ context.Context, _ domain.User) (domain.Token, error) {
	if f.err != nil {
		return domain.Token{}, f.err
	}
	return f.token, nil
}

func activeAdmin() domain.User {
	return domain.User{
		ID:       "u1",
		Email:    "admin@example.com",
		Role:     domain.RoleAdmin,
		Status:   domain.StatusActive,
		Password: "hashed",
	}
}

func TestLoginUseCase_Success(t *testing.T) {
	tokens := &fakeTokens{token: domain.Token{AccessToken: "tok", ExpiresAt: time.Now().Add(time.Hour)}}
	uc := NewLoginUseCase(fakeUserRepo{user: activeAdmin()}, fakeHasher{match: true}, tokens)

	res, err := uc.Execute(context.Background(), LoginInput{Email: "Admin@Example.com", Password: "secret"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Token.AccessToken != "tok" {
		t.Fatalf("unexpected token: %s", res.Token.AccessToken)
	}
	if res.User.ID != "u1" {
		t.Fatalf("unexpected user: %+v", res.User)
	}
}

func TestLoginUseCase_BadPassword(t *testing.T) {
	uc := NewLoginUseCase(fakeUserRepo{user: activeAdmin()}, fakeHasher{match: false}, &fakeTokens{})
	if _, err := uc.Execute(context.Background(), LoginInput{Email: "admin@example.com", Password: "nope"}); err == nil {
		t.Fatal("expected error for bad password")
	}
}

func TestLoginUseCase_DisabledUser(t *testing.T) {
	user := activeAdmin()
	user.Status = domain.StatusDisabled
	uc := NewLoginUseCase(fakeUserRepo{user: user}, fakeHasher{match: true}, &fakeTokens{})
	if _, err := uc.Execute(context.Background(), LoginInput{Email: "admin@example.com", Password: "secret"}); err == nil {
		t.Fatal("expected error for disabled user")
	}
}

func TestLoginUseCase_UnknownUser(t *testing.T) {
	uc := NewLoginUseCase(fakeUserRepo{err: errors.New("not found")}, fakeHasher{match: true}, &fakeTokens{})
	if _, err := uc.Execute(context.Background(), LoginInput{Email: "ghost@example.com", Password: "secret"}); err == nil {
		t.Fatal("expected error for unknown user")
	}
}

func TestAuthorizer_RolePermissions(t *testing.T) {
	admin := activeAdmin()
	a := NewAuthorizer(fakeUserRepo{user: admin})

	res, err := a.Authorize(context.Background(), AuthorizeInput{UserID: "u1", Required: []Permission{PermSignalWrite}})
	if err != nil || !res.Allowed {
		t.Fatalf("admin should hold signal.write: %+v %v", res, err)
	}

	user := admin
	user.Role = domain.RoleUser
	a = NewAuthorizer(fakeUserRepo{user: user})
	res, err = a.Authorize(context.Background(), AuthorizeInput{UserID: "u1", Required: []Permission{PermSignalWrite}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Allowed {
		t.Fatal("plain user must not hold signal.write")
	}

	res, _ = a.Authorize(context.Background(), AuthorizeInput{UserID: "u1", Required: []Permission{PermSignalRead, PermDeviceWrite}})
	if !res.Allowed {
		t.Fatal("plain user should hold signal.read and device.write")
	}
}
