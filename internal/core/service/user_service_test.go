package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/storefront/ecommerce-api/internal/core/domain"
	"github.com/storefront/ecommerce-api/internal/core/ports"
)

func newUserSvc(repo *stubUserRepo, cleaner *stubCleaner) ports.UserService {
	if cleaner == nil {
		return NewUserService(repo, nil, zerolog.Nop())
	}
	return NewUserService(repo, cleaner, zerolog.Nop())
}

func seedUser(t *testing.T, repo *stubUserRepo, email, image string) *domain.User {
	t.Helper()
	u, err := repo.Create(context.Background(), &domain.User{Name: "Seed", Email: email, Image: image})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func TestUserService_List(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "a@x.com", "")
	seedUser(t, repo, "b@x.com", "")

	users, err := newUserSvc(repo, nil).List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
}

func TestUserService_List_RepoError(t *testing.T) {
	repo := newStubUserRepo()
	repo.listErr = &domain.StorageError{Op: "find users", Err: errors.New("connection reset")}

	_, err := newUserSvc(repo, nil).List(context.Background())
	if !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
}

func TestUserService_Get(t *testing.T) {
	repo := newStubUserRepo()
	u := seedUser(t, repo, "a@x.com", "")
	svc := newUserSvc(repo, nil)

	got, err := svc.Get(context.Background(), u.ID)
	if err != nil || got.Email != "a@x.com" {
		t.Fatalf("Get = %+v, %v", got, err)
	}
	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_UpdateName(t *testing.T) {
	repo := newStubUserRepo()
	u := seedUser(t, repo, "a@x.com", "")
	svc := newUserSvc(repo, nil)

	updated, err := svc.UpdateName(context.Background(), u.ID, "  Renamed ")
	if err != nil {
		t.Fatalf("UpdateName returned error: %v", err)
	}
	if updated.Name != "Renamed" {
		t.Fatalf("expected trimmed name, got %q", updated.Name)
	}
	if updated.Email != u.Email || updated.Role != u.Role {
		t.Fatal("email and role must not change")
	}
}

func TestUserService_UpdateName_Validation(t *testing.T) {
	repo := newStubUserRepo()
	u := seedUser(t, repo, "a@x.com", "")

	if _, err := newUserSvc(repo, nil).UpdateName(context.Background(), u.ID, "   "); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestUserService_UpdateName_NotFound(t *testing.T) {
	if _, err := newUserSvc(newStubUserRepo(), nil).UpdateName(context.Background(), "nope", "x"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_Delete_SchedulesImageCleanup(t *testing.T) {
	repo := newStubUserRepo()
	cleaner := &stubCleaner{}
	u := seedUser(t, repo, "a@x.com", "uploads/image-1.png")

	deleted, err := newUserSvc(repo, cleaner).Delete(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if deleted.ID != u.ID {
		t.Fatalf("expected deleted record to be returned, got %+v", deleted)
	}
	if len(cleaner.refs) != 1 || cleaner.refs[0] != "uploads/image-1.png" {
		t.Fatalf("expected image cleanup, got %v", cleaner.refs)
	}
	if _, err := repo.FindByID(context.Background(), u.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatal("user should be gone")
	}
}

func TestUserService_Delete_NoImage(t *testing.T) {
	repo := newStubUserRepo()
	cleaner := &stubCleaner{}
	u := seedUser(t, repo, "a@x.com", "")

	if _, err := newUserSvc(repo, cleaner).Delete(context.Background(), u.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if len(cleaner.refs) != 0 {
		t.Fatalf("nothing to clean, got %v", cleaner.refs)
	}
}

func TestUserService_Delete_NotFound(t *testing.T) {
	if _, err := newUserSvc(newStubUserRepo(), &stubCleaner{}).Delete(context.Background(), "nope"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
