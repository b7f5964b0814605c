package casdoor

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/form-service/internal/models"
	"github.com/SAP-F-2025/form-service/internal/repositories"
)

type mockDirectory struct {
	users map[string]*casdoorsdk.User
	calls int
	err   error
}

func (m *mockDirectory) GetUserByUserId(id string) (*casdoorsdk.User, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.users[id], nil
}

func TestUserCasdoor_GetByID(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	dir := &mockDirectory{users: map[string]*casdoorsdk.User{
		"u1": {Id: "u1", Name: "alice", DisplayName: "Alice", Email: "alice@example.com"},
		"u2": {Id: "u2", Name: "root", IsAdmin: true},
	}}
	repo := newUserCasdoor(dir, client)
	ctx := context.Background()

	user, err := repo.GetByID(ctx, "u1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if user.FullName != "Alice" || user.Role != models.RoleUser {
		t.Errorf("user = %+v", user)
	}
	if !mr.Exists("user:id:u1") {
		t.Errorf("user should be cached")
	}

	if _, err := repo.GetByID(ctx, "u1"); err != nil {
		t.Fatalf("cached GetByID: %v", err)
	}
	if dir.calls != 1 {
		t.Errorf("directory calls = %d, want 1", dir.calls)
	}

	admin, err := repo.GetByID(ctx, "u2")
	if err != nil {
		t.Fatalf("GetByID admin: %v", err)
	}
	if admin.FullName != "root" || !admin.IsAdmin() {
		t.Errorf("admin = %+v", admin)
	}

	if _, err := repo.GetByID(ctx, "missing"); !repositories.IsNotFoundError(err) {
		t.Errorf("missing user err = %v", err)
	}
}

func TestUserCasdoor_GetByIDs(t *testing.T) {
	dir := &mockDirectory{users: map[string]*casdoorsdk.User{
		"u1": {Id: "u1", DisplayName: "Alice"},
	}}
	repo := newUserCasdoor(dir, nil)

	users, err := repo.GetByIDs(context.Background(), []string{"u1", "u1", "ghost"})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(users) != 1 || users[0].ID != "u1" {
		t.Errorf("users = %+v", users)
	}
}

func TestUserCasdoor_DirectoryError(t *testing.T) {
	boom := errors.New("casdoor down")
	repo := newUserCasdoor(&mockDirectory{err: boom}, nil)

	if _, err := repo.GetByID(context.Background(), "u1"); !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped directory error", err)
	}
}

func TestRoleFromNames(t *testing.T) {
	tests := []struct {
		name    string
		roles   []string
		isAdmin bool
		want    models.UserRole
	}{
		{"no roles", nil, false, models.RoleUser},
		{"admin flag", nil, true, models.RoleAdmin},
		{"administrator role", []string{"editor", "Administrator"}, false, models.RoleAdmin},
		{"other roles", []string{"editor"}, false, models.RoleUser},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RoleFromNames(tt.roles, tt.isAdmin); got != tt.want {
				t.Errorf("RoleFromNames = %s, want %s", got, tt.want)
			}
		})
	}
}
