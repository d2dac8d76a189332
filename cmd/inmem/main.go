// Package main runs the access management service without a database,
// backed by in-memory repositories. Useful for:
// - Quick development and testing
// - Demo/prototype environments
// - Learning the API without database setup
//
// Note: All data is lost when the server stops. For production, use
// cmd/acm with PostgreSQL.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/tendant/chi-demo/app"

	"github.com/tendant/simple-acm/pkg/domain"
	"github.com/tendant/simple-acm/pkg/dummy"
	"github.com/tendant/simple-acm/pkg/group"
	"github.com/tendant/simple-acm/pkg/inmem"
	"github.com/tendant/simple-acm/pkg/organisation"
	"github.com/tendant/simple-acm/pkg/role"
	"github.com/tendant/simple-acm/pkg/user"
	"github.com/tendant/simple-acm/pkg/validation"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: false,
		Level:     slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("Starting in-memory access management service (no database required)")

	store := inmem.NewStore()
	stamp := domain.NewStamper(domain.SystemClock{}, domain.NewCounter(0))
	ids := domain.UUIDGenerator{}
	validate := validation.New()

	userService := user.NewUserService(store, stamp, validate)
	organisationService := organisation.NewOrganisationService(store, stamp, validate)
	groupService := group.NewGroupService(store, stamp, ids, validate)
	roleService := role.NewRoleService(store, stamp, ids, validate)
	dummyService := dummy.NewDummyService(store, stamp, ids, validate)

	seedDemoData(userService, organisationService, groupService, roleService)

	server := app.DefaultApp()
	app.RegisterHealthzRoutes(server.R)

	user.NewHandler(userService).RegisterRoutes(server.R)
	organisation.NewHandler(organisationService).RegisterRoutes(server.R)
	group.NewHandler(groupService).RegisterRoutes(server.R)
	role.NewHandler(roleService).RegisterRoutes(server.R)
	dummy.NewHandler(dummyService).RegisterRoutes(server.R)

	server.Run()
}

// seedDemoData loads a small dataset through the services so the API has
// something to show immediately.
func seedDemoData(
	users *user.UserService,
	organisations *organisation.OrganisationService,
	groups *group.GroupService,
	roles *role.RoleService,
) {
	ctx := context.Background()

	demoUsers := []user.SynchroniseUserCommand{
		{ID: "u-alice", Name: "Alice Chen", Email: "alice@example.com"},
		{ID: "u-bob", Name: "Bob Miller", Email: "bob@example.com"},
		{ID: "u-carol", Name: "Carol Diaz", Email: "carol@example.com"},
	}
	for _, cmd := range demoUsers {
		if _, err := users.SynchroniseUser(ctx, cmd); err != nil {
			slog.Error("Failed seeding user", "id", cmd.ID, "error", err)
			os.Exit(-1)
		}
	}

	if _, err := organisations.SynchroniseOrganisation(ctx, organisation.SynchroniseOrganisationCommand{
		ID:   "org-acme",
		Name: "Acme Corporation",
	}); err != nil {
		slog.Error("Failed seeding organisation", "error", err)
		os.Exit(-1)
	}
	for _, userID := range []string{"u-alice", "u-bob"} {
		if _, err := organisations.AddOrganisationMember(ctx, organisation.AddOrganisationMemberCommand{
			OrganisationID: "org-acme",
			UserID:         userID,
		}); err != nil {
			slog.Error("Failed seeding organisation member", "user_id", userID, "error", err)
			os.Exit(-1)
		}
	}

	engineering, err := groups.CreateGroup(ctx, group.CreateGroupCommand{
		OrganisationID: "org-acme",
		Name:           "Engineering",
		Description:    "Product engineering team",
	})
	if err != nil {
		slog.Error("Failed seeding group", "error", err)
		os.Exit(-1)
	}
	if _, err := groups.AddGroupMember(ctx, group.AddGroupMemberCommand{
		GroupID: engineering.ID,
		UserID:  "u-alice",
	}); err != nil {
		slog.Error("Failed seeding group member", "error", err)
		os.Exit(-1)
	}

	admin, err := roles.CreateRole(ctx, role.CreateRoleCommand{
		Name:        "Administrator",
		Description: "Full administrative access",
	})
	if err != nil {
		slog.Error("Failed seeding role", "error", err)
		os.Exit(-1)
	}
	if _, err := roles.AddRoleMember(ctx, role.AddRoleMemberCommand{
		RoleID: admin.ID,
		UserID: "u-alice",
	}); err != nil {
		slog.Error("Failed seeding role member", "error", err)
		os.Exit(-1)
	}

	slog.Info("Seeded demo data", "users", len(demoUsers), "organisation", "org-acme", "group", engineering.ID, "role", admin.ID)
}
