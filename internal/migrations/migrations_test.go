package migrations

import (
	"context"
	"database/sql"
	"io"
	"log"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biyonik/ticketbox-core/internal/models"
	"github.com/biyonik/ticketbox-core/internal/repositories/memory"
	"github.com/biyonik/ticketbox-core/pkg/database/migration"
)

var quiet = log.New(io.Discard, "", 0)

type recordingExecer struct{ queries []string }

func (r *recordingExecer) ExecContext(_ context.Context, query string, _ ...any) (sql.Result, error) {
	r.queries = append(r.queries, query)
	return nil, nil
}

func TestAll_NamesAreOrderedAndUnique(t *testing.T) {
	var names []string
	seen := map[string]bool{}
	for _, m := range All() {
		require.False(t, seen[m.Name()], "tekrar eden migration: %s", m.Name())
		seen[m.Name()] = true
		names = append(names, m.Name())
	}
	assert.True(t, sort.StringsAreSorted(names))
}

func TestAll_CreatesRepositoryTables(t *testing.T) {
	ctx := context.Background()
	exec := &recordingExecer{}
	schema := migration.NewSchema(exec, migration.NewMySQLGrammar(), quiet)

	for _, m := range All() {
		require.NoError(t, m.Up(ctx, schema), m.Name())
	}

	ddl := strings.Join(exec.queries, "\n")
	for _, table := range []string{
		"users", "user_roles", "categories", "relationships", "events",
		"event_categories", "tickets", "ticket_accepted_relationships",
		"orders", "order_tickets",
	} {
		assert.Contains(t, ddl, "CREATE TABLE `"+table+"` (")
	}
	assert.Contains(t, ddl, "`unit_price` DECIMAL(12,2) NOT NULL")
	assert.Contains(t, ddl, "`approver_id` BIGINT UNSIGNED NULL")
	assert.Contains(t, ddl, "`token` TEXT NULL")
	assert.Contains(t, ddl, "`capacity` BIGINT UNSIGNED NOT NULL")
	assert.Contains(t, ddl, "REFERENCES `users` (`id`) ON DELETE SET NULL ON UPDATE CASCADE")

	exec.queries = nil
	all := All()
	for i := len(all) - 1; i >= 0; i-- {
		require.NoError(t, all[i].Down(ctx, schema))
	}
	assert.Equal(t, "DROP TABLE IF EXISTS `order_tickets`", exec.queries[0])
	assert.Equal(t, "DROP TABLE IF EXISTS `users`", exec.queries[len(exec.queries)-1])
}

func TestSeedRelationships_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Relationships().Create(ctx, &models.Relationship{Name: "self"}))

	require.NoError(t, SeedRelationships(ctx, store, quiet))
	require.NoError(t, SeedRelationships(ctx, store, quiet))

	rels, err := store.Relationships().List(ctx)
	require.NoError(t, err)
	var names []string
	for _, r := range rels {
		names = append(names, r.Name)
	}
	assert.ElementsMatch(t, DefaultRelationships, names)
}

func TestPromoteAdmin(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	_, err := PromoteAdmin(ctx, store, "missing@example.com", quiet)
	require.ErrorIs(t, err, models.ErrUserNotFound)

	user := &models.User{Username: "root", Email: "root@example.com", FullName: "Root", Password: "x"}
	require.NoError(t, store.Users().Create(ctx, user))

	_, err = PromoteAdmin(ctx, store, "root@example.com", quiet)
	require.NoError(t, err)

	got, err := store.Users().FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.HasRole(models.RoleAdmin))
}
