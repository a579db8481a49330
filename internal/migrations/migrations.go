// -----------------------------------------------------------------------------
// Schema Migrations
// -----------------------------------------------------------------------------
// MySQL repository'lerinin (internal/repositories/mysql) beklediği şema.
// Sıra önemlidir: foreign key'ler referans verdikleri tablodan sonra gelir.
// -----------------------------------------------------------------------------

package migrations

import (
	"context"

	"github.com/biyonik/ticketbox-core/pkg/database/migration"
)

// All, tüm migration'ları uygulanma sırasıyla döndürür.
func All() []migration.Migration {
	return []migration.Migration{
		createUsers{},
		createUserRoles{},
		createCategories{},
		createRelationships{},
		createEvents{},
		createEventCategories{},
		createTickets{},
		createTicketAcceptedRelationships{},
		createOrders{},
		createOrderTickets{},
	}
}

type createUsers struct{}

func (createUsers) Name() string { return "2024_01_01_000001_create_users_table" }

func (createUsers) Up(ctx context.Context, s *migration.Schema) error {
	return s.CreateTable(ctx, "users", func(t *migration.Blueprint) {
		t.ID()
		t.String("username", 100)
		t.String("email", 255)
		t.String("full_name", 255)
		t.String("password", 255)
		t.Timestamps()
		t.Unique("email")
	})
}

func (createUsers) Down(ctx context.Context, s *migration.Schema) error {
	return s.DropTable(ctx, "users")
}

type createUserRoles struct{}

func (createUserRoles) Name() string { return "2024_01_01_000002_create_user_roles_table" }

func (createUserRoles) Up(ctx context.Context, s *migration.Schema) error {
	return s.CreateTable(ctx, "user_roles", func(t *migration.Blueprint) {
		t.ForeignID("user_id")
		t.String("role", 20)
		t.Primary("user_id", "role")
		t.Foreign("user_id").On("users").Cascade()
	})
}

func (createUserRoles) Down(ctx context.Context, s *migration.Schema) error {
	return s.DropTable(ctx, "user_roles")
}

type createCategories struct{}

func (createCategories) Name() string { return "2024_01_01_000003_create_categories_table" }

func (createCategories) Up(ctx context.Context, s *migration.Schema) error {
	return s.CreateTable(ctx, "categories", func(t *migration.Blueprint) {
		t.ID()
		t.String("name", 100)
		t.Timestamps()
	})
}

func (createCategories) Down(ctx context.Context, s *migration.Schema) error {
	return s.DropTable(ctx, "categories")
}

type createRelationships struct{}

func (createRelationships) Name() string { return "2024_01_01_000004_create_relationships_table" }

func (createRelationships) Up(ctx context.Context, s *migration.Schema) error {
	return s.CreateTable(ctx, "relationships", func(t *migration.Blueprint) {
		t.ID()
		t.String("name", 50)
		t.Unique("name")
	})
}

func (createRelationships) Down(ctx context.Context, s *migration.Schema) error {
	return s.DropTable(ctx, "relationships")
}

type createEvents struct{}

func (createEvents) Name() string { return "2024_01_01_000005_create_events_table" }

func (createEvents) Up(ctx context.Context, s *migration.Schema) error {
	return s.CreateTable(ctx, "events", func(t *migration.Blueprint) {
		t.ID()
		t.String("name", 255)
		t.Boolean("online").Default(false)
		t.String("address", 255).Default("")
		t.String("org_name", 255).Default("")
		t.Text("org_info")
		t.Integer("status")
		t.DateTime("start_date")
		t.DateTime("end_date")
		t.ForeignID("host_id")
		t.ForeignID("approver_id").Nullable()
		t.Timestamps()
		t.Index("status")
		t.Index("host_id", "status")
		t.Index("approver_id", "status")
		t.Foreign("host_id").On("users").OnUpdate("CASCADE")
		t.Foreign("approver_id").On("users").OnDelete("SET NULL").OnUpdate("CASCADE")
	})
}

func (createEvents) Down(ctx context.Context, s *migration.Schema) error {
	return s.DropTable(ctx, "events")
}

type createEventCategories struct{}

func (createEventCategories) Name() string { return "2024_01_01_000006_create_event_categories_table" }

func (createEventCategories) Up(ctx context.Context, s *migration.Schema) error {
	return s.CreateTable(ctx, "event_categories", func(t *migration.Blueprint) {
		t.ForeignID("event_id")
		t.ForeignID("category_id")
		t.Primary("event_id", "category_id")
		t.Index("category_id")
		t.Foreign("event_id").On("events").Cascade()
		t.Foreign("category_id").On("categories").Cascade()
	})
}

func (createEventCategories) Down(ctx context.Context, s *migration.Schema) error {
	return s.DropTable(ctx, "event_categories")
}

type createTickets struct{}

func (createTickets) Name() string { return "2024_01_01_000007_create_tickets_table" }

func (createTickets) Up(ctx context.Context, s *migration.Schema) error {
	return s.CreateTable(ctx, "tickets", func(t *migration.Blueprint) {
		t.ID()
		t.ForeignID("event_id")
		t.String("type", 100)
		t.DateTime("start_sale")
		t.DateTime("end_sale")
		t.Decimal("unit_price", 12, 2)
		t.BigInteger("capacity").Unsigned()
		t.BigInteger("sold").Unsigned().Default(0)
		t.BigInteger("min_qty_per_order")
		t.BigInteger("max_qty_per_order")
		t.Integer("status")
		t.Timestamps()
		t.Index("event_id", "status")
		t.Foreign("event_id").On("events").Cascade()
	})
}

func (createTickets) Down(ctx context.Context, s *migration.Schema) error {
	return s.DropTable(ctx, "tickets")
}

type createTicketAcceptedRelationships struct{}

func (createTicketAcceptedRelationships) Name() string {
	return "2024_01_01_000008_create_ticket_accepted_relationships_table"
}

func (createTicketAcceptedRelationships) Up(ctx context.Context, s *migration.Schema) error {
	return s.CreateTable(ctx, "ticket_accepted_relationships", func(t *migration.Blueprint) {
		t.ForeignID("ticket_id")
		t.ForeignID("relationship_id")
		t.Primary("ticket_id", "relationship_id")
		t.Foreign("ticket_id").On("tickets").Cascade()
		t.Foreign("relationship_id").On("relationships").Cascade()
	})
}

func (createTicketAcceptedRelationships) Down(ctx context.Context, s *migration.Schema) error {
	return s.DropTable(ctx, "ticket_accepted_relationships")
}

type createOrders struct{}

func (createOrders) Name() string { return "2024_01_01_000009_create_orders_table" }

func (createOrders) Up(ctx context.Context, s *migration.Schema) error {
	return s.CreateTable(ctx, "orders", func(t *migration.Blueprint) {
		t.ID()
		t.ForeignID("buyer_id")
		t.Integer("status")
		t.Decimal("total_price", 12, 2).Default(0)
		t.BigInteger("quantity").Default(0)
		t.DateTime("purchase_date").Nullable()
		t.Timestamps()
		t.Index("buyer_id", "status")
		t.Foreign("buyer_id").On("users").Cascade()
	})
}

func (createOrders) Down(ctx context.Context, s *migration.Schema) error {
	return s.DropTable(ctx, "orders")
}

type createOrderTickets struct{}

func (createOrderTickets) Name() string { return "2024_01_01_000010_create_order_tickets_table" }

func (createOrderTickets) Up(ctx context.Context, s *migration.Schema) error {
	return s.CreateTable(ctx, "order_tickets", func(t *migration.Blueprint) {
		t.ID()
		t.ForeignID("order_id")
		t.ForeignID("ticket_id")
		t.ForeignID("relationship_id")
		t.String("owner_name", 255).Default("")
		t.BigInteger("sub_quantity")
		t.Integer("status")
		t.Text("token").Nullable()
		t.Timestamps()
		t.Index("order_id", "status")
		t.Foreign("order_id").On("orders").Cascade()
		t.Foreign("ticket_id").On("tickets")
		t.Foreign("relationship_id").On("relationships")
	})
}

func (createOrderTickets) Down(ctx context.Context, s *migration.Schema) error {
	return s.DropTable(ctx, "order_tickets")
}
