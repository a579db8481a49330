// -----------------------------------------------------------------------------
// Database Migration System
// -----------------------------------------------------------------------------
// Şema değişikliklerini isimli migration'lar olarak yönetir. Çalışan
// migration'lar `migrations` tablosunda batch numarasıyla tutulur; Rollback
// son batch'i ters sırada geri alır.
//
// Kullanım:
//
//	type createUsers struct{}
//
//	func (createUsers) Name() string { return "2024_01_01_000001_create_users" }
//
//	func (createUsers) Up(ctx context.Context, s *Schema) error {
//	    return s.CreateTable(ctx, "users", func(t *Blueprint) {
//	        t.ID()
//	        t.String("email", 255)
//	        t.Unique("email")
//	        t.Timestamps()
//	    })
//	}
//
//	func (createUsers) Down(ctx context.Context, s *Schema) error {
//	    return s.DropTable(ctx, "users")
//	}
// -----------------------------------------------------------------------------

package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log"
)

// Migration, tek bir şema değişikliği.
type Migration interface {
	Name() string
	Up(ctx context.Context, schema *Schema) error
	Down(ctx context.Context, schema *Schema) error
}

// Execer, DDL çalıştıran bağlantı. *sql.DB sağlar.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Repository, çalışmış migration kayıtlarını tutar.
type Repository interface {
	EnsureTable(ctx context.Context) error
	Ran(ctx context.Context) ([]string, error)
	LastBatch(ctx context.Context) (int, error)
	BatchOf(ctx context.Context, batch int) ([]string, error)
	Log(ctx context.Context, name string, batch int) error
	Delete(ctx context.Context, name string) error
}

// Grammar, şema komutlarını SQL lehçesine çevirir.
type Grammar interface {
	CompileCreateTable(table string, columns []Column, indexes []Index, foreignKeys []ForeignKey) string
	CompileDropTable(table string) string
	CompileAddColumn(table string, column Column) string
	CompileDropColumn(table string, columnName string) string
	CompileAddIndex(table string, index Index) string
	CompileDropIndex(table string, indexName string) string
}

// Schema, migration'ların kullandığı DDL arayüzü.
type Schema struct {
	exec    Execer
	grammar Grammar
	logger  *log.Logger
}

func NewSchema(exec Execer, grammar Grammar, logger *log.Logger) *Schema {
	return &Schema{exec: exec, grammar: grammar, logger: logger}
}

// CreateTable yeni tablo oluşturur.
func (s *Schema) CreateTable(ctx context.Context, table string, callback func(*Blueprint)) error {
	blueprint := NewBlueprint(table)
	callback(blueprint)

	query := s.grammar.CompileCreateTable(table, blueprint.Columns(), blueprint.indexes, blueprint.ForeignKeys())
	if _, err := s.exec.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}

	s.logger.Printf("✅ Created table: %s", table)
	return nil
}

func (s *Schema) DropTable(ctx context.Context, table string) error {
	if _, err := s.exec.ExecContext(ctx, s.grammar.CompileDropTable(table)); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", table, err)
	}

	s.logger.Printf("✅ Dropped table: %s", table)
	return nil
}

// AlterTable mevcut tabloya kolon ve index ekler.
func (s *Schema) AlterTable(ctx context.Context, table string, callback func(*Blueprint)) error {
	blueprint := NewBlueprint(table)
	callback(blueprint)

	for _, column := range blueprint.Columns() {
		if _, err := s.exec.ExecContext(ctx, s.grammar.CompileAddColumn(table, column)); err != nil {
			return fmt.Errorf("failed to add column %s: %w", column.Name, err)
		}
	}
	for _, index := range blueprint.indexes {
		if _, err := s.exec.ExecContext(ctx, s.grammar.CompileAddIndex(table, index)); err != nil {
			return fmt.Errorf("failed to add index %s: %w", index.Name, err)
		}
	}

	s.logger.Printf("✅ Altered table: %s", table)
	return nil
}

// Migrator, bekleyen migration'ları çalıştırır ve geri alır.
type Migrator struct {
	schema *Schema
	repo   Repository
	logger *log.Logger
}

func NewMigrator(schema *Schema, repo Repository, logger *log.Logger) *Migrator {
	return &Migrator{schema: schema, repo: repo, logger: logger}
}

// Up, çalışmamış migration'ları verilen sırayla tek bir yeni batch olarak
// çalıştırır ve çalışanların isimlerini döndürür.
func (m *Migrator) Up(ctx context.Context, migrations []Migration) ([]string, error) {
	if err := m.repo.EnsureTable(ctx); err != nil {
		return nil, err
	}

	ran, err := m.ranSet(ctx)
	if err != nil {
		return nil, err
	}
	last, err := m.repo.LastBatch(ctx)
	if err != nil {
		return nil, err
	}
	batch := last + 1

	var applied []string
	for _, mig := range migrations {
		if ran[mig.Name()] {
			continue
		}

		m.logger.Printf("🔄 Migrating: %s", mig.Name())
		if err := mig.Up(ctx, m.schema); err != nil {
			return applied, fmt.Errorf("migration %s failed: %w", mig.Name(), err)
		}
		if err := m.repo.Log(ctx, mig.Name(), batch); err != nil {
			return applied, fmt.Errorf("migration %s could not be recorded: %w", mig.Name(), err)
		}
		applied = append(applied, mig.Name())
	}

	if len(applied) == 0 {
		m.logger.Println("✅ Nothing to migrate")
		return nil, nil
	}
	m.logger.Printf("✅ Migrated %d (batch %d)", len(applied), batch)
	return applied, nil
}

// Rollback, son batch'in migration'larını ters sırada geri alır.
func (m *Migrator) Rollback(ctx context.Context, migrations []Migration) ([]string, error) {
	if err := m.repo.EnsureTable(ctx); err != nil {
		return nil, err
	}

	last, err := m.repo.LastBatch(ctx)
	if err != nil {
		return nil, err
	}
	if last == 0 {
		m.logger.Println("✅ Nothing to rollback")
		return nil, nil
	}

	names, err := m.repo.BatchOf(ctx, last)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]Migration, len(migrations))
	for _, mig := range migrations {
		byName[mig.Name()] = mig
	}

	var reverted []string
	for i := len(names) - 1; i >= 0; i-- {
		mig, ok := byName[names[i]]
		if !ok {
			return reverted, fmt.Errorf("migration %s is recorded but unknown", names[i])
		}

		m.logger.Printf("🔄 Rolling back: %s", mig.Name())
		if err := mig.Down(ctx, m.schema); err != nil {
			return reverted, fmt.Errorf("rollback of %s failed: %w", mig.Name(), err)
		}
		if err := m.repo.Delete(ctx, mig.Name()); err != nil {
			return reverted, err
		}
		reverted = append(reverted, mig.Name())
	}

	m.logger.Printf("✅ Rolled back %d (batch %d)", len(reverted), last)
	return reverted, nil
}

// Status, her migration'ın çalışıp çalışmadığını döndürür.
func (m *Migrator) Status(ctx context.Context, migrations []Migration) (map[string]bool, error) {
	if err := m.repo.EnsureTable(ctx); err != nil {
		return nil, err
	}
	ran, err := m.ranSet(ctx)
	if err != nil {
		return nil, err
	}

	status := make(map[string]bool, len(migrations))
	for _, mig := range migrations {
		status[mig.Name()] = ran[mig.Name()]
	}
	return status, nil
}

func (m *Migrator) ranSet(ctx context.Context) (map[string]bool, error) {
	names, err := m.repo.Ran(ctx)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return set, nil
}
