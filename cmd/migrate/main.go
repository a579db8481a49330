// -----------------------------------------------------------------------------
// TicketBox Migrate
// -----------------------------------------------------------------------------
// MySQL şemasını uygular, geri alır veya durumunu gösterir; varsayılan
// ilişkileri ekler ve istenirse ilk yöneticiyi atar.
//
//	migrate                       bekleyen migration'lar + seed
//	migrate --rollback            son batch'i geri al
//	migrate --status              migration durumu
//	migrate --admin=a@b.com       kayıtlı kullanıcıya ADMIN rolü ver
// -----------------------------------------------------------------------------

package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/pflag"

	"github.com/biyonik/ticketbox-core/internal/config"
	"github.com/biyonik/ticketbox-core/internal/migrations"
	"github.com/biyonik/ticketbox-core/internal/repositories/mysql"
	"github.com/biyonik/ticketbox-core/pkg/database"
	"github.com/biyonik/ticketbox-core/pkg/database/migration"
)

func main() {
	logger := log.New(os.Stdout, "[migrate] ", log.LstdFlags|log.Lmsgprefix)
	if err := run(logger); err != nil {
		logger.Printf("❌ %v", err)
		os.Exit(1)
	}
}

func run(logger *log.Logger) error {
	var (
		rollback   bool
		status     bool
		skipSeed   bool
		adminEmail string
	)

	flags := pflag.NewFlagSet("migrate", pflag.ContinueOnError)
	flags.BoolVar(&rollback, "rollback", false, "son migration batch'ini geri al")
	flags.BoolVar(&status, "status", false, "migration durumunu göster")
	flags.BoolVar(&skipSeed, "no-seed", false, "varsayılan ilişkileri ekleme")
	flags.StringVar(&adminEmail, "admin", "", "bu e-postaya sahip kullanıcıya ADMIN rolü ver")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if rollback && status {
		return fmt.Errorf("--rollback ve --status birlikte kullanılamaz")
	}

	cfg := config.Load()
	if cfg.DB.Driver != "mysql" {
		return fmt.Errorf("migrate yalnızca DB_DRIVER=mysql ile çalışır (şu an: %s)", cfg.DB.Driver)
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg.DB.DSN, database.PoolConfig{
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	migrator := migration.NewMigrator(
		migration.NewSchema(db, migration.NewMySQLGrammar(), logger),
		migration.NewSQLRepository(db),
		logger,
	)
	all := migrations.All()

	switch {
	case status:
		ran, err := migrator.Status(ctx, all)
		if err != nil {
			return err
		}
		for _, m := range all {
			mark := "⏳ pending"
			if ran[m.Name()] {
				mark = "✅ ran    "
			}
			fmt.Printf("%s  %s\n", mark, m.Name())
		}
		return nil

	case rollback:
		_, err := migrator.Rollback(ctx, all)
		return err
	}

	// 1. Şema
	if _, err := migrator.Up(ctx, all); err != nil {
		return err
	}

	store := mysql.NewStore(db, logger)

	// 2. Seed
	if !skipSeed {
		if err := migrations.SeedRelationships(ctx, store, logger); err != nil {
			return err
		}
	}

	// 3. İlk yönetici
	if adminEmail != "" {
		if _, err := migrations.PromoteAdmin(ctx, store, adminEmail, logger); err != nil {
			return err
		}
	}
	return nil
}
