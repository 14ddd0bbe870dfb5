package data

import (
	"context"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/iWorld-y/intel_radar/app/gateway/internal/conf"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/storage"
)

// Data 持有存储层，未配置数据库时 store 为空
type Data struct {
	store *storage.Storage
}

func NewData(c *conf.Data, logger log.Logger) (*Data, func(), error) {
	helper := log.NewHelper(logger)
	if c == nil || c.Database == nil || c.Database.Source == "" {
		helper.Warn("database not configured, records will not be persisted")
		return &Data{}, func() {}, nil
	}

	driver := c.Database.Driver
	if driver == "" {
		driver = "postgres"
	}
	db, err := sqlx.Open(driver, c.Database.Source)
	if err != nil {
		return nil, nil, err
	}
	// sqlite 只允许单写连接，内存库每个连接也互相独立
	if driver == "sqlite3" {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, err
	}

	store := storage.New(db)
	if err := store.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, nil, err
	}

	cleanup := func() {
		helper.Info("closing the data resources")
		store.Close()
	}
	return &Data{store: store}, cleanup, nil
}

// NewDataWithStore 直接使用已初始化的存储
func NewDataWithStore(store *storage.Storage) *Data {
	return &Data{store: store}
}

// Store 未配置数据库时返回 nil
func (d *Data) Store() *storage.Storage {
	return d.store
}
