package connection

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// BindTx returns a gorm handle whose statements run on tx. It follows what
// gorm.DB.Begin does internally: a fresh session with its connection pool
// swapped for the transaction. A nil tx returns db unchanged.
func BindTx(db *gorm.DB, tx *sql.Tx) *gorm.DB {
	if tx == nil {
		return db
	}
	session := db.Session(&gorm.Session{Context: context.Background(), NewDB: true})
	session.Statement.ConnPool = tx
	return session
}
