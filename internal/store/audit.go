package store

import (
	"context"

	"gorm.io/gorm"

	"zing_pool/internal/models"
)

// WriteAudit appends entries outside any business transaction.
func (s *ServiceStore) WriteAudit(ctx context.Context, entries ...models.AuditLog) error {
	if len(entries) == 0 {
		return nil
	}
	return s.exec.Do(ctx, "write_audit", func(db *gorm.DB) error {
		return writeAuditTx(db, entries...)
	})
}

func writeAuditTx(tx *gorm.DB, entries ...models.AuditLog) error {
	return tx.Create(&entries).Error
}
