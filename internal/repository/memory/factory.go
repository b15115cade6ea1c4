package memory

import (
	"time"

	repo "github.com/baharkarakas/point-ledger/internal/repository"
)

type Clock func() time.Time

func NewRepositories(now Clock) repo.Repositories {
	return repo.Repositories{
		Ledger:    NewLedger(now),
		AuditLogs: NewAuditLogs(now),
	}
}
