package ports

import (
	"context"

	"github.com/jhoicas/vanstock-api/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción. Todo lo escrito con ellos
// se confirma junto o se descarta junto.
type TxRepos struct {
	Stock     repository.StockRepository
	Ledger    repository.LedgerRepository
	Sales     repository.SaleRepository
	Returns   repository.ReturnRepository
	Transfers repository.TransferRepository
	Customers repository.CustomerRepository
}

// TxRunner ejecuta fn dentro de una transacción y hace Commit si fn retorna nil, Rollback si no.
// Un bloqueo que no se obtiene a tiempo se reporta como domain.ErrContention.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, repos TxRepos) error) error
}
