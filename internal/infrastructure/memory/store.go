// Package memory implementa los puertos de persistencia en memoria del proceso: un arena de
// entidades indexadas por id con transacciones de escritura diferida y bloqueos por clave.
// Se usa con STORE_DRIVER=memory y en tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/vanstock-api/internal/application/ports"
	"github.com/jhoicas/vanstock-api/internal/domain/entity"
)

// Ensure Store implements ports.TxRunner.
var _ ports.TxRunner = (*Store)(nil)

// DefaultLockTimeout espera máxima por un bloqueo cuando no se configura.
const DefaultLockTimeout = 2 * time.Second

// Store arena en memoria. mu protege los mapas; locks serializa transacciones por clave.
type Store struct {
	mu sync.RWMutex

	products      map[string]*entity.Product
	productCodes  map[string]string
	locations     map[string]*entity.Location
	locationCodes map[string]string
	stock         map[entity.StockKey]*entity.Stock
	customers     map[string]*entity.Customer
	customerCodes map[string]string
	sales         map[string]*entity.Sale
	returns       map[string]*entity.SaleReturn
	returnsBySale map[string][]string
	transfers     map[string]*entity.Transfer
	ledger        []*entity.LedgerEntry
	users         map[string]*entity.User
	userEmails    map[string]string

	locks       *lockTable
	lockTimeout time.Duration
}

// NewStore crea un store vacío. lockTimeout <= 0 usa DefaultLockTimeout.
func NewStore(lockTimeout time.Duration) *Store {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	return &Store{
		products:      make(map[string]*entity.Product),
		productCodes:  make(map[string]string),
		locations:     make(map[string]*entity.Location),
		locationCodes: make(map[string]string),
		stock:         make(map[entity.StockKey]*entity.Stock),
		customers:     make(map[string]*entity.Customer),
		customerCodes: make(map[string]string),
		sales:         make(map[string]*entity.Sale),
		returns:       make(map[string]*entity.SaleReturn),
		returnsBySale: make(map[string][]string),
		transfers:     make(map[string]*entity.Transfer),
		users:         make(map[string]*entity.User),
		userEmails:    make(map[string]string),
		locks:         newLockTable(),
		lockTimeout:   lockTimeout,
	}
}

// Run ejecuta fn con repos atados a una transacción nueva. Las escrituras quedan en la tx y se
// aplican juntas al confirmar; si fn falla se descartan. Los bloqueos se liberan después de aplicar.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, repos ports.TxRepos) error) error {
	tx := newTx(s)
	defer tx.release()

	repos := ports.TxRepos{
		Stock:     &StockRepo{s: s, tx: tx},
		Ledger:    &LedgerRepo{s: s, tx: tx},
		Sales:     &SaleRepo{s: s, tx: tx},
		Returns:   &ReturnRepo{s: s, tx: tx},
		Transfers: &TransferRepo{s: s, tx: tx},
		Customers: &CustomerRepo{s: s, tx: tx},
	}
	if err := fn(ctx, repos); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	tx.commit()
	return nil
}

// Repositorios fuera de transacción.

func (s *Store) Products() *ProductRepo   { return &ProductRepo{s: s} }
func (s *Store) Locations() *LocationRepo { return &LocationRepo{s: s} }
func (s *Store) Stock() *StockRepo        { return &StockRepo{s: s} }
func (s *Store) Customers() *CustomerRepo { return &CustomerRepo{s: s} }
func (s *Store) Sales() *SaleRepo         { return &SaleRepo{s: s} }
func (s *Store) Returns() *ReturnRepo     { return &ReturnRepo{s: s} }
func (s *Store) Transfers() *TransferRepo { return &TransferRepo{s: s} }
func (s *Store) Ledger() *LedgerRepo      { return &LedgerRepo{s: s} }
func (s *Store) Users() *UserRepo         { return &UserRepo{s: s} }
func (s *Store) Reports() *ReportRepo     { return &ReportRepo{s: s} }

// memTx escrituras pendientes y bloqueos tomados por una transacción.
type memTx struct {
	s         *Store
	held      []string
	heldSet   map[string]bool
	stock     map[entity.StockKey]*entity.Stock
	sales     []*entity.Sale
	returns   []*entity.SaleReturn
	transfers map[string]*entity.Transfer
	ledger    []*entity.LedgerEntry
	balances  map[string]decimal.Decimal
}

func newTx(s *Store) *memTx {
	return &memTx{
		s:         s,
		heldSet:   make(map[string]bool),
		stock:     make(map[entity.StockKey]*entity.Stock),
		transfers: make(map[string]*entity.Transfer),
		balances:  make(map[string]decimal.Decimal),
	}
}

// lock toma la clave una sola vez por transacción (reentrante).
func (tx *memTx) lock(ctx context.Context, key string) error {
	if tx.heldSet[key] {
		return nil
	}
	if err := tx.s.locks.acquire(ctx, key, tx.s.lockTimeout); err != nil {
		return err
	}
	tx.heldSet[key] = true
	tx.held = append(tx.held, key)
	return nil
}

func (tx *memTx) release() {
	for i := len(tx.held) - 1; i >= 0; i-- {
		tx.s.locks.release(tx.held[i])
	}
	tx.held = nil
	tx.heldSet = map[string]bool{}
}

func (tx *memTx) commit() {
	s := tx.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, st := range tx.stock {
		s.stock[k] = cloneStock(st)
	}
	for _, sale := range tx.sales {
		s.sales[sale.ID] = cloneSale(sale)
	}
	for _, r := range tx.returns {
		s.returns[r.ID] = cloneReturn(r)
		s.returnsBySale[r.SaleID] = append(s.returnsBySale[r.SaleID], r.ID)
	}
	for id, t := range tx.transfers {
		s.transfers[id] = cloneTransfer(t)
	}
	for _, e := range tx.ledger {
		s.ledger = append(s.ledger, cloneEntry(e))
	}
	for id, delta := range tx.balances {
		if c, ok := s.customers[id]; ok {
			c.Balance = c.Balance.Add(delta)
			c.UpdatedAt = time.Now()
		}
	}
}

// inRange rango inclusivo; extremos en cero no limitan.
func inRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && t.After(to) {
		return false
	}
	return true
}

// paginate aplica limit/offset; limit <= 0 devuelve todo desde offset.
func paginate[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func sortStock(rows []*entity.Stock) {
	sort.Slice(rows, func(i, j int) bool { return rows[i].Key().Less(rows[j].Key()) })
}
