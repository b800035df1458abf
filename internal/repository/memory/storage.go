// Package memory keeps the ledger in process memory.
//
// Every unit of work reads a snapshot taken when the unit starts: records and
// status changes committed later are invisible to it. Writes are buffered in the
// unit and applied at commit under a single lock. Creating a transaction or
// changing the status counts as a write to the account; if another unit committed
// a write to the same account after the snapshot was taken, the commit fails with
// apperrors.ErrConflict (first committer wins).
package memory

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/ledger/internal/apperrors"
	"github.com/nkiryanov/ledger/internal/models"
	"github.com/nkiryanov/ledger/internal/repository"
)

type accountVersion struct {
	account models.Account
	seq     uint64
}

type record struct {
	transaction models.Transaction
	seq         uint64
}

type accountEntry struct {
	// Status history, the last one is the latest committed
	versions []accountVersion

	// Sequence of the last commit that wrote to the account (status change or new record)
	lastWrite uint64

	records []record
}

// visible returns account as it was at the snapshot
func (e *accountEntry) visible(snapshot uint64) (models.Account, bool) {
	for i := len(e.versions) - 1; i >= 0; i-- {
		if e.versions[i].seq <= snapshot {
			return e.versions[i].account, true
		}
	}
	return models.Account{}, false
}

type database struct {
	mu       sync.RWMutex
	seq      uint64
	accounts map[uuid.UUID]*accountEntry
	emails   map[string]uuid.UUID
}

type Storage struct {
	db   *database
	unit *unit // nil if storage is not in unit of work
}

func NewStorage() *Storage {
	return &Storage{
		db: &database{
			accounts: make(map[uuid.UUID]*accountEntry),
			emails:   make(map[string]uuid.UUID),
		},
	}
}

func (s *Storage) Account() repository.AccountRepo {
	return &AccountRepo{storage: s}
}

func (s *Storage) Transaction() repository.TransactionRepo {
	return &TransactionRepo{storage: s}
}

// InTx runs fn in unit of work with snapshot isolation
// Nested call joins the outer unit like a savepoint: on error or panic only its own writes are discarded
func (s *Storage) InTx(ctx context.Context, fn func(repository.Storage) error) (err error) {
	if s.unit != nil {
		sp := s.unit.savepoint()

		defer func() {
			if p := recover(); p != nil {
				s.unit.rollbackTo(sp)
				panic(p)
			}
			if err != nil {
				s.unit.rollbackTo(sp)
			}
		}()

		return fn(s)
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrStorage, err)
	}

	u := s.db.begin()

	defer func() {
		if p := recover(); p != nil {
			u.abort()
			panic(p)
		}

		switch err {
		case nil:
			err = u.commit(ctx)
		default:
			u.abort()
		}
	}()

	err = fn(&Storage{db: s.db, unit: u})

	return err
}

// run calls fn within storage unit or within short-lived one
func (s *Storage) run(ctx context.Context, fn func(u *unit) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrStorage, err)
	}

	if s.unit != nil {
		return s.unit.check(fn)
	}

	u := s.db.begin()
	if err := u.check(fn); err != nil {
		u.abort()
		return err
	}

	return u.commit(ctx)
}

type unit struct {
	db       *database
	snapshot uint64
	done     bool

	// Accounts locked by read for update
	locked map[uuid.UUID]struct{}

	// Accounts written by the unit: created or with changed status or with new records
	written  map[uuid.UUID]struct{}
	accounts map[uuid.UUID]models.Account
	created  map[uuid.UUID]struct{}
	records  []models.Transaction
}

func (db *database) begin() *unit {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return &unit{
		db:       db,
		snapshot: db.seq,
		locked:   make(map[uuid.UUID]struct{}),
		written:  make(map[uuid.UUID]struct{}),
		accounts: make(map[uuid.UUID]models.Account),
		created:  make(map[uuid.UUID]struct{}),
	}
}

// Unit write state at some point, restored by rollbackTo
type savepoint struct {
	records  int
	written  map[uuid.UUID]struct{}
	accounts map[uuid.UUID]models.Account
	created  map[uuid.UUID]struct{}
}

func (u *unit) savepoint() savepoint {
	return savepoint{
		records:  len(u.records),
		written:  maps.Clone(u.written),
		accounts: maps.Clone(u.accounts),
		created:  maps.Clone(u.created),
	}
}

// rollbackTo discards writes made after sp, locks taken meanwhile are kept
func (u *unit) rollbackTo(sp savepoint) {
	u.records = u.records[:sp.records]
	u.written = sp.written
	u.accounts = sp.accounts
	u.created = sp.created
}

func (u *unit) check(fn func(u *unit) error) error {
	if u.done {
		return fmt.Errorf("%w: unit of work is already finished", apperrors.ErrStorage)
	}
	return fn(u)
}

func (u *unit) abort() {
	u.done = true
	u.records = nil
	clear(u.accounts)
}

func (u *unit) commit(ctx context.Context) error {
	if u.done {
		return fmt.Errorf("%w: unit of work is already finished", apperrors.ErrStorage)
	}
	u.done = true

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrStorage, err)
	}

	db := u.db
	db.mu.Lock()
	defer db.mu.Unlock()

	// Validate everything before applying anything
	for _, set := range []map[uuid.UUID]struct{}{u.locked, u.written} {
		for id := range set {
			if _, ok := u.created[id]; ok {
				continue
			}
			if e, ok := db.accounts[id]; ok && e.lastWrite > u.snapshot {
				return fmt.Errorf("%w: account %s changed after unit start", apperrors.ErrConflict, id)
			}
		}
	}
	for id := range u.created {
		if _, taken := db.emails[u.accounts[id].Email]; taken {
			return apperrors.ErrAccountAlreadyExists
		}
	}

	if len(u.written) == 0 {
		return nil
	}

	db.seq++
	seq := db.seq

	for id := range u.written {
		e, ok := db.accounts[id]
		if !ok {
			e = &accountEntry{}
			db.accounts[id] = e
			db.emails[u.accounts[id].Email] = id
		}
		if a, changed := u.accounts[id]; changed {
			e.versions = append(e.versions, accountVersion{account: a, seq: seq})
		}
		e.lastWrite = seq
	}

	for _, t := range u.records {
		e := db.accounts[t.AccountID]
		e.records = append(e.records, record{transaction: t, seq: seq})
	}

	return nil
}

// getAccount returns account visible to the unit: own writes first, then the snapshot
func (u *unit) getAccount(id uuid.UUID) (models.Account, bool) {
	if a, ok := u.accounts[id]; ok {
		return a, true
	}

	u.db.mu.RLock()
	defer u.db.mu.RUnlock()

	e, ok := u.db.accounts[id]
	if !ok {
		return models.Account{}, false
	}
	return e.visible(u.snapshot)
}

// transactions returns account records visible to the unit in insertion order
func (u *unit) transactions(accountID uuid.UUID) []models.Transaction {
	var out []models.Transaction

	u.db.mu.RLock()
	if e, ok := u.db.accounts[accountID]; ok {
		for _, r := range e.records {
			if r.seq <= u.snapshot {
				out = append(out, r.transaction)
			}
		}
	}
	u.db.mu.RUnlock()

	for _, t := range u.records {
		if t.AccountID == accountID {
			out = append(out, t)
		}
	}

	return out
}

func (u *unit) emailTaken(email string) bool {
	for id := range u.created {
		if u.accounts[id].Email == email {
			return true
		}
	}

	u.db.mu.RLock()
	defer u.db.mu.RUnlock()

	_, taken := u.db.emails[email]
	return taken
}

func (u *unit) putAccount(a models.Account, created bool) {
	u.accounts[a.ID] = a
	u.written[a.ID] = struct{}{}
	if created {
		u.created[a.ID] = struct{}{}
	}
}

func (u *unit) appendTransaction(t models.Transaction) {
	u.records = append(u.records, t)
	u.written[t.AccountID] = struct{}{}
}

func now() time.Time {
	return time.Now().UTC()
}
