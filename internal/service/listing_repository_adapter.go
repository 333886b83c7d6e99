package service

import (
	"database/sql"

	"github.com/realtorist/realtorist-api/internal/store"
)

// ListingStoreBinder builds a listing store on top of a database handle.
type ListingStoreBinder func(db store.DBTX) store.ListingStore

// NewListingRepositoryAdapter creates a ListingRepository whose
// non-transactional calls go through db and whose transactional calls go
// through a store bound to the transaction.
func NewListingRepositoryAdapter(db *sql.DB, bind ListingStoreBinder) ListingRepository {
	return &listingRepositoryAdapter{
		ListingStore: bind(db),
		db:           db,
		bind:         bind,
	}
}

// listingRepositoryAdapter adapts a store.ListingStore to the ListingRepository interface.
type listingRepositoryAdapter struct {
	store.ListingStore
	db   store.TxBeginner
	bind ListingStoreBinder
}

// WithTx implements ListingRepository.WithTx
func (a *listingRepositoryAdapter) WithTx(tx *sql.Tx) ListingRepository {
	return &listingRepositoryAdapter{
		ListingStore: a.bind(tx),
		db:           a.db,
		bind:         a.bind,
	}
}

// DB implements ListingRepository.DB
func (a *listingRepositoryAdapter) DB() store.TxBeginner {
	return a.db
}
