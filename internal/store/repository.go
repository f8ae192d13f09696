package store

import (
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewItemRepository wires a go-repository-bun repository for item records,
// keyed by id with slug as the human identifier.
func NewItemRepository(db *bun.DB) repository.Repository[*ItemRecord] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*ItemRecord]{
		NewRecord: func() *ItemRecord { return &ItemRecord{} },
		GetID: func(r *ItemRecord) uuid.UUID {
			return r.ID
		},
		SetID: func(r *ItemRecord, id uuid.UUID) {
			r.ID = id
		},
		GetIdentifier: func() string {
			return "slug"
		},
		GetIdentifierValue: func(r *ItemRecord) string {
			return r.Slug
		},
	})
}

// NewStateRepository wires a repository for workflow state records. States
// share the item identity, so the item id is both key and identifier.
func NewStateRepository(db *bun.DB) repository.Repository[*StateRecord] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*StateRecord]{
		NewRecord: func() *StateRecord { return &StateRecord{} },
		GetID: func(r *StateRecord) uuid.UUID {
			return r.ItemID
		},
		SetID: func(r *StateRecord, id uuid.UUID) {
			r.ItemID = id
		},
		GetIdentifier: func() string {
			return "item_id"
		},
		GetIdentifierValue: func(r *StateRecord) string {
			return r.ItemID.String()
		},
	})
}
