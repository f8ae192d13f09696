package identity

import (
	"strconv"
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions
// (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// EventUUID derives the identity for a workflow event appended at a given
// sequence position for an item.
func EventUUID(itemID uuid.UUID, seq int64) uuid.UUID {
	return UUID("go-newsroom:event:" + itemID.String() + ":" + strconv.FormatInt(seq, 10))
}

// CommentUUID derives the identity for an internal comment appended at a given
// sequence position for an item.
func CommentUUID(itemID uuid.UUID, seq int64) uuid.UUID {
	return UUID("go-newsroom:comment:" + itemID.String() + ":" + strconv.FormatInt(seq, 10))
}
