package badger

import (
	"github.com/google/uuid"
	"github.com/phrazzld/sprout/internal/domain"
)

var profileKey = []byte("profile/current")

func historyPrefix(profileID uuid.UUID) []byte {
	return []byte("history/" + profileID.String() + "/")
}

func historyKey(profileID uuid.UUID, kind domain.OffsetKind) []byte {
	return append(historyPrefix(profileID), []byte(kind)...)
}
