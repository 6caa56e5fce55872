package repositories

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound = errors.New("document not found")
	// ErrStatusConflict means the row changed status between read and write.
	ErrStatusConflict = errors.New("article status changed concurrently")
)

// ParseID converts a hex id from a URL into an ObjectID. Malformed ids
// cannot exist, so they are reported as not found.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrNotFound
	}
	return oid, nil
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
