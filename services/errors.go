package services

import (
	"errors"

	"github.com/jayansh1208/marketly/apperror"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// notFound turns a storage miss into a NotFoundError naming the resource.
func notFound(err error, resource string, id primitive.ObjectID) error {
	if errors.Is(err, apperror.ErrRecordNotFound) {
		return apperror.NotFound(resource, id.Hex())
	}
	return err
}
