package registry

import (
	"errors"
	"fmt"

	"github.com/meigma/asar/registry/oras"
)

// mapOCIError translates low-level ORAS errors to client-level sentinel errors.
func mapOCIError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrUnauthorized), errors.Is(err, ErrForbidden):
		return err
	case errors.Is(err, oras.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, oras.ErrUnauthorized):
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	case errors.Is(err, oras.ErrForbidden):
		return fmt.Errorf("%w: %v", ErrForbidden, err)
	case errors.Is(err, oras.ErrInvalidReference):
		return fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}
	return err
}
