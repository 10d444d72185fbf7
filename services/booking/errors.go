package booking

import (
	"errors"
	"fmt"

	"pcohire/database"
	"pcohire/utils"
)

func validationError(msg string) error {
	return utils.NewAppError(utils.KindValidation, msg)
}

func notFoundError(msg string) error {
	return utils.NewAppError(utils.KindNotFound, msg)
}

func authorizationError(msg string) error {
	return utils.NewAppError(utils.KindAuthorization, msg)
}

func invalidStateError(format string, args ...any) error {
	return utils.NewAppError(utils.KindInvalidState, fmt.Sprintf(format, args...))
}

func vehicleUnavailableError(msg string) error {
	return utils.NewAppError(utils.KindVehicleUnavailable, msg)
}

// writeError classifies a failed store write. Guarded writes that lost a race
// surface as conflicts so the client can retry.
func writeError(msg string, err error) error {
	if errors.Is(err, database.ErrConflict) {
		return utils.WrapAppError(utils.KindConflict, "booking was modified by another request, please retry", err)
	}
	return utils.WrapAppError(utils.KindDependencyWrite, msg, err)
}

// lookupError classifies a failed read of an entity named what.
func lookupError(what string, err error) error {
	if errors.Is(err, database.ErrNotFound) {
		return notFoundError(what + " not found")
	}
	return utils.WrapAppError(utils.KindDependencyWrite, "failed to load "+what, err)
}
