package occupancy

import "errors"

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrResidentNotFound  = errors.New("resident not found")
	ErrOccupancyNotFound = errors.New("occupancy not found")
	ErrUnitNumberTaken   = errors.New("unit number already in use")
	ErrRoomOccupied      = errors.New("room has an active occupancy")
)
