package model

import "errors"

var (
	// ErrNoTargetFound means no eligible subject was in range; previous state is kept.
	ErrNoTargetFound = errors.New("no target found")
	// ErrNoSpawnLocation means every respawn strategy was exhausted; the agent stays put.
	ErrNoSpawnLocation = errors.New("no spawn location found")
	// ErrNavigationStuck is the debounced stuck verdict. It triggers a respawn and is never surfaced to the host.
	ErrNavigationStuck = errors.New("navigation stuck")
	// ErrInvalidObstacle marks a cell that is not a recognised obstacle and is left alone.
	ErrInvalidObstacle = errors.New("invalid obstacle")
)
