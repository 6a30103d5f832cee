package constants

const (
	MaxNameLength = 64
	MinNameLength = 1

	MinPort = 0
	MaxPort = 65535
)
