package utils

const (
	ErrProcfsUnavailable = "procfs is not mounted or not readable"
)
