package service

// LocksActivos exposes the per-cart lock count to the external tests.
func LocksActivos(s PosService) int { return s.(*posService).locksActivos() }
