package history

import "aurora-pvlogd/internal/errors"

const (
	ErrInvalidConfig   = errors.ErrorCode("history_invalid_config")
	ErrInvalidDBPath   = errors.ErrorCode("history_invalid_db_path")
	ErrStorageInit     = errors.ErrorCode("history_storage_init_failed")
	ErrStorageAccess   = errors.ErrorCode("history_storage_access_failed")
	ErrStorageClose    = errors.ErrorCode("history_storage_close_failed")
	ErrInvalidSnapshot = errors.ErrorCode("history_invalid_snapshot")
)
