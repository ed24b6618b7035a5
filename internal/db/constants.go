package db

// SQL fragments shared by the user queries
const (
	userColumns = "id, first_name, last_name, username, password_hash, role, created_at, updated_at"

	// timeLayout is compatible with SQLite's date and time functions.
	timeLayout = "2006-01-02 15:04:05"
)
