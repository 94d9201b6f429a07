package config

const (
	// MaxFolderNameLength is the maximum length for folder names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxFolderNameLength = 255

	// DefaultMaxFolderDepth is the number of folder levels allowed
	// (root = depth 0, subfolder = depth 1).
	DefaultMaxFolderDepth = 2

	// MaxFolderSearchLength caps the ?search= substring for folder and note lists.
	MaxFolderSearchLength = 100

	// MaxNoteFolderFilter caps how many ids a single folderIds= filter may carry.
	MaxNoteFolderFilter = 100
)
